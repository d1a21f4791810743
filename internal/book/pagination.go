package book

import "math"

const (
	// DefaultPageSize is used by the REST listing when page_size is absent.
	DefaultPageSize = 10
	// MaxPageSize caps page_size on the REST listing.
	MaxPageSize = 100
	// BrowserPageSize is the fixed page size of the catalog browser.
	BrowserPageSize = 12
)

// Pagination is the paging block of a listing response.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	PageSize    int  `json:"page_size"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrev     bool `json:"has_prev"`
}

// NewPagination computes the paging block for a page of a result set with total items.
func NewPagination(page, pageSize, total int) Pagination {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	totalPages := (total + pageSize - 1) / pageSize
	return Pagination{
		CurrentPage: page,
		PageSize:    pageSize,
		TotalCount:  total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrev:     page > 1,
	}
}

// Offset is the number of items preceding the current page. It saturates at
// math.MaxInt for pages far beyond any result set.
func (p Pagination) Offset() int {
	return offset(p.CurrentPage, p.PageSize)
}

func offset(page, pageSize int) int {
	if page <= 1 || pageSize <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// Page slices the items that belong to the current page.
func Page[T any](items []T, p Pagination) []T {
	start := p.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := len(items)
	if p.PageSize < end-start {
		end = start + p.PageSize
	}
	return items[start:end]
}

// Ellipsis marks a gap in a page window.
const Ellipsis = 0

// PageWindow lists the page links to render: the first and last pages and every page
// within two of current. Gaps are marked with Ellipsis.
func PageWindow(current, totalPages int) []int {
	const delta = 2
	var out []int
	prev := 0
	for i := 1; i <= totalPages; i++ {
		if i != 1 && i != totalPages && (i < current-delta || i > current+delta) {
			continue
		}
		if prev+1 < i {
			out = append(out, Ellipsis)
		}
		out = append(out, i)
		prev = i
	}
	return out
}

// ResultRange returns the 1-based positions of the first and last item on the page.
// A page past the end of the result set has no range.
func ResultRange(current, pageSize, total int) (from, to int) {
	start := offset(current, pageSize)
	if total <= 0 || start >= total {
		return 0, 0
	}
	from = start + 1
	to = total
	if pageSize > 0 && pageSize < total-start {
		to = start + pageSize
	}
	return from, to
}
