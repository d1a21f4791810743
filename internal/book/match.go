package book

import (
	"sort"
	"strings"
)

// SortColumns are the order_by values accepted by listings.
var SortColumns = []string{"title", "author", "publisher", "pages", "id"}

// IsSortColumn reports whether col can be used for order_by.
func IsSortColumn(col string) bool {
	for _, c := range SortColumns {
		if c == col {
			return true
		}
	}
	return false
}

// Matches applies the listing predicates to a single book: case-insensitive substring
// for text fields, exact match for format, inclusive range for pages. Paging and sort
// fields do not participate.
func (f Filters) Matches(b Book) bool {
	if !containsFold(b.Title, f.Title) ||
		!containsFold(b.Author, f.Author) ||
		!containsFold(b.Publisher, f.Publisher) ||
		!containsFold(b.Subjects, f.Subjects) ||
		!containsFold(b.Synopsis, f.Synopsis) {
		return false
	}
	if f.Format != "" && b.Format != f.Format {
		return false
	}
	if f.PagesMin > 0 || f.PagesMax > 0 {
		if b.Pages == nil {
			return false
		}
		if f.PagesMin > 0 && *b.Pages < f.PagesMin {
			return false
		}
		if f.PagesMax > 0 && *b.Pages > f.PagesMax {
			return false
		}
	}
	return true
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// Filter returns the books matching f, preserving input order.
func Filter(books []Book, f Filters) []Book {
	out := make([]Book, 0, len(books))
	for _, b := range books {
		if f.Matches(b) {
			out = append(out, b)
		}
	}
	return out
}

// SortBooks orders books in place by a whitelisted column. Unknown columns leave the
// order untouched. Ties keep their relative order.
func SortBooks(books []Book, orderBy, direction string) {
	less := lessFunc(orderBy)
	if less == nil {
		return
	}
	desc := strings.EqualFold(direction, DirectionDesc)
	sort.SliceStable(books, func(i, j int) bool {
		if desc {
			return less(books[j], books[i])
		}
		return less(books[i], books[j])
	})
}

func lessFunc(col string) func(a, b Book) bool {
	switch col {
	case "title":
		return func(a, b Book) bool { return strings.ToLower(a.Title) < strings.ToLower(b.Title) }
	case "author":
		return func(a, b Book) bool { return strings.ToLower(a.Author) < strings.ToLower(b.Author) }
	case "publisher":
		return func(a, b Book) bool { return strings.ToLower(a.Publisher) < strings.ToLower(b.Publisher) }
	case "pages":
		return func(a, b Book) bool { return a.PageCount() < b.PageCount() }
	case "id":
		return func(a, b Book) bool { return a.ID < b.ID }
	default:
		return nil
	}
}
