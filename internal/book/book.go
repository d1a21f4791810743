package book

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// ErrInvalid is returned when book data or list parameters are rejected.
var ErrInvalid = errors.New("invalid book data")

// Book represents a catalog entry. ID is assigned by the server; Title and Author are mandatory.
type Book struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	AuthorID  *int64 `json:"author_id,omitempty"`
	Biography string `json:"biography,omitempty"`
	Authors   string `json:"authors,omitempty"`
	Publisher string `json:"publisher,omitempty"`
	Synopsis  string `json:"synopsis,omitempty"`
	Subjects  string `json:"subjects,omitempty"`
	Pages     *int   `json:"pages,omitempty"`
	Format    string `json:"format,omitempty"`
	Price     string `json:"price,omitempty"`
	ISBN13    *int64 `json:"isbn13,omitempty"`
	ISBN10    string `json:"isbn10,omitempty"`
}

// PageCount returns the page count or 0 when unknown.
func (b Book) PageCount() int {
	if b.Pages == nil {
		return 0
	}
	return *b.Pages
}

// Author represents an author record.
type Author struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Biography string `json:"biography"`
}

// BooksResponse is the listing payload: one page of books plus pagination metadata
// and an echo of the filters the server applied.
type BooksResponse struct {
	Books          []Book         `json:"books"`
	Pagination     Pagination     `json:"pagination"`
	FiltersApplied map[string]any `json:"filters_applied"`
}

// EmptyBooksResponse is the degraded listing result used when the API cannot be reached.
func EmptyBooksResponse(pageSize int) BooksResponse {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return BooksResponse{
		Books:          []Book{},
		Pagination:     Pagination{CurrentPage: 1, PageSize: pageSize},
		FiltersApplied: map[string]any{},
	}
}

// MutationResponse is returned by create and update calls.
type MutationResponse struct {
	Message string `json:"message"`
	Book    *Book  `json:"book,omitempty"`
}

// MessageResponse is returned by delete calls.
type MessageResponse struct {
	Message string `json:"message"`
}

// FilterOptions describes which filters the backend understands and the values it knows about.
type FilterOptions struct {
	TextFilters         []string `json:"text_filters"`
	ExactFilters        []string `json:"exact_filters"`
	NumericFilters      []string `json:"numeric_filters"`
	MultiValueFilters   []string `json:"multi_value_filters"`
	AvailableSubjects   []string `json:"available_subjects"`
	AvailablePublishers []string `json:"available_publishers"`
	SortOptions         []string `json:"sort_options"`
}

// APIError is the error body returned by the REST backend on non-success statuses.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Formats accepted by the catalog.
var Formats = []string{"Digital", "Physical"}

// NewFilterOptions builds the static part of the filter-options document.
func NewFilterOptions(subjects, publishers []string) FilterOptions {
	if subjects == nil {
		subjects = []string{}
	}
	if publishers == nil {
		publishers = []string{}
	}
	return FilterOptions{
		TextFilters:         []string{FieldTitle, FieldAuthor, FieldPublisher, FieldSynopsis, FieldSubjects},
		ExactFilters:        []string{FieldFormat},
		NumericFilters:      []string{"pages"},
		MultiValueFilters:   []string{FieldSubjects, FieldFormat},
		AvailableSubjects:   subjects,
		AvailablePublishers: publishers,
		SortOptions:         SortColumns,
	}
}

// Slugify lower-cases s and joins its alphanumeric runs with dashes: "Robert C. Martin"
// becomes "robert-c-martin".
func Slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
