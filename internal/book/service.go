package book

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Service provides book-related business logic on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a new book service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns one page of books matching f. page must be at least 1; page_size defaults
// to DefaultPageSize and is capped at MaxPageSize.
func (s *Service) List(ctx context.Context, f Filters) (BooksResponse, error) {
	return s.list(ctx, f, "")
}

// ByAuthorSlug lists the books linked to the author with the given slug.
func (s *Service) ByAuthorSlug(ctx context.Context, slug string, f Filters) (BooksResponse, error) {
	if strings.TrimSpace(slug) == "" {
		return BooksResponse{}, fmt.Errorf("%w: author slug is required", ErrInvalid)
	}
	return s.list(ctx, f, slug)
}

// BySubject lists the books whose subjects contain subject.
func (s *Service) BySubject(ctx context.Context, subject string, f Filters) (BooksResponse, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return BooksResponse{}, fmt.Errorf("%w: subject is required", ErrInvalid)
	}
	f.Subjects = subject
	return s.list(ctx, f, "")
}

func (s *Service) list(ctx context.Context, f Filters, authorSlug string) (BooksResponse, error) {
	if f.OrderBy != "" && !IsSortColumn(f.OrderBy) {
		f.OrderBy = ""
		f.OrderDirection = ""
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	page := NewPagination(f.CurrentPage(), pageSize, 0)

	books, total, err := s.repo.List(ctx, Query{
		Filters:    f,
		AuthorSlug: authorSlug,
		Limit:      page.PageSize,
		Offset:     page.Offset(),
	})
	if err != nil {
		return BooksResponse{}, err
	}
	if books == nil {
		books = []Book{}
	}

	applied := f.Applied()
	if authorSlug != "" {
		applied["author_slug"] = authorSlug
	}
	return BooksResponse{
		Books:          books,
		Pagination:     NewPagination(page.CurrentPage, page.PageSize, total),
		FiltersApplied: applied,
	}, nil
}

// Get returns a book by id.
func (s *Service) Get(ctx context.Context, id int64) (Book, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new book. Title and author are required.
func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	if err := CheckRequired(b); err != nil {
		return Book{}, err
	}
	b.ID = 0
	return s.repo.Create(ctx, b)
}

// Update replaces every writable field of the book with id.
func (s *Service) Update(ctx context.Context, id int64, b Book) (Book, error) {
	if err := CheckRequired(b); err != nil {
		return Book{}, err
	}
	b.ID = id
	return s.repo.Update(ctx, id, b)
}

// Delete removes a book.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Authors(ctx context.Context) ([]Author, error) {
	return s.repo.ListAuthors(ctx)
}

func (s *Service) Author(ctx context.Context, id int64) (Author, error) {
	return s.repo.GetAuthor(ctx, id)
}

// Subjects returns the sorted set of individual subjects. Books store subjects as a
// comma-separated list.
func (s *Service) Subjects(ctx context.Context) ([]string, error) {
	raw, err := s.repo.RawSubjects(ctx)
	if err != nil {
		return nil, err
	}
	return SplitSubjects(raw), nil
}

func (s *Service) Publishers(ctx context.Context) ([]string, error) {
	publishers, err := s.repo.Publishers(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(publishers)
	return publishers, nil
}

// FilterOptions describes the supported filters together with the known subjects and
// publishers.
func (s *Service) FilterOptions(ctx context.Context) (FilterOptions, error) {
	subjects, err := s.Subjects(ctx)
	if err != nil {
		return FilterOptions{}, err
	}
	publishers, err := s.Publishers(ctx)
	if err != nil {
		return FilterOptions{}, err
	}
	return NewFilterOptions(subjects, publishers), nil
}

// SplitSubjects splits comma-separated subject lists into a sorted, de-duplicated set.
func SplitSubjects(raw []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, list := range raw {
		for _, s := range strings.Split(list, ",") {
			s = strings.TrimSpace(s)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
