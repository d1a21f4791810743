package book

import (
	"context"
)

// Query defines filters and paging for a repository listing.
type Query struct {
	Filters    Filters
	AuthorSlug string
	Limit      int
	Offset     int
}

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=book

// Repository defines the contract for book data storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, int, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	Create(ctx context.Context, b Book) (Book, error)
	Update(ctx context.Context, id int64, b Book) (Book, error)
	Delete(ctx context.Context, id int64) error
	ListAuthors(ctx context.Context) ([]Author, error)
	GetAuthor(ctx context.Context, id int64) (Author, error)
	RawSubjects(ctx context.Context) ([]string, error)
	Publishers(ctx context.Context) ([]string, error)
}
