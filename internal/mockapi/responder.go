// Package mockapi answers catalog API requests from a fixed in-memory dataset, so the
// browser can run without a backend. The dataset is never modified: mutations are
// acknowledged but not applied.
package mockapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"time"

	"bookcatalog/internal/book"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/logger"
)

// CreatedID is the id reported for every book created in mock mode.
const CreatedID = 999

// DefaultLatency is the simulated response delay.
const DefaultLatency = 100 * time.Millisecond

type Responder struct {
	books   []book.Book
	authors []book.Author
	latency time.Duration
	mux     *http.ServeMux
}

type Option func(*Responder)

// WithLatency sets the simulated delay. Zero disables it.
func WithLatency(d time.Duration) Option {
	return func(r *Responder) { r.latency = d }
}

// WithBooks replaces the seed dataset.
func WithBooks(books []book.Book) Option {
	return func(r *Responder) { r.books = books }
}

func New(opts ...Option) *Responder {
	r := &Responder{books: SeedData(), latency: DefaultLatency}
	for _, opt := range opts {
		opt(r)
	}
	r.authors = deriveAuthors(r.books)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/books", r.listBooks)
	mux.HandleFunc("POST /api/v1/books", r.createBook)
	mux.HandleFunc("GET /api/v1/books/{id}", r.getBook)
	mux.HandleFunc("PUT /api/v1/books/{id}", r.updateBook)
	mux.HandleFunc("DELETE /api/v1/books/{id}", r.deleteBook)
	mux.HandleFunc("GET /api/v1/books/author/{slug}", r.booksByAuthor)
	mux.HandleFunc("GET /api/v1/books/subjects/{subject}", r.booksBySubject)
	mux.HandleFunc("GET /api/v1/authors", r.listAuthors)
	mux.HandleFunc("GET /api/v1/authors/{id}", r.getAuthor)
	mux.HandleFunc("GET /api/v1/subjects", r.listSubjects)
	mux.HandleFunc("GET /api/v1/publishers", r.listPublishers)
	mux.HandleFunc("GET /api/v1/filter-options", r.filterOptions)
	mux.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		httpx.JSONSuccess(w, req, map[string]any{})
	})
	r.mux = mux
	return r
}

func (r *Responder) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	logger.For(req.Context()).Debugf("mock api: %s %s", req.Method, req.URL.RequestURI())
	if err := sleep(req.Context(), r.latency); err != nil {
		return
	}
	r.mux.ServeHTTP(w, req)
}

// RoundTrip serves req in process, making the responder usable as an http.Client
// transport.
func (r *Responder) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := sleep(req.Context(), r.latency); err != nil {
		return nil, err
	}
	rec := httptest.NewRecorder()
	r.mux.ServeHTTP(rec, req)
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Books returns a copy of the dataset.
func (r *Responder) Books() []book.Book {
	return append([]book.Book(nil), r.books...)
}

func (r *Responder) listBooks(w http.ResponseWriter, req *http.Request) {
	httpx.JSONSuccess(w, req, r.list(req, book.ParseFilters(req.URL.Query()), nil))
}

func (r *Responder) booksByAuthor(w http.ResponseWriter, req *http.Request) {
	slug := req.PathValue("slug")
	httpx.JSONSuccess(w, req, r.list(req, book.ParseFilters(req.URL.Query()), func(b book.Book) bool {
		return book.Slugify(b.Author) == slug
	}))
}

func (r *Responder) booksBySubject(w http.ResponseWriter, req *http.Request) {
	f := book.ParseFilters(req.URL.Query())
	f.Subjects = req.PathValue("subject")
	httpx.JSONSuccess(w, req, r.list(req, f, nil))
}

// list filters, sorts and pages the dataset. filters_applied echoes the raw query.
func (r *Responder) list(req *http.Request, f book.Filters, extra func(book.Book) bool) book.BooksResponse {
	matched := book.Filter(r.books, f)
	if extra != nil {
		kept := matched[:0]
		for _, b := range matched {
			if extra(b) {
				kept = append(kept, b)
			}
		}
		matched = kept
	}
	book.SortBooks(matched, f.OrderBy, f.OrderDirection)

	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = book.BrowserPageSize
	}
	p := book.NewPagination(f.CurrentPage(), pageSize, len(matched))

	applied := map[string]any{}
	for k, v := range req.URL.Query() {
		if len(v) > 0 {
			applied[k] = v[0]
		}
	}
	return book.BooksResponse{
		Books:          book.Page(matched, p),
		Pagination:     p,
		FiltersApplied: applied,
	}
}

func (r *Responder) find(id string) (book.Book, bool) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return book.Book{}, false
	}
	for _, b := range r.books {
		if b.ID == n {
			return b, true
		}
	}
	return book.Book{}, false
}

func (r *Responder) getBook(w http.ResponseWriter, req *http.Request) {
	b, ok := r.find(req.PathValue("id"))
	if !ok {
		httpx.JSONError(w, req, http.StatusNotFound, "Not found", "Book with ID "+req.PathValue("id")+" not found")
		return
	}
	httpx.JSONSuccess(w, req, b)
}

func decode(req *http.Request) book.Book {
	var b book.Book
	_ = json.NewDecoder(req.Body).Decode(&b)
	return b
}

func (r *Responder) createBook(w http.ResponseWriter, req *http.Request) {
	b := decode(req)
	b.ID = CreatedID
	httpx.JSONCreated(w, req, book.MutationResponse{Message: "Book created successfully", Book: &b})
}

func (r *Responder) updateBook(w http.ResponseWriter, req *http.Request) {
	b := decode(req)
	b.ID, _ = strconv.ParseInt(req.PathValue("id"), 10, 64)
	httpx.JSONSuccess(w, req, book.MutationResponse{Message: "Book updated successfully", Book: &b})
}

func (r *Responder) deleteBook(w http.ResponseWriter, req *http.Request) {
	httpx.JSONSuccess(w, req, book.MessageResponse{Message: "Book deleted successfully"})
}

func deriveAuthors(books []book.Book) []book.Author {
	seen := map[string]bool{}
	var names []string
	for _, b := range books {
		if b.Author != "" && !seen[b.Author] {
			seen[b.Author] = true
			names = append(names, b.Author)
		}
	}
	sort.Strings(names)

	out := make([]book.Author, len(names))
	for i, n := range names {
		out[i] = book.Author{ID: int64(i + 1), Title: n, Slug: book.Slugify(n)}
	}
	return out
}

func (r *Responder) listAuthors(w http.ResponseWriter, req *http.Request) {
	httpx.JSONSuccess(w, req, r.authors)
}

func (r *Responder) getAuthor(w http.ResponseWriter, req *http.Request) {
	id, _ := strconv.ParseInt(req.PathValue("id"), 10, 64)
	for _, a := range r.authors {
		if a.ID == id {
			httpx.JSONSuccess(w, req, a)
			return
		}
	}
	httpx.JSONError(w, req, http.StatusNotFound, "Not found", "Author with ID "+req.PathValue("id")+" not found")
}

func (r *Responder) subjects() []string {
	raw := make([]string, len(r.books))
	for i, b := range r.books {
		raw[i] = b.Subjects
	}
	return book.SplitSubjects(raw)
}

func (r *Responder) publishers() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, b := range r.books {
		p := strings.TrimSpace(b.Publisher)
		if p != "" && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (r *Responder) listSubjects(w http.ResponseWriter, req *http.Request) {
	httpx.JSONSuccess(w, req, r.subjects())
}

func (r *Responder) listPublishers(w http.ResponseWriter, req *http.Request) {
	httpx.JSONSuccess(w, req, r.publishers())
}

func (r *Responder) filterOptions(w http.ResponseWriter, req *http.Request) {
	httpx.JSONSuccess(w, req, book.NewFilterOptions(r.subjects(), r.publishers()))
}
