// Package web serves the catalog browser: the filtered book list, the filters sidebar,
// pagination and the create/edit/delete forms. Every view reads its state from the URL.
package web

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"bookcatalog/internal/book"
	"bookcatalog/internal/filterstate"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/platform/libraryapi"
)

// API is the subset of the catalog client the web views need.
type API interface {
	ListBooksOrEmpty(ctx context.Context, f book.Filters) book.BooksResponse
	GetBook(ctx context.Context, id int64) (book.Book, error)
	CreateBook(ctx context.Context, b book.Book) (book.MutationResponse, error)
	UpdateBook(ctx context.Context, id int64, b book.Book) (book.MutationResponse, error)
	DeleteBook(ctx context.Context, id int64) (book.MessageResponse, error)
}

var _ API = (*libraryapi.Client)(nil)

type Handler struct {
	api          API
	tmpl         *template.Template
	sanitize     sanitizer
	publicAPIURL string
	mockMode     bool
}

type Option func(*Handler)

// WithPublicAPIURL sets the API origin advertised to the browser.
func WithPublicAPIURL(u string) Option {
	return func(h *Handler) { h.publicAPIURL = u }
}

// WithMockMode marks pages as served from fixture data.
func WithMockMode(on bool) Option {
	return func(h *Handler) { h.mockMode = on }
}

func NewHandler(api API, opts ...Option) *Handler {
	h := &Handler{api: api, tmpl: parseTemplates(), sanitize: newSanitizer()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts the browser routes.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /search", h.Search)
	mux.HandleFunc("POST /filters", h.ApplyFilters)
	mux.HandleFunc("POST /filters/clear", h.ClearFilters)
	mux.HandleFunc("GET /books/new", h.NewBook)
	mux.HandleFunc("POST /books", h.CreateBook)
	mux.HandleFunc("GET /books/{id}/edit", h.EditBook)
	mux.HandleFunc("POST /books/{id}", h.UpdateBook)
	mux.HandleFunc("POST /books/{id}/delete", h.DeleteBook)
	mux.HandleFunc("GET /healthz", h.Health)
}

func (h *Handler) page(title string, q url.Values) page {
	return page{Title: title, PublicAPIURL: h.publicAPIURL, MockMode: h.mockMode, Banner: bannerFrom(q)}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.For(r.Context()).WithError(err).Errorf("render %s", name)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// Index renders the book list for the filters in the URL. page_size is fixed.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := book.ParseFilters(q)
	f.PageSize = 0

	query := f
	query.PageSize = book.BrowserPageSize
	res := h.api.ListBooksOrEmpty(r.Context(), query)

	staged := f
	if staged.OrderDirection == "" {
		staged.OrderDirection = book.DirectionAsc
	}
	h.render(w, r, http.StatusOK, "index", newListView(h.page("Book Library", q), f, staged, res, h.sanitize))
}

// redirectNavigator turns a synchronizer commit into a See Other response.
type redirectNavigator struct {
	w    http.ResponseWriter
	r    *http.Request
	done bool
}

func (n *redirectNavigator) Navigate(_ context.Context, target string) error {
	http.Redirect(n.w, n.r, target, http.StatusSeeOther)
	n.done = true
	return nil
}

// filterState seeds filter state from the list URL the form was posted from.
func filterState(nav *redirectNavigator, returnQuery string) (*filterstate.Synchronizer, error) {
	return filterstate.New(nav, filterstate.RootPath+"?"+returnQuery)
}

// Search commits the title box. The page resets only when the title changed.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	nav := &redirectNavigator{w: w, r: r}
	state, err := filterState(nav, q.Get("return"))
	if err != nil {
		http.Redirect(w, r, filterstate.RootPath, http.StatusSeeOther)
		return
	}
	defer state.Close()

	_ = state.SetText(book.FieldTitle, q.Get(book.FieldTitle))
	_ = state.Flush(r.Context())
	if !nav.done {
		http.Redirect(w, r, state.URL(), http.StatusSeeOther)
	}
}

// ApplyFilters commits every sidebar field at once and returns to the first page.
func (h *Handler) ApplyFilters(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "Invalid data", "Malformed form")
		return
	}
	state, err := filterState(&redirectNavigator{w: w, r: r}, r.PostForm.Get("return"))
	if err != nil {
		http.Redirect(w, r, filterstate.RootPath, http.StatusSeeOther)
		return
	}
	defer state.Close()

	for _, field := range filterstate.SidebarFields {
		_ = state.Stage(field, r.PostForm.Get(field))
	}
	if state.Staged().OrderDirection == "" {
		_ = state.Stage(book.FieldOrderDirection, book.DirectionAsc)
	}
	_ = state.Apply(r.Context())
}

// ClearFilters drops every filter.
func (h *Handler) ClearFilters(w http.ResponseWriter, r *http.Request) {
	state, _ := filterstate.New(&redirectNavigator{w: w, r: r}, filterstate.RootPath)
	_ = state.Clear(r.Context())
}

func (h *Handler) NewBook(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "form", formView{
		page:    h.page("Add New Book", nil),
		Action:  "/books",
		Formats: book.Formats,
	})
}

func statusRedirect(w http.ResponseWriter, r *http.Request, key, value, message string) {
	v := url.Values{}
	v.Set(key, value)
	if message != "" {
		v.Set("message", message)
	}
	http.Redirect(w, r, "/?"+v.Encode(), http.StatusSeeOther)
}

// readForm validates the submitted book. On failure the form is rendered again with
// per-field messages and ok is false.
func (h *Handler) readForm(w http.ResponseWriter, r *http.Request, id int64, action, title string) (book.Book, bool) {
	if err := r.ParseForm(); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "Invalid data", "Malformed form")
		return book.Book{}, false
	}
	form := book.BookFormFromValues(r.PostForm)
	if errs := form.Validate(); len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "form", formView{
			page:    h.page(title, nil),
			BookID:  id,
			Action:  action,
			Form:    form,
			Errors:  formErrors(errs),
			Formats: book.Formats,
		})
		return book.Book{}, false
	}
	return form.Book(), true
}

func (h *Handler) CreateBook(w http.ResponseWriter, r *http.Request) {
	b, ok := h.readForm(w, r, 0, "/books", "Add New Book")
	if !ok {
		return
	}
	if _, err := h.api.CreateBook(r.Context(), b); err != nil {
		logger.For(r.Context()).WithError(err).Error("create book")
		statusRedirect(w, r, "error", "create-failed", err.Error())
		return
	}
	statusRedirect(w, r, "created", "true", "")
}

func bookID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) EditBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	b, err := h.api.GetBook(r.Context(), id)
	if err != nil {
		if libraryapi.IsNotFound(err) {
			http.NotFound(w, r)
			return
		}
		logger.For(r.Context()).WithError(err).WithField("book_id", id).Error("load book")
		statusRedirect(w, r, "error", "load-failed", err.Error())
		return
	}
	h.render(w, r, http.StatusOK, "form", formView{
		page:    h.page("Edit Book", nil),
		BookID:  id,
		Action:  "/books/" + strconv.FormatInt(id, 10),
		Form:    book.BookFormFromBook(b),
		Formats: book.Formats,
	})
}

func (h *Handler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	b, ok := h.readForm(w, r, id, "/books/"+strconv.FormatInt(id, 10), "Edit Book")
	if !ok {
		return
	}
	if _, err := h.api.UpdateBook(r.Context(), id, b); err != nil {
		logger.For(r.Context()).WithError(err).WithField("book_id", id).Error("update book")
		statusRedirect(w, r, "error", "update-failed", err.Error())
		return
	}
	statusRedirect(w, r, "updated", "true", "")
}

func (h *Handler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	id, ok := bookID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if _, err := h.api.DeleteBook(r.Context(), id); err != nil {
		logger.For(r.Context()).WithError(err).WithField("book_id", id).Error("delete book")
		statusRedirect(w, r, "error", "delete-failed", err.Error())
		return
	}
	statusRedirect(w, r, "deleted", "true", "")
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	httpx.JSONSuccess(w, r, map[string]string{"status": "ok"})
}
