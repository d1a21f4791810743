package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"bookcatalog/internal/httpx"
	"bookcatalog/internal/logger"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register mounts the REST endpoints under prefix (for example "/api/v1").
func (h *HTTPHandler) Register(mux *http.ServeMux, prefix string) {
	mux.HandleFunc("GET "+prefix+"/books", h.List)
	mux.HandleFunc("POST "+prefix+"/books", h.Create)
	mux.HandleFunc("GET "+prefix+"/books/{id}", h.Get)
	mux.HandleFunc("PUT "+prefix+"/books/{id}", h.Update)
	mux.HandleFunc("DELETE "+prefix+"/books/{id}", h.Delete)
	mux.HandleFunc("GET "+prefix+"/books/author/{slug}", h.ByAuthor)
	mux.HandleFunc("GET "+prefix+"/books/subjects/{subject}", h.BySubject)
	mux.HandleFunc("GET "+prefix+"/authors", h.Authors)
	mux.HandleFunc("GET "+prefix+"/authors/{id}", h.Author)
	mux.HandleFunc("GET "+prefix+"/subjects", h.Subjects)
	mux.HandleFunc("GET "+prefix+"/publishers", h.Publishers)
	mux.HandleFunc("GET "+prefix+"/filter-options", h.FilterOptions)
}

// parseListFilters reads the listing query. page and page_size, when present, must be
// positive integers.
func parseListFilters(r *http.Request) (Filters, error) {
	query := r.URL.Query()
	for _, key := range []string{FieldPage, FieldPageSize} {
		raw := query.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Filters{}, fmt.Errorf("%w: %s must be >= 1", ErrInvalid, key)
		}
	}
	return ParseFilters(query), nil
}

func (h *HTTPHandler) writeList(w http.ResponseWriter, r *http.Request, res BooksResponse, err error) {
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			httpx.JSONError(w, r, http.StatusBadRequest, "Invalid parameters", err.Error())
			return
		}
		logger.For(r.Context()).WithError(err).Error("list books")
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error", "Failed to retrieve books")
		return
	}
	logger.For(r.Context()).Debugf("books retrieved: %d items, page %d", len(res.Books), res.Pagination.CurrentPage)
	httpx.JSONSuccess(w, r, res)
}

// List handles GET /books
// @Summary List books
// @Description Filtered, sorted and paginated listing
// @Tags books
// @Produce json
// @Param title query string false "Case-insensitive title substring"
// @Param author query string false "Case-insensitive author substring"
// @Param format query string false "Exact format"
// @Param pages_min query int false "Minimum pages"
// @Param pages_max query int false "Maximum pages"
// @Param order_by query string false "Sort column"
// @Param order_direction query string false "ASC or DESC"
// @Param page query int false "Page number" default(1)
// @Param page_size query int false "Items per page" default(10)
// @Success 200 {object} BooksResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilters(r)
	if err != nil {
		h.writeList(w, r, BooksResponse{}, err)
		return
	}
	res, err := h.service.List(r.Context(), f)
	h.writeList(w, r, res, err)
}

// ByAuthor handles GET /books/author/{slug}
func (h *HTTPHandler) ByAuthor(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilters(r)
	if err != nil {
		h.writeList(w, r, BooksResponse{}, err)
		return
	}
	res, err := h.service.ByAuthorSlug(r.Context(), r.PathValue("slug"), f)
	h.writeList(w, r, res, err)
}

// BySubject handles GET /books/subjects/{subject}
func (h *HTTPHandler) BySubject(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilters(r)
	if err != nil {
		h.writeList(w, r, BooksResponse{}, err)
		return
	}
	res, err := h.service.BySubject(r.Context(), r.PathValue("subject"), f)
	h.writeList(w, r, res, err)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

// Get handles GET /books/{id}
// @Summary Get book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} Book
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "Not found", fmt.Sprintf("Book with ID %s not found", r.PathValue("id")))
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeBookError(w, r, id, err, "Failed to retrieve book")
		return
	}
	httpx.JSONSuccess(w, r, b)
}

func decodeBook(r *http.Request) (Book, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return Book{}, fmt.Errorf("%w: Request must be JSON", ErrInvalid)
	}
	var b Book
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		return Book{}, fmt.Errorf("%w: Request body is required", ErrInvalid)
	}
	return b, nil
}

func (h *HTTPHandler) writeBookError(w http.ResponseWriter, r *http.Request, id int64, err error, failure string) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "Not found", fmt.Sprintf("Book with ID %d not found", id))
	case errors.Is(err, ErrInvalid):
		httpx.JSONError(w, r, http.StatusBadRequest, "Invalid data", err.Error())
	default:
		logger.For(r.Context()).WithError(err).WithField("book_id", id).Error(failure)
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error", failure)
	}
}

// Create handles POST /books
// @Summary Create book
// @Tags books
// @Accept json
// @Produce json
// @Success 201 {object} MutationResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, err := decodeBook(r)
	if err != nil {
		h.writeBookError(w, r, 0, err, "Failed to create book")
		return
	}

	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.writeBookError(w, r, 0, err, "Failed to create book")
		return
	}
	logger.For(r.Context()).WithField("book_id", created.ID).Info("book created")
	httpx.JSONCreated(w, r, MutationResponse{Message: "Book created successfully", Book: &created})
}

// Update handles PUT /books/{id}
// @Summary Update book
// @Tags books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} MutationResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "Not found", fmt.Sprintf("Book with ID %s not found", r.PathValue("id")))
		return
	}
	in, err := decodeBook(r)
	if err != nil {
		h.writeBookError(w, r, id, err, "Failed to update book")
		return
	}

	updated, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.writeBookError(w, r, id, err, "Failed to update book")
		return
	}
	logger.For(r.Context()).WithField("book_id", id).Info("book updated")
	httpx.JSONSuccess(w, r, MutationResponse{Message: "Book updated successfully", Book: &updated})
}

// Delete handles DELETE /books/{id}
// @Summary Delete book
// @Tags books
// @Param id path int true "Book ID"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "Not found", fmt.Sprintf("Book with ID %s not found", r.PathValue("id")))
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeBookError(w, r, id, err, "Failed to delete book")
		return
	}
	logger.For(r.Context()).WithField("book_id", id).Info("book deleted")
	httpx.JSONSuccess(w, r, MessageResponse{Message: "Book deleted successfully"})
}

// Authors handles GET /authors
func (h *HTTPHandler) Authors(w http.ResponseWriter, r *http.Request) {
	authors, err := h.service.Authors(r.Context())
	if err != nil {
		logger.For(r.Context()).WithError(err).Error("list authors")
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error", "Failed to retrieve authors")
		return
	}
	httpx.JSONSuccess(w, r, authors)
}

// Author handles GET /authors/{id}
func (h *HTTPHandler) Author(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, r, http.StatusNotFound, "Not found", fmt.Sprintf("Author with ID %s not found", r.PathValue("id")))
		return
	}
	a, err := h.service.Author(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, "Not found", fmt.Sprintf("Author with ID %d not found", id))
			return
		}
		logger.For(r.Context()).WithError(err).Error("get author")
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error", "Failed to retrieve author")
		return
	}
	httpx.JSONSuccess(w, r, a)
}

// Subjects handles GET /subjects
func (h *HTTPHandler) Subjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.service.Subjects(r.Context())
	if err != nil {
		logger.For(r.Context()).WithError(err).Error("list subjects")
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error", "Failed to retrieve subjects")
		return
	}
	httpx.JSONSuccess(w, r, subjects)
}

// Publishers handles GET /publishers
func (h *HTTPHandler) Publishers(w http.ResponseWriter, r *http.Request) {
	publishers, err := h.service.Publishers(r.Context())
	if err != nil {
		logger.For(r.Context()).WithError(err).Error("list publishers")
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error", "Failed to retrieve publishers")
		return
	}
	httpx.JSONSuccess(w, r, publishers)
}

// FilterOptions handles GET /filter-options
func (h *HTTPHandler) FilterOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		logger.For(r.Context()).WithError(err).Error("filter options")
		httpx.JSONError(w, r, http.StatusInternalServerError, "Internal server error", "Failed to retrieve filter options")
		return
	}
	httpx.JSONSuccess(w, r, opts)
}
