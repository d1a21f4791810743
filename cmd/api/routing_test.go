package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/internal/app"
	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/migrations"
	"bookcatalog/internal/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ctx := context.Background()
	db, err := app.OpenDatabase(ctx, config.DB{
		Driver:       "sqlite",
		DSN:          filepath.Join(t.TempDir(), "api.db"),
		QueryTimeout: time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, migrations.Up(db.SQL, db.Dialect))

	h, cleanup := newRouter(db, config.API{
		AllowedOrigins: []string{"http://localhost:3000"},
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		MaxBodyBytes:   1 << 20,
	})
	t.Cleanup(cleanup)
	return h
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, testutil.NewRequest(method, target, body))
	return rec
}

func TestV1Routing(t *testing.T) {
	h := newTestRouter(t)

	t.Run("v1 prefix required", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/books", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("create then read", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/v1/books", book.Book{Title: "Go in Action", Author: "William Kennedy", Format: "Print"})
		require.Equal(t, http.StatusCreated, rec.Code)

		var created book.MutationResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
		require.NotNil(t, created.Book)

		rec = do(t, h, http.MethodGet, "/api/v1/books?author=kennedy", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list book.BooksResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
		require.Len(t, list.Books, 1)
		assert.Equal(t, created.Book.ID, list.Books[0].ID)
		assert.Equal(t, 1, list.Pagination.TotalCount)
	})

	t.Run("invalid page", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/v1/books?page=0", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing book", func(t *testing.T) {
		res := testutil.RecordHTTPResponse(do(t, h, http.MethodGet, "/api/v1/books/4242", nil))
		assert.Equal(t, http.StatusNotFound, res.Code)
		assert.NotEmpty(t, res.Body["error"])
		assert.NotEmpty(t, res.Body["message"])
	})
}

func TestProbes(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bookcatalog_http_requests_total")
}

func TestMiddlewareChain(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subjects", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(httpx.RequestIDHeader))
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}
