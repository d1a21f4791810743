// Package libraryapi is the client for the catalog REST API.
package libraryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"bookcatalog/internal/book"
	"bookcatalog/internal/cache"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/metrics"
)

// Endpoint paths relative to the base URL.
const (
	BooksPath         = "/api/v1/books"
	AuthorsPath       = "/api/v1/authors"
	SubjectsPath      = "/api/v1/subjects"
	PublishersPath    = "/api/v1/publishers"
	FilterOptionsPath = "/api/v1/filter-options"
)

// CacheTag groups every cached GET response. Mutations invalidate it.
const CacheTag = "api-data"

// Error is returned for non-2xx responses.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return "API Error: " + e.Message
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	cache      cache.Store
	cacheTTL   time.Duration
}

type Option func(*Client)

// WithTransport replaces the HTTP transport, for example with the mock responder.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithCache serves GET responses from store for ttl.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less disables the limit.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API origin this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func withQuery(path string, f book.Filters) string {
	return f.URL(path)
}

// ListBooks fetches one page of books. Empty filters add no query string.
func (c *Client) ListBooks(ctx context.Context, f book.Filters) (book.BooksResponse, error) {
	var res book.BooksResponse
	err := c.get(ctx, withQuery(BooksPath, f), &res)
	return res, err
}

// ListBooksOrEmpty is ListBooks for page rendering: failures are logged and an empty
// result is returned instead.
func (c *Client) ListBooksOrEmpty(ctx context.Context, f book.Filters) book.BooksResponse {
	res, err := c.ListBooks(ctx, f)
	if err != nil {
		logger.For(ctx).WithError(err).Error("failed to fetch books")
		return book.EmptyBooksResponse(f.PageSize)
	}
	if res.Books == nil {
		res.Books = []book.Book{}
	}
	return res
}

// BooksByAuthor lists the books of the author with slug.
func (c *Client) BooksByAuthor(ctx context.Context, slug string, f book.Filters) (book.BooksResponse, error) {
	var res book.BooksResponse
	err := c.get(ctx, withQuery(BooksPath+"/author/"+url.PathEscape(slug), f), &res)
	return res, err
}

// BooksBySubject lists the books tagged with subject.
func (c *Client) BooksBySubject(ctx context.Context, subject string, f book.Filters) (book.BooksResponse, error) {
	var res book.BooksResponse
	err := c.get(ctx, withQuery(BooksPath+"/subjects/"+url.PathEscape(subject), f), &res)
	return res, err
}

func bookPath(id int64) string {
	return BooksPath + "/" + strconv.FormatInt(id, 10)
}

func (c *Client) GetBook(ctx context.Context, id int64) (book.Book, error) {
	var b book.Book
	err := c.get(ctx, bookPath(id), &b)
	return b, err
}

func (c *Client) CreateBook(ctx context.Context, b book.Book) (book.MutationResponse, error) {
	var res book.MutationResponse
	err := c.mutate(ctx, http.MethodPost, BooksPath, b, &res)
	return res, err
}

// UpdateBook replaces the book with id.
func (c *Client) UpdateBook(ctx context.Context, id int64, b book.Book) (book.MutationResponse, error) {
	var res book.MutationResponse
	err := c.mutate(ctx, http.MethodPut, bookPath(id), b, &res)
	return res, err
}

func (c *Client) DeleteBook(ctx context.Context, id int64) (book.MessageResponse, error) {
	var res book.MessageResponse
	err := c.mutate(ctx, http.MethodDelete, bookPath(id), nil, &res)
	return res, err
}

func (c *Client) ListAuthors(ctx context.Context) ([]book.Author, error) {
	var out []book.Author
	err := c.get(ctx, AuthorsPath, &out)
	return out, err
}

func (c *Client) GetAuthor(ctx context.Context, id int64) (book.Author, error) {
	var a book.Author
	err := c.get(ctx, AuthorsPath+"/"+strconv.FormatInt(id, 10), &a)
	return a, err
}

func (c *Client) ListSubjects(ctx context.Context) ([]string, error) {
	var out []string
	err := c.get(ctx, SubjectsPath, &out)
	return out, err
}

func (c *Client) ListPublishers(ctx context.Context) ([]string, error) {
	var out []string
	err := c.get(ctx, PublishersPath, &out)
	return out, err
}

func (c *Client) FilterOptions(ctx context.Context) (book.FilterOptions, error) {
	var out book.FilterOptions
	err := c.get(ctx, FilterOptionsPath, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, endpoint string, target any) error {
	if c.cache != nil {
		b, ok, err := c.cache.Get(ctx, endpoint)
		switch {
		case err != nil:
			metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
			logger.For(ctx).WithError(err).Warn("api cache lookup failed")
		case ok:
			metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
			if err := json.Unmarshal(b, target); err == nil {
				return nil
			}
		default:
			metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
		}
	}

	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, CacheTag, endpoint, body, c.cacheTTL); err != nil {
			logger.For(ctx).WithError(err).Warn("api cache store failed")
		}
	}
	return nil
}

func (c *Client) mutate(ctx context.Context, method, endpoint string, payload, target any) error {
	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	body, err := c.do(ctx, method, endpoint, reqBody)
	if err != nil {
		return err
	}

	if c.cache != nil {
		if err := c.cache.InvalidateTag(ctx, CacheTag); err != nil {
			logger.For(ctx).WithError(err).Warn("api cache invalidation failed")
		}
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if id, ok := ctx.Value(logger.RequestIDKey).(string); ok && id != "" {
		req.Header.Set("X-Request-Id", id)
	}

	log := logger.For(ctx).WithFields(logrus.Fields{"method": method, "endpoint": endpoint})
	defer logger.Track(ctx, method+" "+endpoint)()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "network_error").Inc()
		log.WithError(err).Error("api request failed")
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues(method, "network_error").Inc()
		return nil, fmt.Errorf("%s %s: read body: %w", method, endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.APIRequestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
		apiErr := newError(resp.StatusCode, respBody)
		log.WithField("status", resp.StatusCode).Warn(apiErr.Error())
		return nil, apiErr
	}
	metrics.APIRequestsTotal.WithLabelValues(method, "ok").Inc()
	return respBody, nil
}

// newError prefers the server's {error, message} body and falls back to the HTTP status.
func newError(status int, body []byte) *Error {
	var payload book.APIError
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &Error{StatusCode: status, Message: payload.Message}
	}
	return &Error{StatusCode: status, Message: fmt.Sprintf("HTTP %d: %s", status, http.StatusText(status))}
}
