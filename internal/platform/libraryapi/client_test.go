package libraryapi

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"bookcatalog/internal/book"
	"bookcatalog/internal/cache"
)

const baseURL = "http://catalog.test"

type clientSuite struct {
	suite.Suite
	client *Client
	store  *cache.MemoryStore
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(clientSuite))
}

func (s *clientSuite) SetupTest() {
	s.store = cache.NewMemoryStore()
	s.client = NewClient(baseURL+"/", 5*time.Second, WithCache(s.store, time.Minute))
}

func (s *clientSuite) TearDownTest() {
	gock.Off()
}

func noQuery(req *http.Request, _ *gock.Request) (bool, error) {
	return req.URL.RawQuery == "", nil
}

func (s *clientSuite) Test_ListBooks_NoQuerySuffixWhenEmpty() {
	gock.New(baseURL).
		Get(BooksPath).
		AddMatcher(noQuery).
		Reply(200).
		JSON(map[string]any{
			"books":           []map[string]any{{"id": 1, "title": "Clean Code", "author": "Robert C. Martin"}},
			"pagination":      map[string]any{"current_page": 1, "page_size": 10, "total_count": 1, "total_pages": 1},
			"filters_applied": map[string]any{},
		})

	res, err := s.client.ListBooks(context.Background(), book.Filters{})

	s.Require().NoError(err)
	s.Len(res.Books, 1)
	s.Equal("Clean Code", res.Books[0].Title)
	s.Equal(1, res.Pagination.TotalCount)
	s.True(gock.IsDone())
}

func (s *clientSuite) Test_ListBooks_SendsOnlySetFilters() {
	gock.New(baseURL).
		Get(BooksPath).
		MatchParam("title", "^clean$").
		MatchParam("pages_min", "^100$").
		MatchParam("page", "^2$").
		AddMatcher(func(req *http.Request, _ *gock.Request) (bool, error) {
			q := req.URL.Query()
			return !q.Has("author") && !q.Has("format") && !q.Has("pages_max"), nil
		}).
		Reply(200).
		JSON(book.EmptyBooksResponse(10))

	_, err := s.client.ListBooks(context.Background(), book.Filters{Title: "clean", PagesMin: 100, Page: 2})

	s.Require().NoError(err)
	s.True(gock.IsDone())
}

func (s *clientSuite) Test_ErrorMessageFromBody() {
	gock.New(baseURL).
		Get(BooksPath + "/42").
		Reply(404).
		JSON(map[string]string{"error": "Not found", "message": "Book with ID 42 not found"})

	_, err := s.client.GetBook(context.Background(), 42)

	s.Require().Error(err)
	s.Equal("API Error: Book with ID 42 not found", err.Error())
	s.True(IsNotFound(err))

	var apiErr *Error
	s.Require().True(errors.As(err, &apiErr))
	s.Equal(http.StatusNotFound, apiErr.StatusCode)
}

func (s *clientSuite) Test_ErrorMessageFallsBackToStatus() {
	gock.New(baseURL).
		Get(BooksPath).
		Reply(500).
		BodyString("<html>upstream exploded</html>")

	_, err := s.client.ListBooks(context.Background(), book.Filters{})

	s.Require().Error(err)
	s.Equal("API Error: HTTP 500: Internal Server Error", err.Error())
	s.False(IsNotFound(err))
}

func (s *clientSuite) Test_ListBooksOrEmpty_Degrades() {
	gock.New(baseURL).
		Get(BooksPath).
		ReplyError(errors.New("connection refused"))

	res := s.client.ListBooksOrEmpty(context.Background(), book.Filters{PageSize: 12})

	s.Empty(res.Books)
	s.NotNil(res.Books)
	s.Equal(1, res.Pagination.CurrentPage)
	s.Equal(12, res.Pagination.PageSize)
	s.Zero(res.Pagination.TotalCount)
}

func (s *clientSuite) Test_CreateBook_SendsJSON() {
	gock.New(baseURL).
		Post(BooksPath).
		MatchHeader("Content-Type", "application/json").
		BodyString(`"title":"Go"`).
		Reply(201).
		JSON(map[string]any{"message": "Book created successfully", "book": map[string]any{"id": 7, "title": "Go", "author": "Pike"}})

	res, err := s.client.CreateBook(context.Background(), book.Book{Title: "Go", Author: "Pike"})

	s.Require().NoError(err)
	s.Equal("Book created successfully", res.Message)
	s.Require().NotNil(res.Book)
	s.Equal(int64(7), res.Book.ID)
	s.True(gock.IsDone())
}

func (s *clientSuite) Test_GetIsCachedUntilMutation() {
	gock.New(baseURL).
		Get(SubjectsPath).
		Times(1).
		Reply(200).
		JSON([]string{"Programming"})

	for i := 0; i < 2; i++ {
		subjects, err := s.client.ListSubjects(context.Background())
		s.Require().NoError(err)
		s.Equal([]string{"Programming"}, subjects)
	}
	s.True(gock.IsDone())
	s.Equal(1, s.store.Len())

	gock.New(baseURL).
		Delete(BooksPath + "/1").
		Reply(200).
		JSON(map[string]string{"message": "Book deleted successfully"})

	res, err := s.client.DeleteBook(context.Background(), 1)
	s.Require().NoError(err)
	s.Equal("Book deleted successfully", res.Message)
	s.Zero(s.store.Len())
}

func (s *clientSuite) Test_FailedMutationKeepsCache() {
	s.Require().NoError(s.store.Set(context.Background(), CacheTag, SubjectsPath, []byte(`["x"]`), time.Minute))

	gock.New(baseURL).
		Put(BooksPath + "/1").
		Reply(400).
		JSON(map[string]string{"error": "Invalid data", "message": "missing required field: title"})

	_, err := s.client.UpdateBook(context.Background(), 1, book.Book{})
	s.Require().Error(err)
	s.Equal("API Error: missing required field: title", err.Error())
	s.Equal(1, s.store.Len())
}

func TestNewClient_TrimsBaseURL(t *testing.T) {
	c := NewClient("http://localhost:5000/", time.Second)
	assert.Equal(t, "http://localhost:5000", c.BaseURL())
}

func TestWithRateLimit(t *testing.T) {
	c := NewClient(baseURL, time.Second, WithRateLimit(0))
	require.NoError(t, c.limiter.Wait(context.Background()))

	c = NewClient(baseURL, time.Second, WithRateLimit(2))
	assert.Equal(t, 3, c.limiter.Burst())
}
