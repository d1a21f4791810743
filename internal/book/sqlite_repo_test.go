package book

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bookcatalog/internal/testutil"
)

type sqliteRepoSuite struct {
	suite.Suite
	db   *sql.DB
	repo *SQLiteRepo
	ctx  context.Context
}

func TestSQLiteRepoSuite(t *testing.T) {
	suite.Run(t, new(sqliteRepoSuite))
}

func (s *sqliteRepoSuite) SetupTest() {
	db := testutil.SQLiteDB(s.T())

	s.db = db
	s.repo = NewSQLiteRepo(db, 3*time.Second)
	s.ctx = context.Background()

	for _, b := range []Book{
		{Title: "Clean Code", Author: "Robert C. Martin", Publisher: "Pearson", Pages: intPtr(464), Format: "Digital", Subjects: "Programming, Agile"},
		{Title: "The Clean Coder", Author: "Robert C. Martin", Publisher: "Pearson", Pages: intPtr(256), Format: "Physical", Subjects: "Career"},
		{Title: "Refactoring", Author: "Martin Fowler", Publisher: "Addison-Wesley", Pages: intPtr(448), Format: "Physical", Subjects: "Refactoring, Agile"},
		{Title: "100% Coverage", Author: "Anon"},
	} {
		_, err := s.repo.Create(s.ctx, b)
		s.Require().NoError(err)
	}
}

func (s *sqliteRepoSuite) TearDownTest() {
	s.db.Close()
}

func (s *sqliteRepoSuite) Test_List_FiltersAndCounts() {
	books, total, err := s.repo.List(s.ctx, Query{Filters: Filters{Title: "CLEAN"}, Limit: 10})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Len(books, 2)

	books, total, err = s.repo.List(s.ctx, Query{Filters: Filters{PagesMin: 300, Format: "Physical"}, Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal("Refactoring", books[0].Title)
}

func (s *sqliteRepoSuite) Test_List_EscapesLikeWildcards() {
	books, total, err := s.repo.List(s.ctx, Query{Filters: Filters{Title: "100%"}, Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Equal("100% Coverage", books[0].Title)

	_, total, err = s.repo.List(s.ctx, Query{Filters: Filters{Title: "%"}, Limit: 10})
	s.Require().NoError(err)
	s.Equal(1, total)
}

func (s *sqliteRepoSuite) Test_List_SortAndPage() {
	books, total, err := s.repo.List(s.ctx, Query{
		Filters: Filters{OrderBy: "pages", OrderDirection: DirectionDesc},
		Limit:   2,
		Offset:  1,
	})
	s.Require().NoError(err)
	s.Equal(4, total)
	s.Require().Len(books, 2)
	s.Equal("Refactoring", books[0].Title)
	s.Equal("The Clean Coder", books[1].Title)
}

func (s *sqliteRepoSuite) Test_List_SortMatchesSortBooks() {
	_, err := s.repo.Create(s.ctx, Book{Title: "agile notes", Author: "anon", Publisher: "indie"})
	s.Require().NoError(err)

	all, _, err := s.repo.List(s.ctx, Query{Limit: 10})
	s.Require().NoError(err)

	for _, col := range []string{"title", "author", "publisher", "pages"} {
		for _, dir := range []string{DirectionAsc, DirectionDesc} {
			want := append([]Book(nil), all...)
			SortBooks(want, col, dir)

			got, _, err := s.repo.List(s.ctx, Query{Filters: Filters{OrderBy: col, OrderDirection: dir}, Limit: 10})
			s.Require().NoError(err)
			s.Equal(titles(want), titles(got), "%s %s", col, dir)
		}
	}
}

func titles(books []Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}

func (s *sqliteRepoSuite) Test_List_ByAuthorSlug() {
	books, total, err := s.repo.List(s.ctx, Query{AuthorSlug: "robert-c-martin", Limit: 10})
	s.Require().NoError(err)
	s.Equal(2, total)
	s.Len(books, 2)
}

func (s *sqliteRepoSuite) Test_CRUD() {
	created, err := s.repo.Create(s.ctx, Book{Title: "Go", Author: "Rob Pike", Pages: intPtr(380)})
	s.Require().NoError(err)
	s.NotZero(created.ID)
	s.Equal(380, created.PageCount())

	created.Title = "The Go Programming Language"
	updated, err := s.repo.Update(s.ctx, created.ID, created)
	s.Require().NoError(err)
	s.Equal("The Go Programming Language", updated.Title)

	s.Require().NoError(s.repo.Delete(s.ctx, created.ID))

	_, err = s.repo.GetByID(s.ctx, created.ID)
	s.ErrorIs(err, ErrNotFound)
	s.ErrorIs(s.repo.Delete(s.ctx, created.ID), ErrNotFound)

	_, err = s.repo.Update(s.ctx, 9999, Book{Title: "x", Author: "y"})
	s.ErrorIs(err, ErrNotFound)
}

func (s *sqliteRepoSuite) Test_RejectsNonPositivePages() {
	_, err := s.repo.Create(s.ctx, Book{Title: "Bad", Author: "A", Pages: intPtr(-1)})
	s.Error(err)
}

func (s *sqliteRepoSuite) Test_Lookups() {
	_, err := s.db.Exec("INSERT INTO authors (title, slug) VALUES ('Kent Beck', 'kent-beck')")
	s.Require().NoError(err)

	authors, err := s.repo.ListAuthors(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(authors, 1)
	s.Equal("kent-beck", authors[0].Slug)

	a, err := s.repo.GetAuthor(s.ctx, authors[0].ID)
	s.Require().NoError(err)
	s.Equal("Kent Beck", a.Title)

	_, err = s.repo.GetAuthor(s.ctx, 404)
	s.ErrorIs(err, ErrNotFound)

	publishers, err := s.repo.Publishers(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Addison-Wesley", "Pearson"}, publishers)

	raw, err := s.repo.RawSubjects(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"Agile", "Career", "Programming", "Refactoring"}, SplitSubjects(raw))
}

func (s *sqliteRepoSuite) Test_ServiceOverSQLite() {
	svc := NewService(s.repo)

	res, err := svc.List(s.ctx, Filters{Author: "martin", PageSize: 2, Page: 2})
	s.Require().NoError(err)
	s.Equal(3, res.Pagination.TotalCount)
	s.Equal(2, res.Pagination.TotalPages)
	s.Len(res.Books, 1)
	s.True(res.Pagination.HasPrev)
	s.False(res.Pagination.HasNext)

	opts, err := svc.FilterOptions(s.ctx)
	s.Require().NoError(err)
	s.Contains(opts.AvailableSubjects, "Agile")
}
