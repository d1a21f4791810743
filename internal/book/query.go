package book

import (
	"fmt"
	"strings"
)

// selectColumns is the projection shared by every book query. Nullable text columns are
// coalesced so both drivers scan into plain strings.
const selectColumns = `id, title, author, author_id, COALESCE(author_bio, ''), COALESCE(authors, ''),
	COALESCE(publisher, ''), COALESCE(synopsis, ''), COALESCE(subjects, ''), pages,
	COALESCE(format, ''), COALESCE(price, ''), isbn13, COALESCE(isbn10, '')`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (Book, error) {
	var b Book
	err := row.Scan(
		&b.ID, &b.Title, &b.Author, &b.AuthorID, &b.Biography, &b.Authors,
		&b.Publisher, &b.Synopsis, &b.Subjects, &b.Pages,
		&b.Format, &b.Price, &b.ISBN13, &b.ISBN10,
	)
	return b, err
}

// sqlBuilder renders listing SQL for one placeholder style.
type sqlBuilder struct {
	placeholder func(n int) string
}

var (
	postgresSQL = sqlBuilder{placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
	sqliteSQL   = sqlBuilder{placeholder: func(int) string { return "?" }}
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// where builds the WHERE clause for q. It mirrors Filters.Matches: case-insensitive
// substring for text fields, exact format, inclusive pages range.
func (s sqlBuilder) where(q Query) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	text := []struct {
		col, value string
	}{
		{"title", q.Filters.Title},
		{"author", q.Filters.Author},
		{"publisher", q.Filters.Publisher},
		{"subjects", q.Filters.Subjects},
		{"synopsis", q.Filters.Synopsis},
	}
	for _, t := range text {
		if t.value == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf(`LOWER(%s) LIKE LOWER(%s) ESCAPE '\'`, t.col, s.placeholder(argn)))
		args = append(args, "%"+likeEscaper.Replace(t.value)+"%")
		argn++
	}

	if q.Filters.Format != "" {
		clauses = append(clauses, fmt.Sprintf("format = %s", s.placeholder(argn)))
		args = append(args, q.Filters.Format)
		argn++
	}

	if q.AuthorSlug != "" {
		clauses = append(clauses, fmt.Sprintf("author_slug = %s", s.placeholder(argn)))
		args = append(args, q.AuthorSlug)
		argn++
	}

	if q.Filters.PagesMin > 0 {
		clauses = append(clauses, fmt.Sprintf("pages >= %s", s.placeholder(argn)))
		args = append(args, q.Filters.PagesMin)
		argn++
	}

	if q.Filters.PagesMax > 0 {
		clauses = append(clauses, fmt.Sprintf("pages <= %s", s.placeholder(argn)))
		args = append(args, q.Filters.PagesMax)
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func orderClause(f Filters) string {
	if !IsSortColumn(f.OrderBy) {
		return "ORDER BY id ASC"
	}
	dir := DirectionAsc
	if f.OrderDirection == DirectionDesc {
		dir = DirectionDesc
	}
	if f.OrderBy == "id" {
		return "ORDER BY id " + dir
	}
	return fmt.Sprintf("ORDER BY %s %s, id ASC", sortExpr[f.OrderBy], dir)
}

// sortExpr orders like SortBooks: text case-insensitively, missing values as empty or zero.
var sortExpr = map[string]string{
	"title":     "LOWER(title)",
	"author":    "LOWER(author)",
	"publisher": "LOWER(COALESCE(publisher, ''))",
	"pages":     "COALESCE(pages, 0)",
}

// listSQL returns the count and page queries plus their arguments.
func (s sqlBuilder) listSQL(q Query) (countSQL string, countArgs []any, dataSQL string, dataArgs []any) {
	where, args := s.where(q)
	countSQL = fmt.Sprintf("SELECT COUNT(*) FROM books %s", where)

	n := len(args) + 1
	dataSQL = fmt.Sprintf(`
		SELECT %s
		FROM books
		%s
		%s
		LIMIT %s OFFSET %s`,
		selectColumns, where, orderClause(q.Filters), s.placeholder(n), s.placeholder(n+1))

	dataArgs = append([]any{}, args...)
	dataArgs = append(dataArgs, q.Limit, q.Offset)
	return countSQL, args, dataSQL, dataArgs
}

// writeArgs returns the column values written by create and update, in insertColumns order.
func writeArgs(b Book) []any {
	return []any{
		b.Title, b.Author, b.AuthorID, nullable(b.Biography), nullable(b.Authors),
		nullable(b.Publisher), nullable(b.Synopsis), nullable(b.Subjects), b.Pages,
		nullable(b.Format), nullable(b.Price), b.ISBN13, nullable(b.ISBN10),
		nullable(Slugify(b.Author)),
	}
}

const insertColumns = `title, author, author_id, author_bio, authors, publisher, synopsis,
	subjects, pages, format, price, isbn13, isbn10, author_slug`

func (s sqlBuilder) insertSQL() string {
	ph := make([]string, len(strings.Split(insertColumns, ",")))
	for i := range ph {
		ph[i] = s.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO books (%s) VALUES (%s)", insertColumns, strings.Join(ph, ", "))
}

func (s sqlBuilder) updateSQL() string {
	cols := strings.Split(insertColumns, ",")
	sets := make([]string, len(cols))
	for i, c := range cols {
		sets[i] = fmt.Sprintf("%s = %s", strings.TrimSpace(c), s.placeholder(i+1))
	}
	return fmt.Sprintf("UPDATE books SET %s WHERE id = %s", strings.Join(sets, ", "), s.placeholder(len(cols)+1))
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
