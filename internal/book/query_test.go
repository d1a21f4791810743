package book

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWhere_Postgres(t *testing.T) {
	where, args := postgresSQL.where(Query{
		Filters:    Filters{Title: "50%_off", Format: "Digital", PagesMin: 10, PagesMax: 20},
		AuthorSlug: "kent-beck",
	})

	assert.Equal(t,
		`WHERE 1=1 AND LOWER(title) LIKE LOWER($1) ESCAPE '\' AND format = $2 AND author_slug = $3 AND pages >= $4 AND pages <= $5`,
		where)
	assert.Equal(t, []any{`%50\%\_off%`, "Digital", "kent-beck", 10, 20}, args)
}

func TestWhere_SQLitePlaceholders(t *testing.T) {
	where, args := sqliteSQL.where(Query{Filters: Filters{Author: "martin", Subjects: "agile"}})

	assert.Equal(t, `WHERE 1=1 AND LOWER(author) LIKE LOWER(?) ESCAPE '\' AND LOWER(subjects) LIKE LOWER(?) ESCAPE '\'`, where)
	assert.Len(t, args, 2)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, "ORDER BY id ASC", orderClause(Filters{}))
	assert.Equal(t, "ORDER BY id ASC", orderClause(Filters{OrderBy: "title; DROP TABLE books"}))
	assert.Equal(t, "ORDER BY COALESCE(pages, 0) DESC, id ASC", orderClause(Filters{OrderBy: "pages", OrderDirection: DirectionDesc}))
	assert.Equal(t, "ORDER BY LOWER(title) ASC, id ASC", orderClause(Filters{OrderBy: "title"}))
	assert.Equal(t, "ORDER BY LOWER(COALESCE(publisher, '')) DESC, id ASC", orderClause(Filters{OrderBy: "publisher", OrderDirection: DirectionDesc}))
	assert.Equal(t, "ORDER BY id DESC", orderClause(Filters{OrderBy: "id", OrderDirection: DirectionDesc}))
}

func TestListSQL_AppendsPaging(t *testing.T) {
	countSQL, countArgs, dataSQL, dataArgs := postgresSQL.listSQL(Query{Filters: Filters{Format: "Digital"}, Limit: 12, Offset: 24})

	assert.Equal(t, "SELECT COUNT(*) FROM books WHERE 1=1 AND format = $1", countSQL)
	assert.Equal(t, []any{"Digital"}, countArgs)
	assert.Contains(t, dataSQL, "LIMIT $2 OFFSET $3")
	assert.Equal(t, []any{"Digital", 12, 24}, dataArgs)
}

func TestInsertAndUpdateSQL(t *testing.T) {
	cols := len(strings.Split(insertColumns, ","))
	assert.Len(t, writeArgs(Book{Title: "Go", Author: "Rob Pike"}), cols)

	insert := postgresSQL.insertSQL()
	assert.True(t, strings.HasPrefix(insert, "INSERT INTO books ("))
	assert.Contains(t, insert, "$14)")

	update := sqliteSQL.updateSQL()
	assert.Contains(t, update, "author_slug = ?")
	assert.True(t, strings.HasSuffix(update, "WHERE id = ?"))
	assert.Equal(t, cols+1, strings.Count(update, "?"))
}

func TestWriteArgs_SlugAndNulls(t *testing.T) {
	args := writeArgs(Book{Title: "Go", Author: "Rob Pike"})
	assert.Equal(t, "rob-pike", args[len(args)-1])
	assert.Nil(t, args[5])
}
