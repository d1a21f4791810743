package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteRepo stores books in SQLite through database/sql (driver "sqlite").
type SQLiteRepo struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteRepo(db *sql.DB, timeout time.Duration) *SQLiteRepo {
	return &SQLiteRepo{db: db, timeout: timeout}
}

func (r *SQLiteRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *SQLiteRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	countSQL, countArgs, dataSQL, dataArgs := sqliteSQL.listSQL(q)

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, dataSQL, dataArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, b)
	}
	return out, total, rows.Err()
}

func (r *SQLiteRepo) GetByID(ctx context.Context, id int64) (Book, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	b, err := scanBook(r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT %s FROM books WHERE id = ?", selectColumns), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *SQLiteRepo) Create(ctx context.Context, b Book) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(timeoutCtx, sqliteSQL.insertSQL(), writeArgs(b)...)
	if err != nil {
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Book{}, fmt.Errorf("insert book: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteRepo) Update(ctx context.Context, id int64, b Book) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	args := append(writeArgs(b), id)
	res, err := r.db.ExecContext(timeoutCtx, sqliteSQL.updateSQL(), args...)
	if err != nil {
		return Book{}, fmt.Errorf("update book %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Book{}, ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *SQLiteRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM books WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete book %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepo) ListAuthors(ctx context.Context) ([]Author, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, "SELECT id, title, slug, COALESCE(biography, '') FROM authors ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	out := []Author{}
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Title, &a.Slug, &a.Biography); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepo) GetAuthor(ctx context.Context, id int64) (Author, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	var a Author
	err := r.db.QueryRowContext(ctx, "SELECT id, title, slug, COALESCE(biography, '') FROM authors WHERE id = ?", id).
		Scan(&a.ID, &a.Title, &a.Slug, &a.Biography)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Author{}, ErrNotFound
		}
		return Author{}, err
	}
	return a, nil
}

func (r *SQLiteRepo) RawSubjects(ctx context.Context) ([]string, error) {
	return r.strings(ctx, "SELECT DISTINCT subjects FROM books WHERE subjects IS NOT NULL AND subjects <> ''")
}

func (r *SQLiteRepo) Publishers(ctx context.Context) ([]string, error) {
	return r.strings(ctx, "SELECT DISTINCT publisher FROM books WHERE publisher IS NOT NULL AND publisher <> '' ORDER BY publisher")
}

func (r *SQLiteRepo) strings(ctx context.Context, query string) ([]string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
