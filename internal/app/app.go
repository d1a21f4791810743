// Package app builds the shared dependencies of the binaries from configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"bookcatalog/internal/book"
	"bookcatalog/internal/cache"
	"bookcatalog/internal/config"
	"bookcatalog/internal/migrations"
	"bookcatalog/internal/mockapi"
	"bookcatalog/internal/platform/libraryapi"
)

// NewCache returns the Redis store when an address is configured, else an in-process one.
func NewCache(ctx context.Context, cfg config.Cache) (cache.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return cache.NewMemoryStore(), func() {}, nil
	}
	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		return nil, nil, err
	}
	logrus.WithField("addr", cfg.RedisAddr).Info("api cache: redis")
	return cache.NewRedisStore(rdb, "bookcatalog:"), func() { _ = rdb.Close() }, nil
}

// NewAPIClient builds the catalog client. In mock mode requests never leave the process.
func NewAPIClient(cfg config.Web, store cache.Store, ttl time.Duration) *libraryapi.Client {
	opts := []libraryapi.Option{libraryapi.WithRateLimit(cfg.APIRateLimit)}
	if store != nil {
		opts = append(opts, libraryapi.WithCache(store, ttl))
	}
	if cfg.MockEnabled() {
		logrus.Info("api client: mock responder")
		opts = append(opts, libraryapi.WithTransport(mockapi.New(mockapi.WithLatency(cfg.MockLatency))))
	}
	return libraryapi.NewClient(cfg.APIURL, cfg.APITimeout, opts...)
}

// Database is an open backend database with the repository on top of it.
type Database struct {
	Repo    book.Repository
	SQL     *sql.DB
	Dialect string
	close   func()
}

func (d *Database) Close() {
	if d.close != nil {
		d.close()
	}
}

// Ping checks the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.SQL.PingContext(ctx)
}

// OpenDatabase connects to the configured driver and pings it.
func OpenDatabase(ctx context.Context, cfg config.DB) (*Database, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// modernc sqlite serializes writers; one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
		if err := ping(ctx, db.PingContext); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping sqlite %s: %w", cfg.DSN, err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		return &Database{
			Repo:    book.NewSQLiteRepo(db, cfg.QueryTimeout),
			SQL:     db,
			Dialect: migrations.DialectSQLite,
			close:   func() { _ = db.Close() },
		}, nil
	default:
		pool, err := pgxpool.New(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("create db pool: %w", err)
		}
		if err := ping(ctx, pool.Ping); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping database (%s): %w", RedactDSN(cfg.DSN), err)
		}
		db := stdlib.OpenDBFromPool(pool)
		return &Database{
			Repo:    book.NewPostgresRepo(pool, cfg.QueryTimeout),
			SQL:     db,
			Dialect: migrations.DialectPostgres,
			close: func() {
				_ = db.Close()
				pool.Close()
			},
		}, nil
	}
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return fn(ctx)
}

// RedactDSN hides the credentials of a URL-style DSN.
func RedactDSN(dsn string) string {
	const marker = "://"
	start := strings.Index(dsn, marker)
	if start < 0 {
		return dsn
	}
	start += len(marker)
	end := strings.Index(dsn[start:], "@")
	if end < 0 {
		return dsn
	}
	return dsn[:start] + "***" + dsn[start+end:]
}
