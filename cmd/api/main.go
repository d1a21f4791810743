package main

import (
	"context"
	"flag"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"bookcatalog/internal/app"
	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/migrations"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply pending migrations before serving")
	flag.Parse()

	cfg := config.MustLoad()
	logger.Setup(cfg.LogLevel, cfg.LogJSON)

	db, err := app.OpenDatabase(context.Background(), cfg.DB)
	if err != nil {
		logrus.Fatalf("cannot open database: %v", err)
	}
	defer db.Close()
	logrus.WithFields(logrus.Fields{
		"driver": cfg.DB.Driver,
		"dsn":    app.RedactDSN(cfg.DB.DSN),
	}).Info("database connection OK")

	if *migrate || cfg.API.AutoMigrate {
		if err := migrations.Up(db.SQL, db.Dialect); err != nil {
			logrus.Fatalf("migrate: %v", err)
		}
	}

	handler, cleanup := newRouter(db, cfg.API)
	defer cleanup()

	if err := httpx.Serve(httpx.NewServer(cfg.API.Addr, handler), 10*time.Second); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}

// newRouter mounts the REST endpoints, probes and metrics behind the middleware chain.
// The returned func stops the rate limiter's eviction loop.
func newRouter(db *app.Database, cfg config.API) (http.Handler, func()) {
	svc := book.NewService(db.Repo)

	mux := http.NewServeMux()
	book.NewHTTPHandler(svc).Register(mux, "/api/v1")

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONSuccess(w, r, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	limiter := httpx.NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst)
	h := httpx.Chain(mux,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS, httpx.DefaultCSP),
		httpx.CORSMiddleware(cfg.AllowedOrigins),
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
		limiter.Middleware,
		httpx.MetricsMiddleware,
	)
	return h, limiter.Close
}
