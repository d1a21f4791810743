package main

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"bookcatalog/internal/app"
	"bookcatalog/internal/config"
	"bookcatalog/internal/httpx"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/mockapi"
	"bookcatalog/internal/web"
)

func main() {
	cfg := config.MustLoad()
	logger.Setup(cfg.LogLevel, cfg.LogJSON)

	store, closeCache, err := app.NewCache(context.Background(), cfg.Cache)
	if err != nil {
		logrus.Fatalf("cache: %v", err)
	}
	defer closeCache()

	handler, err := newRouter(cfg, app.NewAPIClient(cfg.Web, store, cfg.Cache.Duration))
	if err != nil {
		logrus.Fatal(err)
	}

	if err := httpx.Serve(httpx.NewServer(cfg.Web.Addr, handler), 10*time.Second); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}

// newRouter mounts the browser views and the /api/ passthrough. In mock mode the
// passthrough is answered by the fixture responder instead of the backend.
func newRouter(cfg *config.Config, api web.API) (http.Handler, error) {
	mux := http.NewServeMux()
	web.NewHandler(api,
		web.WithPublicAPIURL(cfg.Web.PublicAPIURL),
		web.WithMockMode(cfg.Web.MockEnabled()),
	).Register(mux)

	if cfg.Web.MockEnabled() {
		mux.Handle(web.APIPrefix, mockapi.New(mockapi.WithLatency(cfg.Web.MockLatency)))
	} else {
		proxy, err := web.NewAPIProxy(cfg.Web.APIURL)
		if err != nil {
			return nil, err
		}
		mux.Handle(web.APIPrefix, proxy)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	return httpx.Chain(mux,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.API.EnableHSTS, httpx.DefaultCSP),
		httpx.RequestSizeLimitMiddleware(cfg.API.MaxBodyBytes),
		httpx.MetricsMiddleware,
	), nil
}
