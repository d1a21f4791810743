package web

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"

	"bookcatalog/internal/httpx"
	"bookcatalog/internal/logger"
)

// APIPrefix is forwarded untouched to the catalog API.
const APIPrefix = "/api/"

// NewAPIProxy forwards browser calls under APIPrefix to the API at target.
func NewAPIProxy(target string) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", target)
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = u.Host
		if id := httpx.RequestIDFrom(r); id != "" {
			r.Header.Set(httpx.RequestIDHeader, id)
		}
	}
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logger.For(r.Context()).WithError(err).Warn("api proxy failed")
		httpx.JSONError(w, r, http.StatusBadGateway, "Bad gateway", "Catalog API is unavailable")
	}
	return proxy, nil
}
