// Package api exposes the property listings over HTTP.
//
// Only GET /properties goes through the response cache; the detail and
// write routes always reach the service directly.
package api

import (
	"net/http"

	"github.com/Sternrassler/property-listings/pkg/cache"
	"github.com/Sternrassler/property-listings/pkg/metrics"
	"github.com/Sternrassler/property-listings/pkg/properties"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// RouterDeps holds the dependencies needed by the HTTP API router.
type RouterDeps struct {
	Service   *properties.Service
	Responses *cache.ResponseCache // optional; disables list caching when nil
	Reporter  *metrics.Reporter    // optional; disables /cache/metrics when nil
	Checks    []ReadinessCheck     // dependencies pinged by /ready
	Logger    zerolog.Logger
}

// NewRouter creates an http.Handler with all API routes.
func NewRouter(deps RouterDeps) http.Handler {
	if deps.Service == nil {
		panic("property service cannot be nil")
	}

	mux := http.NewServeMux()

	ph := &propertyHandler{svc: deps.Service}
	var list http.Handler = http.HandlerFunc(ph.list)
	if deps.Responses != nil {
		list = deps.Responses.Middleware(nil)(list)
	}
	mux.Handle("GET /properties", list)
	mux.HandleFunc("POST /properties", ph.create)
	mux.HandleFunc("GET /properties/{id}", ph.get)
	mux.HandleFunc("PUT /properties/{id}", ph.update)
	mux.HandleFunc("DELETE /properties/{id}", ph.delete)

	hh := &healthHandler{checks: deps.Checks}
	mux.HandleFunc("GET /health", hh.health)
	mux.HandleFunc("GET /ready", hh.ready)

	if deps.Reporter != nil {
		mh := &metricsHandler{reporter: deps.Reporter}
		mux.HandleFunc("GET /cache/metrics", mh.snapshot)
	}
	mux.Handle("GET /metrics", promhttp.Handler())

	var handler http.Handler = mux
	handler = metricsMiddleware(handler)
	handler = loggingMiddleware(handler)
	handler = recoverMiddleware(handler)
	handler = requestIDMiddleware(deps.Logger)(handler)

	return handler
}
