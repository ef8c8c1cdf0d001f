// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tarunkumar2005/fomi/internal/api"
	"github.com/tarunkumar2005/fomi/internal/api/authz"
	"github.com/tarunkumar2005/fomi/internal/api/forms"
	"github.com/tarunkumar2005/fomi/internal/api/themes"
	"github.com/tarunkumar2005/fomi/internal/config"
	"github.com/tarunkumar2005/fomi/internal/ratelimit"
)

type serverDeps struct {
	// limiter is nil when rate limiting is disabled.
	limiter *ratelimit.Limiter
	// registry is nil when metrics are disabled.
	registry *prometheus.Registry
}

func newServer(cfg *config.Config, deps serverDeps) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      newHandler(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func newHandler(deps serverDeps) http.Handler {
	router := http.NewServeMux()

	middleware := []api.Middleware{}
	if deps.limiter != nil {
		middleware = append(middleware, deps.limiter.Middleware(func(r *http.Request) string {
			return authz.UserIDFromContext(r.Context())
		}))
	}
	// Applied inside out: the request id is set first, the limiter runs last.
	middleware = append(middleware,
		api.WithAuth,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
		api.WithContentType,
	)
	handler := api.ChainMiddleware(router, middleware...)

	// Register routes
	registerRoutes(router, deps)

	return handler
}

func registerRoutes(mux *http.ServeMux, deps serverDeps) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if deps.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{}))
	}

	// Form routes
	mux.HandleFunc("POST /api/v1/forms", forms.HandleFormCreate)
	mux.HandleFunc("GET /api/v1/forms/{id}", forms.HandleFormDetail)
	mux.HandleFunc("GET /api/v1/forms/{id}/theme", forms.HandleFormTheme)
	mux.HandleFunc("PUT /api/v1/forms/{id}/theme", forms.HandleApplyTheme)
	mux.HandleFunc("PATCH /api/v1/forms/{id}/theme", forms.HandleUpdateTheme)
	mux.HandleFunc("POST /api/v1/forms/{id}/theme/save", forms.HandleSaveTheme)
	mux.HandleFunc("POST /api/v1/forms/{id}/theme/reset", forms.HandleResetTheme)

	// Theme library routes
	mux.HandleFunc("GET /api/v1/themes", themes.HandleThemesList)
	mux.HandleFunc("POST /api/v1/themes", themes.HandleThemeCreate)
	mux.HandleFunc("POST /api/v1/themes/import", themes.HandleThemeImport)
	mux.HandleFunc("GET /api/v1/themes/{id}", themes.HandleThemeDetail)
	mux.HandleFunc("PUT /api/v1/themes/{id}", themes.HandleThemeUpdate)
	mux.HandleFunc("DELETE /api/v1/themes/{id}", themes.HandleThemeDelete)
	mux.HandleFunc("POST /api/v1/themes/{id}/duplicate", themes.HandleThemeDuplicate)
	mux.HandleFunc("GET /api/v1/themes/{id}/export", themes.HandleThemeExport)
}
