// Package rest exposes the listing and identity services over HTTP. Views
// answer with JSON view models; guarded routes redirect with 303 See Other.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/logging"
	"github.com/dmitrijs2005/rentfinder/internal/server/access"
	"github.com/dmitrijs2005/rentfinder/internal/server/config"
	"github.com/dmitrijs2005/rentfinder/internal/server/metrics"
	"github.com/dmitrijs2005/rentfinder/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const readHeaderTimeout = 10 * time.Second

type HTTPServer struct {
	address         string
	identity        *services.IdentityService
	listings        *services.ListingService
	metrics         *metrics.Metrics
	logger          logging.Logger
	corsOrigins     []string
	shutdownTimeout time.Duration
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, is *services.IdentityService, ls *services.ListingService,
	m *metrics.Metrics) *HTTPServer {
	return &HTTPServer{
		address:         cfg.HTTPAddress,
		identity:        is,
		listings:        ls,
		metrics:         m,
		logger:          l.With("module", "http_server"),
		corsOrigins:     cfg.CORSAllowedOrigins,
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

// Handler builds the router.
func (s *HTTPServer) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID, middleware.RealIP, s.loggerMiddleware, s.metricsMiddleware, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.health)
	r.Handle("/metrics", s.metrics.Handler())
	r.Get("/api/areas", s.areas)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.register)
		r.Post("/login", s.login)
		r.Post("/refresh", s.refresh)
		r.Post("/forgot-password", s.forgotPassword)
		r.Post("/reset-password", s.resetPassword)
		r.With(s.sessionMiddleware).Post("/logout", s.logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.With(s.gate(access.RouteHome)).Get(access.RouteHome, s.home)
		r.With(s.gate(access.RouteSearch)).Get(access.RouteSearch, s.search)
		r.With(s.gate(access.RouteOwner)).Get(access.RouteOwner, s.ownerDashboard)
		r.With(s.gate(access.RouteOwnerProfile)).Get(access.RouteOwnerProfile, s.ownerProfile)
		r.With(s.gate(access.RouteAddHouse)).Post(access.RouteAddHouse, s.addHouse)
		r.With(s.gate(access.RouteHouse)).Get(access.RouteHouse, s.houseDetail)
		r.With(s.gate(access.RouteHouseEdit)).Get(access.RouteHouseEdit, s.editHouseView)
		r.With(s.gate(access.RouteHouseEdit)).Put(access.RouteHouseEdit, s.updateHouse)
		r.With(s.gate(access.RouteHouseStatus)).Put(access.RouteHouseStatus, s.setStatus)
		r.With(s.gate(access.RouteHouseEdit)).Delete(access.RouteHouse, s.deleteHouse)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
