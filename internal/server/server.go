// Package server exposes the preset library and compiler over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"synthgraph/internal/compiler"
	"synthgraph/internal/domain"
	"synthgraph/internal/library"
)

// Server is the HTTP front end. It holds the loaded library, the compiler,
// and the fallback renderer; all of them are read-only after construction.
type Server struct {
	port     int
	router   *chi.Mux
	log      *slog.Logger
	lib      *library.Library
	compiler *compiler.Compiler
	renderer domain.Renderer
}

func New(port int, lib *library.Library, comp *compiler.Compiler, renderer domain.Renderer, log *slog.Logger) *Server {
	s := &Server{
		port:     port,
		router:   chi.NewRouter(),
		log:      log,
		lib:      lib,
		compiler: comp,
		renderer: renderer,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/health", s.handleHealth)
	r.Get("/api/presets", s.handlePresets)
	r.Get("/api/categories", s.handleCategories)
	r.Post("/api/search", s.handleSearch)
	r.Post("/api/compile", s.handleCompile)
	r.Post("/api/render", s.handleRender)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		s.log.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			s.log.Error("shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	s.log.Info("server starting", slog.Int("port", s.port), slog.String("library", s.lib.Summary()))

	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	<-done
	return nil
}
