// Package server exposes the board over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/twiced-technology-gmbh/eisen/internal/board"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Server is the HTTP front end of a board.
type Server struct {
	board     *board.Board
	boardName string
	logger    *slog.Logger
	router    *gin.Engine
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithBoardName sets the name reported by the index endpoint.
func WithBoardName(name string) Option {
	return func(s *Server) { s.boardName = name }
}

// New builds the router for b.
func New(b *board.Board, opts ...Option) *Server {
	s := &Server{board: b, logger: slog.Default(), boardName: "eisen"}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(s.logger))

	router.GET("/", s.handleIndex)
	router.GET("/healthz", s.handleHealth)
	router.GET("/stats", s.handleStats)

	tasks := router.Group("/tasks")
	{
		tasks.GET("", s.handleList)
		tasks.POST("", s.handleCreate)
		tasks.GET("/search", s.handleSearch)
		tasks.POST("/refresh", s.handleRefresh)
		tasks.GET("/quadrant/:quadrant", s.handleListByQuadrant)
		tasks.GET("/status/:status", s.handleListByStatus)
		tasks.GET("/:id", s.handleGet)
		tasks.PATCH("/:id", s.handleUpdate)
		tasks.PUT("/:id", s.handleUpdate)
		tasks.DELETE("/:id", s.handleDelete)
		tasks.POST("/:id/complete", s.handleComplete)
		tasks.POST("/:id/reopen", s.handleReopen)
	}

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
