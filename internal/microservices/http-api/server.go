package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ttsbridge/internal/logging"
	"ttsbridge/internal/microservices/http-api/handler"
	"ttsbridge/internal/microservices/http-api/middleware"
)

// NewRouter wires the bridge routes: POST /api/save, GET /api/get, OPTIONS
// preflight on any path, and a 404 catch-all.
func NewRouter(blob handler.BlobStore, maxBodySize int64, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.Use(gin.Recovery())
	r.Use(logging.GinLogger(logger))
	r.Use(middleware.CORS())

	h := handler.NewBlobHandler(blob, maxBodySize, logger)
	api := r.Group("/api", middleware.CORSPolicy())
	h.RegisterRoutes(api)

	r.NoRoute(handler.NotFound)
	return r
}

// Server owns the listener and http.Server for the bridge endpoints.
type Server struct {
	// ListenAddr is the TCP address to bind (e.g. "127.0.0.1:8010").
	ListenAddr string

	Logger *slog.Logger

	handler    http.Handler
	listener   net.Listener
	httpServer *http.Server
	done       chan struct{}
}

func NewServer(listenAddr string, blob handler.BlobStore, maxBodySize int64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ListenAddr: listenAddr,
		Logger:     logger,
		handler:    NewRouter(blob, maxBodySize, logger),
	}
}

// Start binds the listener and serves in a background goroutine. A bind
// failure is returned to the caller; it is the only startup error.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to start HTTP bridge on %s: %w", s.ListenAddr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		// net/http runs each accepted connection on its own goroutine
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("http_bridge_serve_failed", "error", err)
		}
	}()

	s.Logger.Info("http_bridge_started", "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Shutdown stops accepting and waits for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	err := s.httpServer.Shutdown(ctx)
	<-s.done
	s.Logger.Info("http_bridge_stopped")
	return err
}
