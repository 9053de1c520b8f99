// Package ipc exposes the host application to out-of-process UIs: commands
// over HTTP and events over a websocket.
package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ttsbridge/internal/host"
	"ttsbridge/internal/logging"
	"ttsbridge/internal/microservices/http-api/middleware"
	"ttsbridge/internal/microservices/websocket"
)

// NewRouter wires POST /invoke/:command, GET /commands and the GET /events
// websocket.
func NewRouter(app Invoker, hub *websocket.Hub, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logging.GinLogger(logger))
	r.Use(middleware.CORS())

	h := NewInvokeHandler(app, logger)
	h.RegisterRoutes(&r.RouterGroup)
	r.GET("/events", websocket.WSHandler(hub))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, InvokeResponse{Error: "not found"})
	})
	return r
}

// Server is the host IPC endpoint. It forwards every host event to the
// websocket hub for as long as it runs.
type Server struct {
	ListenAddr string
	Logger     *slog.Logger

	app        *host.App
	hub        *websocket.Hub
	handler    http.Handler
	listener   net.Listener
	httpServer *http.Server
	done       chan struct{}
	stopHub    context.CancelFunc
	unlisten   func()
}

func NewServer(listenAddr string, app *host.App, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	hub := websocket.NewHub(logger)
	return &Server{
		ListenAddr: listenAddr,
		Logger:     logger,
		app:        app,
		hub:        hub,
		handler:    NewRouter(app, hub, logger),
	}
}

func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to start host IPC on %s: %w", s.ListenAddr, err)
	}
	s.listener = listener

	hubCtx, cancel := context.WithCancel(context.Background())
	s.stopHub = cancel
	go s.hub.Run(hubCtx)
	s.unlisten = s.app.Listen(host.AnyEvent, s.forward)

	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.done = make(chan struct{})
	go func() {
		defer close(s.done)
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("host_ipc_serve_failed", "error", err)
		}
	}()

	s.Logger.Info("host_ipc_started", "addr", listener.Addr().String())
	return nil
}

// forward runs on the host dispatch goroutine.
func (s *Server) forward(ev host.Event) {
	data, err := websocket.NewEventMessage(ev.Name, ev.Payload, ev.Timestamp).ToJSON()
	if err != nil {
		return
	}
	s.hub.Publish(data)
}

func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Hub exposes the event hub, mainly for tests.
func (s *Server) Hub() *websocket.Hub {
	return s.hub
}

// Shutdown detaches from the host, closes websocket subscribers (hijacked
// connections are not covered by http.Server.Shutdown) and then drains
// in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	s.unlisten()
	s.stopHub()
	<-s.hub.Done()

	err := s.httpServer.Shutdown(ctx)
	<-s.done
	s.Logger.Info("host_ipc_stopped")
	return err
}
