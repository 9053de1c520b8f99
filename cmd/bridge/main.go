package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"ttsbridge/internal/config"
	"ttsbridge/internal/host"
	"ttsbridge/internal/logging"
	httpapi "ttsbridge/internal/microservices/http-api"
	"ttsbridge/internal/microservices/http-api/store"
	"ttsbridge/internal/microservices/ipc"
	"ttsbridge/internal/microservices/tcp"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Setup structured logging
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("starting_bridge",
		"env", cfg.GoEnv,
		"http_addr", cfg.Addr(cfg.HTTPPort),
		"ipc_addr", cfg.Addr(cfg.IPCPort),
		"tts_send_addr", cfg.Addr(cfg.SendPort),
		"tts_receive_addr", cfg.Addr(cfg.ReceivePort),
	)

	// HTTP bridge over the shared blob
	blob := store.NewSharedBlob()
	bridgeServer := httpapi.NewServer(cfg.Addr(cfg.HTTPPort), blob, cfg.MaxBodySize, logger)
	if err := bridgeServer.Start(); err != nil {
		logger.Error("http_bridge_start_failed", "error", err)
		os.Exit(1)
	}

	// Host application and its event loop
	app := host.New(cfg.EventBuffer, logger)
	appCtx, stopApp := context.WithCancel(context.Background())
	go app.Run(appCtx)

	listeners := host.NewListenerGroup(func() host.TTSListener {
		return tcp.NewListener(cfg.Addr(cfg.ReceivePort), app, tcp.ListenerOptions{
			MaxMessageSize: cfg.MaxMessageSize,
			AcceptRate:     rate.Limit(cfg.AcceptRate),
			AcceptBurst:    cfg.AcceptBurst,
			Logger:         logger,
		})
	})
	bridge := &host.Bridge{
		DevMode:   cfg.IsDevelopment(),
		Sender:    tcp.NewSender(cfg.Addr(cfg.SendPort), logger),
		Checker:   tcp.NewChecker(cfg.BindHost, cfg.SendPort, cfg.ReceivePort, cfg.CheckTimeout, logger),
		Listeners: listeners,
	}
	bridge.RegisterCommands(app)

	if err := listeners.Start(); err != nil {
		logger.Error("tts_listener_start_failed", "error", err)
		bridgeServer.Shutdown(context.Background())
		os.Exit(1)
	}

	ipcServer := ipc.NewServer(cfg.Addr(cfg.IPCPort), app, logger)
	if err := ipcServer.Start(); err != nil {
		logger.Error("host_ipc_start_failed", "error", err)
		listeners.StopAll()
		bridgeServer.Shutdown(context.Background())
		os.Exit(1)
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received_shutdown_signal", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := ipcServer.Shutdown(ctx); err != nil {
		logger.Error("host_ipc_shutdown_failed", "error", err)
	}
	logger.Info("stopping_tts_listeners", "count", listeners.Running())
	listeners.StopAll()
	if err := bridgeServer.Shutdown(ctx); err != nil {
		logger.Error("http_bridge_shutdown_failed", "error", err)
	}
	stopApp()
	app.Close()

	logger.Info("bridge_stopped_gracefully")
}
