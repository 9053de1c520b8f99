package tcp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

const DefaultCheckTimeout = 3 * time.Second

// PortCheckResult is the outcome of one dial attempt. Message is meant for
// display in both cases.
type PortCheckResult struct {
	Port    int    `json:"port"`
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// ConnectionReport always carries both ports, whatever their outcome.
type ConnectionReport struct {
	SendPort    string `json:"send_port"`
	ReceivePort string `json:"receive_port"`
	SendOK      bool   `json:"send_ok"`
	ReceiveOK   bool   `json:"receive_ok"`
}

// Connected reports whether both directions are reachable.
func (r ConnectionReport) Connected() bool {
	return r.SendOK && r.ReceiveOK
}

// Checker probes the two fixed TTS ports.
type Checker struct {
	Host        string
	SendPort    int
	ReceivePort int
	Timeout     time.Duration
	logger      *slog.Logger
}

// constructor for Checker, a zero timeout falls back to DefaultCheckTimeout
func NewChecker(host string, sendPort, receivePort int, timeout time.Duration, logger *slog.Logger) *Checker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{
		Host:        host,
		SendPort:    sendPort,
		ReceivePort: receivePort,
		Timeout:     timeout,
		logger:      logger,
	}
}

// Check dials host:port once, giving up after the checker's timeout.
func (c *Checker) Check(ctx context.Context, port int) PortCheckResult {
	addr := net.JoinHostPort(c.Host, strconv.Itoa(port))
	dialer := net.Dialer{Timeout: c.Timeout}

	start := time.Now()
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	elapsed := time.Since(start)
	if err != nil {
		c.logger.Debug("tts_port_unreachable", "addr", addr, "elapsed_ms", elapsed.Milliseconds(), "error", err)
		return PortCheckResult{
			Port:    port,
			Message: fmt.Sprintf("port %d unreachable: %v", port, err),
		}
	}
	conn.Close()

	c.logger.Debug("tts_port_reachable", "addr", addr, "elapsed_ms", elapsed.Milliseconds())
	return PortCheckResult{
		Port:    port,
		OK:      true,
		Message: fmt.Sprintf("port %d reachable", port),
	}
}

// CheckAll probes both ports concurrently and joins the results.
func (c *Checker) CheckAll(ctx context.Context) ConnectionReport {
	var send, receive PortCheckResult

	var g errgroup.Group
	g.Go(func() error {
		send = c.Check(ctx, c.SendPort)
		return nil
	})
	g.Go(func() error {
		receive = c.Check(ctx, c.ReceivePort)
		return nil
	})
	_ = g.Wait() // Check never fails, outcomes live in the results

	report := ConnectionReport{
		SendPort:    send.Message,
		ReceivePort: receive.Message,
		SendOK:      send.OK,
		ReceiveOK:   receive.OK,
	}
	c.logger.Info("tts_connections_checked",
		"send_ok", report.SendOK,
		"receive_ok", report.ReceiveOK,
	)
	return report
}
