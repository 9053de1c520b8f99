package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"ttsbridge/internal/host"
)

// MaxArgsSize caps the JSON arguments of one invoke request.
const MaxArgsSize = 1 << 20

// Invoker is the command side of host.App.
type Invoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (any, error)
	Commands() []string
}

type InvokeResponse struct {
	OK     bool   `json:"ok"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

type InvokeHandler struct {
	app    Invoker
	logger *slog.Logger
}

// constructor for InvokeHandler
func NewInvokeHandler(app Invoker, logger *slog.Logger) *InvokeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvokeHandler{app: app, logger: logger}
}

func (h *InvokeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/commands", h.ListCommands)
	rg.POST("/invoke/:command", h.Invoke)
}

// GET /commands
func (h *InvokeHandler) ListCommands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"commands": h.app.Commands()})
}

// POST /invoke/:command
// The body, if any, is the command's JSON argument object. Failures of the
// command itself are reported in-band with ok=false.
func (h *InvokeHandler) Invoke(c *gin.Context) {
	name := c.Param("command")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxArgsSize)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, InvokeResponse{Error: "arguments too large"})
			return
		}
		c.JSON(http.StatusBadRequest, InvokeResponse{Error: "failed to read arguments"})
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		c.JSON(http.StatusBadRequest, InvokeResponse{Error: "arguments must be a JSON object"})
		return
	}

	result, err := h.app.Invoke(c.Request.Context(), name, json.RawMessage(body))
	switch {
	case errors.Is(err, host.ErrUnknownCommand):
		c.JSON(http.StatusNotFound, InvokeResponse{Error: err.Error()})
	case errors.Is(err, host.ErrInvalidArgs):
		c.JSON(http.StatusBadRequest, InvokeResponse{Error: err.Error()})
	case err != nil:
		c.JSON(http.StatusOK, InvokeResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusOK, InvokeResponse{OK: true, Result: result})
	}
}
