package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
)

// BlobStore is the single-slot text value the handler exposes.
type BlobStore interface {
	Save(text string)
	Get() string
}

type BlobHandler struct {
	blob        BlobStore
	maxBodySize int64 // 0 = unbounded
	logger      *slog.Logger
}

func NewBlobHandler(blob BlobStore, maxBodySize int64, logger *slog.Logger) *BlobHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BlobHandler{blob: blob, maxBodySize: maxBodySize, logger: logger}
}

func (h *BlobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/save", h.Save)
	rg.GET("/get", h.Get)
}

// Save handles POST /api/save. The raw body replaces the stored value.
func (h *BlobHandler) Save(c *gin.Context) {
	if h.maxBodySize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodySize)
	}

	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.logger.Warn("blob_body_too_large",
				"limit", tooLarge.Limit,
				"remote_addr", c.ClientIP(),
			)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return
		}
		h.logger.Error("blob_body_read_failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if !utf8.Valid(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is not valid UTF-8"})
		return
	}

	h.blob.Save(string(body))
	h.logger.Info("blob_saved", "bytes", len(body))

	c.JSON(http.StatusOK, gin.H{"status": "saved"})
}

// Get handles GET /api/get. The value goes through the JSON encoder, so
// quotes and control characters are always escaped.
func (h *BlobHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.blob.Get()})
}

// NotFound answers every unmatched method/path.
func NotFound(c *gin.Context) {
	c.String(http.StatusNotFound, "404 Not Found")
}
