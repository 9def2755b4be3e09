// Package server exposes interview sessions over a JSON HTTP API.
package server

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/spigell/hh-screener/internal/interview"
	"github.com/spigell/hh-screener/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const (
	DefaultListen = ":8080"
	requestIDKey  = "requestId"
)

type Config struct {
	Listen    string
	ExportDir string
}

// NewRouter builds the gin engine with middleware and routes registered.
// gatherer may be nil, in which case /metrics is not served.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestID(), requestLogger(logger), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

// Handler serves the session endpoints.
type Handler struct {
	registry  *registry.Registry
	machine   *interview.Machine
	exportDir string
	logger    *zap.Logger
}

func NewHandler(reg *registry.Registry, machine *interview.Machine, cfg Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		registry:  reg,
		machine:   machine,
		exportDir: cfg.ExportDir,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/sessions")
	sessions.POST("", h.create)
	sessions.GET("/:id", h.get)
	sessions.POST("/:id/messages", h.message)
	sessions.GET("/:id/export", h.export)
	sessions.POST("/:id/reset", h.reset)
	sessions.DELETE("/:id", h.remove)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			var b [8]byte
			if _, err := rand.Read(b[:]); err == nil {
				id = hex.EncodeToString(b[:])
			} else {
				id = time.Now().UTC().Format("20060102150405.000000000")
			}
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set("X-Request-Id", id)
		c.Next()
	}
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request complete",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
