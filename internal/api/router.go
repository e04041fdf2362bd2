package api

import (
	"context"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/BerylCAtieno/marketing-asset-agent/internal/metrics"
	"github.com/BerylCAtieno/marketing-asset-agent/internal/models"
)

// BatchGenerator produces a complete result for an accepted request.
type BatchGenerator interface {
	Generate(ctx context.Context, req models.GenerationRequest, referenceText string) models.GenerationResult
}

// Mounter registers extra routes, such as the agent-to-agent endpoints.
type Mounter interface {
	Mount(r gin.IRouter)
}

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	MaxUploadBytes int64
	Logger         *zap.Logger
	Extra          []Mounter
}

// NewRouter wires middleware and every HTTP route.
func NewRouter(gen BatchGenerator, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(AccessLog(logger.Named("http")))
	r.Use(metrics.Middleware())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := NewHandler(gen, opts.MaxUploadBytes, logger)
	r.POST("/api/generate", h.HandleGenerate)

	for _, m := range opts.Extra {
		m.Mount(r)
	}
	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}
