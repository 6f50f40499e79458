package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"go_ngxmgr/internal/cert"
	"go_ngxmgr/internal/health"
	"go_ngxmgr/internal/httpx"
	"go_ngxmgr/internal/metrics"
	"go_ngxmgr/internal/service"
)

// ConfigPipeline is the configuration service as seen by the handlers
type ConfigPipeline interface {
	Preview(ctx context.Context) (string, error)
	PreviewServer(ctx context.Context, id uint64) (string, error)
	Validate(ctx context.Context) (string, error)
	Apply(ctx context.Context) (*service.ApplyResult, error)
}

// CertificateManager is the certificate service as seen by the handlers
type CertificateManager interface {
	Status(ctx context.Context) ([]cert.Report, error)
	Persist(ctx context.Context, id uint64) (*cert.Report, error)
	Remove(ctx context.Context, id uint64) error
}

// StatusReader reads cached observations
type StatusReader interface {
	Get(ctx context.Context, key string, v any) (bool, error)
}

// Deps holds everything the routes need. Status may be nil.
type Deps struct {
	Config       ConfigPipeline
	Certificates CertificateManager
	Monitor      *health.Monitor
	Upstreams    health.Lister
	Status       StatusReader
	Metrics      *metrics.Collector
}

// NewRouter creates a gin engine with all routes registered
func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID())
	SetupRouter(r, deps)
	return r
}

// SetupRouter registers the operational routes on r
func SetupRouter(r *gin.Engine, deps Deps) {
	h := &handler{deps: deps}

	r.GET("/health", h.systemHealth)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	v1 := r.Group("/api/v1")
	{
		configGroup := v1.Group("/config")
		{
			configGroup.GET("/preview", h.previewConfig)
			configGroup.GET("/servers/:id/preview", h.previewServer)
			configGroup.POST("/validate", h.validateConfig)
			configGroup.POST("/apply", h.applyConfig)
		}

		v1.GET("/upstreams/health", h.upstreamHealth)

		certGroup := v1.Group("/certificates")
		{
			certGroup.GET("/status", h.certificateStatus)
			certGroup.POST("/:id/persist", h.persistCertificate)
			certGroup.DELETE("/:id/files", h.removeCertificateFiles)
		}
	}
}

type handler struct {
	deps Deps
}
