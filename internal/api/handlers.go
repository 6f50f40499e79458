package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"go_ngxmgr/internal/cache"
	"go_ngxmgr/internal/health"
	"go_ngxmgr/internal/httpx"
)

// systemHealth handles GET /health
func (h *handler) systemHealth(c *gin.Context) {
	report := h.deps.Monitor.CheckSystem(c.Request.Context())
	if !report.Healthy {
		httpx.FailErr(c, httpx.ErrUnavailable("system check failing").WithData(report))
		return
	}
	httpx.OK(c, report)
}

// previewConfig handles GET /api/v1/config/preview
func (h *handler) previewConfig(c *gin.Context) {
	candidate, err := h.deps.Config.Preview(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, toAppError(err))
		return
	}
	httpx.OK(c, gin.H{"config": candidate})
}

// previewServer handles GET /api/v1/config/servers/:id/preview
func (h *handler) previewServer(c *gin.Context) {
	id, ok := parseID(c, "server")
	if !ok {
		return
	}
	block, err := h.deps.Config.PreviewServer(c.Request.Context(), id)
	if err != nil {
		httpx.FailErr(c, toAppError(err))
		return
	}
	httpx.OK(c, gin.H{"server_id": id, "config": block})
}

// validateConfig handles POST /api/v1/config/validate
func (h *handler) validateConfig(c *gin.Context) {
	candidate, err := h.deps.Config.Validate(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, toAppError(err))
		return
	}
	httpx.OKMsg(c, "configuration accepted", gin.H{"config": candidate})
}

// applyConfig handles POST /api/v1/config/apply
func (h *handler) applyConfig(c *gin.Context) {
	result, err := h.deps.Config.Apply(c.Request.Context())
	if err != nil {
		appErr := toAppError(err)
		if result != nil && result.Activated {
			appErr = appErr.WithData(result)
		}
		httpx.FailErr(c, appErr)
		return
	}
	httpx.OKMsg(c, "configuration applied", result)
}

// upstreamHealth handles GET /api/v1/upstreams/health[?live=1]
func (h *handler) upstreamHealth(c *gin.Context) {
	ctx := c.Request.Context()
	live, _ := strconv.ParseBool(c.DefaultQuery("live", "0"))

	if !live && h.deps.Status != nil {
		var results []health.UpstreamResult
		found, err := h.deps.Status.Get(ctx, cache.KeyUpstreamHealth, &results)
		if err != nil {
			httpx.FailErr(c, httpx.ErrExternalError("failed to read cached health", err))
			return
		}
		if !found {
			httpx.FailErr(c, httpx.ErrNotFound("no health sweep recorded yet"))
			return
		}
		httpx.OK(c, gin.H{"live": false, "items": results})
		return
	}

	ups, err := h.deps.Upstreams.Upstreams(ctx)
	if err != nil {
		httpx.FailErr(c, httpx.ErrDatabaseError("failed to list upstreams", err))
		return
	}
	results := h.deps.Monitor.CheckAll(ctx, ups)
	httpx.OK(c, gin.H{"live": true, "items": results, "checked_at": time.Now().UTC()})
}

// certificateStatus handles GET /api/v1/certificates/status
func (h *handler) certificateStatus(c *gin.Context) {
	reports, err := h.deps.Certificates.Status(c.Request.Context())
	if err != nil {
		httpx.FailErr(c, toAppError(err))
		return
	}
	httpx.OK(c, gin.H{"items": reports})
}

// persistCertificate handles POST /api/v1/certificates/:id/persist
func (h *handler) persistCertificate(c *gin.Context) {
	id, ok := parseID(c, "certificate")
	if !ok {
		return
	}

	report, err := h.deps.Certificates.Persist(c.Request.Context(), id)
	if err != nil {
		httpx.FailErr(c, toAppError(err))
		return
	}
	httpx.OK(c, report)
}

// removeCertificateFiles handles DELETE /api/v1/certificates/:id/files
func (h *handler) removeCertificateFiles(c *gin.Context) {
	id, ok := parseID(c, "certificate")
	if !ok {
		return
	}
	if err := h.deps.Certificates.Remove(c.Request.Context(), id); err != nil {
		httpx.FailErr(c, toAppError(err))
		return
	}
	httpx.OKMsg(c, "certificate files removed", gin.H{"id": id})
}

// parseID reads the :id parameter and writes the failure response when it is unusable
func parseID(c *gin.Context, what string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		httpx.FailErr(c, httpx.ErrParamInvalid("invalid "+what+" id"))
		return 0, false
	}
	return id, true
}
