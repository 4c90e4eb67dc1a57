package pipeline

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/furnicam/furnicam/internal/logging"
)

// Handlers wires gin.Context plumbing onto a Service, grounded on
// mbflow's ExecutionHandlers style (a handler struct holding its
// dependencies plus a logger, one exported Handle* method per route).
type Handlers struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandlers builds Handlers bound to svc.
func NewHandlers(svc *Service, logger *logging.Logger) *Handlers {
	return &Handlers{svc: svc, logger: logger}
}

func respondJSON(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}

func respondError(c *gin.Context, err error) {
	apiErr := translateError(err)
	c.JSON(apiErr.HTTPStatus, apiErr)
}

func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, newAPIError("INVALID_JSON", "invalid JSON request body: "+err.Error(), http.StatusBadRequest))
		return false
	}
	return true
}

func getParam(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if v == "" {
		respondError(c, newAPIError("MISSING_PARAMETER", name+" is required", http.StatusBadRequest))
		return "", false
	}
	return v, true
}

// HandleSubmitDXF handles POST /api/v1/jobs/dxf.
func (h *Handlers) HandleSubmitDXF(c *gin.Context) {
	var req SubmitDXFRequest
	if !bindJSON(c, &req) {
		return
	}
	handle, err := h.svc.SubmitDXF(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("submit_dxf failed", "error", err)
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusAccepted, handle)
}

// HandleSubmitGCode handles POST /api/v1/jobs/gcode.
func (h *Handlers) HandleSubmitGCode(c *gin.Context) {
	var req SubmitGCodeRequest
	if !bindJSON(c, &req) {
		return
	}
	handle, err := h.svc.SubmitGCode(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("submit_gcode failed", "error", err)
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusAccepted, handle)
}

// HandleSubmitDrilling handles POST /api/v1/jobs/drilling.
func (h *Handlers) HandleSubmitDrilling(c *gin.Context) {
	var req SubmitDrillingRequest
	if !bindJSON(c, &req) {
		return
	}
	handle, err := h.svc.SubmitDrilling(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("submit_drilling failed", "error", err)
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusAccepted, handle)
}

// HandleSubmitZIP handles POST /api/v1/jobs/zip.
func (h *Handlers) HandleSubmitZIP(c *gin.Context) {
	var req SubmitZIPRequest
	if !bindJSON(c, &req) {
		return
	}
	handle, err := h.svc.SubmitZIP(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("submit_zip failed", "error", err)
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusAccepted, handle)
}

// HandleGetJob handles GET /api/v1/jobs/:id.
func (h *Handlers) HandleGetJob(c *gin.Context) {
	id, ok := getParam(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetJob(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, resp)
}

// HandleGetArtifactDownload handles GET /api/v1/jobs/:id/download.
func (h *Handlers) HandleGetArtifactDownload(c *gin.Context) {
	id, ok := getParam(c, "id")
	if !ok {
		return
	}
	var ttl time.Duration
	if raw := c.Query("ttl"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			respondError(c, newAPIError("INVALID_PARAMETER", "ttl must be a non-negative integer of seconds", http.StatusBadRequest))
			return
		}
		ttl = time.Duration(secs) * time.Second
	}

	resp, err := h.svc.GetArtifactDownload(c.Request.Context(), id, ttl)
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, resp)
}

// HandleHealth handles GET /healthz.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
