package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"singmerge/internal/shared/utils"
)

// TemplateStatus reports whether a default template is available
type TemplateStatus interface {
	HasTemplate() bool
}

type HealthHandler struct {
	templates TemplateStatus
	version   string
}

func NewHealthHandler(templates TemplateStatus, version string) *HealthHandler {
	return &HealthHandler{
		templates: templates,
		version:   version,
	}
}

type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	TemplateLoaded bool   `json:"template_loaded"`
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	loaded := h.templates != nil && h.templates.HasTemplate()
	utils.SuccessResponse(c, http.StatusOK, "", HealthResponse{
		Status:         "ok",
		Version:        h.version,
		TemplateLoaded: loaded,
	})
}
