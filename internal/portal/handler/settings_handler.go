package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// SettingsHandler exposes the app config and sheet links.
type SettingsHandler struct {
	svc *service.SettingsService
}

func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// GetConfig returns the app configuration.
func (h *SettingsHandler) GetConfig(c *gin.Context) {
	config, err := h.svc.GetConfig(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, config)
}

// UpdateConfig applies config changes; admin only via routing.
func (h *SettingsHandler) UpdateConfig(c *gin.Context) {
	var req service.ConfigUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	config, err := h.svc.UpdateConfig(c.Request.Context(), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, config)
}

// ListSheetLinks returns every configured sheet link.
func (h *SettingsHandler) ListSheetLinks(c *gin.Context) {
	links, err := h.svc.ListSheetLinks(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, links)
}

// PutSheetLink creates or replaces a section's webhook URL.
func (h *SettingsHandler) PutSheetLink(c *gin.Context) {
	var req service.SheetLinkInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	link, err := h.svc.PutSheetLink(c.Request.Context(), GetUserID(c), c.Param("section"), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, link)
}

// DeleteSheetLink detaches a section from its sheet.
func (h *SettingsHandler) DeleteSheetLink(c *gin.Context) {
	if err := h.svc.DeleteSheetLink(c.Request.Context(), c.Param("section")); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}

// SyncSection pushes a section's dataset to its linked sheet.
func (h *SettingsHandler) SyncSection(c *gin.Context) {
	result, err := h.svc.SyncSection(c.Request.Context(), c.Param("section"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, result)
}
