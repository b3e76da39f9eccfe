package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// ScheduleHandler exposes the weekly attendance windows.
type ScheduleHandler struct {
	svc *service.ScheduleService
}

func NewScheduleHandler(svc *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// List returns every block ordered by weekday.
func (h *ScheduleHandler) List(c *gin.Context) {
	blocks, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, blocks)
}

// Create adds a window; admin only via routing.
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req service.BlockCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	block, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, block)
}

// Delete removes a window; admin only via routing.
func (h *ScheduleHandler) Delete(c *gin.Context) {
	blockID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), blockID); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}
