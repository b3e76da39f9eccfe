package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// TicketHandler exposes feature requests and issue reports.
type TicketHandler struct {
	svc *service.TicketService
}

func NewTicketHandler(svc *service.TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// Create files a ticket.
func (h *TicketHandler) Create(c *gin.Context) {
	var req service.TicketCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	ticket, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, ticket)
}

// List returns tickets, optionally filtered by type.
func (h *TicketHandler) List(c *gin.Context) {
	tickets, err := h.svc.List(c.Request.Context(), c.Query("type"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, tickets)
}

// UpdateStatus moves a ticket through triage; lead only via routing.
func (h *TicketHandler) UpdateStatus(c *gin.Context) {
	ticketID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	ticket, err := h.svc.UpdateStatus(c.Request.Context(), ticketID, req.Status)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, ticket)
}

// Delete removes a ticket; admin only via routing.
func (h *TicketHandler) Delete(c *gin.Context) {
	ticketID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), ticketID); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}
