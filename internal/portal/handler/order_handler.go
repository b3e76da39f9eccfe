package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// OrderHandler exposes purchase requests.
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create files a purchase request.
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.OrderCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	order, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, order)
}

// List returns all requests, newest first.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.svc.List(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, orders)
}

// UpdateStatus advances a request; lead only.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := ParseIDParam(c, "id")
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
	order, err := h.svc.UpdateStatus(c.Request.Context(), GetUserID(c), orderID, req.Status)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, order)
}

// Delete removes a request; leads always, requesters their own.
func (h *OrderHandler) Delete(c *gin.Context) {
	orderID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), GetUserID(c), orderID); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}
