package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// InventoryHandler exposes stock items and the adjustment ledger.
type InventoryHandler struct {
	svc *service.InventoryService
}

func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// List returns items matching search and location filters.
func (h *InventoryHandler) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context(), c.Query("search"), c.Query("location"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, items)
}

// Create adds a stocked item; lead only via routing.
func (h *InventoryHandler) Create(c *gin.Context) {
	var req service.ItemCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	item, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, item)
}

// Update edits item metadata; lead only via routing.
func (h *InventoryHandler) Update(c *gin.Context) {
	itemID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ItemUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	item, err := h.svc.Update(c.Request.Context(), itemID, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, item)
}

// Adjust applies a quantity delta and records it in the ledger.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	itemID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.AdjustInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	item, err := h.svc.Adjust(c.Request.Context(), GetUserID(c), itemID, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, item)
}

// Transactions returns an item's adjustment history.
func (h *InventoryHandler) Transactions(c *gin.Context) {
	itemID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	txns, err := h.svc.Transactions(c.Request.Context(), itemID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, txns)
}

// Delete removes an item; lead only via routing.
func (h *InventoryHandler) Delete(c *gin.Context) {
	itemID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), itemID); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}
