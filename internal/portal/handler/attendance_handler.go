package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// AttendanceHandler exposes the kiosk scan endpoint and the logs.
type AttendanceHandler struct {
	svc *service.AttendanceService
}

func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{svc: svc}
}

// Scan records one kiosk swipe, in or out.
func (h *AttendanceHandler) Scan(c *gin.Context) {
	var req service.ScanInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	entry, err := h.svc.RecordScan(c.Request.Context(), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, entry)
}

// Today returns counters for the current day.
func (h *AttendanceHandler) Today(c *gin.Context) {
	summary, err := h.svc.TodaySummary(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, summary)
}

// TodayLogs returns the current day's entries.
func (h *AttendanceHandler) TodayLogs(c *gin.Context) {
	logs, err := h.svc.TodayLogs(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, logs)
}

// History returns entries grouped by date, newest day first.
func (h *AttendanceHandler) History(c *gin.Context) {
	days, err := h.svc.LogsByDate(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, days)
}

// UpdateEntryStatus clears or flags one entry; lead only via routing.
func (h *AttendanceHandler) UpdateEntryStatus(c *gin.Context) {
	entryID, ok := ParseIDParam(c, "id")
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
	entry, err := h.svc.UpdateEntryStatus(c.Request.Context(), entryID, req.Status)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, entry)
}

// DeleteEntry removes one entry; admin only via routing.
func (h *AttendanceHandler) DeleteEntry(c *gin.Context) {
	entryID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.DeleteEntry(c.Request.Context(), entryID); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}
