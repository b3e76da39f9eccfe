package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// Handlers is the HTTP handler set.
type Handlers struct {
	Auth          *AuthHandler
	Manufacturing *ManufacturingHandler
	Attendance    *AttendanceHandler
	Job           *JobHandler
	Inventory     *InventoryHandler
	Order         *OrderHandler
	Ticket        *TicketHandler
	Schedule      *ScheduleHandler
	Settings      *SettingsHandler
	Export        *ExportHandler
}

// NewHandlers wires each handler against its service.
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Auth:          NewAuthHandler(svc.Auth),
		Manufacturing: NewManufacturingHandler(svc.Workflow),
		Attendance:    NewAttendanceHandler(svc.Attendance),
		Job:           NewJobHandler(svc.Job),
		Inventory:     NewInventoryHandler(svc.Inventory),
		Order:         NewOrderHandler(svc.Order),
		Ticket:        NewTicketHandler(svc.Ticket),
		Schedule:      NewScheduleHandler(svc.Schedule),
		Settings:      NewSettingsHandler(svc.Settings),
		Export:        NewExportHandler(svc.Export),
	}
}

// Response is the common response envelope.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success writes a 200 envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created writes a 201 envelope.
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error writes an error envelope. The HTTP status is the business code
// divided by 100, so 40400 renders as 404.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest writes a malformed-request error.
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// HandleServiceError maps a service error kind onto the response code.
func HandleServiceError(c *gin.Context, err error) {
	var validation *service.ValidationError
	var permission *service.PermissionError
	var notFound *service.NotFoundError
	var conflict *service.ConflictError

	switch {
	case errors.As(err, &validation):
		Error(c, 42200, validation.Message)
	case errors.As(err, &permission):
		Error(c, 40300, permission.Message)
	case errors.As(err, &notFound):
		Error(c, 40400, notFound.Message)
	case errors.As(err, &conflict):
		Error(c, 40900, conflict.Message)
	default:
		Error(c, 50000, err.Error())
	}
}

// GetUserID returns the authenticated caller's ID from the context.
func GetUserID(c *gin.Context) uint {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(uint); ok {
		return id
	}
	return 0
}

// ParseIDParam parses a numeric path parameter.
func ParseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}
