package handler

import (
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// JobHandler exposes the CNC and print queues.
type JobHandler struct {
	svc *service.JobService
}

func NewJobHandler(svc *service.JobService) *JobHandler {
	return &JobHandler{svc: svc}
}

// Submit accepts a multipart job upload and queues it.
func (h *JobHandler) Submit(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "A job file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		BadRequest(c, "Could not read uploaded file")
		return
	}
	defer file.Close()

	input := &service.JobSubmitInput{
		Shop:      c.PostForm("shop"),
		PartName:  c.PostForm("part_name"),
		OwnerName: c.PostForm("owner_name"),
		FileName:  fileHeader.Filename,
		File:      file,
		FileSize:  fileHeader.Size,
	}
	if notes := strings.TrimSpace(c.PostForm("notes")); notes != "" {
		input.Notes = &notes
	}

	job, err := h.svc.Submit(c.Request.Context(), GetUserID(c), input)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, job)
}

// List returns one shop's queue in queue order.
func (h *JobHandler) List(c *gin.Context) {
	jobs, err := h.svc.List(c.Request.Context(), c.Query("shop"))
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, jobs)
}

// UpdateStatus advances a job; lead only.
func (h *JobHandler) UpdateStatus(c *gin.Context) {
	jobID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string  `json:"status"`
		Note   *string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	job, err := h.svc.UpdateStatus(c.Request.Context(), GetUserID(c), jobID, req.Status, req.Note)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, job)
}

// Reorder rewrites a shop queue's order; lead only via routing.
func (h *JobHandler) Reorder(c *gin.Context) {
	var req struct {
		Shop       string `json:"shop"`
		OrderedIDs []uint `json:"ordered_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	jobs, err := h.svc.Reorder(c.Request.Context(), req.Shop, req.OrderedIDs)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, jobs)
}

// Claim marks the caller as running a job.
func (h *JobHandler) Claim(c *gin.Context) {
	jobID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.svc.Claim(c.Request.Context(), GetUserID(c), jobID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, job)
}

// Unclaim releases a claimed job.
func (h *JobHandler) Unclaim(c *gin.Context) {
	jobID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	job, err := h.svc.Unclaim(c.Request.Context(), GetUserID(c), jobID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, job)
}

// OpenFile streams the job's stored file.
func (h *JobHandler) OpenFile(c *gin.Context) {
	jobID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	reader, fileName, err := h.svc.OpenFile(c.Request.Context(), jobID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(fileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Status(200)
	_, _ = io.Copy(c.Writer, reader)
}

// Delete removes a job; leads always, submitters their own.
func (h *JobHandler) Delete(c *gin.Context) {
	jobID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), GetUserID(c), jobID); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}
