package handler

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// ManufacturingHandler exposes the part workflow board.
type ManufacturingHandler struct {
	svc *service.WorkflowService
}

func NewManufacturingHandler(svc *service.WorkflowService) *ManufacturingHandler {
	return &ManufacturingHandler{svc: svc}
}

// List returns the board, filtered and in lane order.
func (h *ManufacturingHandler) List(c *gin.Context) {
	filters := map[string]string{
		"status":             c.Query("status"),
		"manufacturing_type": c.Query("manufacturing_type"),
		"priority":           c.Query("priority"),
		"search":             c.Query("search"),
	}
	parts, err := h.svc.List(c.Request.Context(), GetUserID(c), filters)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, parts)
}

// Create registers a new part.
func (h *ManufacturingHandler) Create(c *gin.Context) {
	var req service.PartCreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	part, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Created(c, part)
}

// Update applies a partial edit.
func (h *ManufacturingHandler) Update(c *gin.Context) {
	partID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.PartUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	part, err := h.svc.Update(c.Request.Context(), GetUserID(c), partID, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, part)
}

// ChangeStatus moves a part between lanes.
func (h *ManufacturingHandler) ChangeStatus(c *gin.Context) {
	partID, ok := ParseIDParam(c, "id")
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
	part, err := h.svc.ChangeStatus(c.Request.Context(), GetUserID(c), partID, req.Status)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, part)
}

// Claim adds the caller to the part's student assignment. The ETA
// payload is optional; an empty body claims without one.
func (h *ManufacturingHandler) Claim(c *gin.Context) {
	partID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ETAInput
	eta := &req
	if err := c.ShouldBindJSON(&req); err != nil {
		if !errors.Is(err, io.EOF) {
			BadRequest(c, "Invalid request body: "+err.Error())
			return
		}
		eta = nil
	}
	part, err := h.svc.Claim(c.Request.Context(), GetUserID(c), partID, eta)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, part)
}

// Unclaim removes the caller from the part's student assignment.
func (h *ManufacturingHandler) Unclaim(c *gin.Context) {
	partID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	part, err := h.svc.Unclaim(c.Request.Context(), GetUserID(c), partID)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, part)
}

// UpdateETA revises the completion estimate.
func (h *ManufacturingHandler) UpdateETA(c *gin.Context) {
	partID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	var req service.ETAInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	part, err := h.svc.UpdateETA(c.Request.Context(), GetUserID(c), partID, &req)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, part)
}

// AttachFiles stores uploaded CAD and CAM files on the part.
func (h *ManufacturingHandler) AttachFiles(c *gin.Context) {
	partID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}

	cadName, cad, cadSize, err := openUpload(c, "cad_file")
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	if cad != nil {
		defer cad.Close()
	}
	camName, cam, camSize, err := openUpload(c, "cam_file")
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	if cam != nil {
		defer cam.Close()
	}
	if cad == nil && cam == nil {
		BadRequest(c, "No file provided")
		return
	}

	part, err := h.svc.AttachFiles(c.Request.Context(), GetUserID(c), partID,
		cadName, readerOrNil(cad), cadSize,
		camName, readerOrNil(cam), camSize)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, part)
}

// OpenFile streams a stored CAD or CAM file back to the caller.
func (h *ManufacturingHandler) OpenFile(c *gin.Context) {
	partID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	kind := c.Param("kind")

	reader, fileName, err := h.svc.OpenFile(c.Request.Context(), GetUserID(c), partID, kind)
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

// Delete removes a part and its stored files.
func (h *ManufacturingHandler) Delete(c *gin.Context) {
	partID, ok := ParseIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), GetUserID(c), partID); err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, nil)
}

// Summary returns the board counters.
func (h *ManufacturingHandler) Summary(c *gin.Context) {
	summary, err := h.svc.GetSummary(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, summary)
}

// Lookups returns the assignable user list.
func (h *ManufacturingHandler) Lookups(c *gin.Context) {
	users, err := h.svc.Lookups(c.Request.Context())
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	Success(c, users)
}

// openUpload returns a named multipart file, or nils when the field is absent.
func openUpload(c *gin.Context, field string) (string, multipart.File, int64, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		return "", nil, 0, nil
	}
	file, err := fileHeader.Open()
	if err != nil {
		return "", nil, 0, err
	}
	return fileHeader.Filename, file, fileHeader.Size, nil
}

func readerOrNil(file multipart.File) io.Reader {
	if file == nil {
		return nil
	}
	return file
}
