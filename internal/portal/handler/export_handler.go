package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/service"
)

// ExportHandler serves CSV and XLSX downloads of portal data.
type ExportHandler struct {
	svc *service.ExportService
}

func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// CSV streams a section as a CSV download.
func (h *ExportHandler) CSV(c *gin.Context) {
	section := c.Param("section")
	fileName := service.SafeFilename(section, c.Query("filename"), ".csv")

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	if err := h.svc.WriteCSV(c.Request.Context(), section, c.Writer); err != nil {
		HandleServiceError(c, err)
		return
	}
}

// XLSX streams a section as a workbook download.
func (h *ExportHandler) XLSX(c *gin.Context) {
	section := c.Param("section")
	fileName := service.SafeFilename(section, c.Query("filename"), ".xlsx")

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	if err := h.svc.WriteXLSX(c.Request.Context(), section, c.Writer); err != nil {
		HandleServiceError(c, err)
		return
	}
}
