package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
)

// sectionTitles maps sheet sections to their human titles.
var sectionTitles = map[string]string{
	entity.SheetSectionAttendance:     "Attendance",
	entity.SheetSectionManufacturing:  "Manufacturing",
	entity.SheetSectionCNC:            "CNC",
	entity.SheetSectionPrinting:       "Printing",
	entity.SheetSectionOrders:         "Orders",
	entity.SheetSectionInventory:      "Inventory",
	entity.SheetSectionTicketsFeature: "Feature Requests",
	entity.SheetSectionTicketsIssue:   "Issues",
}

// ExportService builds tabular datasets per portal section and writes
// them as CSV or XLSX downloads. The same datasets feed the sheet sync.
type ExportService struct {
	attendance *repository.AttendanceRepository
	parts      *repository.PartRepository
	jobs       *repository.JobRepository
	orders     *repository.OrderRepository
	inventory  *repository.InventoryRepository
	tickets    *repository.TicketRepository
}

func NewExportService(
	attendance *repository.AttendanceRepository,
	parts *repository.PartRepository,
	jobs *repository.JobRepository,
	orders *repository.OrderRepository,
	inventory *repository.InventoryRepository,
	tickets *repository.TicketRepository,
) *ExportService {
	return &ExportService{
		attendance: attendance,
		parts:      parts,
		jobs:       jobs,
		orders:     orders,
		inventory:  inventory,
		tickets:    tickets,
	}
}

// SectionDataset returns the title, headers and rows for a section.
func (s *ExportService) SectionDataset(ctx context.Context, section string) (string, []string, [][]string, error) {
	title, ok := sectionTitles[section]
	if !ok {
		return "", nil, nil, NewValidationError("Unknown export section")
	}

	switch section {
	case entity.SheetSectionAttendance:
		entries, err := s.attendance.FindAll(ctx)
		if err != nil {
			return "", nil, nil, err
		}
		headers := []string{"ID", "StudentID", "Barcode", "CheckIn", "CheckOut", "Status", "Note"}
		rows := make([][]string, 0, len(entries))
		for i := range entries {
			e := &entries[i]
			rows = append(rows, []string{
				fmt.Sprintf("%d", e.ID),
				strOrEmpty(e.RecordedStudentID),
				strOrEmpty(e.RecordedBarcodeID),
				timeOrEmpty(e.CheckIn),
				timeOrEmpty(e.CheckOut),
				e.Status,
				strOrEmpty(e.Note),
			})
		}
		return title, headers, rows, nil

	case entity.SheetSectionManufacturing:
		parts, err := s.parts.FindAll(ctx, map[string]string{})
		if err != nil {
			return "", nil, nil, err
		}
		headers := []string{"ID", "Part", "Subsystem", "Type", "Priority", "Status", "Qty", "Material", "CreatedBy", "CreatedAt", "LastStatusChange"}
		rows := make([][]string, 0, len(parts))
		for i := range parts {
			p := &parts[i]
			rows = append(rows, []string{
				fmt.Sprintf("%d", p.ID),
				p.PartName,
				p.Subsystem,
				p.ManufacturingType,
				p.Priority,
				p.Status,
				fmt.Sprintf("%d", p.Quantity),
				p.Material,
				p.CreatedByName,
				p.CreatedAt.Format(time.RFC3339),
				p.LastStatusChange.Format(time.RFC3339),
			})
		}
		return title, headers, rows, nil

	case entity.SheetSectionCNC, entity.SheetSectionPrinting:
		shop := entity.ShopCNC
		if section == entity.SheetSectionPrinting {
			shop = entity.ShopPrinting
		}
		jobs, err := s.jobs.FindAll(ctx, shop)
		if err != nil {
			return "", nil, nil, err
		}
		headers := []string{"ID", "Part", "Owner", "Status", "QueuePos", "ClaimedBy", "CreatedAt", "Notes", "FileName"}
		rows := make([][]string, 0, len(jobs))
		for i := range jobs {
			j := &jobs[i]
			claimedBy := ""
			if j.ClaimedByID != nil {
				claimedBy = fmt.Sprintf("%d", *j.ClaimedByID)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", j.ID),
				j.PartName,
				j.OwnerName,
				j.Status,
				fmt.Sprintf("%d", j.QueuePosition),
				claimedBy,
				j.CreatedAt.Format(time.RFC3339),
				strOrEmpty(j.Notes),
				j.FileName,
			})
		}
		return title, headers, rows, nil

	case entity.SheetSectionOrders:
		orders, err := s.orders.FindAll(ctx)
		if err != nil {
			return "", nil, nil, err
		}
		headers := []string{"ID", "Requester", "Part", "PriceUSD", "Status", "VendorLink", "CreatedAt", "Justification"}
		rows := make([][]string, 0, len(orders))
		for i := range orders {
			o := &orders[i]
			rows = append(rows, []string{
				fmt.Sprintf("%d", o.ID),
				o.RequesterName,
				o.PartName,
				fmt.Sprintf("%.2f", o.PriceUSD),
				o.Status,
				o.VendorLink,
				o.CreatedAt.Format(time.RFC3339),
				strOrEmpty(o.Justification),
			})
		}
		return title, headers, rows, nil

	case entity.SheetSectionInventory:
		items, err := s.inventory.FindAll(ctx, "", "")
		if err != nil {
			return "", nil, nil, err
		}
		headers := []string{"ID", "Part", "SKU", "Location", "Qty", "UnitCost", "ReorderAt", "Tags", "VendorLink", "UpdatedAt"}
		rows := make([][]string, 0, len(items))
		for i := range items {
			it := &items[i]
			unitCost := ""
			if it.UnitCost != nil {
				unitCost = fmt.Sprintf("%.2f", *it.UnitCost)
			}
			reorderAt := ""
			if it.ReorderThreshold != nil {
				reorderAt = fmt.Sprintf("%d", *it.ReorderThreshold)
			}
			rows = append(rows, []string{
				fmt.Sprintf("%d", it.ID),
				it.PartName,
				strOrEmpty(it.SKU),
				strOrEmpty(it.Location),
				fmt.Sprintf("%d", it.Quantity),
				unitCost,
				reorderAt,
				strOrEmpty(it.Tags),
				strOrEmpty(it.VendorLink),
				it.UpdatedAt.Format(time.RFC3339),
			})
		}
		return title, headers, rows, nil

	default: // tickets_feature, tickets_issue
		ticketType := entity.TicketTypeFeature
		if section == entity.SheetSectionTicketsIssue {
			ticketType = entity.TicketTypeIssue
		}
		tickets, err := s.tickets.FindAll(ctx, ticketType, "")
		if err != nil {
			return "", nil, nil, err
		}
		headers := []string{"ID", "Type", "Subject", "Priority", "Status", "Requester", "CreatedAt", "UpdatedAt", "Details"}
		rows := make([][]string, 0, len(tickets))
		for i := range tickets {
			t := &tickets[i]
			rows = append(rows, []string{
				fmt.Sprintf("%d", t.ID),
				t.Type,
				t.Subject,
				t.Priority,
				t.Status,
				t.RequesterName,
				t.CreatedAt.Format(time.RFC3339),
				t.UpdatedAt.Format(time.RFC3339),
				t.Details,
			})
		}
		return title, headers, rows, nil
	}
}

// WriteCSV streams a section as CSV.
func (s *ExportService) WriteCSV(ctx context.Context, section string, w io.Writer) error {
	_, headers, rows, err := s.SectionDataset(ctx, section)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(w)
	if err := writer.Write(headers); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX streams a section as a single-sheet workbook with a styled
// header row.
func (s *ExportService) WriteXLSX(ctx context.Context, section string, w io.Writer) error {
	title, headers, rows, err := s.SectionDataset(ctx, section)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if title != defaultSheet {
		if err := f.SetSheetName(defaultSheet, title); err != nil {
			return err
		}
	}

	headerCells := make([]interface{}, len(headers))
	for i, h := range headers {
		headerCells[i] = h
	}
	if err := f.SetSheetRow(title, "A1", &headerCells); err != nil {
		return err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err == nil {
		endCol, _ := excelize.ColumnNumberToName(len(headers))
		_ = f.SetCellStyle(title, "A1", endCol+"1", headerStyle)
	}

	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, value := range row {
			cells[j] = value
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(title, cell, &cells); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// SafeFilename builds a download filename, defaulting to the section and
// current date.
func SafeFilename(section, provided, extension string) string {
	base := strings.TrimSpace(provided)
	if base == "" {
		base = fmt.Sprintf("%s-%s", section, time.Now().UTC().Format("2006-01-02"))
	}
	if !strings.HasSuffix(strings.ToLower(base), extension) {
		base += extension
	}
	base = strings.ReplaceAll(base, "\n", " ")
	return strings.ReplaceAll(base, "\r", " ")
}

func strOrEmpty(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func timeOrEmpty(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(time.RFC3339)
}
