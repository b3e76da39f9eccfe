package entity

import "time"

// Sheet sections available for external sync.
const (
	SheetSectionAttendance     = "attendance"
	SheetSectionManufacturing  = "manufacturing"
	SheetSectionCNC            = "cnc"
	SheetSectionPrinting       = "printing"
	SheetSectionOrders         = "orders"
	SheetSectionInventory      = "inventory"
	SheetSectionTicketsFeature = "tickets_feature"
	SheetSectionTicketsIssue   = "tickets_issue"
)

// SheetSections lists all linkable sections.
var SheetSections = []string{
	SheetSectionAttendance,
	SheetSectionManufacturing,
	SheetSectionCNC,
	SheetSectionPrinting,
	SheetSectionOrders,
	SheetSectionInventory,
	SheetSectionTicketsFeature,
	SheetSectionTicketsIssue,
}

// ValidSheetSection reports whether value names a linkable section.
func ValidSheetSection(value string) bool {
	for _, s := range SheetSections {
		if s == value {
			return true
		}
	}
	return false
}

// AppConfig is the single-row application configuration.
type AppConfig struct {
	ID                           uint `json:"id" gorm:"primaryKey"`
	RestrictAttendanceToSchedule bool `json:"restrict_attendance_to_schedule" gorm:"default:true"`
}

func (AppConfig) TableName() string {
	return "app_config"
}

// SheetLink binds a portal section to an external spreadsheet URL.
type SheetLink struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Section     string    `json:"section" gorm:"size:32;uniqueIndex;not null"`
	URL         string    `json:"url" gorm:"size:500;not null"`
	UpdatedByID *uint     `json:"updated_by_id"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SheetLink) TableName() string {
	return "sheet_links"
}
