package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Manufacturing workflow statuses, in board display order.
const (
	PartStatusDesignSubmitted = "design_submitted"
	PartStatusReady           = "ready_for_manufacturing"
	PartStatusInProgress      = "in_progress"
	PartStatusQualityCheck    = "quality_check"
	PartStatusCompleted       = "completed"
)

// PartStatuses lists all workflow statuses in board order.
var PartStatuses = []string{
	PartStatusDesignSubmitted,
	PartStatusReady,
	PartStatusInProgress,
	PartStatusQualityCheck,
	PartStatusCompleted,
}

// ValidPartStatus reports whether value names a workflow status.
func ValidPartStatus(value string) bool {
	for _, s := range PartStatuses {
		if s == value {
			return true
		}
	}
	return false
}

// Manufacturing types
const (
	PartTypeCNC      = "cnc"
	PartTypePrinting = "printing"
	PartTypeManual   = "manual"
)

// ValidPartType reports whether value names a manufacturing type.
func ValidPartType(value string) bool {
	switch value {
	case PartTypeCNC, PartTypePrinting, PartTypeManual:
		return true
	}
	return false
}

// Part priorities
const (
	PartPriorityUrgent = "urgent"
	PartPriorityNormal = "normal"
	PartPriorityLow    = "low"
)

// ValidPartPriority reports whether value names a priority.
func ValidPartPriority(value string) bool {
	switch value {
	case PartPriorityUrgent, PartPriorityNormal, PartPriorityLow:
		return true
	}
	return false
}

// IDList is an ordered set of user IDs stored as JSONB. Storage is never
// trusted to be deduplicated; writers dedupe before assigning.
type IDList []uint

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		l = IDList{}
	}
	return json.Marshal(l)
}

func (l *IDList) Scan(value interface{}) error {
	if value == nil {
		*l = IDList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type for IDList: %T", value)
	}
	return json.Unmarshal(data, l)
}

func (IDList) GormDataType() string {
	return "jsonb"
}

// Contains reports whether id is in the list.
func (l IDList) Contains(id uint) bool {
	for _, v := range l {
		if v == id {
			return true
		}
	}
	return false
}

// ManufacturingPart is a part moving through the manufacturing board.
type ManufacturingPart struct {
	ID                uint   `json:"id" gorm:"primaryKey"`
	PartName          string `json:"part_name" gorm:"size:200;not null;index"`
	Subsystem         string `json:"subsystem" gorm:"size:100;not null;index"`
	Material          string `json:"material" gorm:"size:100;not null"`
	Quantity          int    `json:"quantity" gorm:"default:1"`
	ManufacturingType string `json:"manufacturing_type" gorm:"size:20;not null;index"` // cnc/printing/manual
	CADLink           string `json:"cad_link" gorm:"size:500;not null"`

	// CNC
	CAMLink       *string `json:"cam_link" gorm:"size:500"`
	CAMStudent    *string `json:"cam_student" gorm:"size:200"`
	CNCOperator   *string `json:"cnc_operator" gorm:"size:200"`
	MaterialStock *string `json:"material_stock" gorm:"size:200"`

	// Printing
	PrinterAssignment *string `json:"printer_assignment" gorm:"size:200"`
	SlicerProfile     *string `json:"slicer_profile" gorm:"size:200"`
	FilamentType      *string `json:"filament_type" gorm:"size:200"`

	// Manual
	ToolType           *string `json:"tool_type" gorm:"size:200"`
	Dimensions         *string `json:"dimensions" gorm:"size:200"`
	ResponsibleStudent *string `json:"responsible_student" gorm:"size:200"`

	Notes    *string `json:"notes" gorm:"type:text"`
	Priority string  `json:"priority" gorm:"size:20;default:normal;index"`          // urgent/normal/low
	Status   string  `json:"status" gorm:"size:32;default:design_submitted;index"` // workflow status

	CreatedByID   uint       `json:"created_by_id" gorm:"not null;index"`
	CreatedByName string     `json:"created_by_name" gorm:"size:200;not null"`
	ApprovedByID  *uint      `json:"approved_by_id"`
	ApprovedAt    *time.Time `json:"approved_at"`

	StatusLocked bool    `json:"status_locked" gorm:"default:false;index"`
	LockReason   *string `json:"lock_reason" gorm:"size:500"`

	// Display rank within the current status lane. Advisory only: assigned as
	// max+1 on lane entry, not globally unique.
	LanePosition int `json:"lane_position" gorm:"default:0;index"`

	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" gorm:"index"`
	LastStatusChange time.Time `json:"last_status_change"`

	AssignedStudentIDs IDList `json:"assigned_student_ids" gorm:"type:jsonb;not null;default:'[]'"`
	AssignedLeadIDs    IDList `json:"assigned_lead_ids" gorm:"type:jsonb;not null;default:'[]'"`

	StudentETAMinutes *int       `json:"student_eta_minutes"`
	ETANote           *string    `json:"eta_note" gorm:"size:500"`
	ETAUpdatedAt      *time.Time `json:"eta_updated_at"`
	ETAByID           *uint      `json:"eta_by_id"`
	ETATarget         *time.Time `json:"eta_target"`

	ActualStart    *time.Time `json:"actual_start"`
	ActualComplete *time.Time `json:"actual_complete"`

	CADFileName *string `json:"cad_file_name" gorm:"size:256"`
	CADFilePath *string `json:"cad_file_path" gorm:"size:512"`
	CAMFileName *string `json:"cam_file_name" gorm:"size:256"`
	CAMFilePath *string `json:"cam_file_path" gorm:"size:512"`
}

func (ManufacturingPart) TableName() string {
	return "manufacturing_parts"
}
