package entity

import "time"

// Attendance entry statuses
const (
	AttendanceOK         = "ok"
	AttendanceMissingIn  = "missing_in"
	AttendanceMissingOut = "missing_out"
	AttendanceBlocked    = "blocked"
	AttendanceUnverified = "unverified"
)

// AttendanceEntry is a single check-in/check-out pair recorded at the kiosk.
// Unverified entries keep the raw scanned identifier until a lead resolves them.
type AttendanceEntry struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	UserID            *uint      `json:"user_id" gorm:"index"`
	RecordedStudentID *string    `json:"recorded_student_id" gorm:"size:16;index"`
	RecordedBarcodeID *string    `json:"recorded_barcode_id" gorm:"size:64;index"`
	CheckIn           *time.Time `json:"check_in" gorm:"index"`
	CheckOut          *time.Time `json:"check_out"`
	Status            string     `json:"status" gorm:"size:20;default:ok"` // ok/missing_in/missing_out/blocked/unverified
	Note              *string    `json:"note" gorm:"size:500"`
}

func (AttendanceEntry) TableName() string {
	return "attendance_entries"
}
