package entity

import "time"

// Roles
const (
	RoleStudent = "student"
	RoleLead    = "lead"
	RoleAdmin   = "admin"
)

// ValidRole reports whether value names a known role.
func ValidRole(value string) bool {
	switch value {
	case RoleStudent, RoleLead, RoleAdmin:
		return true
	}
	return false
}

// IsLead reports whether role carries lead privileges.
func IsLead(role string) bool {
	return role == RoleLead || role == RoleAdmin
}

// User is a registered portal account.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Email          string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	FullName       string    `json:"full_name" gorm:"size:200;not null"`
	Role           string    `json:"role" gorm:"size:20;default:student;index"` // student/lead/admin
	HashedPassword string    `json:"-" gorm:"size:128;not null"`
	BarcodeID      *string   `json:"barcode_id" gorm:"size:64;uniqueIndex"`
	StudentID      *string   `json:"student_id" gorm:"size:16;uniqueIndex"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// PendingUser is a self-service account request awaiting admin review.
type PendingUser struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Email         string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	FullName      string    `json:"full_name" gorm:"size:200;not null"`
	PasswordHash  string    `json:"-" gorm:"size:128;not null"`
	RequestedRole string    `json:"requested_role" gorm:"size:20;default:student"`
	CreatedAt     time.Time `json:"created_at"`
}

func (PendingUser) TableName() string {
	return "pending_users"
}
