package entity

import "time"

// Ticket types
const (
	TicketTypeFeature = "feature"
	TicketTypeIssue   = "issue"
)

// ValidTicketType reports whether value names a ticket type.
func ValidTicketType(value string) bool {
	return value == TicketTypeFeature || value == TicketTypeIssue
}

// Ticket priorities
const (
	TicketPriorityLow    = "low"
	TicketPriorityNormal = "normal"
	TicketPriorityHigh   = "high"
)

// ValidTicketPriority reports whether value names a ticket priority.
func ValidTicketPriority(value string) bool {
	switch value {
	case TicketPriorityLow, TicketPriorityNormal, TicketPriorityHigh:
		return true
	}
	return false
}

// Ticket statuses
const (
	TicketStatusOpen         = "open"
	TicketStatusAcknowledged = "acknowledged"
	TicketStatusResolved     = "resolved"
)

// ValidTicketStatus reports whether value names a ticket status.
func ValidTicketStatus(value string) bool {
	switch value {
	case TicketStatusOpen, TicketStatusAcknowledged, TicketStatusResolved:
		return true
	}
	return false
}

// Ticket is a feature request or issue report filed against the shop portal.
type Ticket struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Type          string    `json:"type" gorm:"size:20;not null;index"` // feature/issue
	Priority      string    `json:"priority" gorm:"size:20;default:normal;index"`
	Status        string    `json:"status" gorm:"size:20;default:open;index"`
	Subject       string    `json:"subject" gorm:"size:200;not null"`
	Details       string    `json:"details" gorm:"type:text;not null"`
	RequesterID   *uint     `json:"requester_id" gorm:"index"`
	RequesterName string    `json:"requester_name" gorm:"size:200;not null"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Ticket) TableName() string {
	return "tickets"
}
