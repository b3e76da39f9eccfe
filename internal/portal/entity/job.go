package entity

import "time"

// Shop job statuses
const (
	JobStatusSubmitted = "submitted"
	JobStatusInReview  = "in_review"
	JobStatusApproved  = "approved"
	JobStatusRejected  = "rejected"
	JobStatusCompleted = "completed"
)

// ValidJobStatus reports whether value names a shop job status.
func ValidJobStatus(value string) bool {
	switch value {
	case JobStatusSubmitted, JobStatusInReview, JobStatusApproved, JobStatusRejected, JobStatusCompleted:
		return true
	}
	return false
}

// Shop queues
const (
	ShopCNC      = "cnc"
	ShopPrinting = "printing"
)

// ValidShop reports whether value names a shop queue.
func ValidShop(value string) bool {
	return value == ShopCNC || value == ShopPrinting
}

// ShopJob is a file dropped into one of the shop queues for review.
type ShopJob struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Shop         string     `json:"shop" gorm:"size:20;not null;index"` // cnc/printing
	PartName     string     `json:"part_name" gorm:"size:200;not null;index"`
	OwnerName    string     `json:"owner_name" gorm:"size:200;not null"`
	SubmitterID  *uint      `json:"submitter_id" gorm:"index"`
	Notes        *string    `json:"notes" gorm:"type:text"`
	FileName     string     `json:"file_name" gorm:"size:256;not null"`
	FilePath     string     `json:"file_path" gorm:"size:512;not null"`
	Status       string     `json:"status" gorm:"size:20;default:submitted;index"`
	CreatedAt    time.Time  `json:"created_at" gorm:"index"`
	QueuePosition int       `json:"queue_position" gorm:"default:0;index"`
	ClaimedByID  *uint      `json:"claimed_by_id"`
	ClaimedAt    *time.Time `json:"claimed_at"`
}

func (ShopJob) TableName() string {
	return "shop_jobs"
}
