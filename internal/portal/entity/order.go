package entity

import "time"

// Order request statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusOrdered   = "ordered"
	OrderStatusReceived  = "received"
	OrderStatusCancelled = "cancelled"
)

// ValidOrderStatus reports whether value names an order status.
func ValidOrderStatus(value string) bool {
	switch value {
	case OrderStatusPending, OrderStatusOrdered, OrderStatusReceived, OrderStatusCancelled:
		return true
	}
	return false
}

// OrderRequest is a purchase request awaiting lead action.
type OrderRequest struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	RequesterID   *uint     `json:"requester_id" gorm:"index"`
	RequesterName string    `json:"requester_name" gorm:"size:200;not null"`
	PartName      string    `json:"part_name" gorm:"size:200;not null"`
	VendorLink    string    `json:"vendor_link" gorm:"size:500;not null"`
	PriceUSD      float64   `json:"price_usd" gorm:"not null"`
	Justification *string   `json:"justification" gorm:"type:text"`
	Status        string    `json:"status" gorm:"size:20;default:pending;index"`
	SheetRow      *string   `json:"sheet_row" gorm:"size:64"`
	CreatedAt     time.Time `json:"created_at"`
}

func (OrderRequest) TableName() string {
	return "order_requests"
}
