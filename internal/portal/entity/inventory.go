package entity

import "time"

// Inventory transaction reasons
const (
	InventoryReasonManual     = "manual"
	InventoryReasonJob        = "job"
	InventoryReasonCorrection = "correction"
)

// ValidInventoryReason reports whether value names a transaction reason.
func ValidInventoryReason(value string) bool {
	switch value {
	case InventoryReasonManual, InventoryReasonJob, InventoryReasonCorrection:
		return true
	}
	return false
}

// Inventory part types
const (
	InventoryPartCustom = "custom"
	InventoryPartCOTS   = "cots"
)

// ValidInventoryPartType reports whether value names an inventory part type.
func ValidInventoryPartType(value string) bool {
	return value == InventoryPartCustom || value == InventoryPartCOTS
}

// InventoryItem is a stocked part with a running quantity.
type InventoryItem struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	PartName         string    `json:"part_name" gorm:"size:200;not null"`
	SKU              *string   `json:"sku" gorm:"size:64;index"`
	PartType         string    `json:"part_type" gorm:"size:20;default:custom;index"` // custom/cots
	Location         *string   `json:"location" gorm:"size:100;index"`
	Quantity         int       `json:"quantity" gorm:"default:0"`
	UnitCost         *float64  `json:"unit_cost"`
	ReorderThreshold *int      `json:"reorder_threshold"`
	Tags             *string   `json:"tags" gorm:"size:500"`
	VendorName       *string   `json:"vendor_name" gorm:"size:200"`
	VendorLink       *string   `json:"vendor_link" gorm:"size:500"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

// InventoryTransaction is an immutable quantity adjustment against an item.
type InventoryTransaction struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ItemID      uint      `json:"item_id" gorm:"not null;index"`
	Delta       int       `json:"delta" gorm:"not null"`
	Reason      string    `json:"reason" gorm:"size:20;default:manual"`
	Note        *string   `json:"note" gorm:"size:500"`
	PerformedBy *uint     `json:"performed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (InventoryTransaction) TableName() string {
	return "inventory_transactions"
}
