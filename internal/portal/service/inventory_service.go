package service

import (
	"context"
	"strings"
	"time"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
)

// InventoryService tracks stock levels and the adjustment ledger.
type InventoryService struct {
	inventory *repository.InventoryRepository
}

func NewInventoryService(inventory *repository.InventoryRepository) *InventoryService {
	return &InventoryService{inventory: inventory}
}

// ItemCreateInput is a new stocked item.
type ItemCreateInput struct {
	PartName         string   `json:"part_name"`
	SKU              *string  `json:"sku"`
	PartType         string   `json:"part_type"`
	Location         *string  `json:"location"`
	Quantity         int      `json:"quantity"`
	UnitCost         *float64 `json:"unit_cost"`
	ReorderThreshold *int     `json:"reorder_threshold"`
	Tags             *string  `json:"tags"`
	VendorName       *string  `json:"vendor_name"`
	VendorLink       *string  `json:"vendor_link"`
}

// ItemUpdateInput is a partial edit; nil fields are untouched.
type ItemUpdateInput struct {
	PartName         *string  `json:"part_name"`
	SKU              *string  `json:"sku"`
	PartType         *string  `json:"part_type"`
	Location         *string  `json:"location"`
	Quantity         *int     `json:"quantity"`
	UnitCost         *float64 `json:"unit_cost"`
	ReorderThreshold *int     `json:"reorder_threshold"`
	Tags             *string  `json:"tags"`
	VendorName       *string  `json:"vendor_name"`
	VendorLink       *string  `json:"vendor_link"`
}

// AdjustInput applies a signed quantity delta with its audit fields.
type AdjustInput struct {
	Delta  int     `json:"delta"`
	Reason string  `json:"reason"`
	Note   *string `json:"note"`
}

// List returns items matching a free text search and location filter.
func (s *InventoryService) List(ctx context.Context, search, location string) ([]entity.InventoryItem, error) {
	return s.inventory.FindAll(ctx, search, location)
}

// Create adds a stocked item; lead only via routing.
func (s *InventoryService) Create(ctx context.Context, input *ItemCreateInput) (*entity.InventoryItem, error) {
	partName := strings.TrimSpace(input.PartName)
	if partName == "" {
		return nil, NewValidationError("Part name is required")
	}
	partType := input.PartType
	if partType == "" {
		partType = entity.InventoryPartCustom
	}
	if !entity.ValidInventoryPartType(partType) {
		return nil, NewValidationError("Invalid part type")
	}
	item := &entity.InventoryItem{
		PartName:         partName,
		SKU:              input.SKU,
		PartType:         partType,
		Location:         input.Location,
		Quantity:         input.Quantity,
		UnitCost:         input.UnitCost,
		ReorderThreshold: input.ReorderThreshold,
		Tags:             input.Tags,
		VendorName:       input.VendorName,
		VendorLink:       input.VendorLink,
		UpdatedAt:        time.Now().UTC(),
	}
	if err := s.inventory.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Update edits item metadata; quantity changes should go through Adjust so
// the ledger stays complete, but direct corrections are allowed.
func (s *InventoryService) Update(ctx context.Context, itemID uint, input *ItemUpdateInput) (*entity.InventoryItem, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if input.PartName != nil && strings.TrimSpace(*input.PartName) != "" {
		item.PartName = strings.TrimSpace(*input.PartName)
	}
	if input.SKU != nil {
		item.SKU = input.SKU
	}
	if input.PartType != nil {
		if !entity.ValidInventoryPartType(*input.PartType) {
			return nil, NewValidationError("Invalid part type")
		}
		item.PartType = *input.PartType
	}
	if input.Location != nil {
		item.Location = input.Location
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.UnitCost != nil {
		item.UnitCost = input.UnitCost
	}
	if input.ReorderThreshold != nil {
		item.ReorderThreshold = input.ReorderThreshold
	}
	if input.Tags != nil {
		item.Tags = input.Tags
	}
	if input.VendorName != nil {
		item.VendorName = input.VendorName
	}
	if input.VendorLink != nil {
		item.VendorLink = input.VendorLink
	}
	item.UpdatedAt = time.Now().UTC()
	if err := s.inventory.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Adjust applies a quantity delta and records who did it and why.
func (s *InventoryService) Adjust(ctx context.Context, actorID uint, itemID uint, input *AdjustInput) (*entity.InventoryItem, error) {
	item, err := s.findItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	reason := input.Reason
	if reason == "" {
		reason = entity.InventoryReasonManual
	}
	if !entity.ValidInventoryReason(reason) {
		return nil, NewValidationError("Invalid adjustment reason")
	}
	item.Quantity += input.Delta
	item.UpdatedAt = time.Now().UTC()
	txn := &entity.InventoryTransaction{
		ItemID:      item.ID,
		Delta:       input.Delta,
		Reason:      reason,
		Note:        input.Note,
		PerformedBy: &actorID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.inventory.AdjustWithTransaction(ctx, item, txn); err != nil {
		return nil, err
	}
	return item, nil
}

// Transactions returns an item's adjustment history, newest first.
func (s *InventoryService) Transactions(ctx context.Context, itemID uint) ([]entity.InventoryTransaction, error) {
	if _, err := s.findItem(ctx, itemID); err != nil {
		return nil, err
	}
	return s.inventory.FindTransactions(ctx, itemID)
}

// Delete removes an item.
func (s *InventoryService) Delete(ctx context.Context, itemID uint) error {
	if _, err := s.findItem(ctx, itemID); err != nil {
		return err
	}
	return s.inventory.Delete(ctx, itemID)
}

func (s *InventoryService) findItem(ctx context.Context, itemID uint) (*entity.InventoryItem, error) {
	item, err := s.inventory.FindByID(ctx, itemID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("Item not found")
		}
		return nil, err
	}
	return item, nil
}
