package repository

import (
	"context"
	"errors"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"gorm.io/gorm"
)

// InventoryRepository stores stocked items and their adjustment history.
type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// FindAll returns items ordered by part name, optionally filtered by a free
// text search and an exact location match.
func (r *InventoryRepository) FindAll(ctx context.Context, search, location string) ([]entity.InventoryItem, error) {
	var items []entity.InventoryItem

	query := r.db.WithContext(ctx).Model(&entity.InventoryItem{})

	if search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"part_name ILIKE ? OR sku ILIKE ? OR location ILIKE ? OR tags ILIKE ?",
			like, like, like, like,
		)
	}
	if location != "" {
		query = query.Where("location = ?", location)
	}

	err := query.Order("part_name ASC").Find(&items).Error
	return items, err
}

func (r *InventoryRepository) FindByID(ctx context.Context, id uint) (*entity.InventoryItem, error) {
	var item entity.InventoryItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *InventoryRepository) Create(ctx context.Context, item *entity.InventoryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *InventoryRepository) Update(ctx context.Context, item *entity.InventoryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *InventoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.InventoryItem{}, "id = ?", id).Error
}

// AdjustWithTransaction applies a quantity delta and records the adjustment
// atomically.
func (r *InventoryRepository) AdjustWithTransaction(ctx context.Context, item *entity.InventoryItem, txn *entity.InventoryTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		return tx.Create(txn).Error
	})
}

// FindTransactions returns an item's adjustment history, newest first.
func (r *InventoryRepository) FindTransactions(ctx context.Context, itemID uint) ([]entity.InventoryTransaction, error) {
	var txns []entity.InventoryTransaction
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("created_at DESC").
		Find(&txns).Error
	return txns, err
}

// ClearUser detaches transactions from a deleted account.
func (r *InventoryRepository) ClearUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&entity.InventoryTransaction{}).
		Where("performed_by = ?", userID).
		Update("performed_by", nil).Error
}
