package repository

import (
	"context"
	"errors"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"gorm.io/gorm"
)

// OrderRepository stores purchase requests.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) FindAll(ctx context.Context) ([]entity.OrderRequest, error) {
	var orders []entity.OrderRequest
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) FindByID(ctx context.Context, id uint) (*entity.OrderRequest, error) {
	var order entity.OrderRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindPendingDuplicate checks for an open request by the same requester for
// the same part.
func (r *OrderRepository) FindPendingDuplicate(ctx context.Context, requesterName, partName string) (*entity.OrderRequest, error) {
	var order entity.OrderRequest
	err := r.db.WithContext(ctx).
		Where("requester_name = ? AND part_name = ? AND status = ?", requesterName, partName, entity.OrderStatusPending).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.OrderRequest) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *OrderRepository) Update(ctx context.Context, order *entity.OrderRequest) error {
	return r.db.WithContext(ctx).Save(order).Error
}

func (r *OrderRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.OrderRequest{}, "id = ?", id).Error
}

// ClearUser detaches requests from a deleted account, keeping the name.
func (r *OrderRepository) ClearUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&entity.OrderRequest{}).
		Where("requester_id = ?", userID).
		Update("requester_id", nil).Error
}
