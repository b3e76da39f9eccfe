package repository

import (
	"context"
	"errors"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"gorm.io/gorm"
)

// PartRepository stores manufacturing board parts.
type PartRepository struct {
	db *gorm.DB
}

func NewPartRepository(db *gorm.DB) *PartRepository {
	return &PartRepository{db: db}
}

// FindAll returns parts matching the given filters. Board ordering is applied
// by the service since it depends on status and priority weights.
func (r *PartRepository) FindAll(ctx context.Context, filters map[string]string) ([]entity.ManufacturingPart, error) {
	var parts []entity.ManufacturingPart

	query := r.db.WithContext(ctx).Model(&entity.ManufacturingPart{})

	if status := filters["status"]; status != "" {
		query = query.Where("status = ?", status)
	}
	if mType := filters["manufacturing_type"]; mType != "" {
		query = query.Where("manufacturing_type = ?", mType)
	}
	if priority := filters["priority"]; priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if search := filters["search"]; search != "" {
		like := "%" + search + "%"
		query = query.Where("part_name ILIKE ? OR subsystem ILIKE ? OR material ILIKE ?", like, like, like)
	}

	err := query.Find(&parts).Error
	return parts, err
}

func (r *PartRepository) FindByID(ctx context.Context, id uint) (*entity.ManufacturingPart, error) {
	var part entity.ManufacturingPart
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&part).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &part, nil
}

func (r *PartRepository) Create(ctx context.Context, part *entity.ManufacturingPart) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *PartRepository) Update(ctx context.Context, part *entity.ManufacturingPart) error {
	return r.db.WithContext(ctx).Save(part).Error
}

func (r *PartRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.ManufacturingPart{}, "id = ?", id).Error
}

// MaxLanePosition returns the highest lane_position inside a status bucket,
// or 0 when the bucket is empty.
func (r *PartRepository) MaxLanePosition(ctx context.Context, status string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&entity.ManufacturingPart{}).
		Where("status = ?", status).
		Select("MAX(lane_position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// StatusPriorityRow is a projection used by the board summary.
type StatusPriorityRow struct {
	Status   string
	Priority string
}

// StatusPriorityRows returns status and priority for every part.
func (r *PartRepository) StatusPriorityRows(ctx context.Context) ([]StatusPriorityRow, error) {
	var rows []StatusPriorityRow
	err := r.db.WithContext(ctx).
		Model(&entity.ManufacturingPart{}).
		Select("status", "priority").
		Scan(&rows).Error
	return rows, err
}
