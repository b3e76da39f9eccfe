package repository

import (
	"context"
	"errors"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"gorm.io/gorm"
)

// ScheduleRepository stores weekly attendance windows.
type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) FindAll(ctx context.Context) ([]entity.ScheduleBlock, error) {
	var blocks []entity.ScheduleBlock
	err := r.db.WithContext(ctx).Order("weekday ASC, start_time ASC").Find(&blocks).Error
	return blocks, err
}

// FindActiveByWeekday returns the active blocks for a weekday (0=Monday).
func (r *ScheduleRepository) FindActiveByWeekday(ctx context.Context, weekday int) ([]entity.ScheduleBlock, error) {
	var blocks []entity.ScheduleBlock
	err := r.db.WithContext(ctx).
		Where("weekday = ? AND active = ?", weekday, true).
		Find(&blocks).Error
	return blocks, err
}

func (r *ScheduleRepository) FindByID(ctx context.Context, id uint) (*entity.ScheduleBlock, error) {
	var block entity.ScheduleBlock
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&block).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &block, nil
}

func (r *ScheduleRepository) Create(ctx context.Context, block *entity.ScheduleBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

func (r *ScheduleRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.ScheduleBlock{}, "id = ?", id).Error
}
