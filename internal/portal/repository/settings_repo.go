package repository

import (
	"context"
	"errors"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"gorm.io/gorm"
)

// SettingsRepository stores the single-row app config and sheet links.
type SettingsRepository struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// GetAppConfig returns the config row, creating it with defaults on first use.
func (r *SettingsRepository) GetAppConfig(ctx context.Context) (*entity.AppConfig, error) {
	var config entity.AppConfig
	err := r.db.WithContext(ctx).Where("id = ?", 1).First(&config).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			config = entity.AppConfig{ID: 1, RestrictAttendanceToSchedule: true}
			if err := r.db.WithContext(ctx).Create(&config).Error; err != nil {
				return nil, err
			}
			return &config, nil
		}
		return nil, err
	}
	return &config, nil
}

func (r *SettingsRepository) SaveAppConfig(ctx context.Context, config *entity.AppConfig) error {
	return r.db.WithContext(ctx).Save(config).Error
}

func (r *SettingsRepository) FindAllSheetLinks(ctx context.Context) ([]entity.SheetLink, error) {
	var links []entity.SheetLink
	err := r.db.WithContext(ctx).Find(&links).Error
	return links, err
}

func (r *SettingsRepository) FindSheetLink(ctx context.Context, section string) (*entity.SheetLink, error) {
	var link entity.SheetLink
	err := r.db.WithContext(ctx).Where("section = ?", section).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

func (r *SettingsRepository) CreateSheetLink(ctx context.Context, link *entity.SheetLink) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *SettingsRepository) UpdateSheetLink(ctx context.Context, link *entity.SheetLink) error {
	return r.db.WithContext(ctx).Save(link).Error
}

func (r *SettingsRepository) DeleteSheetLink(ctx context.Context, section string) error {
	return r.db.WithContext(ctx).Delete(&entity.SheetLink{}, "section = ?", section).Error
}
