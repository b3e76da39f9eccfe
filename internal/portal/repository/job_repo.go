package repository

import (
	"context"
	"errors"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"gorm.io/gorm"
)

// JobRepository stores shop queue jobs.
type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// FindAll returns jobs in queue order, optionally filtered by shop.
func (r *JobRepository) FindAll(ctx context.Context, shop string) ([]entity.ShopJob, error) {
	var jobs []entity.ShopJob
	query := r.db.WithContext(ctx).Model(&entity.ShopJob{})
	if shop != "" {
		query = query.Where("shop = ?", shop)
	}
	err := query.Order("queue_position ASC, created_at ASC").Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) FindByID(ctx context.Context, id uint) (*entity.ShopJob, error) {
	var job entity.ShopJob
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &job, nil
}

// FindByIDs returns the jobs matching ids.
func (r *JobRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.ShopJob, error) {
	if len(ids) == 0 {
		return []entity.ShopJob{}, nil
	}
	var jobs []entity.ShopJob
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&jobs).Error
	return jobs, err
}

func (r *JobRepository) Create(ctx context.Context, job *entity.ShopJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *JobRepository) Update(ctx context.Context, job *entity.ShopJob) error {
	return r.db.WithContext(ctx).Save(job).Error
}

func (r *JobRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.ShopJob{}, "id = ?", id).Error
}

// MaxQueuePosition returns the highest queue_position inside a shop, or 0.
func (r *JobRepository) MaxQueuePosition(ctx context.Context, shop string) (int, error) {
	var max *int
	err := r.db.WithContext(ctx).
		Model(&entity.ShopJob{}).
		Where("shop = ?", shop).
		Select("MAX(queue_position)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// ClearUser detaches jobs from a deleted submitter and releases their claims.
func (r *JobRepository) ClearUser(ctx context.Context, userID uint) error {
	if err := r.db.WithContext(ctx).
		Model(&entity.ShopJob{}).
		Where("submitter_id = ?", userID).
		Update("submitter_id", nil).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&entity.ShopJob{}).
		Where("claimed_by_id = ?", userID).
		Updates(map[string]interface{}{"claimed_by_id": nil, "claimed_at": nil}).Error
}
