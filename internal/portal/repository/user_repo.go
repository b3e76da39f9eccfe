package repository

import (
	"context"
	"errors"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"gorm.io/gorm"
)

// UserRepository stores registered accounts and pending signups.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByBarcode resolves a scanned badge against the barcode column only.
func (r *UserRepository) FindByBarcode(ctx context.Context, barcode string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("barcode_id = ?", barcode).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByStudentID resolves a typed-in number against the student id column only.
func (r *UserRepository) FindByStudentID(ctx context.Context, studentID string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindByIDs returns the users matching ids, in no particular order.
func (r *UserRepository) FindByIDs(ctx context.Context, ids []uint) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	var users []entity.User
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

func (r *UserRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	err := r.db.WithContext(ctx).Order("full_name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&total).Error
	return total, err
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.User{}, "id = ?", id).Error
}

// Pending signups

func (r *UserRepository) FindPendingByID(ctx context.Context, id uint) (*entity.PendingUser, error) {
	var pending entity.PendingUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pending, nil
}

func (r *UserRepository) FindPendingByEmail(ctx context.Context, email string) (*entity.PendingUser, error) {
	var pending entity.PendingUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &pending, nil
}

func (r *UserRepository) FindAllPending(ctx context.Context) ([]entity.PendingUser, error) {
	var pending []entity.PendingUser
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&pending).Error
	return pending, err
}

func (r *UserRepository) CreatePending(ctx context.Context, pending *entity.PendingUser) error {
	return r.db.WithContext(ctx).Create(pending).Error
}

func (r *UserRepository) DeletePending(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.PendingUser{}, "id = ?", id).Error
}
