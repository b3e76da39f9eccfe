package repository

import (
	"context"
	"errors"
	"time"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"gorm.io/gorm"
)

// AttendanceRepository stores kiosk check-in/check-out entries.
type AttendanceRepository struct {
	db *gorm.DB
}

func NewAttendanceRepository(db *gorm.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) FindByID(ctx context.Context, id uint) (*entity.AttendanceEntry, error) {
	var entry entity.AttendanceEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindOpenByUser returns the newest entry without a check-out for a known user.
func (r *AttendanceRepository) FindOpenByUser(ctx context.Context, userID uint) (*entity.AttendanceEntry, error) {
	var entry entity.AttendanceEntry
	err := r.db.WithContext(ctx).
		Where("check_out IS NULL AND user_id = ?", userID).
		Order("check_in DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindOpenByStudentID returns the newest open entry matching a raw scanned student ID.
func (r *AttendanceRepository) FindOpenByStudentID(ctx context.Context, studentID string) (*entity.AttendanceEntry, error) {
	var entry entity.AttendanceEntry
	err := r.db.WithContext(ctx).
		Where("check_out IS NULL AND recorded_student_id = ?", studentID).
		Order("check_in DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindOpenByBarcodeID returns the newest open entry matching a raw scanned barcode.
func (r *AttendanceRepository) FindOpenByBarcodeID(ctx context.Context, barcodeID string) (*entity.AttendanceEntry, error) {
	var entry entity.AttendanceEntry
	err := r.db.WithContext(ctx).
		Where("check_out IS NULL AND recorded_barcode_id = ?", barcodeID).
		Order("check_in DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// CountOpenBetween counts entries checked in inside [start, end] that have not checked out.
func (r *AttendanceRepository) CountOpenBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.AttendanceEntry{}).
		Where("check_in >= ? AND check_in <= ? AND check_out IS NULL", start, end).
		Count(&total).Error
	return total, err
}

// FindBetween returns entries checked in inside [start, end], newest first.
func (r *AttendanceRepository) FindBetween(ctx context.Context, start, end time.Time) ([]entity.AttendanceEntry, error) {
	var entries []entity.AttendanceEntry
	err := r.db.WithContext(ctx).
		Where("check_in >= ? AND check_in <= ?", start, end).
		Order("check_in DESC").
		Find(&entries).Error
	return entries, err
}

// FindAll returns every entry ordered by check-in ascending.
func (r *AttendanceRepository) FindAll(ctx context.Context) ([]entity.AttendanceEntry, error) {
	var entries []entity.AttendanceEntry
	err := r.db.WithContext(ctx).Order("check_in ASC").Find(&entries).Error
	return entries, err
}

func (r *AttendanceRepository) Create(ctx context.Context, entry *entity.AttendanceEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *AttendanceRepository) Update(ctx context.Context, entry *entity.AttendanceEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *AttendanceRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&entity.AttendanceEntry{}, "id = ?", id).Error
}

// UnlinkUser detaches entries from a deleted account. Raw identifiers are
// backfilled first so the history still names who scanned.
func (r *AttendanceRepository) UnlinkUser(ctx context.Context, user *entity.User) error {
	if user.StudentID != nil {
		if err := r.db.WithContext(ctx).
			Model(&entity.AttendanceEntry{}).
			Where("user_id = ? AND recorded_student_id IS NULL", user.ID).
			Update("recorded_student_id", *user.StudentID).Error; err != nil {
			return err
		}
	}
	if user.BarcodeID != nil {
		if err := r.db.WithContext(ctx).
			Model(&entity.AttendanceEntry{}).
			Where("user_id = ? AND recorded_barcode_id IS NULL", user.ID).
			Update("recorded_barcode_id", *user.BarcodeID).Error; err != nil {
			return err
		}
	}
	return r.db.WithContext(ctx).
		Model(&entity.AttendanceEntry{}).
		Where("user_id = ?", user.ID).
		Update("user_id", nil).Error
}
