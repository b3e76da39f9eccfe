package service

import (
	"context"
	"time"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
)

// ScheduleService manages the weekly attendance windows.
type ScheduleService struct {
	schedules *repository.ScheduleRepository
}

func NewScheduleService(schedules *repository.ScheduleRepository) *ScheduleService {
	return &ScheduleService{schedules: schedules}
}

// BlockCreateInput is a new weekly window. Times are "HH:MM".
type BlockCreateInput struct {
	Weekday   int    `json:"weekday"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Active    bool   `json:"active"`
}

// List returns every block ordered by weekday.
func (s *ScheduleService) List(ctx context.Context) ([]entity.ScheduleBlock, error) {
	return s.schedules.FindAll(ctx)
}

// Create adds a window; admin only via routing.
func (s *ScheduleService) Create(ctx context.Context, input *BlockCreateInput) (*entity.ScheduleBlock, error) {
	if input.Weekday < 0 || input.Weekday > 6 {
		return nil, NewValidationError("Weekday must be between 0 and 6")
	}
	start, err := normalizeClock(input.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := normalizeClock(input.EndTime)
	if err != nil {
		return nil, err
	}
	if end <= start {
		return nil, NewValidationError("End time must be after start time")
	}
	block := &entity.ScheduleBlock{
		Weekday:   input.Weekday,
		StartTime: start,
		EndTime:   end,
		Active:    input.Active,
	}
	if err := s.schedules.Create(ctx, block); err != nil {
		return nil, err
	}
	return block, nil
}

// Delete removes a window; admin only via routing.
func (s *ScheduleService) Delete(ctx context.Context, blockID uint) error {
	if _, err := s.schedules.FindByID(ctx, blockID); err != nil {
		if err == repository.ErrNotFound {
			return NewNotFoundError("Block not found")
		}
		return err
	}
	return s.schedules.Delete(ctx, blockID)
}

// normalizeClock parses "HH:MM" (or "HH:MM:SS") into canonical "HH:MM".
func normalizeClock(value string) (string, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("15:04"), nil
		}
	}
	return "", NewValidationError("Invalid time format: %s", value)
}
