package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/shared/sheets"
)

// SettingsService owns the app config row, the per-section sheet links,
// and the manual "sync now" push.
type SettingsService struct {
	settings *repository.SettingsRepository
	exports  *ExportService
	sheets   *sheets.Client
	logger   *zap.Logger
}

func NewSettingsService(settings *repository.SettingsRepository, exports *ExportService, sheetsClient *sheets.Client, logger *zap.Logger) *SettingsService {
	return &SettingsService{settings: settings, exports: exports, sheets: sheetsClient, logger: logger}
}

// ConfigUpdateInput toggles app-wide settings; nil fields are untouched.
type ConfigUpdateInput struct {
	RestrictAttendanceToSchedule *bool `json:"restrict_attendance_to_schedule"`
}

// SheetLinkInput binds a section to a webhook URL.
type SheetLinkInput struct {
	URL string `json:"url"`
}

// SyncResult reports a completed push.
type SyncResult struct {
	Synced  bool   `json:"synced"`
	Section string `json:"section"`
	Rows    int    `json:"rows"`
	Target  string `json:"target"`
}

// GetConfig returns the app config, creating defaults on first call.
func (s *SettingsService) GetConfig(ctx context.Context) (*entity.AppConfig, error) {
	return s.settings.GetAppConfig(ctx)
}

// UpdateConfig applies config changes; admin only via routing.
func (s *SettingsService) UpdateConfig(ctx context.Context, input *ConfigUpdateInput) (*entity.AppConfig, error) {
	config, err := s.settings.GetAppConfig(ctx)
	if err != nil {
		return nil, err
	}
	if input.RestrictAttendanceToSchedule != nil {
		config.RestrictAttendanceToSchedule = *input.RestrictAttendanceToSchedule
	}
	if err := s.settings.SaveAppConfig(ctx, config); err != nil {
		return nil, err
	}
	return config, nil
}

// ListSheetLinks returns every configured link.
func (s *SettingsService) ListSheetLinks(ctx context.Context) ([]entity.SheetLink, error) {
	return s.settings.FindAllSheetLinks(ctx)
}

// PutSheetLink creates or replaces a section's webhook URL.
func (s *SettingsService) PutSheetLink(ctx context.Context, actorID uint, section string, input *SheetLinkInput) (*entity.SheetLink, error) {
	if !entity.ValidSheetSection(section) {
		return nil, NewValidationError("Unknown sheet section")
	}
	target := strings.TrimSpace(input.URL)
	if target == "" {
		return nil, NewValidationError("URL is required")
	}
	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme != "https" || parsed.Host == "" {
		return nil, NewValidationError("URL must be a valid https address")
	}

	link, err := s.settings.FindSheetLink(ctx, section)
	if err != nil {
		if err != repository.ErrNotFound {
			return nil, err
		}
		link = &entity.SheetLink{Section: section}
	}
	link.URL = target
	link.UpdatedByID = &actorID
	link.UpdatedAt = time.Now().UTC()

	if link.ID == 0 {
		err = s.settings.CreateSheetLink(ctx, link)
	} else {
		err = s.settings.UpdateSheetLink(ctx, link)
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

// DeleteSheetLink detaches a section from its sheet.
func (s *SettingsService) DeleteSheetLink(ctx context.Context, section string) error {
	if !entity.ValidSheetSection(section) {
		return NewValidationError("Unknown sheet section")
	}
	if _, err := s.settings.FindSheetLink(ctx, section); err != nil {
		if err == repository.ErrNotFound {
			return NewNotFoundError("No sheet URL attached for this section")
		}
		return err
	}
	return s.settings.DeleteSheetLink(ctx, section)
}

// SyncSection pushes a section's full dataset to its linked sheet.
func (s *SettingsService) SyncSection(ctx context.Context, section string) (*SyncResult, error) {
	if !entity.ValidSheetSection(section) {
		return nil, NewValidationError("Unknown sheet section")
	}
	link, err := s.settings.FindSheetLink(ctx, section)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("No sheet URL attached for this section")
		}
		return nil, err
	}

	title, headers, rows, err := s.exports.SectionDataset(ctx, section)
	if err != nil {
		return nil, err
	}
	cells := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells[i] = make([]interface{}, len(row))
		for j, value := range row {
			cells[i][j] = value
		}
	}

	if err := s.sheets.Push(ctx, link.URL, title, headers, cells); err != nil {
		s.logger.Warn("Sheet sync failed", zap.String("section", section), zap.Error(err))
		return nil, NewValidationError("Sheet sync failed: %v", err)
	}

	return &SyncResult{Synced: true, Section: section, Rows: len(rows), Target: link.URL}, nil
}
