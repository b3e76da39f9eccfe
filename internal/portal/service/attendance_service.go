package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
)

// AttendanceService records kiosk scans and exposes attendance logs.
type AttendanceService struct {
	entries   *repository.AttendanceRepository
	users     *repository.UserRepository
	schedules *repository.ScheduleRepository
	settings  *repository.SettingsRepository
}

func NewAttendanceService(
	entries *repository.AttendanceRepository,
	users *repository.UserRepository,
	schedules *repository.ScheduleRepository,
	settings *repository.SettingsRepository,
) *AttendanceService {
	return &AttendanceService{entries: entries, users: users, schedules: schedules, settings: settings}
}

// ScanInput is one kiosk swipe.
type ScanInput struct {
	BarcodeID *string    `json:"barcode_id"`
	StudentID *string    `json:"student_id"`
	Mode      string     `json:"mode"` // "in" or "out", defaults to "in"
	Note      *string    `json:"note"`
	Timestamp *time.Time `json:"timestamp"`
}

// EntryView is an attendance row with the attendee resolved to a name.
type EntryView struct {
	ID                uint       `json:"id"`
	StudentName       string     `json:"student_name"`
	StudentIdentifier *string    `json:"student_identifier"`
	CheckIn           *time.Time `json:"check_in"`
	CheckOut          *time.Time `json:"check_out"`
	Status            string     `json:"status"`
	Note              *string    `json:"note"`
}

// LogItem is the slim shape shown on the kiosk's live feed.
type LogItem struct {
	ID          uint       `json:"id"`
	StudentName string     `json:"student_name"`
	CheckIn     *time.Time `json:"check_in"`
	CheckOut    *time.Time `json:"check_out"`
}

// DaySummary groups entries by calendar day for the review screen.
type DaySummary struct {
	Date    string      `json:"date"`
	Entries []EntryView `json:"entries"`
}

// TodaySummary counts who is still in the shop.
type TodaySummary struct {
	Date        string `json:"date"`
	OpenEntries int    `json:"open_entries"`
}

type resolvedAttendee struct {
	user      *entity.User
	studentID *string
	barcodeID *string
}

func isSixDigits(value string) bool {
	if len(value) != 6 {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *AttendanceService) resolveAttendee(ctx context.Context, input *ScanInput) (*resolvedAttendee, error) {
	var barcode, studentID string
	if input.BarcodeID != nil {
		barcode = strings.TrimSpace(*input.BarcodeID)
	}
	if input.StudentID != nil {
		studentID = strings.TrimSpace(*input.StudentID)
	}

	var user *entity.User
	if barcode != "" {
		if found, err := s.users.FindByBarcode(ctx, barcode); err == nil {
			user = found
		} else if err != repository.ErrNotFound {
			return nil, err
		}
	}
	if user == nil && studentID != "" {
		if found, err := s.users.FindByStudentID(ctx, studentID); err == nil {
			user = found
		} else if err != repository.ErrNotFound {
			return nil, err
		}
	}

	recordedStudentID := optional(studentID)
	recordedBarcodeID := optional(barcode)
	if user != nil {
		if recordedStudentID == nil {
			recordedStudentID = user.StudentID
		}
		if recordedBarcodeID == nil {
			recordedBarcodeID = user.BarcodeID
		}
		return &resolvedAttendee{user: user, studentID: recordedStudentID, barcodeID: recordedBarcodeID}, nil
	}

	if studentID == "" {
		return nil, NewNotFoundError("ID not registered")
	}
	if !isSixDigits(studentID) {
		return nil, NewValidationError("student_id must be a 6-digit number")
	}
	return &resolvedAttendee{studentID: recordedStudentID, barcodeID: recordedBarcodeID}, nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func (s *AttendanceService) openEntry(ctx context.Context, attendee *resolvedAttendee) (*entity.AttendanceEntry, error) {
	var entry *entity.AttendanceEntry
	var err error
	switch {
	case attendee.user != nil:
		entry, err = s.entries.FindOpenByUser(ctx, attendee.user.ID)
	case attendee.studentID != nil:
		entry, err = s.entries.FindOpenByStudentID(ctx, *attendee.studentID)
	case attendee.barcodeID != nil:
		entry, err = s.entries.FindOpenByBarcodeID(ctx, *attendee.barcodeID)
	default:
		return nil, nil
	}
	if err == repository.ErrNotFound {
		return nil, nil
	}
	return entry, err
}

// withinScheduledBlock reports whether ts falls inside an active weekly
// window. Weekdays count from Monday.
func (s *AttendanceService) withinScheduledBlock(ctx context.Context, ts time.Time) (bool, error) {
	weekday := (int(ts.Weekday()) + 6) % 7
	blocks, err := s.schedules.FindActiveByWeekday(ctx, weekday)
	if err != nil {
		return false, err
	}
	clock := ts.Format("15:04")
	for _, block := range blocks {
		if block.StartTime <= clock && clock <= block.EndTime {
			return true, nil
		}
	}
	return false, nil
}

// RecordScan processes a swipe: check-in when no entry is open, check-out
// against the open one. Scans outside scheduled hours are flagged
// unverified unless the attendee is an admin or the restriction is off.
func (s *AttendanceService) RecordScan(ctx context.Context, input *ScanInput) (*EntryView, error) {
	if (input.BarcodeID == nil || strings.TrimSpace(*input.BarcodeID) == "") &&
		(input.StudentID == nil || strings.TrimSpace(*input.StudentID) == "") {
		return nil, NewValidationError("barcode_id or student_id is required")
	}
	attendee, err := s.resolveAttendee(ctx, input)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if input.Timestamp != nil {
		now = input.Timestamp.UTC()
	}
	var noteText *string
	if input.Note != nil {
		if trimmed := strings.TrimSpace(*input.Note); trimmed != "" {
			noteText = &trimmed
		}
	}

	inBlock, err := s.withinScheduledBlock(ctx, now)
	if err != nil {
		return nil, err
	}
	appConfig, err := s.settings.GetAppConfig(ctx)
	if err != nil {
		return nil, err
	}
	isAdminAttendee := attendee.user != nil && attendee.user.Role == entity.RoleAdmin
	flagUnverified := appConfig.RestrictAttendanceToSchedule && !inBlock && !isAdminAttendee

	open, err := s.openEntry(ctx, attendee)
	if err != nil {
		return nil, err
	}

	mode := strings.ToLower(input.Mode)
	if mode == "" {
		mode = "in"
	}

	if mode == "out" {
		if open == nil {
			return nil, NewConflictError("Cannot check out before checking in")
		}
		open.CheckOut = &now
		if open.CheckIn != nil && !sameDay(*open.CheckIn, now) {
			open.Status = entity.AttendanceMissingOut
		}
		if noteText != nil {
			open.Note = noteText
		}
		if flagUnverified && open.Status == entity.AttendanceOK {
			open.Status = entity.AttendanceUnverified
		}
		if err := s.entries.Update(ctx, open); err != nil {
			return nil, err
		}
		return s.toView(open, attendee.user), nil
	}

	if open != nil {
		return nil, NewConflictError("Already checked in; check out first")
	}
	status := entity.AttendanceOK
	if flagUnverified {
		status = entity.AttendanceUnverified
	}
	entry := &entity.AttendanceEntry{
		RecordedStudentID: attendee.studentID,
		RecordedBarcodeID: attendee.barcodeID,
		CheckIn:           &now,
		Note:              noteText,
		Status:            status,
	}
	if attendee.user != nil {
		entry.UserID = &attendee.user.ID
	}
	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}
	return s.toView(entry, attendee.user), nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// TodaySummary counts entries still open today.
func (s *AttendanceService) TodaySummary(ctx context.Context) (*TodaySummary, error) {
	start, end := todayBounds()
	count, err := s.entries.CountOpenBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return &TodaySummary{Date: start.Format("2006-01-02"), OpenEntries: int(count)}, nil
}

// TodayLogs returns today's entries for the kiosk feed, newest first.
func (s *AttendanceService) TodayLogs(ctx context.Context) ([]LogItem, error) {
	start, end := todayBounds()
	entries, err := s.entries.FindBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	items := make([]LogItem, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		user, _ := s.entryUser(ctx, entry)
		items = append(items, LogItem{
			ID:          entry.ID,
			StudentName: displayName(entry, user),
			CheckIn:     entry.CheckIn,
			CheckOut:    entry.CheckOut,
		})
	}
	return items, nil
}

func todayBounds() (time.Time, time.Time) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

// DeleteEntry removes a record outright; admin only.
func (s *AttendanceService) DeleteEntry(ctx context.Context, entryID uint) error {
	if _, err := s.entries.FindByID(ctx, entryID); err != nil {
		if err == repository.ErrNotFound {
			return NewNotFoundError("Entry not found")
		}
		return err
	}
	return s.entries.Delete(ctx, entryID)
}

// UpdateEntryStatus lets leads verify or un-verify a flagged entry.
func (s *AttendanceService) UpdateEntryStatus(ctx context.Context, entryID uint, status string) (*EntryView, error) {
	entry, err := s.entries.FindByID(ctx, entryID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, NewNotFoundError("Entry not found")
		}
		return nil, err
	}
	if status != entity.AttendanceOK && status != entity.AttendanceUnverified {
		return nil, NewValidationError("Status can only be set to verified/unverified")
	}
	entry.Status = status
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}
	user, _ := s.entryUser(ctx, entry)
	return s.toView(entry, user), nil
}

// LogsByDate groups the full history by calendar day, newest day first.
func (s *AttendanceService) LogsByDate(ctx context.Context) ([]DaySummary, error) {
	entries, err := s.entries.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]EntryView)
	for i := range entries {
		entry := &entries[i]
		user, _ := s.entryUser(ctx, entry)
		ts := time.Now().UTC()
		if entry.CheckIn != nil {
			ts = *entry.CheckIn
		} else if entry.CheckOut != nil {
			ts = *entry.CheckOut
		}
		day := ts.Format("2006-01-02")
		grouped[day] = append(grouped[day], *s.toView(entry, user))
	}
	days := make([]DaySummary, 0, len(grouped))
	for day, views := range grouped {
		days = append(days, DaySummary{Date: day, Entries: views})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date > days[j].Date })
	return days, nil
}

func (s *AttendanceService) entryUser(ctx context.Context, entry *entity.AttendanceEntry) (*entity.User, error) {
	if entry.UserID == nil {
		return nil, nil
	}
	user, err := s.users.FindByID(ctx, *entry.UserID)
	if err != nil {
		return nil, nil
	}
	return user, nil
}

func displayName(entry *entity.AttendanceEntry, user *entity.User) string {
	if user != nil {
		return user.FullName
	}
	if entry.RecordedStudentID != nil {
		return *entry.RecordedStudentID
	}
	if entry.RecordedBarcodeID != nil {
		return *entry.RecordedBarcodeID
	}
	return "Unknown"
}

func (s *AttendanceService) toView(entry *entity.AttendanceEntry, user *entity.User) *EntryView {
	identifier := entry.RecordedStudentID
	if identifier == nil && user != nil && user.StudentID != nil {
		identifier = user.StudentID
	}
	if identifier == nil {
		identifier = entry.RecordedBarcodeID
	}
	name := "Unassigned attendee"
	if user != nil {
		name = user.FullName
	} else if identifier != nil {
		name = *identifier
	}
	return &EntryView{
		ID:                entry.ID,
		StudentName:       name,
		StudentIdentifier: identifier,
		CheckIn:           entry.CheckIn,
		CheckOut:          entry.CheckOut,
		Status:            entry.Status,
		Note:              entry.Note,
	}
}
