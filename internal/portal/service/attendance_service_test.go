package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/testutil"
	"gorm.io/gorm"
)

func newAttendanceService(t *testing.T) (*AttendanceService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewAttendanceService(repos.Attendance, repos.User, repos.Schedule, repos.Settings)
	return svc, db
}

func seedBadgedStudent(t *testing.T, db *gorm.DB) *entity.User {
	t.Helper()
	user := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	barcode := "BADGE-001"
	studentID := "123456"
	user.BarcodeID = &barcode
	user.StudentID = &studentID
	if err := db.Save(user).Error; err != nil {
		t.Fatalf("failed to badge user: %v", err)
	}
	return user
}

// allowAllHours disables the schedule restriction so scans come back ok.
func allowAllHours(t *testing.T, db *gorm.DB) {
	t.Helper()
	config := &entity.AppConfig{ID: 1, RestrictAttendanceToSchedule: false}
	if err := db.Save(config).Error; err != nil {
		t.Fatalf("failed to relax schedule restriction: %v", err)
	}
}

func TestScanInThenOut(t *testing.T) {
	svc, db := newAttendanceService(t)
	ctx := context.Background()
	user := seedBadgedStudent(t, db)
	allowAllHours(t, db)

	in, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID})
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if in.CheckIn == nil || in.CheckOut != nil {
		t.Fatal("check-in must open an entry")
	}
	if in.Status != entity.AttendanceOK {
		t.Fatalf("expected ok with restriction off, got %s", in.Status)
	}
	if in.StudentName != "Sam Student" {
		t.Fatalf("expected resolved name, got %s", in.StudentName)
	}

	out, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID, Mode: "out"})
	if err != nil {
		t.Fatalf("check-out failed: %v", err)
	}
	if out.CheckOut == nil {
		t.Fatal("check-out must close the entry")
	}
}

func TestDoubleCheckInConflicts(t *testing.T) {
	svc, db := newAttendanceService(t)
	ctx := context.Background()
	user := seedBadgedStudent(t, db)
	allowAllHours(t, db)

	if _, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID}); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	_, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on double check-in, got %v", err)
	}
}

func TestCheckOutWithoutOpenEntryConflicts(t *testing.T) {
	svc, db := newAttendanceService(t)
	ctx := context.Background()
	user := seedBadgedStudent(t, db)
	allowAllHours(t, db)

	_, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID, Mode: "out"})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on orphan check-out, got %v", err)
	}
}

func TestCrossDateCheckoutFlagsMissingOut(t *testing.T) {
	svc, db := newAttendanceService(t)
	ctx := context.Background()
	user := seedBadgedStudent(t, db)
	allowAllHours(t, db)

	yesterday := time.Now().UTC().Add(-26 * time.Hour)
	if _, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID, Timestamp: &yesterday}); err != nil {
		t.Fatalf("back-dated check-in failed: %v", err)
	}

	out, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID, Mode: "out"})
	if err != nil {
		t.Fatalf("check-out failed: %v", err)
	}
	if out.Status != entity.AttendanceMissingOut {
		t.Fatalf("overnight entry must be flagged missing_out, got %s", out.Status)
	}
}

func TestScanOutsideScheduleIsUnverified(t *testing.T) {
	svc, db := newAttendanceService(t)
	ctx := context.Background()
	user := seedBadgedStudent(t, db)
	// Restriction stays on and no schedule blocks exist.

	in, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID})
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if in.Status != entity.AttendanceUnverified {
		t.Fatalf("out-of-schedule scan must be unverified, got %s", in.Status)
	}
}

func TestScanWithinScheduledBlockIsOK(t *testing.T) {
	svc, db := newAttendanceService(t)
	ctx := context.Background()
	user := seedBadgedStudent(t, db)

	now := time.Now().UTC()
	weekday := (int(now.Weekday()) + 6) % 7
	block := &entity.ScheduleBlock{Weekday: weekday, StartTime: "00:00", EndTime: "23:59", Active: true}
	if err := db.Create(block).Error; err != nil {
		t.Fatalf("failed to seed schedule block: %v", err)
	}

	in, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID, Timestamp: &now})
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	if in.Status != entity.AttendanceOK {
		t.Fatalf("in-schedule scan must be ok, got %s", in.Status)
	}
}

func TestScanMatchesIdentifierColumnsIndependently(t *testing.T) {
	svc, db := newAttendanceService(t)
	ctx := context.Background()
	allowAllHours(t, db)

	// One member's badge barcode equals another member's student number.
	byNumber := testutil.SeedTestUser(t, db, "Nia Number", "nia@test.com", entity.RoleStudent)
	studentID := "123456"
	byNumber.StudentID = &studentID
	if err := db.Save(byNumber).Error; err != nil {
		t.Fatalf("failed to badge user: %v", err)
	}
	byBadge := testutil.SeedTestUser(t, db, "Bo Badge", "bo@test.com", entity.RoleStudent)
	barcode := "123456"
	byBadge.BarcodeID = &barcode
	if err := db.Save(byBadge).Error; err != nil {
		t.Fatalf("failed to badge user: %v", err)
	}

	in, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: &barcode})
	if err != nil {
		t.Fatalf("barcode check-in failed: %v", err)
	}
	if in.StudentName != "Bo Badge" {
		t.Fatalf("a barcode must only match the barcode column, got %s", in.StudentName)
	}

	in, err = svc.RecordScan(ctx, &ScanInput{StudentID: &studentID})
	if err != nil {
		t.Fatalf("student-id check-in failed: %v", err)
	}
	if in.StudentName != "Nia Number" {
		t.Fatalf("a student id must only match the student id column, got %s", in.StudentName)
	}
}

func TestUnknownScannerNeedsSixDigitStudentID(t *testing.T) {
	svc, _ := newAttendanceService(t)
	ctx := context.Background()

	_, err := svc.RecordScan(ctx, &ScanInput{StudentID: strPtr("42")})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("short student_id must fail validation, got %v", err)
	}

	_, err = svc.RecordScan(ctx, &ScanInput{BarcodeID: strPtr("UNKNOWN-BADGE")})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("unknown barcode without student_id must be a not-found, got %v", err)
	}

	in, err := svc.RecordScan(ctx, &ScanInput{StudentID: strPtr("654321")})
	if err != nil {
		t.Fatalf("six-digit unknown student must be accepted: %v", err)
	}
	if in.StudentIdentifier == nil || *in.StudentIdentifier != "654321" {
		t.Fatal("unregistered scan must keep the recorded student id")
	}
}

func TestUpdateEntryStatusRestricted(t *testing.T) {
	svc, db := newAttendanceService(t)
	ctx := context.Background()
	user := seedBadgedStudent(t, db)
	allowAllHours(t, db)

	in, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID})
	if err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	if _, err := svc.UpdateEntryStatus(ctx, in.ID, entity.AttendanceMissingOut); err == nil {
		t.Fatal("manual review can only toggle ok/unverified")
	}
	updated, err := svc.UpdateEntryStatus(ctx, in.ID, entity.AttendanceUnverified)
	if err != nil {
		t.Fatalf("UpdateEntryStatus failed: %v", err)
	}
	if updated.Status != entity.AttendanceUnverified {
		t.Fatalf("expected unverified, got %s", updated.Status)
	}
}

func TestTodaySummaryCountsOpenEntries(t *testing.T) {
	svc, db := newAttendanceService(t)
	ctx := context.Background()
	user := seedBadgedStudent(t, db)
	allowAllHours(t, db)

	if _, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID}); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	summary, err := svc.TodaySummary(ctx)
	if err != nil {
		t.Fatalf("TodaySummary failed: %v", err)
	}
	if summary.OpenEntries != 1 {
		t.Fatalf("expected one open entry, got %d", summary.OpenEntries)
	}

	if _, err := svc.RecordScan(ctx, &ScanInput{BarcodeID: user.BarcodeID, Mode: "out"}); err != nil {
		t.Fatalf("check-out failed: %v", err)
	}
	summary, err = svc.TodaySummary(ctx)
	if err != nil {
		t.Fatalf("TodaySummary failed: %v", err)
	}
	if summary.OpenEntries != 0 {
		t.Fatalf("expected no open entries, got %d", summary.OpenEntries)
	}
}
