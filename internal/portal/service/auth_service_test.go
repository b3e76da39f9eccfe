package service

import (
	"context"
	"errors"
	"testing"

	"github.com/theDevJade/Robodores-Shop-Website/internal/config"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/testutil"
	"gorm.io/gorm"
)

func newAuthService(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	cfg := &config.Config{}
	cfg.JWT.Secret = testutil.JWTSecret
	svc := NewAuthService(repos.User, repos.Attendance, repos.Job, repos.Order, repos.Inventory, repos.Ticket, nil, cfg)
	return svc, db
}

func TestFirstRegistrationBootstraps(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, 0, &RegisterInput{
		Email:    "Founder@Test.com",
		FullName: "First Admin",
		Password: "secret123",
		Role:     entity.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("bootstrap registration failed: %v", err)
	}
	if user.Email != "founder@test.com" {
		t.Fatalf("email must be normalized, got %s", user.Email)
	}

	// Once an account exists, anonymous registration is closed.
	_, err = svc.Register(ctx, 0, &RegisterInput{
		Email:    "second@test.com",
		Password: "secret123",
	})
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("expected PermissionError, got %v", err)
	}

	// Admins may still register directly.
	if _, err := svc.Register(ctx, user.ID, &RegisterInput{
		Email:    "second@test.com",
		FullName: "Second",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("admin registration failed: %v", err)
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	admin, err := svc.Register(ctx, 0, &RegisterInput{
		Email:    "admin@test.com",
		Password: "secret123",
		Role:     entity.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("registration failed: %v", err)
	}

	_, err = svc.Register(ctx, admin.ID, &RegisterInput{
		Email:    "ADMIN@test.com",
		Password: "other456",
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for a duplicate email, got %v", err)
	}
}

func TestAccountRequestLifecycle(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	pending, err := svc.RequestAccount(ctx, &AccountRequestInput{
		Email:         "newbie@test.com",
		FullName:      "New Member",
		Password:      "secret123",
		RequestedRole: entity.RoleStudent,
	})
	if err != nil {
		t.Fatalf("RequestAccount failed: %v", err)
	}

	// A second request for the same email is refused.
	_, err = svc.RequestAccount(ctx, &AccountRequestInput{
		Email:    "newbie@test.com",
		Password: "secret123",
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError for a duplicate request, got %v", err)
	}

	// The admin grants a different role than requested.
	user, err := svc.ApproveRequest(ctx, pending.ID, entity.RoleLead)
	if err != nil {
		t.Fatalf("ApproveRequest failed: %v", err)
	}
	if user.Role != entity.RoleLead {
		t.Fatalf("expected granted role lead, got %s", user.Role)
	}

	requests, err := svc.ListRequests(ctx)
	if err != nil {
		t.Fatalf("ListRequests failed: %v", err)
	}
	if len(requests) != 0 {
		t.Fatal("approval must consume the pending request")
	}

	var notFound *NotFoundError
	if err := svc.RejectRequest(ctx, pending.ID); !errors.As(err, &notFound) {
		t.Fatalf("rejecting a consumed request must 404, got %v", err)
	}
}

func TestDeleteUserUnlinksAttendance(t *testing.T) {
	svc, db := newAuthService(t)
	ctx := context.Background()
	admin := testutil.SeedTestUser(t, db, "Ada Admin", "ada@test.com", entity.RoleAdmin)
	member := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	studentID := "123456"
	member.StudentID = &studentID
	if err := db.Save(member).Error; err != nil {
		t.Fatalf("failed to badge member: %v", err)
	}

	entry := &entity.AttendanceEntry{UserID: &member.ID, Status: entity.AttendanceOK}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to seed attendance entry: %v", err)
	}

	if err := svc.DeleteUser(ctx, admin.ID, admin.ID); err == nil {
		t.Fatal("self-deletion must be refused")
	}

	if err := svc.DeleteUser(ctx, admin.ID, member.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	var kept entity.AttendanceEntry
	if err := db.First(&kept, entry.ID).Error; err != nil {
		t.Fatalf("attendance history must survive the deletion: %v", err)
	}
	if kept.UserID != nil {
		t.Fatal("entry must be detached from the deleted account")
	}
	if kept.RecordedStudentID == nil || *kept.RecordedStudentID != "123456" {
		t.Fatal("the raw student id must be backfilled before detaching")
	}
}
