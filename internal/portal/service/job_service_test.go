package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/testutil"
	"github.com/theDevJade/Robodores-Shop-Website/internal/shared/storage"
	"gorm.io/gorm"
)

func newJobService(t *testing.T) (*JobService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewJobService(repos.Job, repos.User, storage.New(nil, "test"))
	return svc, db
}

func submitJob(t *testing.T, svc *JobService, actorID uint, shop, name string) *JobView {
	t.Helper()
	job, err := svc.Submit(context.Background(), actorID, &JobSubmitInput{
		Shop:      shop,
		PartName:  name,
		OwnerName: "Sam",
		FileName:  name + ".nc",
		File:      bytes.NewReader([]byte("G0 X0 Y0")),
		FileSize:  9,
	})
	if err != nil {
		t.Fatalf("Submit %s failed: %v", name, err)
	}
	return job
}

func TestSubmitAppendsToQueue(t *testing.T) {
	svc, db := newJobService(t)
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	first := submitJob(t, svc, student.ID, entity.ShopCNC, "bracket")
	second := submitJob(t, svc, student.ID, entity.ShopCNC, "plate")
	other := submitJob(t, svc, student.ID, entity.ShopPrinting, "shroud")

	if first.QueuePosition != 1 || second.QueuePosition != 2 {
		t.Fatalf("cnc queue positions wrong: %d, %d", first.QueuePosition, second.QueuePosition)
	}
	if other.QueuePosition != 1 {
		t.Fatalf("queues must be per shop, printing started at %d", other.QueuePosition)
	}
}

func TestSubmitRequiresFile(t *testing.T) {
	svc, db := newJobService(t)
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	_, err := svc.Submit(context.Background(), student.ID, &JobSubmitInput{
		Shop:      entity.ShopCNC,
		PartName:  "bracket",
		OwnerName: "Sam",
	})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError without a file, got %v", err)
	}
}

func TestClaimConflictsAndUnclaimPermissions(t *testing.T) {
	svc, db := newJobService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	other := testutil.SeedTestUser(t, db, "Ola Other", "ola@test.com", entity.RoleStudent)
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)

	job := submitJob(t, svc, student.ID, entity.ShopCNC, "bracket")

	claimed, err := svc.Claim(ctx, student.ID, job.ID)
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if claimed.ClaimedByID == nil || *claimed.ClaimedByID != student.ID {
		t.Fatal("claim must record the claimer")
	}

	_, err = svc.Claim(ctx, other.ID, job.ID)
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError on second claim, got %v", err)
	}

	_, err = svc.Unclaim(ctx, other.ID, job.ID)
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("expected PermissionError for a non-claimer unclaim, got %v", err)
	}

	// Leads may release anyone's claim.
	released, err := svc.Unclaim(ctx, lead.ID, job.ID)
	if err != nil {
		t.Fatalf("lead Unclaim failed: %v", err)
	}
	if released.ClaimedByID != nil {
		t.Fatal("unclaim must clear the claimer")
	}

	_, err = svc.Unclaim(ctx, lead.ID, job.ID)
	if !errors.As(err, &conflict) {
		t.Fatalf("expected ConflictError unclaiming an unclaimed job, got %v", err)
	}
}

func TestReorderRewritesPositions(t *testing.T) {
	svc, db := newJobService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	a := submitJob(t, svc, student.ID, entity.ShopCNC, "a")
	b := submitJob(t, svc, student.ID, entity.ShopCNC, "b")
	c := submitJob(t, svc, student.ID, entity.ShopCNC, "c")

	views, err := svc.Reorder(ctx, entity.ShopCNC, []uint{c.ID, a.ID, b.ID})
	if err != nil {
		t.Fatalf("Reorder failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(views))
	}
	if views[0].ID != c.ID || views[1].ID != a.ID || views[2].ID != b.ID {
		t.Fatalf("unexpected order: %d, %d, %d", views[0].ID, views[1].ID, views[2].ID)
	}
	if views[0].QueuePosition != 1 || views[2].QueuePosition != 3 {
		t.Fatal("positions must be rewritten 1..n")
	}
}

func TestReorderRefusesClaimedAndForeignJobs(t *testing.T) {
	svc, db := newJobService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	a := submitJob(t, svc, student.ID, entity.ShopCNC, "a")
	printed := submitJob(t, svc, student.ID, entity.ShopPrinting, "p")

	if _, err := svc.Reorder(ctx, entity.ShopCNC, []uint{a.ID, printed.ID}); err == nil {
		t.Fatal("mixing shops in a reorder must fail")
	}
	if _, err := svc.Reorder(ctx, entity.ShopCNC, []uint{a.ID, 9999}); err == nil {
		t.Fatal("unknown job IDs must fail the reorder")
	}

	if _, err := svc.Claim(ctx, student.ID, a.ID); err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if _, err := svc.Reorder(ctx, entity.ShopCNC, []uint{a.ID}); err == nil {
		t.Fatal("claimed jobs must not be reorderable")
	}
}

func TestUpdateStatusLeadOnlyAndAppendsNotes(t *testing.T) {
	svc, db := newJobService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)

	job := submitJob(t, svc, student.ID, entity.ShopCNC, "bracket")

	_, err := svc.UpdateStatus(ctx, student.ID, job.ID, entity.JobStatusApproved, nil)
	var perm *PermissionError
	if !errors.As(err, &perm) {
		t.Fatalf("expected PermissionError for a student status change, got %v", err)
	}

	note := "fixture ready"
	updated, err := svc.UpdateStatus(ctx, lead.ID, job.ID, entity.JobStatusApproved, &note)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != entity.JobStatusApproved {
		t.Fatalf("expected approved, got %s", updated.Status)
	}
	if updated.Notes == nil || *updated.Notes != "fixture ready" {
		t.Fatalf("expected note recorded, got %v", updated.Notes)
	}

	second := "ran at 2000rpm"
	updated, err = svc.UpdateStatus(ctx, lead.ID, job.ID, entity.JobStatusCompleted, &second)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Notes == nil || *updated.Notes != "fixture ready\nran at 2000rpm" {
		t.Fatalf("notes must append, got %v", updated.Notes)
	}
}
