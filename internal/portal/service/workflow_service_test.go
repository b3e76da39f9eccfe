package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/testutil"
	"github.com/theDevJade/Robodores-Shop-Website/internal/shared/storage"
	"gorm.io/gorm"
)

func newWorkflowService(t *testing.T) (*WorkflowService, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	svc := NewWorkflowService(repos.Part, repos.User, storage.New(nil, "test"), nil)
	return svc, db
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func cncInput() *PartCreateInput {
	return &PartCreateInput{
		PartName:          "Drive Shaft",
		Subsystem:         "drivetrain",
		Material:          "7075 aluminum",
		Quantity:          2,
		ManufacturingType: entity.PartTypeCNC,
		CADLink:           "https://cad.example/shaft",
	}
}

func TestCreateSelfAssignsStudent(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	view, err := svc.Create(ctx, student.ID, cncInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if view.Status != entity.PartStatusDesignSubmitted {
		t.Fatalf("expected design_submitted, got %s", view.Status)
	}
	if len(view.AssignedStudents) != 1 || view.AssignedStudents[0].ID != student.ID {
		t.Fatalf("expected creator self-assigned, got %+v", view.AssignedStudents)
	}
	if len(view.AssignedLeads) != 0 {
		t.Fatalf("student creator must not land in the lead set")
	}
	if view.LanePosition != 1 {
		t.Fatalf("first part in lane should sit at position 1, got %d", view.LanePosition)
	}
}

func TestCreateAutoPromotesFullySpecifiedPart(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	input := cncInput()
	input.CAMLink = strPtr("https://cam.example/shaft")
	input.CAMStudent = strPtr("Sam")
	input.CNCOperator = strPtr("Riley")
	input.MaterialStock = strPtr("bar stock 2in")

	view, err := svc.Create(ctx, student.ID, input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if view.Status != entity.PartStatusReady {
		t.Fatalf("fully specified cnc part should auto-promote, got %s", view.Status)
	}
}

func TestCreateDoesNotPromoteWithMissingTypeField(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	input := &PartCreateInput{
		PartName:          "Intake Funnel",
		Subsystem:         "intake",
		Material:          "PETG",
		Quantity:          1,
		ManufacturingType: entity.PartTypePrinting,
		CADLink:           "https://cad.example/funnel",
		PrinterAssignment: strPtr("Prusa 2"),
		FilamentType:      strPtr("PETG black"),
		// slicer_profile left empty on purpose
	}
	view, err := svc.Create(ctx, student.ID, input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if view.Status != entity.PartStatusDesignSubmitted {
		t.Fatalf("part missing slicer_profile must stay in design, got %s", view.Status)
	}
}

func TestStudentAdjacentTransitionsOnly(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	view, err := svc.Create(ctx, student.ID, cncInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Jumping two stages ahead is a lead-only move.
	if _, err := svc.ChangeStatus(ctx, student.ID, view.ID, entity.PartStatusInProgress); err == nil {
		t.Fatal("expected permission error for a non-adjacent move")
	} else {
		var perm *PermissionError
		if !errors.As(err, &perm) {
			t.Fatalf("expected PermissionError, got %T", err)
		}
	}

	moved, err := svc.ChangeStatus(ctx, student.ID, view.ID, entity.PartStatusReady)
	if err != nil {
		t.Fatalf("adjacent move failed: %v", err)
	}
	if moved.Status != entity.PartStatusReady {
		t.Fatalf("expected ready, got %s", moved.Status)
	}
	if moved.ApprovedBy != nil {
		t.Fatal("student moves must not record an approval")
	}
}

func TestLeadApprovalAndTimestamps(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)

	view, err := svc.Create(ctx, lead.ID, cncInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ready, err := svc.ChangeStatus(ctx, lead.ID, view.ID, entity.PartStatusReady)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if ready.ApprovedBy == nil || ready.ApprovedBy.ID != lead.ID {
		t.Fatal("lead move to ready must record the approver")
	}

	inProgress, err := svc.ChangeStatus(ctx, lead.ID, view.ID, entity.PartStatusInProgress)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if inProgress.ActualStart == nil {
		t.Fatal("first move into in_progress must stamp actual_start")
	}

	done, err := svc.ChangeStatus(ctx, lead.ID, view.ID, entity.PartStatusCompleted)
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if done.ActualComplete == nil {
		t.Fatal("completion must stamp actual_complete")
	}
}

func TestLockBlocksStudents(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	input := cncInput()
	input.AssignedStudentIDs = []uint{student.ID}
	view, err := svc.Create(ctx, lead.ID, input)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	locked := true
	if _, err := svc.Update(ctx, lead.ID, view.ID, &PartUpdateInput{StatusLocked: &locked}); err != nil {
		t.Fatalf("lead lock failed: %v", err)
	}

	if _, err := svc.ChangeStatus(ctx, student.ID, view.ID, entity.PartStatusReady); err == nil {
		t.Fatal("locked part must refuse student moves")
	}

	// Leads move locked parts freely.
	if _, err := svc.ChangeStatus(ctx, lead.ID, view.ID, entity.PartStatusReady); err != nil {
		t.Fatalf("lead move on locked part failed: %v", err)
	}

	// Students cannot lock at all.
	if _, err := svc.Update(ctx, student.ID, view.ID, &PartUpdateInput{StatusLocked: &locked}); err == nil {
		t.Fatal("student lock attempt must fail")
	}
}

func TestLockReasonImpliesLock(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)

	view, err := svc.Create(ctx, lead.ID, cncInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.Update(ctx, lead.ID, view.ID, &PartUpdateInput{LockReason: strPtr("awaiting inspection fixture")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.StatusLocked {
		t.Fatal("setting a lock reason must lock the part")
	}

	unlocked := false
	updated, err = svc.Update(ctx, lead.ID, view.ID, &PartUpdateInput{StatusLocked: &unlocked})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.StatusLocked || updated.LockReason != nil {
		t.Fatal("unlocking must clear the lock reason")
	}
}

func TestClaimIsIdempotentAndUnclaimClearsOwnETA(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)
	other := testutil.SeedTestUser(t, db, "Ola Other", "ola@test.com", entity.RoleStudent)

	view, err := svc.Create(ctx, other.ID, cncInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	claimed, err := svc.Claim(ctx, student.ID, view.ID, &ETAInput{ETAMinutes: intPtr(90)})
	if err != nil {
		t.Fatalf("Claim failed: %v", err)
	}
	if len(claimed.AssignedStudents) != 2 {
		t.Fatalf("expected two assignees after claim, got %d", len(claimed.AssignedStudents))
	}
	if claimed.StudentETAMinutes == nil || *claimed.StudentETAMinutes != 90 {
		t.Fatal("claim must record the attached ETA")
	}

	again, err := svc.Claim(ctx, student.ID, view.ID, &ETAInput{})
	if err != nil {
		t.Fatalf("second claim failed: %v", err)
	}
	if len(again.AssignedStudents) != 2 {
		t.Fatal("claiming twice must not duplicate the assignment")
	}

	// The other assignee leaving must not clear someone else's ETA.
	afterOther, err := svc.Unclaim(ctx, other.ID, view.ID)
	if err != nil {
		t.Fatalf("Unclaim failed: %v", err)
	}
	if afterOther.StudentETAMinutes == nil {
		t.Fatal("unclaim by a non-setter must keep the ETA")
	}

	after, err := svc.Unclaim(ctx, student.ID, view.ID)
	if err != nil {
		t.Fatalf("Unclaim failed: %v", err)
	}
	if after.StudentETAMinutes != nil || after.ETABy != nil {
		t.Fatal("unclaim by the ETA setter must clear the estimate")
	}
}

func TestETATargetValidation(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	view, err := svc.Create(ctx, student.ID, cncInput())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	past := time.Now().UTC().Add(-time.Hour)
	if _, err := svc.UpdateETA(ctx, student.ID, view.ID, &ETAInput{ETATarget: &past}); err == nil {
		t.Fatal("a past ETA target must be rejected")
	}

	target := time.Now().UTC().Add(2 * time.Hour)
	updated, err := svc.UpdateETA(ctx, student.ID, view.ID, &ETAInput{ETATarget: &target})
	if err != nil {
		t.Fatalf("UpdateETA failed: %v", err)
	}
	if updated.StudentETAMinutes == nil {
		t.Fatal("an absolute target must backfill the minutes estimate")
	}
	minutes := *updated.StudentETAMinutes
	if minutes < 115 || minutes > 120 {
		t.Fatalf("expected roughly 120 minutes, got %d", minutes)
	}

	outsider := testutil.SeedTestUser(t, db, "Ola Other", "ola@test.com", entity.RoleStudent)
	if _, err := svc.UpdateETA(ctx, outsider.ID, view.ID, &ETAInput{ETAMinutes: intPtr(10)}); err == nil {
		t.Fatal("non-assignees must not set the ETA")
	}
}

func TestAssignmentTargetValidation(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)
	otherLead := testutil.SeedTestUser(t, db, "Mo Lead", "mo@test.com", entity.RoleLead)

	input := cncInput()
	input.AssignedStudentIDs = []uint{9999}
	if _, err := svc.Create(ctx, lead.ID, input); err == nil {
		t.Fatal("unknown assignee IDs must be rejected")
	} else {
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected NotFoundError, got %T", err)
		}
	}

	input = cncInput()
	input.AssignedStudentIDs = []uint{otherLead.ID}
	if _, err := svc.Create(ctx, lead.ID, input); err == nil {
		t.Fatal("a lead in the student set must be rejected")
	} else {
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("expected ValidationError, got %T", err)
		}
	}
}

func TestListOrdering(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)

	mk := func(name, priority string) *PartView {
		input := cncInput()
		input.PartName = name
		input.Priority = priority
		view, err := svc.Create(ctx, lead.ID, input)
		if err != nil {
			t.Fatalf("Create %s failed: %v", name, err)
		}
		return view
	}

	mk("normal-a", entity.PartPriorityNormal)
	mk("urgent-b", entity.PartPriorityUrgent)
	low := mk("low-c", entity.PartPriorityLow)

	// Move one part forward so status ordering is exercised too.
	if _, err := svc.ChangeStatus(ctx, lead.ID, low.ID, entity.PartStatusReady); err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}

	views, err := svc.List(ctx, lead.ID, map[string]string{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(views))
	}
	if views[0].PartName != "urgent-b" || views[1].PartName != "normal-a" || views[2].PartName != "low-c" {
		t.Fatalf("unexpected order: %s, %s, %s", views[0].PartName, views[1].PartName, views[2].PartName)
	}
}

func TestListFilterValidation(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	student := testutil.SeedTestUser(t, db, "Sam Student", "sam@test.com", entity.RoleStudent)

	if _, err := svc.List(ctx, student.ID, map[string]string{"status": "melted"}); err == nil {
		t.Fatal("unknown status filter must be rejected")
	}
	if _, err := svc.List(ctx, student.ID, map[string]string{"priority": "asap"}); err == nil {
		t.Fatal("unknown priority filter must be rejected")
	}
}

func TestSummaryCountsEveryStatus(t *testing.T) {
	svc, db := newWorkflowService(t)
	ctx := context.Background()
	lead := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)

	input := cncInput()
	input.Priority = entity.PartPriorityUrgent
	if _, err := svc.Create(ctx, lead.ID, input); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	summary, err := svc.GetSummary(ctx)
	if err != nil {
		t.Fatalf("GetSummary failed: %v", err)
	}
	if summary.Total != 1 || summary.Urgent != 1 {
		t.Fatalf("unexpected totals: %+v", summary)
	}
	for _, status := range entity.PartStatuses {
		if _, ok := summary.ByStatus[status]; !ok {
			t.Fatalf("summary must include zero buckets, missing %s", status)
		}
	}
}
