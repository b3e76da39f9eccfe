package service

import (
	"context"
	"errors"
	"testing"

	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/entity"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/repository"
	"github.com/theDevJade/Robodores-Shop-Website/internal/portal/testutil"
)

func newInventoryService(t *testing.T) (*InventoryService, uint) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	user := testutil.SeedTestUser(t, db, "Lee Lead", "lee@test.com", entity.RoleLead)
	return NewInventoryService(repos.Inventory), user.ID
}

func TestAdjustRecordsTransaction(t *testing.T) {
	svc, actorID := newInventoryService(t)
	ctx := context.Background()

	item, err := svc.Create(ctx, &ItemCreateInput{PartName: "M3x8 SHCS", Quantity: 100})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if item.PartType != entity.InventoryPartCustom {
		t.Fatalf("part type must default to custom, got %s", item.PartType)
	}

	note := "used on climber"
	adjusted, err := svc.Adjust(ctx, actorID, item.ID, &AdjustInput{Delta: -25, Reason: entity.InventoryReasonJob, Note: &note})
	if err != nil {
		t.Fatalf("Adjust failed: %v", err)
	}
	if adjusted.Quantity != 75 {
		t.Fatalf("expected quantity 75, got %d", adjusted.Quantity)
	}

	if _, err := svc.Adjust(ctx, actorID, item.ID, &AdjustInput{Delta: 10, Reason: "shrinkage"}); err == nil {
		t.Fatal("unknown adjustment reasons must be rejected")
	}

	txns, err := svc.Transactions(ctx, item.ID)
	if err != nil {
		t.Fatalf("Transactions failed: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("expected one ledger row, got %d", len(txns))
	}
	if txns[0].Delta != -25 || txns[0].Reason != entity.InventoryReasonJob {
		t.Fatalf("unexpected ledger row: %+v", txns[0])
	}
	if txns[0].PerformedBy == nil || *txns[0].PerformedBy != actorID {
		t.Fatal("ledger must record who adjusted")
	}
}

func TestAdjustUnknownItem(t *testing.T) {
	svc, actorID := newInventoryService(t)
	_, err := svc.Adjust(context.Background(), actorID, 9999, &AdjustInput{Delta: 1})
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}
