package warehouse

import (
	"context"
	"testing"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/reconcile"

	"github.com/gofiber/fiber/v2"
)

// fakeSource is an in-memory stand-in for the gorm-backed inventory source.
type fakeSource struct {
	byIdentifier map[string]reconcile.InventoryFact
	byPallet     map[string][]reconcile.InventoryFact
}

func (f *fakeSource) Lookup(_ context.Context, identifier string) (reconcile.InventoryFact, error) {
	fact, ok := f.byIdentifier[identifier]
	if !ok {
		return reconcile.InventoryFact{}, reconcile.ErrNotFound
	}
	return fact, nil
}

func (f *fakeSource) PalletContents(_ context.Context, serial string) ([]reconcile.InventoryFact, error) {
	return f.byPallet[serial], nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		byIdentifier: map[string]reconcile.InventoryFact{
			"B1": {Identifier: "B1", ProductCode: "SAP-X", ProductName: "Product X", SerialPallet: "P1", Quantity: 4},
			"B2": {Identifier: "B2", ProductCode: "SAP-X", ProductName: "Product X", SerialPallet: "P1", Quantity: 6},
		},
		byPallet: map[string][]reconcile.InventoryFact{
			"P1": {
				{Identifier: "B1", ProductCode: "SAP-X", SerialPallet: "P1", Quantity: 4},
				{Identifier: "B2", ProductCode: "SAP-X", SerialPallet: "P1", Quantity: 6},
			},
		},
	}
}

func newCheckLedger() *reconcile.Ledger {
	catalog := reconcile.NewCatalog([]reconcile.Line{
		{ID: 1, ProductCode: "SAP-X", ProductName: "Product X", ExpectedQty: 10},
	})
	return reconcile.NewLedger(catalog, reconcile.PolicyFor(reconcile.KindTransfer))
}

func TestValidateScan_ContainerRecordsAgainstLedger(t *testing.T) {
	classifier := reconcile.NewClassifier(newFakeSource())
	ledger := newCheckLedger()

	items, err := classifyAndRecord(context.Background(), classifier, ledger, "  b1 ", reconcile.ModeContainer, "RD-01")
	if err != nil {
		t.Fatalf("classifyAndRecord: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	got := items[0]
	if got.Identifier != "B1" || got.Quantity != 4 || got.Location != "RD-01" {
		t.Errorf("unexpected item: %+v", got)
	}
	if got.Outcome.Kind != string(reconcile.OutcomeAdded) || got.Outcome.LineTotal != 4 || got.Outcome.Remaining != 6 {
		t.Errorf("unexpected outcome: %+v", got.Outcome)
	}
	if got.Outcome.LineCompleted {
		t.Error("line reported completed at 4 of 10")
	}
}

func TestValidateScan_PalletExpandsToAllContainers(t *testing.T) {
	classifier := reconcile.NewClassifier(newFakeSource())
	ledger := newCheckLedger()

	items, err := classifyAndRecord(context.Background(), classifier, ledger, "P1", reconcile.ModePallet, "RD-02")
	if err != nil {
		t.Fatalf("classifyAndRecord: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	last := items[1]
	if last.Outcome.LineTotal != 10 || !last.Outcome.LineCompleted {
		t.Errorf("pallet expansion did not complete the line: %+v", last.Outcome)
	}
}

func TestValidateScan_ConfirmedDuplicateRejected(t *testing.T) {
	classifier := reconcile.NewClassifier(newFakeSource())
	ledger := newCheckLedger()
	ledger.Seed([]reconcile.Event{
		{ID: 7, LineID: 1, Identifier: "B1", Quantity: 4, Confirmed: true},
	})

	_, err := classifyAndRecord(context.Background(), classifier, ledger, "B1", reconcile.ModeContainer, "RD-01")
	if err == nil {
		t.Fatal("expected an error for a confirmed duplicate")
	}

	fe, ok := scanHTTPError(err).(*fiber.Error)
	if !ok || fe.Code != fiber.StatusConflict {
		t.Errorf("expected 409 for confirmed duplicate, got %v", fe)
	}
}

func TestValidateScan_ErrorStatusMapping(t *testing.T) {
	classifier := reconcile.NewClassifier(newFakeSource())

	tests := []struct {
		name     string
		code     string
		mode     reconcile.ScanMode
		seed     []reconcile.Event
		wantCode int
	}{
		{name: "unknown container", code: "NOPE", mode: reconcile.ModeContainer, wantCode: fiber.StatusNotFound},
		{name: "empty pallet", code: "P9", mode: reconcile.ModePallet, wantCode: fiber.StatusNotFound},
		{name: "empty code", code: "   ", mode: reconcile.ModeContainer, wantCode: fiber.StatusBadRequest},
		{
			name: "hard cap overflow", code: "B2", mode: reconcile.ModeContainer,
			seed:     []reconcile.Event{{ID: 3, LineID: 1, Identifier: "B1", Quantity: 8}},
			wantCode: fiber.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := newCheckLedger()
			ledger.Seed(tt.seed)

			_, err := classifyAndRecord(context.Background(), classifier, ledger, tt.code, tt.mode, "RD-01")
			if err == nil {
				t.Fatal("expected an error")
			}
			fe, ok := scanHTTPError(err).(*fiber.Error)
			if !ok {
				t.Fatalf("expected a fiber error, got %v", err)
			}
			if fe.Code != tt.wantCode {
				t.Errorf("got status %d, want %d", fe.Code, tt.wantCode)
			}
		})
	}
}
