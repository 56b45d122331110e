package reconcile

import (
	"context"
	"errors"
	"testing"
)

func newTestSession(t *testing.T) (*Session, *fakeInventory) {
	t.Helper()
	src := newFakeInventory()
	catalog := NewCatalog([]Line{{ID: 1, ProductCode: "SAP-X", ExpectedQty: 10}})
	ledger := NewLedger(catalog, PolicyFor(KindTransfer))
	return NewSession(NewClassifier(src), ledger), src
}

func TestSession_RejectsScansWhileStopped(t *testing.T) {
	s, _ := newTestSession(t)

	if _, err := s.Scan(context.Background(), "B1", "RD-01"); !errors.Is(err, ErrSessionStopped) {
		t.Fatalf("err = %v, want ErrSessionStopped", err)
	}

	s.Start(ModeContainer)
	s.Stop()
	if _, err := s.Scan(context.Background(), "B1", "RD-01"); !errors.Is(err, ErrSessionStopped) {
		t.Fatalf("after stop: err = %v, want ErrSessionStopped", err)
	}
}

func TestSession_DebouncesRepeatedDecodes(t *testing.T) {
	s, src := newTestSession(t)
	s.Start(ModeContainer)
	ctx := context.Background()

	out, err := s.Scan(ctx, "B1", "RD-01")
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("first scan outcomes = %d, want 1", len(out))
	}

	// Frame-rate duplicate: dropped without touching the source or ledger.
	before := src.lookups
	out, err = s.Scan(ctx, "b1", "RD-01")
	if err != nil || out != nil {
		t.Fatalf("duplicate scan = (%v, %v), want (nil, nil)", out, err)
	}
	if src.lookups != before {
		t.Error("duplicate scan hit the inventory source")
	}
}

func TestSession_DebounceResetsOnModeChange(t *testing.T) {
	s, _ := newTestSession(t)
	s.Start(ModeContainer)
	ctx := context.Background()

	if _, err := s.Scan(ctx, "B1", "RD-01"); err != nil {
		t.Fatal(err)
	}

	s.Start(ModePallet)
	out, err := s.Scan(ctx, "P1", "RD-01")
	if err != nil {
		t.Fatalf("pallet scan after mode switch: %v", err)
	}
	// B1 is already in the ledger from container mode, so the expansion
	// updates it and adds B2.
	if len(out) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(out))
	}
	if out[0].Kind != OutcomeUpdated || out[1].Kind != OutcomeAdded {
		t.Errorf("kinds = %s,%s, want updated,added", out[0].Kind, out[1].Kind)
	}
}

func TestSession_PalletExpansionAccumulates(t *testing.T) {
	s, _ := newTestSession(t)
	s.Start(ModePallet)

	out, err := s.Scan(context.Background(), "P1", "RD-01")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("outcomes = %d, want 2 (one per box)", len(out))
	}
	if out[1].LineTotal != 6 {
		t.Errorf("line total after expansion = %v, want 6", out[1].LineTotal)
	}
}

func TestSession_FailedLookupDoesNotArmDebounce(t *testing.T) {
	s, _ := newTestSession(t)
	s.Start(ModeContainer)
	ctx := context.Background()

	if _, err := s.Scan(ctx, "NOPE", "RD-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// The operator fixes the label and scans the same code again; it must
	// be processed, not swallowed as a duplicate.
	if _, err := s.Scan(ctx, "NOPE", "RD-01"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second attempt err = %v, want ErrNotFound (re-processed)", err)
	}
}
