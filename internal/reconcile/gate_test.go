package reconcile

import (
	"context"
	"errors"
	"testing"
)

// fakeBackend records calls and lets tests fail individual steps.
type fakeBackend struct {
	progressCalls     int
	confirmationCalls int
	statusCalls       int
	lastProgress      int
	lastConfirmations []Confirmation
	lastStatus        State
	failProgress      error
	failConfirmations error
	failStatus        error
}

func (b *fakeBackend) PatchProgress(_ context.Context, _ uint, scanned int) error {
	if b.failProgress != nil {
		return b.failProgress
	}
	b.progressCalls++
	b.lastProgress = scanned
	return nil
}

func (b *fakeBackend) PatchConfirmations(_ context.Context, _ uint, items []Confirmation) error {
	if b.failConfirmations != nil {
		return b.failConfirmations
	}
	b.confirmationCalls++
	b.lastConfirmations = items
	return nil
}

func (b *fakeBackend) PatchStatus(_ context.Context, _ uint, status State) error {
	if b.failStatus != nil {
		return b.failStatus
	}
	b.statusCalls++
	b.lastStatus = status
	return nil
}

func transferLedger(t *testing.T) *Ledger {
	t.Helper()
	catalog := NewCatalog([]Line{{ID: 1, ProductCode: "X", ExpectedQty: 10}})
	return NewLedger(catalog, PolicyFor(KindTransfer))
}

func recordPersisted(t *testing.T, l *Ledger, id uint, identifier string, qty float64) {
	t.Helper()
	if _, err := l.Record(ScanIntent{Identifier: identifier, ProductCode: "X", Quantity: qty}); err != nil {
		t.Fatalf("Record(%s): %v", identifier, err)
	}
	for i := range l.events {
		if l.events[i].Identifier == identifier {
			l.events[i].ID = id
			l.events[i].New = false
		}
	}
}

func TestGate_HappyPathTransfer(t *testing.T) {
	l := transferLedger(t)
	backend := &fakeBackend{}
	gate := NewGate(42, l, backend)
	gate.SetApprover("operator1")

	if gate.State() != StateDraft {
		t.Fatalf("initial state = %s, want draft", gate.State())
	}

	recordPersisted(t, l, 101, "B1", 4)
	if gate.Refresh() != StatePendingScan {
		t.Fatalf("state after partial scan = %s, want pending_scan", gate.State())
	}

	recordPersisted(t, l, 102, "B2", 6)
	if gate.Refresh() != StateReady {
		t.Fatalf("state after full scan = %s, want ready_for_approval", gate.State())
	}

	if err := gate.Approve(context.Background()); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if gate.State() != StateApproved {
		t.Errorf("state = %s, want approved", gate.State())
	}
	if backend.lastProgress != 2 {
		t.Errorf("progress counter = %d, want 2", backend.lastProgress)
	}
	if len(backend.lastConfirmations) != 2 || backend.lastConfirmations[0].UpdatedBy != "operator1" {
		t.Errorf("unexpected confirmations: %+v", backend.lastConfirmations)
	}
	if backend.lastStatus != StateApproved {
		t.Errorf("status patched to %s, want approved", backend.lastStatus)
	}
	for _, ev := range l.Events() {
		if !ev.Confirmed {
			t.Error("event left unconfirmed after approval")
		}
	}
}

func TestGate_RefusesWhileIncomplete(t *testing.T) {
	l := transferLedger(t)
	backend := &fakeBackend{}
	gate := NewGate(42, l, backend)

	recordPersisted(t, l, 101, "B1", 4)

	err := gate.Approve(context.Background())
	if !errors.Is(err, ErrNotReady) {
		t.Fatalf("err = %v, want ErrNotReady", err)
	}
	if backend.progressCalls+backend.confirmationCalls+backend.statusCalls != 0 {
		t.Error("backend touched for a non-ready request")
	}
}

func TestGate_MissingIdentifierAbortsBeforeConfirmations(t *testing.T) {
	l := transferLedger(t)
	backend := &fakeBackend{}
	gate := NewGate(42, l, backend)

	recordPersisted(t, l, 101, "B1", 4)
	// Second event was never submitted, so it has no persisted ID.
	if _, err := l.Record(ScanIntent{Identifier: "B2", ProductCode: "X", Quantity: 6}); err != nil {
		t.Fatal(err)
	}

	err := gate.Approve(context.Background())
	if !errors.Is(err, ErrMissingIdentifier) {
		t.Fatalf("err = %v, want ErrMissingIdentifier", err)
	}
	if backend.confirmationCalls != 0 {
		t.Error("confirmation PATCH sent despite missing identifier")
	}
}

func TestGate_PartialFailureThenRetry(t *testing.T) {
	l := transferLedger(t)
	backend := &fakeBackend{failConfirmations: errors.New("network error")}
	gate := NewGate(42, l, backend)

	recordPersisted(t, l, 101, "B1", 10)

	err := gate.Approve(context.Background())
	var ce *CommitError
	if !errors.As(err, &ce) || ce.Step != StepConfirmations {
		t.Fatalf("err = %v, want CommitError at confirmations", err)
	}
	if backend.statusCalls != 0 {
		t.Error("status PATCH sent after confirmation failure")
	}
	if gate.State() == StateApproved {
		t.Error("gate approved despite failed commit")
	}

	// Backend recovers; retry restarts from the progress step.
	backend.failConfirmations = nil
	if err := gate.Approve(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if backend.progressCalls != 2 {
		t.Errorf("progress calls = %d, want 2 (idempotent re-run)", backend.progressCalls)
	}
	if gate.State() != StateApproved {
		t.Errorf("state = %s, want approved", gate.State())
	}
}

func TestGate_LooseCompleteness(t *testing.T) {
	catalog := NewCatalog([]Line{
		{ID: 1, ProductCode: "X", ExpectedQty: 10},
		{ID: 2, ProductCode: "Y", ExpectedQty: 10},
	})
	l := NewLedger(catalog, PolicyFor(KindImport))
	backend := &fakeBackend{}
	gate := NewGate(7, l, backend)

	// One confirmed container per line is enough, even far below the
	// expected quantities.
	l.Seed([]Event{{ID: 1, LineID: 1, Identifier: "B1", Quantity: 1, Confirmed: true}})
	if gate.Refresh() != StatePendingScan {
		t.Fatalf("state = %s, want pending_scan (line 2 unscanned)", gate.State())
	}

	l.Seed([]Event{{ID: 2, LineID: 2, Identifier: "B2", Quantity: 1, Confirmed: true}})
	if gate.Refresh() != StateReady {
		t.Fatalf("state = %s, want ready_for_approval", gate.State())
	}

	if err := gate.Approve(context.Background()); err != nil {
		t.Fatalf("Approve: %v", err)
	}
}

func TestGate_RejectFromAnyPreApprovedState(t *testing.T) {
	l := transferLedger(t)
	backend := &fakeBackend{}
	gate := NewGate(42, l, backend)

	if err := gate.Reject(context.Background()); err != nil {
		t.Fatalf("Reject from draft: %v", err)
	}
	if gate.State() != StateRejected {
		t.Errorf("state = %s, want rejected", gate.State())
	}
	if backend.lastStatus != StateRejected {
		t.Errorf("status patched to %s, want rejected", backend.lastStatus)
	}

	// Terminal: neither approval nor a second rejection may proceed.
	if err := gate.Approve(context.Background()); !errors.Is(err, ErrTerminalState) {
		t.Errorf("Approve after reject: err = %v, want ErrTerminalState", err)
	}
	if err := gate.Reject(context.Background()); !errors.Is(err, ErrTerminalState) {
		t.Errorf("second Reject: err = %v, want ErrTerminalState", err)
	}
}
