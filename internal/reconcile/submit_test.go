package reconcile

import (
	"context"
	"errors"
	"testing"
)

type fakeSaver struct {
	calls   int
	batches [][]Event
	nextID  uint
	fail    error
}

func (f *fakeSaver) SaveScans(_ context.Context, _ uint, events []Event) ([]uint, error) {
	if f.fail != nil {
		return nil, f.fail
	}
	f.calls++
	f.batches = append(f.batches, events)
	ids := make([]uint, len(events))
	for i := range events {
		f.nextID++
		ids[i] = f.nextID
	}
	return ids, nil
}

func TestSubmitter_SubmitsOnlyNewEvents(t *testing.T) {
	l := transferLedger(t)
	l.Seed([]Event{{ID: 9, LineID: 1, Identifier: "OLD", Quantity: 2}})
	if _, err := l.Record(ScanIntent{Identifier: "B1", ProductCode: "X", Quantity: 4}); err != nil {
		t.Fatal(err)
	}

	saver := &fakeSaver{}
	sub := NewSubmitter(saver)

	res, err := sub.Submit(context.Background(), 42, l)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Submitted != 1 || res.Skipped != 1 {
		t.Errorf("result = %+v, want 1 submitted / 1 skipped", res)
	}
	if len(saver.batches[0]) != 1 || saver.batches[0][0].Identifier != "B1" {
		t.Errorf("unexpected batch: %+v", saver.batches[0])
	}

	// The submitted event gets its persisted ID and stops being new, but
	// stays unconfirmed until approval.
	for _, ev := range l.Events() {
		if ev.Identifier == "B1" {
			if ev.ID == 0 || ev.New || ev.Confirmed {
				t.Errorf("post-submit event state: %+v", ev)
			}
		}
	}
}

func TestSubmitter_SecondCallIsNoOp(t *testing.T) {
	l := transferLedger(t)
	if _, err := l.Record(ScanIntent{Identifier: "B1", ProductCode: "X", Quantity: 4}); err != nil {
		t.Fatal(err)
	}

	saver := &fakeSaver{}
	sub := NewSubmitter(saver)
	ctx := context.Background()

	if _, err := sub.Submit(ctx, 42, l); err != nil {
		t.Fatal(err)
	}
	res, err := sub.Submit(ctx, 42, l)
	if err != nil {
		t.Fatal(err)
	}
	if res.Submitted != 0 {
		t.Errorf("second submit sent %d events", res.Submitted)
	}
	if saver.calls != 1 {
		t.Errorf("backend called %d times, want 1 (empty batch sends nothing)", saver.calls)
	}
}

func TestSubmitter_FailureLeavesEventsRetryable(t *testing.T) {
	l := transferLedger(t)
	if _, err := l.Record(ScanIntent{Identifier: "B1", ProductCode: "X", Quantity: 4}); err != nil {
		t.Fatal(err)
	}

	saver := &fakeSaver{fail: errors.New("network error")}
	sub := NewSubmitter(saver)
	ctx := context.Background()

	if _, err := sub.Submit(ctx, 42, l); err == nil {
		t.Fatal("expected submit failure")
	}
	if !l.Events()[0].New {
		t.Error("failed submit flipped the New flag")
	}

	saver.fail = nil
	res, err := sub.Submit(ctx, 42, l)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Submitted != 1 {
		t.Errorf("retry submitted %d, want 1", res.Submitted)
	}
}

func TestSubmitter_ScansDuringInFlightSubmissionAccumulate(t *testing.T) {
	l := transferLedger(t)
	if _, err := l.Record(ScanIntent{Identifier: "B1", ProductCode: "X", Quantity: 4}); err != nil {
		t.Fatal(err)
	}

	saver := &fakeSaver{}
	sub := NewSubmitter(saver)
	ctx := context.Background()

	if _, err := sub.Submit(ctx, 42, l); err != nil {
		t.Fatal(err)
	}

	// A scan arriving after the first submission is its own new event and
	// goes out with the next batch only.
	if _, err := l.Record(ScanIntent{Identifier: "B2", ProductCode: "X", Quantity: 3}); err != nil {
		t.Fatal(err)
	}
	res, err := sub.Submit(ctx, 42, l)
	if err != nil {
		t.Fatal(err)
	}
	if res.Submitted != 1 || res.Skipped != 1 {
		t.Errorf("result = %+v, want 1 submitted / 1 skipped", res)
	}
}
