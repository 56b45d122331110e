package reconcile

import (
	"errors"
	"testing"
)

func testCatalog() *Catalog {
	return NewCatalog([]Line{
		{ID: 1, ProductCode: "SAP-X", ProductName: "Product X", Unit: "PCS", ExpectedQty: 10},
		{ID: 2, ProductCode: "SAP-Y", ProductName: "Product Y", Unit: "PCS", ExpectedQty: 5},
	})
}

func intent(identifier, product string, qty float64) ScanIntent {
	return ScanIntent{
		Identifier:  identifier,
		ProductCode: product,
		Quantity:    qty,
		Location:    "RD-01",
	}
}

func TestLedger_Accumulation(t *testing.T) {
	l := NewLedger(testCatalog(), PolicyFor(KindTransfer))

	steps := []struct {
		identifier string
		qty        float64
		wantTotal  float64
		wantStatus LineStatus
		wantDone   bool
	}{
		{"B1", 4, 4, LinePartial, false},
		{"B2", 3, 7, LinePartial, false},
		{"B3", 3, 10, LineCompleted, true},
	}

	for _, step := range steps {
		out, err := l.Record(intent(step.identifier, "SAP-X", step.qty))
		if err != nil {
			t.Fatalf("Record(%s) failed: %v", step.identifier, err)
		}
		if out.Kind != OutcomeAdded {
			t.Errorf("Record(%s) kind = %s, want added", step.identifier, out.Kind)
		}
		if out.LineTotal != step.wantTotal {
			t.Errorf("Record(%s) total = %v, want %v", step.identifier, out.LineTotal, step.wantTotal)
		}
		if out.LineCompleted != step.wantDone {
			t.Errorf("Record(%s) completed = %v, want %v", step.identifier, out.LineCompleted, step.wantDone)
		}

		var p LineProgress
		for _, lp := range l.Progress() {
			if lp.Line.ID == 1 {
				p = lp
			}
		}
		if p.ScannedQty != step.wantTotal || p.Status != step.wantStatus {
			t.Errorf("after %s: progress = %v/%s, want %v/%s",
				step.identifier, p.ScannedQty, p.Status, step.wantTotal, step.wantStatus)
		}
	}
}

func TestLedger_OverflowHardCap(t *testing.T) {
	l := NewLedger(testCatalog(), Policy{Completeness: CompletenessStrict, QuantityCap: CapHard})

	if _, err := l.Record(intent("B1", "SAP-X", 10)); err != nil {
		t.Fatalf("fill line: %v", err)
	}

	_, err := l.Record(intent("B2", "SAP-X", 1))
	var qe *QuantityExceededError
	if !errors.As(err, &qe) {
		t.Fatalf("overflow scan error = %v, want QuantityExceededError", err)
	}
	if qe.Remaining() != 0 {
		t.Errorf("Remaining() = %v, want 0", qe.Remaining())
	}
	if len(l.Events()) != 1 {
		t.Errorf("ledger grew on rejected scan: %d events", len(l.Events()))
	}
}

func TestLedger_OverflowRemainingAllowance(t *testing.T) {
	l := NewLedger(testCatalog(), Policy{Completeness: CompletenessStrict, QuantityCap: CapHard})

	if _, err := l.Record(intent("B1", "SAP-X", 6)); err != nil {
		t.Fatalf("first scan: %v", err)
	}

	_, err := l.Record(intent("B2", "SAP-X", 7))
	var qe *QuantityExceededError
	if !errors.As(err, &qe) {
		t.Fatalf("error = %v, want QuantityExceededError", err)
	}
	if qe.Remaining() != 4 {
		t.Errorf("Remaining() = %v, want 4", qe.Remaining())
	}
}

func TestLedger_OverflowAdvisoryWarns(t *testing.T) {
	l := NewLedger(testCatalog(), Policy{Completeness: CompletenessLoose, QuantityCap: CapAdvisory})

	if _, err := l.Record(intent("B1", "SAP-X", 10)); err != nil {
		t.Fatalf("fill line: %v", err)
	}

	out, err := l.Record(intent("B2", "SAP-X", 2))
	if err != nil {
		t.Fatalf("advisory policy rejected overflow: %v", err)
	}
	if !out.OverflowWarning {
		t.Error("expected OverflowWarning on advisory overflow")
	}
	if out.LineTotal != 12 {
		t.Errorf("total = %v, want 12", out.LineTotal)
	}
}

func TestLedger_DuplicateConfirmedRejected(t *testing.T) {
	l := NewLedger(testCatalog(), PolicyFor(KindTransfer))
	l.Seed([]Event{{ID: 7, LineID: 1, Identifier: "B1", Quantity: 4, Confirmed: true}})

	for i := 0; i < 2; i++ {
		_, err := l.Record(intent("B1", "SAP-X", 4))
		if !errors.Is(err, ErrAlreadyConfirmed) {
			t.Fatalf("scan %d: err = %v, want ErrAlreadyConfirmed", i+1, err)
		}
	}
	if len(l.Events()) != 1 {
		t.Errorf("ledger size = %d, want 1", len(l.Events()))
	}
}

func TestLedger_RescanUnconfirmedUpdatesInPlace(t *testing.T) {
	l := NewLedger(testCatalog(), PolicyFor(KindTransfer))

	if _, err := l.Record(intent("B1", "SAP-X", 4)); err != nil {
		t.Fatalf("first scan: %v", err)
	}

	second := intent("b1 ", "SAP-X", 4)
	second.Location = "RD-02"
	out, err := l.Record(second)
	if err != nil {
		t.Fatalf("re-scan: %v", err)
	}
	if out.Kind != OutcomeUpdated {
		t.Errorf("kind = %s, want updated", out.Kind)
	}
	if len(l.Events()) != 1 {
		t.Fatalf("ledger size = %d, want 1", len(l.Events()))
	}
	if l.Events()[0].Location != "RD-02" {
		t.Errorf("location = %q, want RD-02", l.Events()[0].Location)
	}
	if out.LineTotal != 4 {
		t.Errorf("total = %v, want 4 (no double count)", out.LineTotal)
	}
}

func TestLedger_NotInRequest(t *testing.T) {
	l := NewLedger(testCatalog(), PolicyFor(KindTransfer))

	_, err := l.Record(intent("B1", "SAP-Z", 2))
	if !errors.Is(err, ErrNotInRequest) {
		t.Fatalf("err = %v, want ErrNotInRequest", err)
	}
	if len(l.Events()) != 0 {
		t.Error("ledger mutated on rejected scan")
	}
}

func TestLedger_SingleItemModeIsolation(t *testing.T) {
	l := NewLedger(testCatalog(), PolicyFor(KindTransfer))
	l.SelectLine(1)

	if _, err := l.Record(intent("B1", "SAP-Y", 2)); !errors.Is(err, ErrWrongItem) {
		t.Fatalf("other line err = %v, want ErrWrongItem", err)
	}
	if _, err := l.Record(intent("B2", "SAP-X", 2)); err != nil {
		t.Fatalf("selected line rejected: %v", err)
	}

	l.SelectLine(0)
	if _, err := l.Record(intent("B3", "SAP-Y", 2)); err != nil {
		t.Fatalf("all-lines mode rejected: %v", err)
	}
}

func TestLedger_ZeroQuantityRejected(t *testing.T) {
	l := NewLedger(testCatalog(), PolicyFor(KindTransfer))

	_, err := l.Record(intent("B1", "SAP-X", 0))
	if !errors.Is(err, ErrZeroQuantity) {
		t.Fatalf("err = %v, want ErrZeroQuantity", err)
	}
	if len(l.Events()) != 0 {
		t.Error("ledger mutated on zero-quantity scan")
	}
}

func TestLedger_ApplyGlobalQuantity(t *testing.T) {
	l := NewLedger(testCatalog(), PolicyFor(KindImport))
	l.Seed([]Event{{ID: 3, LineID: 1, Identifier: "B0", Quantity: 4, Confirmed: true}})

	if _, err := l.Record(intent("B1", "SAP-X", 2)); err != nil {
		t.Fatal(err)
	}
	if _, err := l.Record(intent("B2", "SAP-X", 3)); err != nil {
		t.Fatal(err)
	}

	if n := l.ApplyGlobalQuantity(6); n != 2 {
		t.Errorf("changed = %d, want 2", n)
	}
	for _, ev := range l.Events() {
		if ev.Confirmed && ev.Quantity != 4 {
			t.Errorf("confirmed event quantity changed to %v", ev.Quantity)
		}
		if !ev.Confirmed && ev.Quantity != 6 {
			t.Errorf("unconfirmed event quantity = %v, want 6", ev.Quantity)
		}
	}

	if n := l.ApplyGlobalQuantity(-1); n != 0 {
		t.Errorf("negative value applied to %d events", n)
	}
}

func TestLedger_SeedMarksEventsNotNew(t *testing.T) {
	l := NewLedger(testCatalog(), PolicyFor(KindTransfer))
	l.Seed([]Event{{ID: 1, LineID: 1, Identifier: "B1", Quantity: 4, New: true}})

	if l.Events()[0].New {
		t.Error("seeded event kept New flag")
	}

	var p LineProgress
	for _, lp := range l.Progress() {
		if lp.Line.ID == 1 {
			p = lp
		}
	}
	if p.ScannedQty != 4 || p.Status != LinePartial {
		t.Errorf("resumed progress = %v/%s, want 4/partial", p.ScannedQty, p.Status)
	}
}
