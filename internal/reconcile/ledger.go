package reconcile

import "time"

// Ledger accumulates scan events against the lines of one request. It is the
// single source of truth for progress: line status is always recomputed from
// the events, never written back.
//
// A ledger belongs to one operator session and is not safe for concurrent
// use; scans are processed one at a time (see Session).
type Ledger struct {
	catalog  *Catalog
	policy   Policy
	events   []Event
	operator string

	// selected is non-zero in single-item mode: every scan must resolve to
	// this line.
	selected uint

	now func() time.Time
}

func NewLedger(catalog *Catalog, policy Policy) *Ledger {
	return &Ledger{catalog: catalog, policy: policy, now: time.Now}
}

// SetOperator records who is scanning; the identity is stamped onto every
// new event.
func (l *Ledger) SetOperator(name string) { l.operator = name }

// SelectLine scopes the ledger to a single line. Zero clears the selection.
func (l *Ledger) SelectLine(lineID uint) { l.selected = lineID }

// Seed loads previously persisted events for session resume. Seeded events
// are not new: a later Submit skips them.
func (l *Ledger) Seed(events []Event) {
	for _, ev := range events {
		ev.New = false
		l.events = append(l.events, ev)
	}
}

func (l *Ledger) Events() []Event { return l.events }

func (l *Ledger) Policy() Policy { return l.policy }

// Progress derives per-line scanned quantity and status from the current
// events.
func (l *Ledger) Progress() []LineProgress {
	return l.catalog.Progress(l.events)
}

// Record validates the intent and either appends a new event or corrects an
// unconfirmed one in place. Checks run in a fixed order and the first
// failure wins; on failure the ledger is left untouched.
func (l *Ledger) Record(intent ScanIntent) (Outcome, error) {
	// Re-scan of a known identifier: confirmed events are immutable,
	// unconfirmed ones get their location corrected in place.
	if idx := l.findEvent(intent.Identifier); idx >= 0 {
		if l.events[idx].Confirmed {
			return Outcome{}, ErrAlreadyConfirmed
		}
		l.events[idx].Location = intent.Location
		l.events[idx].ScanTime = l.now()
		line, _ := l.catalog.ByID(l.events[idx].LineID)
		total := l.lineTotal(line.ID)
		return Outcome{
			Kind:          OutcomeUpdated,
			LineID:        line.ID,
			LineTotal:     total,
			Remaining:     remaining(line.ExpectedQty, total),
			LineCompleted: total >= line.ExpectedQty,
		}, nil
	}

	line, ok := l.catalog.ByProductCode(intent.ProductCode)
	if !ok {
		return Outcome{}, ErrNotInRequest
	}

	if l.selected != 0 && line.ID != l.selected {
		return Outcome{}, ErrWrongItem
	}

	current := l.lineTotal(line.ID)
	projected := current + intent.Quantity
	overflow := projected > line.ExpectedQty
	if overflow && l.policy.QuantityCap == CapHard {
		return Outcome{}, &QuantityExceededError{
			LineID:    line.ID,
			Expected:  line.ExpectedQty,
			Scanned:   current,
			Attempted: intent.Quantity,
		}
	}

	if intent.Quantity <= 0 {
		return Outcome{}, ErrZeroQuantity
	}

	l.events = append(l.events, Event{
		LineID:       line.ID,
		Identifier:   intent.Identifier,
		SerialPallet: intent.SerialPallet,
		ProductName:  intent.ProductName,
		Quantity:     intent.Quantity,
		Location:     intent.Location,
		ScanTime:     l.now(),
		ScanBy:       l.operator,
		Confirmed:    false,
		New:          true,
	})

	return Outcome{
		Kind:            OutcomeAdded,
		LineID:          line.ID,
		LineTotal:       projected,
		Remaining:       remaining(line.ExpectedQty, projected),
		LineCompleted:   projected >= line.ExpectedQty,
		OverflowWarning: overflow,
	}, nil
}

// ApplyGlobalQuantity overwrites the quantity of every unconfirmed event.
// Used when one counted value applies to a whole batch of freshly scanned
// items. Confirmed events are immutable and skipped. Returns how many events
// changed.
func (l *Ledger) ApplyGlobalQuantity(v float64) int {
	if v < 0 {
		return 0
	}
	n := 0
	for i := range l.events {
		if !l.events[i].Confirmed {
			l.events[i].Quantity = v
			n++
		}
	}
	return n
}

// ConfirmAll marks every event confirmed. Called after the approval saga
// commits so the in-memory state matches the store.
func (l *Ledger) ConfirmAll() {
	for i := range l.events {
		l.events[i].Confirmed = true
	}
}

func (l *Ledger) findEvent(identifier string) int {
	norm := normalizeCode(identifier)
	for i := range l.events {
		if normalizeCode(l.events[i].Identifier) == norm {
			return i
		}
	}
	return -1
}

func (l *Ledger) lineTotal(lineID uint) float64 {
	var sum float64
	for _, ev := range l.events {
		if ev.LineID == lineID {
			sum += ev.Quantity
		}
	}
	return sum
}

func remaining(expected, scanned float64) float64 {
	if r := expected - scanned; r > 0 {
		return r
	}
	return 0
}
