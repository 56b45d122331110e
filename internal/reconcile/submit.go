package reconcile

import "context"

// SubmissionBackend persists a batch of scan events for one request and
// returns the persisted identifiers in batch order.
type SubmissionBackend interface {
	SaveScans(ctx context.Context, requestID uint, events []Event) ([]uint, error)
}

// BatchResult reports what a Submit call did.
type BatchResult struct {
	Submitted int
	Skipped   int
}

// Submitter pushes newly created scan events to the backend. Only events
// still flagged New go out; a second call with nothing new is a no-op and
// sends no request at all.
type Submitter struct {
	backend SubmissionBackend
}

func NewSubmitter(backend SubmissionBackend) *Submitter {
	return &Submitter{backend: backend}
}

// Submit posts the new events of the ledger as one batch. On success each
// submitted event gets its persisted ID and drops the New flag; events stay
// unconfirmed until the approval gate flips them. On failure nothing is
// flipped and the call is safe to repeat unchanged.
func (s *Submitter) Submit(ctx context.Context, requestID uint, ledger *Ledger) (BatchResult, error) {
	events := ledger.Events()
	batch := make([]Event, 0, len(events))
	idx := make([]int, 0, len(events))
	for i, ev := range events {
		if ev.New {
			batch = append(batch, ev)
			idx = append(idx, i)
		}
	}

	res := BatchResult{Skipped: len(events) - len(batch)}
	if len(batch) == 0 {
		return res, nil
	}

	ids, err := s.backend.SaveScans(ctx, requestID, batch)
	if err != nil {
		return res, err
	}

	for n, i := range idx {
		if n < len(ids) {
			ledger.events[i].ID = ids[n]
		}
		ledger.events[i].New = false
	}
	res.Submitted = len(batch)
	return res, nil
}
