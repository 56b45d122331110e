package reconcile

import "context"

// State of the approval gate. Approved and Rejected are terminal.
type State string

const (
	StateDraft       State = "draft"
	StatePendingScan State = "pending_scan"
	StateReady       State = "ready_for_approval"
	StateApproved    State = "approved"
	StateRejected    State = "rejected"
)

// Confirmation is one batched confirmed-flag flip sent during the approval
// commit. ID must be a persisted event identifier.
type Confirmation struct {
	ID        uint
	Confirmed bool
	UpdatedBy string
}

// CommitBackend executes the three legs of the approval commit. There is no
// distributed transaction behind these calls: each one must be individually
// idempotent so a failed approval can be retried from the first step.
type CommitBackend interface {
	PatchProgress(ctx context.Context, requestID uint, scannedUnits int) error
	PatchConfirmations(ctx context.Context, requestID uint, items []Confirmation) error
	PatchStatus(ctx context.Context, requestID uint, status State) error
}

// Gate guards the transition of one request to approved. Readiness is always
// re-derived from the ledger; the gate holds no progress state of its own.
type Gate struct {
	requestID uint
	ledger    *Ledger
	backend   CommitBackend
	state     State
	approver  string
}

func NewGate(requestID uint, ledger *Ledger, backend CommitBackend) *Gate {
	g := &Gate{requestID: requestID, ledger: ledger, backend: backend, state: StateDraft}
	g.Refresh()
	return g
}

// SetApprover stamps the identity onto confirmation flips.
func (g *Gate) SetApprover(name string) { g.approver = name }

func (g *Gate) State() State { return g.state }

// Refresh re-evaluates readiness from the ledger. Terminal states never
// change; a request that lost readiness (events corrected downward) falls
// back to pending.
func (g *Gate) Refresh() State {
	if g.state == StateApproved || g.state == StateRejected {
		return g.state
	}
	if len(g.ledger.Events()) == 0 {
		g.state = StateDraft
		return g.state
	}
	if g.ready() {
		g.state = StateReady
	} else {
		g.state = StatePendingScan
	}
	return g.state
}

func (g *Gate) ready() bool {
	progress := g.ledger.Progress()
	if len(progress) == 0 {
		return false
	}
	if g.ledger.Policy().Completeness == CompletenessLoose {
		// Receiving tracks containers: one confirmed scan per line unit is
		// enough, regardless of summed quantities.
		for _, p := range progress {
			if !g.hasConfirmedScan(p.Line.ID) {
				return false
			}
		}
		return true
	}
	for _, p := range progress {
		if p.Status != LineCompleted {
			return false
		}
	}
	return true
}

func (g *Gate) hasConfirmedScan(lineID uint) bool {
	for _, ev := range g.ledger.Events() {
		if ev.LineID == lineID && ev.Confirmed {
			return true
		}
	}
	return false
}

// Approve runs the commit sequence: progress counter, confirmation flags,
// status flip. It refuses to touch the backend unless the gate is ready and
// every event carries a persisted identifier. A mid-sequence failure returns
// a CommitError naming the step; the gate stays pre-approved and Approve may
// be called again once the backend recovers.
func (g *Gate) Approve(ctx context.Context) error {
	if g.state == StateApproved || g.state == StateRejected {
		return ErrTerminalState
	}
	if g.Refresh() != StateReady {
		return ErrNotReady
	}

	events := g.ledger.Events()
	confirmations := make([]Confirmation, 0, len(events))
	for _, ev := range events {
		if ev.ID == 0 {
			return ErrMissingIdentifier
		}
		confirmations = append(confirmations, Confirmation{ID: ev.ID, Confirmed: true, UpdatedBy: g.approver})
	}

	if err := g.backend.PatchProgress(ctx, g.requestID, len(events)); err != nil {
		return &CommitError{Step: StepProgress, Err: err}
	}
	if err := g.backend.PatchConfirmations(ctx, g.requestID, confirmations); err != nil {
		return &CommitError{Step: StepConfirmations, Err: err}
	}
	if err := g.backend.PatchStatus(ctx, g.requestID, StateApproved); err != nil {
		return &CommitError{Step: StepStatus, Err: err}
	}

	g.ledger.ConfirmAll()
	g.state = StateApproved
	return nil
}

// Reject is a manual operator action; no quantity invariant applies.
func (g *Gate) Reject(ctx context.Context) error {
	if g.state == StateApproved || g.state == StateRejected {
		return ErrTerminalState
	}
	if err := g.backend.PatchStatus(ctx, g.requestID, StateRejected); err != nil {
		return &CommitError{Step: StepStatus, Err: err}
	}
	g.state = StateRejected
	return nil
}
