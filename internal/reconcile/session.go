package reconcile

import "context"

// Session is the scanning-session resource handed to a screen: an explicit
// start/stop lifecycle around one ledger, replacing shared device state.
// Camera decode callbacks fire at frame rate, so consecutive deliveries of
// the same code are debounced; the debounce resets when the mode changes or
// scanning stops.
//
// Scans are processed synchronously to completion, one at a time.
type Session struct {
	classifier *Classifier
	ledger     *Ledger

	active   bool
	mode     ScanMode
	lastCode string
}

func NewSession(classifier *Classifier, ledger *Ledger) *Session {
	return &Session{classifier: classifier, ledger: ledger}
}

func (s *Session) Active() bool { return s.active }

func (s *Session) Mode() ScanMode { return s.mode }

// Start begins (or re-targets) the session in the given mode. Switching mode
// clears the debounce state.
func (s *Session) Start(mode ScanMode) {
	if s.mode != mode {
		s.lastCode = ""
	}
	s.mode = mode
	s.active = true
}

// Stop releases the session. Further scans are rejected until Start.
func (s *Session) Stop() {
	s.active = false
	s.lastCode = ""
}

// Scan classifies the decoded code and records every resulting intent. A
// code identical to the immediately preceding one is dropped as a decoder
// duplicate (nil outcomes, no error). Partial pallet expansion is possible:
// outcomes recorded before a failing container are kept, matching one
// operator-visible result per physical box.
func (s *Session) Scan(ctx context.Context, rawCode, location string) ([]Outcome, error) {
	if !s.active {
		return nil, ErrSessionStopped
	}

	code := normalizeCode(rawCode)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if code == s.lastCode {
		return nil, nil
	}

	intents, err := s.classifier.Classify(ctx, code, s.mode, location)
	if err != nil {
		return nil, err
	}

	// Only a resolved code arms the debounce; failed lookups may be
	// re-scanned immediately.
	s.lastCode = code

	outcomes := make([]Outcome, 0, len(intents))
	for _, intent := range intents {
		out, err := s.ledger.Record(intent)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
