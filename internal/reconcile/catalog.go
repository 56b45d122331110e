package reconcile

import "strings"

// Catalog holds the expected lines of one warehouse request. Scanned
// quantities and statuses are computed against a ledger on read; the catalog
// itself carries no mutable progress state.
type Catalog struct {
	lines []Line
}

func NewCatalog(lines []Line) *Catalog {
	return &Catalog{lines: lines}
}

func (c *Catalog) Lines() []Line { return c.lines }

func (c *Catalog) Len() int { return len(c.lines) }

// ByProductCode matches case-insensitively after trimming, the same
// normalization the classifier applies to scanned codes.
func (c *Catalog) ByProductCode(code string) (Line, bool) {
	norm := normalizeCode(code)
	for _, l := range c.lines {
		if normalizeCode(l.ProductCode) == norm {
			return l, true
		}
	}
	return Line{}, false
}

func (c *Catalog) ByID(id uint) (Line, bool) {
	for _, l := range c.lines {
		if l.ID == id {
			return l, true
		}
	}
	return Line{}, false
}

// LineProgress is the derived view of one line against a set of events.
type LineProgress struct {
	Line       Line
	ScannedQty float64
	Status     LineStatus
}

// Progress recomputes scanned quantity and status for every line from the
// given events. Events referencing unknown lines are ignored.
func (c *Catalog) Progress(events []Event) []LineProgress {
	out := make([]LineProgress, 0, len(c.lines))
	for _, l := range c.lines {
		var sum float64
		for _, ev := range events {
			if ev.LineID == l.ID {
				sum += ev.Quantity
			}
		}
		out = append(out, LineProgress{Line: l, ScannedQty: sum, Status: statusFor(sum, l.ExpectedQty)})
	}
	return out
}

func statusFor(scanned, expected float64) LineStatus {
	switch {
	case scanned <= 0:
		return LinePending
	case scanned < expected:
		return LinePartial
	default:
		return LineCompleted
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
