package reconcile

import "time"

// RequestKind identifies which warehouse flow a request belongs to.
type RequestKind string

const (
	KindImport   RequestKind = "import"
	KindTransfer RequestKind = "transfer"
	KindDispatch RequestKind = "dispatch"
)

// LineStatus is derived from the ledger, never stored independently.
type LineStatus string

const (
	LinePending   LineStatus = "pending"
	LinePartial   LineStatus = "partial"
	LineCompleted LineStatus = "completed"
)

// ScanMode selects how a raw code is resolved against inventory.
type ScanMode string

const (
	ModePallet    ScanMode = "pallet"
	ModeContainer ScanMode = "container"
)

// Line is one expected product within a request.
type Line struct {
	ID          uint
	ProductCode string
	ProductName string
	Unit        string
	ExpectedQty float64
}

// InventoryFact is a read-only lookup result from the inventory source.
type InventoryFact struct {
	Identifier   string
	ProductCode  string
	ProductName  string
	SerialPallet string
	Quantity     float64
}

// ScanIntent is a classified scan, ready to be recorded against the ledger.
type ScanIntent struct {
	Identifier   string
	ProductCode  string
	ProductName  string
	SerialPallet string
	Quantity     float64
	Location     string
}

// Event is one ledger entry. ID stays zero until the event has been
// persisted by the submission adapter.
type Event struct {
	ID           uint
	LineID       uint
	Identifier   string
	SerialPallet string
	ProductName  string
	Quantity     float64
	Location     string
	ScanTime     time.Time
	ScanBy       string
	Confirmed    bool
	New          bool
}

// OutcomeKind distinguishes a fresh event from an in-place correction.
type OutcomeKind string

const (
	OutcomeAdded   OutcomeKind = "added"
	OutcomeUpdated OutcomeKind = "updated"
)

// Outcome summarizes a successful Record call.
type Outcome struct {
	Kind          OutcomeKind
	LineID        uint
	LineTotal     float64
	Remaining     float64
	LineCompleted bool
	// OverflowWarning is set when an advisory-cap policy accepted a scan
	// that pushed the line past its expected quantity.
	OverflowWarning bool
}
