package reconcile

// CompletenessRule decides when a request is ready for approval.
type CompletenessRule string

const (
	// CompletenessStrict requires every line to reach its expected quantity.
	CompletenessStrict CompletenessRule = "strict"
	// CompletenessLoose requires at least one confirmed scan per container
	// unit; the import flow tracks containers, not summed quantities.
	CompletenessLoose CompletenessRule = "loose"
)

// QuantityCapRule decides how an overflowing scan is treated.
type QuantityCapRule string

const (
	// CapHard rejects any scan that would push a line past its expected
	// quantity.
	CapHard QuantityCapRule = "hard"
	// CapAdvisory accepts the scan and surfaces a warning in the outcome.
	CapAdvisory QuantityCapRule = "advisory"
)

// Policy is injected into the ledger and the approval gate. The three
// warehouse flows differ only in these two values.
type Policy struct {
	Completeness CompletenessRule
	QuantityCap  QuantityCapRule
}

// PolicyFor returns the default policy for a request kind. Transfer and
// dispatch count quantities strictly; receiving tracks containers and only
// warns on overflow.
func PolicyFor(kind RequestKind) Policy {
	if kind == KindImport {
		return Policy{Completeness: CompletenessLoose, QuantityCap: CapAdvisory}
	}
	return Policy{Completeness: CompletenessStrict, QuantityCap: CapHard}
}
