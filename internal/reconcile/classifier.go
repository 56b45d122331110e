package reconcile

import (
	"context"
	"fmt"
)

// InventorySource resolves scanned codes against the external inventory
// store. Implementations must be read-only; classification may be retried
// freely.
type InventorySource interface {
	// Lookup resolves a single container by its identifier.
	Lookup(ctx context.Context, identifier string) (InventoryFact, error)
	// PalletContents returns every container sitting on the pallet with the
	// given serial.
	PalletContents(ctx context.Context, serial string) ([]InventoryFact, error)
}

// Classifier turns raw decoded codes into scan intents.
type Classifier struct {
	src InventorySource
}

func NewClassifier(src InventorySource) *Classifier {
	return &Classifier{src: src}
}

// Classify normalizes the code and resolves it. Pallet mode expands to one
// intent per contained container; container mode yields exactly one intent.
// The location is the destination the operator scanned alongside the code.
func (cl *Classifier) Classify(ctx context.Context, rawCode string, mode ScanMode, location string) ([]ScanIntent, error) {
	code := normalizeCode(rawCode)
	if code == "" {
		return nil, ErrEmptyCode
	}

	if mode == ModePallet {
		facts, err := cl.src.PalletContents(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("pallet %s: %w", code, err)
		}
		if len(facts) == 0 {
			return nil, fmt.Errorf("pallet %s: %w", code, ErrNotFound)
		}
		intents := make([]ScanIntent, 0, len(facts))
		for _, f := range facts {
			intents = append(intents, intentFrom(f, location))
		}
		return intents, nil
	}

	fact, err := cl.src.Lookup(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("container %s: %w", code, err)
	}
	return []ScanIntent{intentFrom(fact, location)}, nil
}

func intentFrom(f InventoryFact, location string) ScanIntent {
	return ScanIntent{
		Identifier:   f.Identifier,
		ProductCode:  f.ProductCode,
		ProductName:  f.ProductName,
		SerialPallet: f.SerialPallet,
		Quantity:     f.Quantity,
		Location:     location,
	}
}
