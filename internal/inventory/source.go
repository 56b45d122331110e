package inventory

import (
	"context"
	"errors"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/reconcile"

	"gorm.io/gorm"
)

// Source adapts the inventories table to the classifier's read-only lookup
// interface.
type Source struct {
	db *gorm.DB
}

func NewSource(db *gorm.DB) *Source {
	return &Source{db: db}
}

func (s *Source) Lookup(ctx context.Context, identifier string) (reconcile.InventoryFact, error) {
	var inv models.Inventory
	err := s.db.WithContext(ctx).Where("identifier = ?", identifier).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return reconcile.InventoryFact{}, reconcile.ErrNotFound
		}
		return reconcile.InventoryFact{}, err
	}
	return factFrom(inv), nil
}

func (s *Source) PalletContents(ctx context.Context, serial string) ([]reconcile.InventoryFact, error) {
	var rows []models.Inventory
	err := s.db.WithContext(ctx).Where("serial_pallet = ?", serial).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	facts := make([]reconcile.InventoryFact, 0, len(rows))
	for _, inv := range rows {
		facts = append(facts, factFrom(inv))
	}
	return facts, nil
}

func factFrom(inv models.Inventory) reconcile.InventoryFact {
	return reconcile.InventoryFact{
		Identifier:   inv.Identifier,
		ProductCode:  inv.SapCode,
		ProductName:  inv.Name,
		SerialPallet: inv.SerialPallet,
		Quantity:     inv.AvailableQuantity,
	}
}
