package warehouse

import (
	"context"
	"errors"
	"fmt"

	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/models"
	"github.com/vanphu-ral/RD-Sys-WMS-sub000/internal/reconcile"

	"gorm.io/gorm"
)

// gormCommitBackend executes the approval commit legs against Postgres.
// Each leg is a plain UPDATE, so a retried approval repeats them safely.
type gormCommitBackend struct {
	db *gorm.DB
}

func newCommitBackend(db *gorm.DB) *gormCommitBackend {
	return &gormCommitBackend{db: db}
}

func (b *gormCommitBackend) PatchProgress(ctx context.Context, requestID uint, scannedUnits int) error {
	res := b.db.WithContext(ctx).Model(&models.WarehouseRequest{}).
		Where("id = ?", requestID).
		Update("scan_progress", scannedUnits)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("request %d not found", requestID)
	}
	return nil
}

func (b *gormCommitBackend) PatchConfirmations(ctx context.Context, requestID uint, items []reconcile.Confirmation) error {
	return b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if item.ID == 0 {
				return errors.New("confirmation without a persisted id")
			}
			err := tx.Model(&models.ScanEvent{}).
				Where("id = ? AND warehouse_request_id = ?", item.ID, requestID).
				Updates(map[string]interface{}{
					"confirmed": item.Confirmed,
					"scan_by":   item.UpdatedBy,
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *gormCommitBackend) PatchStatus(ctx context.Context, requestID uint, status reconcile.State) error {
	return b.db.WithContext(ctx).Model(&models.WarehouseRequest{}).
		Where("id = ?", requestID).
		Update("status", string(status)).Error
}

// loadLedger rebuilds the reconciliation ledger of a request from its
// persisted lines and scan events.
func loadLedger(db *gorm.DB, req *models.WarehouseRequest) (*reconcile.Ledger, error) {
	var lines []models.RequestLine
	if err := db.Where("warehouse_request_id = ?", req.ID).Order("id").Find(&lines).Error; err != nil {
		return nil, err
	}

	catalogLines := make([]reconcile.Line, 0, len(lines))
	for _, l := range lines {
		catalogLines = append(catalogLines, reconcile.Line{
			ID:          l.ID,
			ProductCode: l.ProductCode,
			ProductName: l.ProductName,
			Unit:        l.Unit,
			ExpectedQty: l.ExpectedQty,
		})
	}

	var events []models.ScanEvent
	if err := db.Where("warehouse_request_id = ?", req.ID).Order("id").Find(&events).Error; err != nil {
		return nil, err
	}

	seed := make([]reconcile.Event, 0, len(events))
	for _, ev := range events {
		seed = append(seed, reconcile.Event{
			ID:           ev.ID,
			LineID:       ev.RequestLineID,
			Identifier:   ev.InventoryIdentifier,
			SerialPallet: ev.SerialPallet,
			ProductName:  ev.ProductName,
			Quantity:     ev.Quantity,
			Location:     ev.LocationCode,
			ScanTime:     ev.ScanTime,
			ScanBy:       ev.ScanBy,
			Confirmed:    ev.Confirmed,
		})
	}

	catalog := reconcile.NewCatalog(catalogLines)
	ledger := reconcile.NewLedger(catalog, reconcile.PolicyFor(reconcile.RequestKind(req.Kind)))
	ledger.Seed(seed)
	return ledger, nil
}
