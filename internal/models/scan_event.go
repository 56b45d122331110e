package models

import "time"

// ScanEvent: one persisted physical scan. Rows are written by the scan
// submission batch and become immutable once Confirmed is set by the
// approval commit.
type ScanEvent struct {
	ID                  uint    `gorm:"primaryKey"`
	WarehouseRequestID  uint    `gorm:"index;not null"`
	RequestLineID       uint    `gorm:"index;not null"`
	InventoryIdentifier string  `gorm:"size:100;index;not null"` // scanned container/box code
	SerialPallet        string  `gorm:"size:100"`
	ProductName         string  `gorm:"size:200"`
	Quantity            float64 `gorm:"not null"`
	LocationCode        string  `gorm:"size:50"` // last scanned destination
	ScanTime            time.Time
	ScanBy              string `gorm:"size:100"`
	Confirmed           bool   `gorm:"not null;default:false"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
