package models

import "time"

// Inventory: one container/box known to the inventory store. Looked up by
// the scan classifier; upserted by the receiving flow's push endpoint.
type Inventory struct {
	ID                uint    `gorm:"primaryKey"`
	Identifier        string  `gorm:"size:100;uniqueIndex;not null"` // barcode/QR payload
	SapCode           string  `gorm:"size:50;index;not null"`        // product code
	Name              string  `gorm:"size:200"`
	SerialPallet      string  `gorm:"size:100;index"` // parent pallet
	AvailableQuantity float64 `gorm:"not null"`
	LocationID        *uint   `gorm:"index"`
	Location          *Location
	UpdatedBy         string `gorm:"size:100"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
