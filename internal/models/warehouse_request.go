package models

import "time"

// RequestKind: which warehouse flow a request belongs to. Values match the
// engine's reconcile.RequestKind.
type RequestKind string

const (
	RequestKindImport   RequestKind = "import"
	RequestKindTransfer RequestKind = "transfer"
	RequestKindDispatch RequestKind = "dispatch"
)

// RequestStatus values mirror the approval gate states.
type RequestStatus string

const (
	RequestStatusDraft    RequestStatus = "draft"
	RequestStatusPending  RequestStatus = "pending_scan"
	RequestStatusReady    RequestStatus = "ready_for_approval"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// WarehouseRequest: one import requirement, internal transfer request or
// dispatch order. Created by upstream order intake; only the status and the
// scan-progress counter are mutated here.
type WarehouseRequest struct {
	ID           uint          `gorm:"primaryKey"`
	Code         string        `gorm:"size:50;uniqueIndex;not null"` // document code from the upstream system
	Kind         RequestKind   `gorm:"size:20;index;not null"`
	Status       RequestStatus `gorm:"size:30;index;not null;default:draft"`
	ScanProgress int           `gorm:"not null;default:0"` // scanned units, aggregate counter
	SourceSite   string        `gorm:"size:100"`
	TargetSite   string        `gorm:"size:100"`
	Note         string        `gorm:"size:255"`
	RequestedBy  string        `gorm:"size:100"`
	ApprovedBy   string        `gorm:"size:100"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Lines []RequestLine `gorm:"foreignKey:WarehouseRequestID;constraint:OnDelete:CASCADE"`
}

// RequestLine: one expected product within a request. Scanned quantity and
// completion status are derived from scan events on read, never stored.
type RequestLine struct {
	ID                 uint    `gorm:"primaryKey"`
	WarehouseRequestID uint    `gorm:"index;not null"`
	ProductCode        string  `gorm:"size:50;index;not null"`
	ProductName        string  `gorm:"size:200"`
	Unit               string  `gorm:"size:20"` // unit of measure
	ExpectedQty        float64 `gorm:"not null"`
	UpdatedBy          string  `gorm:"size:100"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
