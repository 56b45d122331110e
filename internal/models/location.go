package models

import "time"

// Location: one storage slot inside an area. Code is what operators scan as
// the destination.
type Location struct {
	ID        uint   `gorm:"primaryKey"`
	Code      string `gorm:"size:50;uniqueIndex;not null"`
	Name      string `gorm:"size:100"`
	AreaID    *uint  `gorm:"index"`
	Area      *Area
	Capacity  int    `gorm:"default:0"` // 0 = unbounded
	Note      string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
