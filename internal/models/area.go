package models

import "time"

// Area: a named warehouse zone grouping locations.
type Area struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;uniqueIndex;not null"`
	Note      string `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Locations []Location `gorm:"foreignKey:AreaID"`
}
