package models

import (
	"time"
)

// PointsLedgerEntry is one immutable signed point adjustment.
// Rows are only ever inserted; a balance is the sum of Delta.
type PointsLedgerEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DriverID  uint      `gorm:"not null;index:idx_ledger_driver_sponsor,priority:1" json:"driver_id"`
	SponsorID uint      `gorm:"not null;index:idx_ledger_driver_sponsor,priority:2" json:"sponsor_id"`
	Delta     int64     `gorm:"not null" json:"delta"`
	Reason    string    `gorm:"size:255;not null" json:"reason"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (PointsLedgerEntry) TableName() string {
	return "driver_points_ledger"
}
