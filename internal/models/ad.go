package models

import (
	"time"
)

// Ad is a sponsor's recruiting post that drivers can reference when applying
type Ad struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SponsorID    uint      `gorm:"not null;index" json:"sponsor_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Requirements string    `gorm:"type:text" json:"requirements"`
	Benefits     string    `gorm:"type:text" json:"benefits"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
}

func (Ad) TableName() string {
	return "ads"
}

// AdView is an ad with the posting sponsor's company name
type AdView struct {
	Ad
	CompanyName *string `json:"company_name"`
}
