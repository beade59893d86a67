package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CatalogItem is a redeemable item in a sponsor's shop
type CatalogItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	SponsorID   uint            `gorm:"not null;index" json:"sponsor_id"`
	EbayItemID  *string         `gorm:"size:100" json:"ebay_item_id,omitempty"`
	Title       string          `gorm:"size:500;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	ImageURL    *string         `gorm:"size:1000" json:"image_url,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;check:chk_catalog_items_price,price > 0" json:"price"`
	PointCost   int64           `gorm:"not null;check:chk_catalog_items_point_cost,point_cost > 0" json:"point_cost"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
}

func (CatalogItem) TableName() string {
	return "catalog_items"
}
