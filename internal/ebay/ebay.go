// Package ebay searches the eBay Browse API for fixed-price items sponsors can add
// to their catalogs.
package ebay

import (
	"context"
	"errors"
)

const (
	SandboxURL    = "https://api.sandbox.ebay.com"
	ProductionURL = "https://api.ebay.com"

	DefaultScope = "https://api.ebay.com/oauth/api_scope"
	DefaultLimit = 12
)

// ErrUpstream marks failures talking to eBay
var ErrUpstream = errors.New("ebay upstream error")

// Item is a search hit reduced to what a catalog entry needs
type Item struct {
	EbayItemID string `json:"ebay_item_id"`
	Title      string `json:"title"`
	Price      string `json:"price"`
	ImageURL   string `json:"image_url,omitempty"`
	ItemWebURL string `json:"item_web_url,omitempty"`
}

// Searcher finds items by keyword
type Searcher interface {
	Search(ctx context.Context, keyword string, limit int) ([]Item, error)
}
