package ebay

import (
	"context"
	"strings"
)

var mockItems = []Item{
	{
		EbayItemID: "mock-1",
		Title:      "Apple iPhone 13 Pro 128GB",
		Price:      "599.00",
		ImageURL:   "https://i.ebayimg.com/images/g/mock/iphone13pro.jpg",
		ItemWebURL: "https://www.ebay.com/itm/mock-1",
	},
	{
		EbayItemID: "mock-2",
		Title:      "Sony WH-1000XM5 Wireless Headphones",
		Price:      "348.00",
		ImageURL:   "https://i.ebayimg.com/images/g/mock/sonyxm5.jpg",
		ItemWebURL: "https://www.ebay.com/itm/mock-2",
	},
	{
		EbayItemID: "mock-3",
		Title:      "Apple MacBook Air M2 13-inch",
		Price:      "1099.00",
		ImageURL:   "https://i.ebayimg.com/images/g/mock/macbookairm2.jpg",
		ItemWebURL: "https://www.ebay.com/itm/mock-3",
	},
}

// Mock serves a fixed catalogue without network access
type Mock struct{}

// Search matches keyword against item titles, ignoring case
func (Mock) Search(_ context.Context, keyword string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	needle := strings.ToLower(strings.TrimSpace(keyword))

	items := []Item{}
	for _, item := range mockItems {
		if len(items) == limit {
			break
		}
		if strings.Contains(strings.ToLower(item.Title), needle) {
			items = append(items, item)
		}
	}
	return items, nil
}
