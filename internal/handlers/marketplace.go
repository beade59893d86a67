package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"driver-rewards/internal/ebay"
)

// MarketplaceHandler searches eBay for items a sponsor can add to the catalog
type MarketplaceHandler struct {
	searcher ebay.Searcher
}

// NewMarketplaceHandler creates a new MarketplaceHandler
func NewMarketplaceHandler(searcher ebay.Searcher) *MarketplaceHandler {
	return &MarketplaceHandler{searcher: searcher}
}

// Search runs ?q= against the marketplace
func (h *MarketplaceHandler) Search(c *gin.Context) {
	keyword := strings.TrimSpace(c.Query("q"))
	if keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search keyword is required"})
		return
	}

	items, err := h.searcher.Search(c.Request.Context(), keyword, queryInt(c, "limit", ebay.DefaultLimit))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
