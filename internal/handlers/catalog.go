package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"driver-rewards/internal/auth"
	"driver-rewards/internal/services"
)

// CatalogHandler serves a sponsor's catalog management routes
type CatalogHandler struct {
	catalog *services.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type catalogRequest struct {
	EbayItemID      *string          `json:"ebay_item_id"`
	EbayItemIDCamel *string          `json:"ebayItemId"`
	Title           string           `json:"title" binding:"required"`
	Description     string           `json:"description"`
	ImageURL        *string          `json:"image_url"`
	ImageURLCamel   *string          `json:"imageUrl"`
	Price           *decimal.Decimal `json:"price" binding:"required"`
	PointCost       *int64           `json:"point_cost"`
	PointCostCamel  *int64           `json:"pointCost"`
}

// List returns the sponsor's catalog
func (h *CatalogHandler) List(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)

	items, err := h.catalog.ListForSponsor(c.Request.Context(), sponsorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Add puts an item into the sponsor's catalog
func (h *CatalogHandler) Add(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)

	var req catalogRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.catalog.AddItem(c.Request.Context(), sponsorID, services.CatalogInput{
		EbayItemID:  pick(req.EbayItemID, req.EbayItemIDCamel),
		Title:       req.Title,
		Description: req.Description,
		ImageURL:    pick(req.ImageURL, req.ImageURLCamel),
		Price:       *req.Price,
		PointCost:   pick(req.PointCost, req.PointCostCamel),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item})
}

// Remove deletes an item from the sponsor's catalog
func (h *CatalogHandler) Remove(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)
	itemID, ok := paramID(c, "id", "item ID")
	if !ok {
		return
	}

	if err := h.catalog.RemoveItem(c.Request.Context(), sponsorID, itemID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
