package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"driver-rewards/internal/models"
)

var (
	hundred = decimal.NewFromInt(100)

	// MaxPrice is the largest value a decimal(10,2) price column holds
	MaxPrice = decimal.RequireFromString("99999999.99")
)

// CatalogService manages the items a sponsor offers for points
type CatalogService struct {
	db          *gorm.DB
	affiliation *AffiliationService
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(db *gorm.DB, affiliation *AffiliationService) *CatalogService {
	return &CatalogService{db: db, affiliation: affiliation}
}

// CatalogInput describes an item to add. Price is rounded to cents and PointCost
// defaults to one point per cent.
type CatalogInput struct {
	EbayItemID  *string
	Title       string
	Description string
	ImageURL    *string
	Price       decimal.Decimal
	PointCost   *int64
}

// DefaultPointCost converts a dollar price to points at 100 points per dollar,
// after rounding the price to cents the way it is stored
func DefaultPointCost(price decimal.Decimal) int64 {
	return price.Round(2).Mul(hundred).Ceil().IntPart()
}

// AddItem adds an item to the sponsor's catalog
func (s *CatalogService) AddItem(ctx context.Context, sponsorID uint, in CatalogInput) (*models.CatalogItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || utf8.RuneCountInString(title) > 500 {
		return nil, validationError("Title must be between 1 and 500 characters")
	}
	ebayItemID, imageURL := nonEmpty(in.EbayItemID), nonEmpty(in.ImageURL)
	if ebayItemID != nil && utf8.RuneCountInString(*ebayItemID) > 100 {
		return nil, validationError("ebayItemId must be at most 100 characters")
	}
	if imageURL != nil && utf8.RuneCountInString(*imageURL) > 1000 {
		return nil, validationError("imageUrl must be at most 1000 characters")
	}
	price := in.Price.Round(2)
	if !price.IsPositive() {
		return nil, validationError("Price must be at least 0.01")
	}
	if price.GreaterThan(MaxPrice) {
		return nil, validationError("Price must not exceed %s", MaxPrice.StringFixed(2))
	}

	cost := DefaultPointCost(price)
	if in.PointCost != nil {
		if *in.PointCost <= 0 || *in.PointCost > MaxPoints {
			return nil, validationError("pointCost must be a positive integer no greater than %d", MaxPoints)
		}
		cost = *in.PointCost
	}

	item := models.CatalogItem{
		SponsorID:   sponsorID,
		EbayItemID:  ebayItemID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		ImageURL:    imageURL,
		Price:       price,
		PointCost:   cost,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// RemoveItem deletes one of the sponsor's catalog items
func (s *CatalogService) RemoveItem(ctx context.Context, sponsorID, itemID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND sponsor_id = ?", itemID, sponsorID).
		Delete(&models.CatalogItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("Catalog item not found")
	}
	return nil
}

// ListForSponsor returns the sponsor's catalog, newest first
func (s *CatalogService) ListForSponsor(ctx context.Context, sponsorID uint) ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	err := s.db.WithContext(ctx).
		Where("sponsor_id = ?", sponsorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&items).Error
	return items, err
}

// ListForAffiliatedDriver returns the catalog of the driver's sponsor, or an empty list
// when the driver is unaffiliated
func (s *CatalogService) ListForAffiliatedDriver(ctx context.Context, driverID uint) ([]models.CatalogItem, error) {
	sponsorID, ok, err := s.affiliation.ResolveSponsorForDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []models.CatalogItem{}, nil
	}
	return s.ListForSponsor(ctx, sponsorID)
}
