package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"driver-rewards/internal/models"
)

// AdService manages sponsor recruiting ads
type AdService struct {
	db *gorm.DB
}

// NewAdService creates a new AdService
func NewAdService(db *gorm.DB) *AdService {
	return &AdService{db: db}
}

// AdInput is the body of a new ad
type AdInput struct {
	Title        string
	Description  string
	Requirements string
	Benefits     string
}

// Create posts a new ad for sponsorID
func (s *AdService) Create(ctx context.Context, sponsorID uint, in AdInput) (*models.Ad, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > 255 {
		return nil, validationError("Title must be between 1 and 255 characters")
	}

	ad := models.Ad{
		SponsorID:    sponsorID,
		Title:        title,
		Description:  strings.TrimSpace(in.Description),
		Requirements: strings.TrimSpace(in.Requirements),
		Benefits:     strings.TrimSpace(in.Benefits),
	}
	if err := s.db.WithContext(ctx).Create(&ad).Error; err != nil {
		return nil, err
	}
	return &ad, nil
}

// ListForSponsor returns the sponsor's own ads, newest first
func (s *AdService) ListForSponsor(ctx context.Context, sponsorID uint) ([]models.Ad, error) {
	ads := []models.Ad{}
	err := s.db.WithContext(ctx).
		Where("sponsor_id = ?", sponsorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&ads).Error
	return ads, err
}

// ListAll returns every ad with the sponsor's company name for drivers to browse
func (s *AdService) ListAll(ctx context.Context) ([]models.AdView, error) {
	ads := []models.AdView{}
	err := s.db.WithContext(ctx).
		Table("ads AS a").
		Select("a.*, sp.company_name").
		Joins("LEFT JOIN sponsor_profiles sp ON sp.user_id = a.sponsor_id").
		Order("a.created_at DESC").
		Order("a.id DESC").
		Scan(&ads).Error
	return ads, err
}

// Delete removes one of the sponsor's ads
func (s *AdService) Delete(ctx context.Context, sponsorID, adID uint) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND sponsor_id = ?", adID, sponsorID).
		Delete(&models.Ad{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound("Ad not found")
	}
	return nil
}
