package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"driver-rewards/internal/models"
)

// UserService handles user lookups shared across roles
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a new UserService
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return &user, nil
}

// ListSponsors returns every sponsor with its company name, for drivers choosing where to apply
func (s *UserService) ListSponsors(ctx context.Context) ([]models.SponsorSummary, error) {
	sponsors := []models.SponsorSummary{}
	err := s.db.WithContext(ctx).
		Table("users AS u").
		Select("u.id, u.email, sp.company_name").
		Joins("LEFT JOIN sponsor_profiles sp ON sp.user_id = u.id").
		Where("u.role = ?", models.RoleSponsor).
		Order("sp.company_name ASC").
		Order("u.id ASC").
		Scan(&sponsors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sponsors: %w", err)
	}
	return sponsors, nil
}
