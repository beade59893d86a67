package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"driver-rewards/internal/models"
	"driver-rewards/internal/repository"

	"gorm.io/gorm"
)

var dobPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ProfileService reads and updates the caller's own account and profile
type ProfileService struct {
	db   *gorm.DB
	repo *repository.Repository
}

// NewProfileService creates a new ProfileService
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db, repo: repository.NewRepository(db)}
}

// ProfileUpdate is a partial profile patch. Nil fields keep their stored value.
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	DOB          *string
	Phone        *string
	Address      *string // shorthand for AddressLine1
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	PostalCode   *string
	Country      *string
	SponsorOrg   *string // drivers only
	CompanyName  *string // sponsors only
	DisplayName  *string // admins only
}

// Me returns the user and its profile; the profile is nil when no row exists yet
func (s *ProfileService) Me(ctx context.Context, userID uint, role models.Role) (*models.User, interface{}, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.Role != role) {
		return nil, nil, notFound("User not found")
	}
	if err != nil {
		return nil, nil, err
	}

	profile, err := s.repo.GetProfile(ctx, role, userID)
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// UpdateProfile upserts the profile row and applies the non-nil fields of patch
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint, role models.Role, patch ProfileUpdate) (interface{}, error) {
	fields, err := patch.columns(role)
	if err != nil {
		return nil, err
	}

	var profile interface{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.EnsureProfile(ctx, role, userID); err != nil {
			return err
		}
		if err := repo.UpdateProfileFields(ctx, role, userID, fields); err != nil {
			return err
		}
		profile, err = repo.GetProfile(ctx, role, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return profile, nil
}

type fieldRule struct {
	column   string
	value    *string
	min, max int
	label    string
}

func (r fieldRule) apply(fields map[string]interface{}) error {
	if r.value == nil {
		return nil
	}
	value := strings.TrimSpace(*r.value)
	if n := utf8.RuneCountInString(value); n < r.min || n > r.max {
		if r.min == r.max {
			return validationError("%s must be %d characters", r.label, r.min)
		}
		return validationError("%s must be between %d and %d characters", r.label, r.min, r.max)
	}
	fields[r.column] = value
	return nil
}

// columns validates the patch and maps it onto profile columns
func (p ProfileUpdate) columns(role models.Role) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	if p.DOB != nil {
		if !dobPattern.MatchString(*p.DOB) {
			return nil, validationError("dob must be formatted YYYY-MM-DD")
		}
		if _, err := time.Parse("2006-01-02", *p.DOB); err != nil {
			return nil, validationError("dob is not a valid date")
		}
		fields["dob"] = *p.DOB
	}

	address := fieldRule{"address_line1", p.AddressLine1, 1, 255, "address_line1"}
	if p.AddressLine1 == nil && p.Address != nil {
		address = fieldRule{"address_line1", p.Address, 3, 200, "address"}
	}

	rules := []fieldRule{
		{"first_name", p.FirstName, 1, 100, "firstName"},
		{"last_name", p.LastName, 1, 100, "lastName"},
		{"phone", p.Phone, 7, 25, "phone"},
		address,
		{"address_line2", p.AddressLine2, 0, 255, "address_line2"},
		{"city", p.City, 0, 100, "city"},
		{"state", p.State, 0, 100, "state"},
		{"postal_code", p.PostalCode, 0, 20, "postal_code"},
		{"country", p.Country, 0, 100, "country"},
	}

	switch role {
	case models.RoleDriver:
		rules = append(rules, fieldRule{"sponsor_org", p.SponsorOrg, 1, 255, "sponsorOrg"})
	case models.RoleSponsor:
		rules = append(rules, fieldRule{"company_name", p.CompanyName, 1, 255, "companyName"})
	case models.RoleAdmin:
		rules = append(rules, fieldRule{"display_name", p.DisplayName, 1, 255, "displayName"})
	}

	for _, r := range rules {
		if err := r.apply(fields); err != nil {
			return nil, err
		}
	}
	return fields, nil
}
