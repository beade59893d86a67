package repository

import (
	"context"
	"errors"
	"strings"

	"driver-rewards/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository holds the queries shared by several services. Use WithTx to run them
// inside a caller's transaction.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to tx
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// GetUserByID retrieves a user by ID
func (r *Repository) GetUserByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user with the given normalized email and role
func (r *Repository) GetUserByEmail(ctx context.Context, email string, role models.Role) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ? AND role = ?", email, role).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetSponsorCompanyName returns the trimmed company name of a sponsor, or "" when unset
func (r *Repository) GetSponsorCompanyName(ctx context.Context, sponsorID uint) (string, error) {
	var profile models.SponsorProfile
	err := r.db.WithContext(ctx).Where("user_id = ?", sponsorID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if profile.CompanyName == nil {
		return "", nil
	}
	return strings.TrimSpace(*profile.CompanyName), nil
}

// GetProfile loads the role profile of userID, returning nil when no row exists
func (r *Repository) GetProfile(ctx context.Context, role models.Role, userID uint) (interface{}, error) {
	profile := models.ProfileFor(role, userID)
	if profile == nil {
		return nil, nil
	}

	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// EnsureProfile inserts an empty profile row for userID unless one exists
func (r *Repository) EnsureProfile(ctx context.Context, role models.Role, userID uint) error {
	profile := models.ProfileFor(role, userID)
	if profile == nil {
		return errors.New("unknown role")
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(profile).Error
}

// UpdateProfileFields sets the given columns on the role profile of userID
func (r *Repository) UpdateProfileFields(ctx context.Context, role models.Role, userID uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(models.ProfileFor(role, userID)).
		Where("user_id = ?", userID).
		Updates(fields).Error
}

// DriverBalance sums every ledger delta for a driver across all sponsors
func (r *Repository) DriverBalance(ctx context.Context, driverID uint) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).
		Model(&models.PointsLedgerEntry{}).
		Select("CAST(COALESCE(SUM(delta), 0) AS BIGINT)").
		Where("driver_id = ?", driverID).
		Row().Scan(&balance)
	return balance, err
}

// DriverSponsorBalance sums the ledger deltas a single sponsor recorded for a driver
func (r *Repository) DriverSponsorBalance(ctx context.Context, driverID, sponsorID uint) (int64, error) {
	var balance int64
	err := r.db.WithContext(ctx).
		Model(&models.PointsLedgerEntry{}).
		Select("CAST(COALESCE(SUM(delta), 0) AS BIGINT)").
		Where("driver_id = ? AND sponsor_id = ?", driverID, sponsorID).
		Row().Scan(&balance)
	return balance, err
}

// ProfileMatchedSponsorIDs returns sponsors whose company name equals the driver's
// sponsor_org, lowest id first
func (r *Repository) ProfileMatchedSponsorIDs(ctx context.Context, driverID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Table("sponsor_profiles AS sp").
		Joins("JOIN users u ON u.id = sp.user_id AND u.role = ?", models.RoleSponsor).
		Joins("JOIN driver_profiles dp ON dp.sponsor_org = sp.company_name").
		Where("dp.user_id = ? AND sp.company_name IS NOT NULL AND sp.company_name <> ''", driverID).
		Order("sp.user_id ASC").
		Pluck("sp.user_id", &ids).Error
	return ids, err
}

// LatestAcceptedApplication returns the driver's most recently reviewed accepted
// application, or nil when there is none
func (r *Repository) LatestAcceptedApplication(ctx context.Context, driverID uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND status = ?", driverID, models.ApplicationStatusAccepted).
		Order("reviewed_at DESC").
		Order("id DESC").
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// FindActiveApplication returns the pending or accepted application for the pair, or nil
func (r *Repository) FindActiveApplication(ctx context.Context, driverID, sponsorID uint) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND sponsor_id = ? AND status IN ?", driverID, sponsorID, models.ActiveApplicationStatuses).
		First(&app).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &app, nil
}
