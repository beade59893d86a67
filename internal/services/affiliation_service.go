package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"driver-rewards/internal/models"
	"driver-rewards/internal/repository"
)

// AffiliationService answers which sponsor a driver belongs to. Two signals count:
// the driver's sponsor_org matching a sponsor's company name, and an accepted application.
type AffiliationService struct {
	db   *gorm.DB
	repo *repository.Repository
}

// NewAffiliationService creates a new AffiliationService
func NewAffiliationService(db *gorm.DB) *AffiliationService {
	return &AffiliationService{db: db, repo: repository.NewRepository(db)}
}

// ResolveSponsorForDriver returns the driver's sponsor. The most recently reviewed
// accepted application wins; otherwise the lowest sponsor id whose company name
// matches the driver's sponsor_org. ok is false when the driver is unaffiliated.
func (s *AffiliationService) ResolveSponsorForDriver(ctx context.Context, driverID uint) (uint, bool, error) {
	app, err := s.repo.LatestAcceptedApplication(ctx, driverID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to load accepted application: %w", err)
	}
	if app != nil {
		return app.SponsorID, true, nil
	}

	ids, err := s.repo.ProfileMatchedSponsorIDs(ctx, driverID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to match sponsor org: %w", err)
	}
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[0], true, nil
}

// DriverInSponsorOrg reports whether driverID is affiliated with sponsorID by either signal
func (s *AffiliationService) DriverInSponsorOrg(ctx context.Context, sponsorID, driverID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM users u
		WHERE u.id = ? AND u.role = ? AND (
			EXISTS (
				SELECT 1 FROM driver_profiles dp
				JOIN sponsor_profiles sp ON sp.user_id = ?
				WHERE dp.user_id = u.id
				  AND sp.company_name IS NOT NULL AND sp.company_name <> ''
				  AND dp.sponsor_org = sp.company_name
			)
			OR EXISTS (
				SELECT 1 FROM applications a
				WHERE a.driver_id = u.id AND a.sponsor_id = ? AND a.status = ?
			)
		)`,
		driverID, models.RoleDriver, sponsorID, sponsorID, models.ApplicationStatusAccepted,
	).Scan(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check affiliation: %w", err)
	}
	return count > 0, nil
}

// ListDriversForSponsor returns the sponsor's drivers with their total point balance,
// ordered by last name, first name and email
func (s *AffiliationService) ListDriversForSponsor(ctx context.Context, sponsorID uint) ([]models.DriverSummary, error) {
	drivers := []models.DriverSummary{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT u.id, u.email,
		       dp.first_name, dp.last_name, dp.phone, dp.sponsor_org,
		       CAST(COALESCE((SELECT SUM(l.delta) FROM driver_points_ledger l WHERE l.driver_id = u.id), 0) AS BIGINT) AS points_balance
		FROM users u
		LEFT JOIN driver_profiles dp ON dp.user_id = u.id
		WHERE u.role = ? AND (
			EXISTS (
				SELECT 1 FROM sponsor_profiles sp
				WHERE sp.user_id = ?
				  AND sp.company_name IS NOT NULL AND sp.company_name <> ''
				  AND dp.sponsor_org = sp.company_name
			)
			OR EXISTS (
				SELECT 1 FROM applications a
				WHERE a.driver_id = u.id AND a.sponsor_id = ? AND a.status = ?
			)
		)
		ORDER BY dp.last_name ASC, dp.first_name ASC, u.email ASC`,
		models.RoleDriver, sponsorID, sponsorID, models.ApplicationStatusAccepted,
	).Scan(&drivers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}
