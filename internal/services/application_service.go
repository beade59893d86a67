package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"driver-rewards/internal/logger"
	"driver-rewards/internal/metrics"
	"driver-rewards/internal/models"
	"driver-rewards/internal/repository"
)

// ApplicationService runs the driver application workflow:
// pending -> accepted or pending -> rejected, nothing else.
type ApplicationService struct {
	db   *gorm.DB
	repo *repository.Repository
}

// NewApplicationService creates a new ApplicationService
func NewApplicationService(db *gorm.DB) *ApplicationService {
	return &ApplicationService{db: db, repo: repository.NewRepository(db)}
}

// Submit files a pending application from driverID to sponsorID, optionally for one of
// the sponsor's ads
func (s *ApplicationService) Submit(ctx context.Context, driverID, sponsorID uint, adID *uint) (*models.Application, error) {
	if sponsorID == 0 {
		return nil, validationError("sponsorId is required")
	}

	var app models.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sponsor, err := repo.GetUserByID(ctx, sponsorID)
		if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && sponsor.Role != models.RoleSponsor) {
			return notFound("Sponsor not found")
		}
		if err != nil {
			return err
		}

		if adID != nil {
			var count int64
			if err := tx.Model(&models.Ad{}).
				Where("id = ? AND sponsor_id = ?", *adID, sponsorID).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return notFound("Ad not found for this sponsor")
			}
		}

		active, err := repo.FindActiveApplication(ctx, driverID, sponsorID)
		if err != nil {
			return err
		}
		if active != nil {
			return conflict("You already have an active application with this sponsor")
		}

		app = models.Application{
			DriverID:  driverID,
			SponsorID: sponsorID,
			AdID:      adID,
			Status:    models.ApplicationStatusPending,
		}
		return tx.Create(&app).Error
	})
	// A concurrent submit that passed the check loses on the partial unique index
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, conflict("You already have an active application with this sponsor")
	}
	if err != nil {
		if isServiceError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to submit application: %w", err)
	}

	logger.Log.Info("Application submitted",
		zap.Uint("application_id", app.ID),
		zap.Uint("driver_id", driverID),
		zap.Uint("sponsor_id", sponsorID),
	)
	return &app, nil
}

// Review moves a pending application owned by sponsorID to decision. Accepting also
// sets the driver's sponsor_org to the sponsor's company name.
func (s *ApplicationService) Review(ctx context.Context, applicationID, sponsorID uint, decision models.ApplicationStatus, notes *string) (*models.Application, error) {
	if decision != models.ApplicationStatusAccepted && decision != models.ApplicationStatusRejected {
		return nil, validationError("decision must be accepted or rejected")
	}
	if notes != nil {
		trimmed := strings.TrimSpace(*notes)
		notes = &trimmed
		if trimmed == "" {
			notes = nil
		}
	}

	var app models.Application
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND sponsor_id = ?", applicationID, sponsorID).First(&app).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("Application not found")
			}
			return err
		}
		if app.Status.Terminal() {
			return conflict("Application has already been %s", app.Status)
		}

		now := time.Now().UTC()
		result := tx.Model(&models.Application{}).
			Where("id = ? AND status = ?", app.ID, models.ApplicationStatusPending).
			Updates(map[string]interface{}{
				"status":      decision,
				"reviewed_at": now,
				"reviewed_by": sponsorID,
				"notes":       notes,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return conflict("Application has already been reviewed")
		}
		app.Status = decision
		app.ReviewedAt = &now
		app.ReviewedBy = &sponsorID
		app.Notes = notes

		if decision != models.ApplicationStatusAccepted {
			return nil
		}

		repo := s.repo.WithTx(tx)
		company, err := repo.GetSponsorCompanyName(ctx, sponsorID)
		if err != nil {
			return err
		}
		if company == "" {
			return nil
		}
		if err := repo.EnsureProfile(ctx, models.RoleDriver, app.DriverID); err != nil {
			return err
		}
		return repo.UpdateProfileFields(ctx, models.RoleDriver, app.DriverID, map[string]interface{}{
			"sponsor_org": company,
		})
	})
	if err != nil {
		if isServiceError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to review application: %w", err)
	}

	metrics.ApplicationReviews.WithLabelValues(string(decision)).Inc()
	logger.Log.Info("Application reviewed",
		zap.Uint("application_id", app.ID),
		zap.Uint("sponsor_id", sponsorID),
		zap.String("decision", string(decision)),
	)
	return &app, nil
}

// ListForDriver returns the driver's applications with the sponsor company name, newest first
func (s *ApplicationService) ListForDriver(ctx context.Context, driverID uint) ([]models.ApplicationView, error) {
	apps := []models.ApplicationView{}
	err := s.db.WithContext(ctx).
		Table("applications AS a").
		Select("a.*, u.email, sp.company_name").
		Joins("JOIN users u ON u.id = a.sponsor_id").
		Joins("LEFT JOIN sponsor_profiles sp ON sp.user_id = a.sponsor_id").
		Where("a.driver_id = ?", driverID).
		Order("a.applied_at DESC").
		Order("a.id DESC").
		Scan(&apps).Error
	return apps, err
}

// ListForSponsor returns applications addressed to sponsorID with the driver's email and
// name, optionally filtered by status
func (s *ApplicationService) ListForSponsor(ctx context.Context, sponsorID uint, status models.ApplicationStatus) ([]models.ApplicationView, error) {
	apps := []models.ApplicationView{}
	q := s.db.WithContext(ctx).
		Table("applications AS a").
		Select("a.*, u.email, dp.first_name, dp.last_name, dp.phone, dp.dob").
		Joins("JOIN users u ON u.id = a.driver_id").
		Joins("LEFT JOIN driver_profiles dp ON dp.user_id = a.driver_id").
		Where("a.sponsor_id = ?", sponsorID)
	if status != "" {
		q = q.Where("a.status = ?", status)
	}
	err := q.Order("a.applied_at DESC").Order("a.id DESC").Scan(&apps).Error
	return apps, err
}

// GetForSponsor returns one of the sponsor's applications with the driver's full contact details
func (s *ApplicationService) GetForSponsor(ctx context.Context, applicationID, sponsorID uint) (*models.ApplicationView, error) {
	var apps []models.ApplicationView
	err := s.db.WithContext(ctx).
		Table("applications AS a").
		Select(`a.*, u.email, dp.first_name, dp.last_name, dp.phone, dp.dob,
			dp.address_line1, dp.address_line2, dp.city, dp.state, dp.postal_code, dp.country`).
		Joins("JOIN users u ON u.id = a.driver_id").
		Joins("LEFT JOIN driver_profiles dp ON dp.user_id = a.driver_id").
		Where("a.id = ? AND a.sponsor_id = ?", applicationID, sponsorID).
		Limit(1).
		Scan(&apps).Error
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, notFound("Application not found")
	}
	return &apps[0], nil
}
