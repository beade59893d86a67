package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"driver-rewards/internal/logger"
	"driver-rewards/internal/metrics"
	"driver-rewards/internal/models"
	"driver-rewards/internal/repository"
)

const (
	// MaxReasonLength bounds the free-text reason stored with a ledger entry
	MaxReasonLength = 255

	// MaxPoints bounds a single adjustment and every running balance to integers a
	// JSON client represents exactly. Sums of in-range values cannot overflow int64.
	MaxPoints int64 = 1<<53 - 1
)

// LedgerService records point adjustments. Entries are append-only and a balance is
// always the sum of deltas.
type LedgerService struct {
	db            *gorm.DB
	repo          *repository.Repository
	allowNegative bool
}

// NewLedgerService creates a new LedgerService. When allowNegative is false a
// deduction that would take the driver's total balance below zero is rejected.
func NewLedgerService(db *gorm.DB, allowNegative bool) *LedgerService {
	return &LedgerService{db: db, repo: repository.NewRepository(db), allowNegative: allowNegative}
}

// AddPoints credits amount to driverID on behalf of sponsorID and returns the new balance
func (s *LedgerService) AddPoints(ctx context.Context, driverID, sponsorID uint, amount int64, reason string) (int64, error) {
	return s.record(ctx, driverID, sponsorID, amount, reason, "add")
}

// DeductPoints debits amount from driverID on behalf of sponsorID and returns the new balance
func (s *LedgerService) DeductPoints(ctx context.Context, driverID, sponsorID uint, amount int64, reason string) (int64, error) {
	return s.record(ctx, driverID, sponsorID, amount, reason, "deduct")
}

func (s *LedgerService) record(ctx context.Context, driverID, sponsorID uint, amount int64, reason, direction string) (int64, error) {
	if amount <= 0 || amount > MaxPoints {
		return 0, validationError("Amount must be a positive integer no greater than %d", MaxPoints)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" || utf8.RuneCountInString(reason) > MaxReasonLength {
		return 0, validationError("Reason must be between 1 and %d characters", MaxReasonLength)
	}

	delta := amount
	if direction == "deduct" {
		delta = -amount
	}

	var balance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Serialise concurrent mutations of the same driver on Postgres
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", int64(driverID)).Error; err != nil {
				return err
			}
		}

		current, err := repo.DriverBalance(ctx, driverID)
		if err != nil {
			return err
		}
		if delta < 0 && !s.allowNegative && current+delta < 0 {
			return validationError("insufficient points")
		}
		if outOfRange(current + delta) {
			return validationError("Balance cannot exceed %d points", MaxPoints)
		}
		sponsorCurrent, err := repo.DriverSponsorBalance(ctx, driverID, sponsorID)
		if err != nil {
			return err
		}
		if outOfRange(sponsorCurrent + delta) {
			return validationError("Balance cannot exceed %d points", MaxPoints)
		}

		entry := models.PointsLedgerEntry{
			DriverID:  driverID,
			SponsorID: sponsorID,
			Delta:     delta,
			Reason:    reason,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		balance = current + delta
		return nil
	})
	if err != nil {
		if isServiceError(err) {
			return 0, err
		}
		return 0, fmt.Errorf("failed to record points: %w", err)
	}

	metrics.LedgerEntries.WithLabelValues(direction).Inc()
	logger.Log.Info("Points recorded",
		zap.Uint("driver_id", driverID),
		zap.Uint("sponsor_id", sponsorID),
		zap.Int64("delta", delta),
		zap.Int64("balance", balance),
	)
	return balance, nil
}

func outOfRange(balance int64) bool {
	return balance > MaxPoints || balance < -MaxPoints
}

// Balance returns the driver's balance summed across every sponsor
func (s *LedgerService) Balance(ctx context.Context, driverID uint) (int64, error) {
	return s.repo.DriverBalance(ctx, driverID)
}

// SponsorBalance returns the part of the driver's balance recorded by sponsorID
func (s *LedgerService) SponsorBalance(ctx context.Context, driverID, sponsorID uint) (int64, error) {
	return s.repo.DriverSponsorBalance(ctx, driverID, sponsorID)
}

// Entries lists the entries sponsorID recorded for driverID, newest first
func (s *LedgerService) Entries(ctx context.Context, driverID, sponsorID uint) ([]models.PointsLedgerEntry, error) {
	entries := []models.PointsLedgerEntry{}
	err := s.db.WithContext(ctx).
		Where("driver_id = ? AND sponsor_id = ?", driverID, sponsorID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}

// EntriesForDriver lists every entry for driverID across sponsors, newest first
func (s *LedgerService) EntriesForDriver(ctx context.Context, driverID uint) ([]models.PointsLedgerEntry, error) {
	entries := []models.PointsLedgerEntry{}
	err := s.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&entries).Error
	return entries, err
}
