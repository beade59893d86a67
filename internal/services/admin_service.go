package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"driver-rewards/internal/models"
	"driver-rewards/internal/repository"
)

// Listing bounds for admin queries
const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type AdminService struct {
	db   *gorm.DB
	repo *repository.Repository
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, repo: repository.NewRepository(db)}
}

// UserDetail is a user together with its role profile
type UserDetail struct {
	User    *models.User `json:"user"`
	Profile interface{}  `json:"profile"`
}

// PlatformStats summarises the platform for the admin dashboard
type PlatformStats struct {
	UsersByRole          map[models.Role]int64              `json:"users_by_role"`
	ApplicationsByStatus map[models.ApplicationStatus]int64 `json:"applications_by_status"`
	LedgerEntries        int64                              `json:"ledger_entries"`
	OutstandingPoints    int64                              `json:"outstanding_points"`
	Ads                  int64                              `json:"ads"`
	CatalogItems         int64                              `json:"catalog_items"`
}

// ListUsers returns users, newest first, optionally filtered by role, with the
// total matching count
func (s *AdminService) ListUsers(ctx context.Context, role models.Role, limit, offset int) ([]models.User, int64, error) {
	if role != "" && !role.Valid() {
		return nil, 0, validationError("Unknown role %q", role)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	users := []models.User{}
	var total int64

	query := s.db.WithContext(ctx).Model(&models.User{})
	if role != "" {
		query = query.Where("role = ?", role)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("created_at DESC").Order("id DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// GetUser returns a user and its profile
func (s *AdminService) GetUser(ctx context.Context, userID uint) (*UserDetail, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.GetProfile(ctx, user.Role, user.ID)
	if err != nil {
		return nil, err
	}
	return &UserDetail{User: user, Profile: profile}, nil
}

// Stats counts users, applications, ledger activity and content
func (s *AdminService) Stats(ctx context.Context) (*PlatformStats, error) {
	db := s.db.WithContext(ctx)
	stats := PlatformStats{
		UsersByRole:          map[models.Role]int64{},
		ApplicationsByStatus: map[models.ApplicationStatus]int64{},
	}
	for _, role := range models.Roles {
		stats.UsersByRole[role] = 0
	}
	for _, status := range []models.ApplicationStatus{
		models.ApplicationStatusPending,
		models.ApplicationStatusAccepted,
		models.ApplicationStatusRejected,
	} {
		stats.ApplicationsByStatus[status] = 0
	}

	var roleCounts []struct {
		Role  models.Role
		Count int64
	}
	if err := db.Model(&models.User{}).Select("role, COUNT(*) AS count").Group("role").Scan(&roleCounts).Error; err != nil {
		return nil, err
	}
	for _, rc := range roleCounts {
		stats.UsersByRole[rc.Role] = rc.Count
	}

	var statusCounts []struct {
		Status models.ApplicationStatus
		Count  int64
	}
	if err := db.Model(&models.Application{}).Select("status, COUNT(*) AS count").Group("status").Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	for _, sc := range statusCounts {
		stats.ApplicationsByStatus[sc.Status] = sc.Count
	}

	if err := db.Model(&models.PointsLedgerEntry{}).Count(&stats.LedgerEntries).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.PointsLedgerEntry{}).
		Select("CAST(COALESCE(SUM(delta), 0) AS BIGINT)").
		Row().Scan(&stats.OutstandingPoints); err != nil {
		return nil, err
	}
	if err := db.Model(&models.Ad{}).Count(&stats.Ads).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.CatalogItem{}).Count(&stats.CatalogItems).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
