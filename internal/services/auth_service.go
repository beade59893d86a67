package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"driver-rewards/internal/auth"
	"driver-rewards/internal/logger"
	"driver-rewards/internal/models"
	"driver-rewards/internal/repository"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MinPasswordLength applies to registration and password changes
const MinPasswordLength = 8

var validate = validator.New()

// AuthService handles registration, login and password changes
type AuthService struct {
	db   *gorm.DB
	repo *repository.Repository
}

// NewAuthService creates a new AuthService
func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db, repo: repository.NewRepository(db)}
}

// RegisterInput carries the account credentials and the role-specific profile seed.
// Fields that do not apply to the registering role are ignored.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   *string
	LastName    *string
	SponsorOrg  *string
	CompanyName *string
	DisplayName *string
}

// NormalizeEmail lower-cases and trims an address so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with the given role together with its profile row
func (s *AuthService) Register(ctx context.Context, role models.Role, in RegisterInput) (*models.User, error) {
	if !role.Valid() {
		return nil, validationError("Unknown role %q", role)
	}

	email := NormalizeEmail(in.Email)
	if err := validate.Var(email, "required,email,max=255"); err != nil {
		return nil, validationError("Invalid email address")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, validationError("Password must be at least %d characters", MinPasswordLength)
	}

	// The profile seed follows the same limits as a later profile update.
	seed := ProfileUpdate{
		FirstName:   nonEmpty(in.FirstName),
		LastName:    nonEmpty(in.LastName),
		SponsorOrg:  nonEmpty(in.SponsorOrg),
		CompanyName: nonEmpty(in.CompanyName),
		DisplayName: nonEmpty(in.DisplayName),
	}
	if _, err := seed.columns(role); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(newProfile(role, user.ID, in)).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, conflict("Email already in use")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.Log.Info("User registered", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return &user, nil
}

func newProfile(role models.Role, userID uint, in RegisterInput) interface{} {
	switch role {
	case models.RoleDriver:
		return &models.DriverProfile{
			UserID:      userID,
			ContactInfo: models.ContactInfo{FirstName: nonEmpty(in.FirstName), LastName: nonEmpty(in.LastName)},
			SponsorOrg:  nonEmpty(in.SponsorOrg),
		}
	case models.RoleSponsor:
		return &models.SponsorProfile{
			UserID:      userID,
			ContactInfo: models.ContactInfo{FirstName: nonEmpty(in.FirstName), LastName: nonEmpty(in.LastName)},
			CompanyName: nonEmpty(in.CompanyName),
		}
	default:
		return &models.AdminProfile{
			UserID:      userID,
			ContactInfo: models.ContactInfo{FirstName: nonEmpty(in.FirstName), LastName: nonEmpty(in.LastName)},
			DisplayName: nonEmpty(in.DisplayName),
		}
	}
}

// Login verifies credentials against an account of the given role and issues a token
func (s *AuthService) Login(ctx context.Context, role models.Role, email, password string) (*models.User, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, NormalizeEmail(email), role)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", unauthorized("Invalid credentials")
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", unauthorized("Invalid credentials")
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}

	logger.Log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("role", string(role)))
	return user, token, nil
}

// ChangePassword replaces the password of userID after verifying the current one
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, role models.Role, current, next string) error {
	if current == "" {
		return validationError("Current password is required")
	}
	if len(next) < MinPasswordLength {
		return validationError("New password must be at least %d characters", MinPasswordLength)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && user.Role != role) {
		return notFound("User not found")
	}
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, current) {
		return unauthorized("Invalid current password")
	}
	if auth.CheckPassword(user.PasswordHash, next) {
		return validationError("New password must be different")
	}

	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND role = ?", userID, role).
		Update("password_hash", hash).Error
}

// nonEmpty trims s and returns nil for nil or blank input
func nonEmpty(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
