package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"driver-rewards/internal/auth"
	"driver-rewards/internal/models"
	"driver-rewards/internal/services"
)

// UserHandler serves the caller's own account: me, profile and password
type UserHandler struct {
	profileService *services.ProfileService
	authService    *services.AuthService
	role           models.Role
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(profileService *services.ProfileService, authService *services.AuthService, role models.Role) *UserHandler {
	return &UserHandler{
		profileService: profileService,
		authService:    authService,
		role:           role,
	}
}

type profileRequest struct {
	FirstName       *string `json:"firstName"`
	FirstNameSnake  *string `json:"first_name"`
	LastName        *string `json:"lastName"`
	LastNameSnake   *string `json:"last_name"`
	DOB             *string `json:"dob"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	AddressLine1    *string `json:"address_line1"`
	AddressLine2    *string `json:"address_line2"`
	City            *string `json:"city"`
	State           *string `json:"state"`
	PostalCode      *string `json:"postal_code"`
	Country         *string `json:"country"`
	SponsorOrg      *string `json:"sponsorOrg"`
	SponsorOrgSnake *string `json:"sponsor_org"`
	CompanyName     *string `json:"companyName"`
	CompanySnake    *string `json:"company_name"`
	DisplayName     *string `json:"displayName"`
	DisplaySnake    *string `json:"display_name"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// Me returns the current user and profile
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	user, profile, err := h.profileService.Me(c.Request.Context(), userID, h.role)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":    user,
		"profile": profile,
	})
}

// UpdateProfile applies a partial profile update
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req profileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, h.role, services.ProfileUpdate{
		FirstName:    pick(req.FirstName, req.FirstNameSnake),
		LastName:     pick(req.LastName, req.LastNameSnake),
		DOB:          req.DOB,
		Phone:        req.Phone,
		Address:      req.Address,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Country:      req.Country,
		SponsorOrg:   pick(req.SponsorOrg, req.SponsorOrgSnake),
		CompanyName:  pick(req.CompanyName, req.CompanySnake),
		DisplayName:  pick(req.DisplayName, req.DisplaySnake),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"profile": profile,
	})
}

// ChangePassword replaces the caller's password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req passwordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, h.role, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
