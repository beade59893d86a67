package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"driver-rewards/internal/auth"
	"driver-rewards/internal/models"
	"driver-rewards/internal/services"
)

// AuthHandler serves register, login and logout for one role
type AuthHandler struct {
	authService  *services.AuthService
	role         models.Role
	cookiePath   string
	cookieSecure bool
}

// NewAuthHandler creates an AuthHandler. The auth cookie is scoped to cookiePath.
func NewAuthHandler(authService *services.AuthService, role models.Role, cookiePath string, cookieSecure bool) *AuthHandler {
	if cookiePath == "" {
		cookiePath = "/"
	}
	return &AuthHandler{
		authService:  authService,
		role:         role,
		cookiePath:   cookiePath,
		cookieSecure: cookieSecure,
	}
}

type registerRequest struct {
	Email           string  `json:"email" binding:"required"`
	Password        string  `json:"password" binding:"required"`
	FirstName       *string `json:"firstName"`
	FirstNameSnake  *string `json:"first_name"`
	LastName        *string `json:"lastName"`
	LastNameSnake   *string `json:"last_name"`
	SponsorOrg      *string `json:"sponsorOrg"`
	SponsorOrgSnake *string `json:"sponsor_org"`
	CompanyName     *string `json:"companyName"`
	CompanySnake    *string `json:"company_name"`
	DisplayName     *string `json:"displayName"`
	DisplaySnake    *string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account with the handler's role
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), h.role, services.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   pick(req.FirstName, req.FirstNameSnake),
		LastName:    pick(req.LastName, req.LastNameSnake),
		SponsorOrg:  pick(req.SponsorOrg, req.SponsorOrgSnake),
		CompanyName: pick(req.CompanyName, req.CompanySnake),
		DisplayName: pick(req.DisplayName, req.DisplaySnake),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// Login verifies credentials, sets the auth cookie and also returns the token for
// clients that send it as a Bearer header
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), h.role, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, token, int(auth.TokenTTL().Seconds()), h.cookiePath, "", h.cookieSecure, true)

	c.JSON(http.StatusOK, gin.H{
		"ok": true,
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"role":  user.Role,
		},
		"token": token,
	})
}

// Logout clears the auth cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(auth.CookieName, "", -1, h.cookiePath, "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
