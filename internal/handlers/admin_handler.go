package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"driver-rewards/internal/models"
	"driver-rewards/internal/services"
)

type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// GetUsers returns users, optionally filtered by ?role=
func (h *AdminHandler) GetUsers(c *gin.Context) {
	limit := queryInt(c, "limit", services.DefaultListLimit)
	offset := queryInt(c, "offset", 0)
	role := models.Role(c.Query("role"))

	users, total, err := h.adminService.ListUsers(c.Request.Context(), role, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users":  users,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

// GetUser returns one user with its profile
func (h *AdminHandler) GetUser(c *gin.Context) {
	userID, ok := paramID(c, "id", "user ID")
	if !ok {
		return
	}

	detail, err := h.adminService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetStats returns platform statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
