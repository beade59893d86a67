package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"driver-rewards/internal/auth"
	"driver-rewards/internal/models"
	"driver-rewards/internal/services"
)

// SponsorHandler serves ads, application review and driver points for sponsors
type SponsorHandler struct {
	applications *services.ApplicationService
	ads          *services.AdService
	affiliation  *services.AffiliationService
	ledger       *services.LedgerService
	profiles     *services.ProfileService
}

// NewSponsorHandler creates a new SponsorHandler
func NewSponsorHandler(
	applications *services.ApplicationService,
	ads *services.AdService,
	affiliation *services.AffiliationService,
	ledger *services.LedgerService,
	profiles *services.ProfileService,
) *SponsorHandler {
	return &SponsorHandler{
		applications: applications,
		ads:          ads,
		affiliation:  affiliation,
		ledger:       ledger,
		profiles:     profiles,
	}
}

type adRequest struct {
	Title        string `json:"title" binding:"required,max=255"`
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Benefits     string `json:"benefits"`
}

type reviewRequest struct {
	Status   string  `json:"status"`
	Decision string  `json:"decision"`
	Notes    *string `json:"notes"`
}

type pointsRequest struct {
	Points *int64 `json:"points" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

// CreateAd posts a new ad
func (h *SponsorHandler) CreateAd(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)

	var req adRequest
	if !bindJSON(c, &req) {
		return
	}

	ad, err := h.ads.Create(c.Request.Context(), sponsorID, services.AdInput{
		Title:        req.Title,
		Description:  req.Description,
		Requirements: req.Requirements,
		Benefits:     req.Benefits,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ad": ad})
}

// ListAds returns the sponsor's own ads
func (h *SponsorHandler) ListAds(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)

	ads, err := h.ads.ListForSponsor(c.Request.Context(), sponsorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ads": ads})
}

// DeleteAd removes one of the sponsor's ads
func (h *SponsorHandler) DeleteAd(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)
	adID, ok := paramID(c, "id", "adId")
	if !ok {
		return
	}

	if err := h.ads.Delete(c.Request.Context(), sponsorID, adID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListApplications returns applications addressed to the sponsor, optionally ?status=
func (h *SponsorHandler) ListApplications(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)

	apps, err := h.applications.ListForSponsor(c.Request.Context(), sponsorID, models.ApplicationStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// GetApplication returns one application with the driver's contact details
func (h *SponsorHandler) GetApplication(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)
	applicationID, ok := paramID(c, "id", "applicationId")
	if !ok {
		return
	}

	app, err := h.applications.GetForSponsor(c.Request.Context(), applicationID, sponsorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"application": app})
}

// ReviewApplication accepts or rejects a pending application
func (h *SponsorHandler) ReviewApplication(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)
	applicationID, ok := paramID(c, "id", "applicationId")
	if !ok {
		return
	}

	var req reviewRequest
	if !bindJSON(c, &req) {
		return
	}
	decision := req.Status
	if decision == "" {
		decision = req.Decision
	}
	if decision != string(models.ApplicationStatusAccepted) && decision != string(models.ApplicationStatusRejected) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid input",
			"details": gin.H{"fieldErrors": gin.H{"status": []string{"oneof=accepted rejected"}}},
		})
		return
	}

	app, err := h.applications.Review(c.Request.Context(), applicationID, sponsorID, models.ApplicationStatus(decision), req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":          true,
		"application": app,
	})
}

// ListDrivers returns the drivers in the sponsor's organization with their balances
func (h *SponsorHandler) ListDrivers(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)

	drivers, err := h.affiliation.ListDriversForSponsor(c.Request.Context(), sponsorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"drivers": drivers})
}

// requireOrgDriver parses :id and answers 404 unless the driver belongs to the sponsor
func (h *SponsorHandler) requireOrgDriver(c *gin.Context, sponsorID uint) (uint, bool) {
	driverID, ok := paramID(c, "id", "driverId")
	if !ok {
		return 0, false
	}

	member, err := h.affiliation.DriverInSponsorOrg(c.Request.Context(), sponsorID, driverID)
	if err != nil {
		respondError(c, err)
		return 0, false
	}
	if !member {
		c.JSON(http.StatusNotFound, gin.H{"error": "Driver not found in your organization"})
		return 0, false
	}
	return driverID, true
}

// GetDriverPoints returns a driver's balance and the ledger entries this sponsor recorded
func (h *SponsorHandler) GetDriverPoints(c *gin.Context) {
	sponsorID, _ := auth.GetUserID(c)
	ctx := c.Request.Context()

	driverID, ok := h.requireOrgDriver(c, sponsorID)
	if !ok {
		return
	}

	user, profile, err := h.profiles.Me(ctx, driverID, models.RoleDriver)
	if err != nil {
		respondError(c, err)
		return
	}
	driver := gin.H{"id": user.ID, "email": user.Email, "first_name": nil, "last_name": nil}
	if p, ok := profile.(*models.DriverProfile); ok && p != nil {
		driver["first_name"] = p.FirstName
		driver["last_name"] = p.LastName
	}

	balance, err := h.ledger.Balance(ctx, driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	sponsorBalance, err := h.ledger.SponsorBalance(ctx, driverID, sponsorID)
	if err != nil {
		respondError(c, err)
		return
	}
	entries, err := h.ledger.Entries(ctx, driverID, sponsorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"driver":          driver,
		"balance":         balance,
		"sponsor_balance": sponsorBalance,
		"ledger":          entries,
	})
}

// AddDriverPoints credits points to an org driver
func (h *SponsorHandler) AddDriverPoints(c *gin.Context) {
	h.adjustPoints(c, false)
}

// DeductDriverPoints debits points from an org driver
func (h *SponsorHandler) DeductDriverPoints(c *gin.Context) {
	h.adjustPoints(c, true)
}

func (h *SponsorHandler) adjustPoints(c *gin.Context, deduct bool) {
	sponsorID, _ := auth.GetUserID(c)
	ctx := c.Request.Context()

	var req pointsRequest
	if !bindJSON(c, &req) {
		return
	}

	driverID, ok := h.requireOrgDriver(c, sponsorID)
	if !ok {
		return
	}

	var (
		balance int64
		err     error
		delta   = *req.Points
	)
	if deduct {
		balance, err = h.ledger.DeductPoints(ctx, driverID, sponsorID, *req.Points, req.Reason)
		delta = -delta
	} else {
		balance, err = h.ledger.AddPoints(ctx, driverID, sponsorID, *req.Points, req.Reason)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"driverId": driverID,
		"delta":    delta,
		"reason":   req.Reason,
		"balance":  balance,
	})
}
