package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"driver-rewards/internal/auth"
	"driver-rewards/internal/repository"
	"driver-rewards/internal/services"
)

// DriverHandler serves the driver-only routes
type DriverHandler struct {
	applications *services.ApplicationService
	ads          *services.AdService
	users        *services.UserService
	affiliation  *services.AffiliationService
	ledger       *services.LedgerService
	catalog      *services.CatalogService
	repo         *repository.Repository
}

// NewDriverHandler creates a new DriverHandler
func NewDriverHandler(
	applications *services.ApplicationService,
	ads *services.AdService,
	users *services.UserService,
	affiliation *services.AffiliationService,
	ledger *services.LedgerService,
	catalog *services.CatalogService,
	repo *repository.Repository,
) *DriverHandler {
	return &DriverHandler{
		applications: applications,
		ads:          ads,
		users:        users,
		affiliation:  affiliation,
		ledger:       ledger,
		catalog:      catalog,
		repo:         repo,
	}
}

type applyRequest struct {
	SponsorID      *uint `json:"sponsorId"`
	SponsorIDSnake *uint `json:"sponsor_id"`
	AdID           *uint `json:"adId"`
	AdIDSnake      *uint `json:"ad_id"`
}

// SubmitApplication files an application to a sponsor
func (h *DriverHandler) SubmitApplication(c *gin.Context) {
	driverID, _ := auth.GetUserID(c)

	var req applyRequest
	if !bindJSON(c, &req) {
		return
	}
	sponsorID := pick(req.SponsorID, req.SponsorIDSnake)
	if sponsorID == nil || *sponsorID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid input",
			"details": gin.H{"fieldErrors": gin.H{"sponsorId": []string{"required"}}},
		})
		return
	}

	app, err := h.applications.Submit(c.Request.Context(), driverID, *sponsorID, pick(req.AdID, req.AdIDSnake))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"application": app})
}

// ListApplications returns the driver's own applications
func (h *DriverHandler) ListApplications(c *gin.Context) {
	driverID, _ := auth.GetUserID(c)

	apps, err := h.applications.ListForDriver(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"applications": apps})
}

// ListAds returns every sponsor's ads
func (h *DriverHandler) ListAds(c *gin.Context) {
	ads, err := h.ads.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ads": ads})
}

// ListSponsors returns the sponsor directory
func (h *DriverHandler) ListSponsors(c *gin.Context) {
	sponsors, err := h.users.ListSponsors(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sponsors": sponsors})
}

// GetAffiliation reports which sponsor the driver belongs to
func (h *DriverHandler) GetAffiliation(c *gin.Context) {
	driverID, _ := auth.GetUserID(c)
	ctx := c.Request.Context()

	sponsorID, ok, err := h.affiliation.ResolveSponsorForDriver(ctx, driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"affiliated":   false,
			"sponsor_id":   nil,
			"company_name": nil,
		})
		return
	}

	company, err := h.repo.GetSponsorCompanyName(ctx, sponsorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"affiliated":   true,
		"sponsor_id":   sponsorID,
		"company_name": company,
	})
}

// GetPoints returns the driver's total balance and full ledger
func (h *DriverHandler) GetPoints(c *gin.Context) {
	driverID, _ := auth.GetUserID(c)
	ctx := c.Request.Context()

	balance, err := h.ledger.Balance(ctx, driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	entries, err := h.ledger.EntriesForDriver(ctx, driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance": balance,
		"ledger":  entries,
	})
}

// GetCatalog returns the affiliated sponsor's catalog, empty when unaffiliated
func (h *DriverHandler) GetCatalog(c *gin.Context) {
	driverID, _ := auth.GetUserID(c)

	items, err := h.catalog.ListForAffiliatedDriver(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}
