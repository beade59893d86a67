// Package router assembles the gin engine. Each role service mounts the common
// account routes plus the route groups its capabilities grant.
package router

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"driver-rewards/internal/auth"
	"driver-rewards/internal/config"
	"driver-rewards/internal/ebay"
	"driver-rewards/internal/handlers"
	"driver-rewards/internal/metrics"
	"driver-rewards/internal/middleware"
	"driver-rewards/internal/models"
	"driver-rewards/internal/repository"
	"driver-rewards/internal/services"
)

// RoleAll serves every role under its own path prefix
const RoleAll = "all"

// Deps are the collaborators the routes are built from
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Searcher ebay.Searcher
}

type serviceSet struct {
	auth         *services.AuthService
	profiles     *services.ProfileService
	affiliation  *services.AffiliationService
	ledger       *services.LedgerService
	applications *services.ApplicationService
	ads          *services.AdService
	catalog      *services.CatalogService
	users        *services.UserService
	admin        *services.AdminService
	repo         *repository.Repository
}

func newServiceSet(db *gorm.DB, cfg *config.Config) *serviceSet {
	affiliation := services.NewAffiliationService(db)
	return &serviceSet{
		auth:         services.NewAuthService(db),
		profiles:     services.NewProfileService(db),
		affiliation:  affiliation,
		ledger:       services.NewLedgerService(db, cfg.Ledger.AllowNegative),
		applications: services.NewApplicationService(db),
		ads:          services.NewAdService(db),
		catalog:      services.NewCatalogService(db, affiliation),
		users:        services.NewUserService(db),
		admin:        services.NewAdminService(db),
		repo:         repository.NewRepository(db),
	}
}

// New builds the engine for cfg.Server.Role
func New(deps Deps) (*gin.Engine, error) {
	cfg := deps.Config
	if deps.Searcher == nil {
		deps.Searcher = ebay.Mock{}
	}

	roles, err := mountedRoles(cfg.Server.Role)
	if err != nil {
		return nil, err
	}

	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173"}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ok":   true,
			"role": cfg.Server.Role,
			"time": time.Now().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	svc := newServiceSet(deps.DB, cfg)
	limiter := middleware.NewRateLimiter(cfg.Server.AuthRPS, cfg.Server.AuthBurst)

	for _, role := range roles {
		prefix := "/"
		if cfg.Server.Role == RoleAll {
			prefix = "/" + string(role)
		}
		mountRole(router.Group(prefix), prefix, role, svc, deps, limiter)
	}

	return router, nil
}

func mountedRoles(role string) ([]models.Role, error) {
	if role == RoleAll {
		return models.Roles, nil
	}
	r := models.Role(role)
	if !r.Valid() {
		return nil, fmt.Errorf("unknown service role %q", role)
	}
	return []models.Role{r}, nil
}

func mountRole(group *gin.RouterGroup, prefix string, role models.Role, svc *serviceSet, deps Deps, limiter *middleware.RateLimiter) {
	authHandler := handlers.NewAuthHandler(svc.auth, role, prefix, deps.Config.App.CookieSecure)
	userHandler := handlers.NewUserHandler(svc.profiles, svc.auth, role)

	authRoutes := group.Group("/auth")
	{
		authRoutes.POST("/register", limiter.Handler(), authHandler.Register)
		authRoutes.POST("/login", limiter.Handler(), authHandler.Login)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	protected := group.Group("")
	protected.Use(auth.RequireRole(role))
	{
		protected.GET("/me", userHandler.Me)
		protected.PUT("/me/profile", userHandler.UpdateProfile)
		protected.PUT("/me/password", userHandler.ChangePassword)
	}

	driver := handlers.NewDriverHandler(svc.applications, svc.ads, svc.users, svc.affiliation, svc.ledger, svc.catalog, svc.repo)
	sponsor := handlers.NewSponsorHandler(svc.applications, svc.ads, svc.affiliation, svc.ledger, svc.profiles)
	catalog := handlers.NewCatalogHandler(svc.catalog)
	marketplace := handlers.NewMarketplaceHandler(deps.Searcher)
	admin := handlers.NewAdminHandler(svc.admin)

	for _, capability := range auth.Capabilities[role] {
		routes := protected.Group("", auth.RequireCapability(capability))
		switch capability {
		case auth.CapApply:
			routes.POST("/applications", driver.SubmitApplication)
			routes.GET("/applications", driver.ListApplications)
		case auth.CapBrowseAds:
			routes.GET("/ads", driver.ListAds)
		case auth.CapSponsorList:
			routes.GET("/sponsors", driver.ListSponsors)
		case auth.CapOwnPoints:
			routes.GET("/affiliation", driver.GetAffiliation)
			routes.GET("/points", driver.GetPoints)
		case auth.CapShop:
			routes.GET("/catalog", driver.GetCatalog)
		case auth.CapManageAds:
			routes.GET("/ads", sponsor.ListAds)
			routes.POST("/ads", sponsor.CreateAd)
			routes.DELETE("/ads/:id", sponsor.DeleteAd)
		case auth.CapReview:
			routes.GET("/applications", sponsor.ListApplications)
			routes.GET("/applications/:id", sponsor.GetApplication)
			routes.PUT("/applications/:id", sponsor.ReviewApplication)
			routes.PUT("/applications/:id/review", sponsor.ReviewApplication)
		case auth.CapManagePoints:
			routes.GET("/drivers", sponsor.ListDrivers)
			routes.GET("/drivers/:id/points", sponsor.GetDriverPoints)
			routes.POST("/drivers/:id/points/add", sponsor.AddDriverPoints)
			routes.POST("/drivers/:id/points/deduct", sponsor.DeductDriverPoints)
		case auth.CapManageCatalog:
			routes.GET("/catalog", catalog.List)
			routes.POST("/catalog", catalog.Add)
			routes.DELETE("/catalog/:id", catalog.Remove)
		case auth.CapMarketplace:
			routes.GET("/ebay/search", marketplace.Search)
		case auth.CapUsers:
			routes.GET("/users", admin.GetUsers)
			routes.GET("/users/:id", admin.GetUser)
		case auth.CapStats:
			routes.GET("/stats", admin.GetStats)
		}
	}
}
