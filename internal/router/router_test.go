package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"driver-rewards/internal/auth"
	"driver-rewards/internal/config"
	"driver-rewards/internal/database"
	"driver-rewards/internal/ebay"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	auth.InitJWT("router-test-secret", time.Hour)
	os.Exit(m.Run())
}

func testConfig(role string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Role:        role,
			CORSOrigins: []string{"http://localhost:5173"},
			AuthRPS:     1000,
			AuthBurst:   1000,
		},
		App: config.AppConfig{JWTSecret: "router-test-secret", TokenTTL: time.Hour},
	}
}

func newTestRouter(t *testing.T, role string) *gin.Engine {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	r, err := New(Deps{DB: db, Config: testConfig(role), Searcher: ebay.Mock{}})
	require.NoError(t, err)
	return r
}

type client struct {
	t      *testing.T
	router *gin.Engine
}

func (c client) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	c.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(c.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func (c client) register(prefix string, body map[string]interface{}) uint {
	c.t.Helper()
	code, out := c.do(http.MethodPost, prefix+"/auth/register", "", body)
	require.Equal(c.t, http.StatusCreated, code, out)
	return uint(out["user"].(map[string]interface{})["id"].(float64))
}

func (c client) login(prefix, email, password string) string {
	c.t.Helper()
	code, out := c.do(http.MethodPost, prefix+"/auth/login", "", map[string]interface{}{
		"email": email, "password": password,
	})
	require.Equal(c.t, http.StatusOK, code, out)
	return out["token"].(string)
}

func TestEndToEndRewardsFlow(t *testing.T) {
	c := client{t: t, router: newTestRouter(t, RoleAll)}

	driverID := c.register("/driver", map[string]interface{}{
		"email": "d@x.com", "password": "driverpass", "firstName": "Dana",
	})
	sponsorID := c.register("/sponsor", map[string]interface{}{
		"email": "s@x.com", "password": "sponsorpass", "companyName": "Acme",
	})

	driverToken := c.login("/driver", "d@x.com", "driverpass")
	sponsorToken := c.login("/sponsor", "s@x.com", "sponsorpass")

	code, out := c.do(http.MethodPost, "/sponsor/ads", sponsorToken, map[string]interface{}{
		"title": "Regional drivers wanted", "benefits": "Fuel card",
	})
	require.Equal(t, http.StatusCreated, code, out)
	adID := out["ad"].(map[string]interface{})["id"].(float64)

	code, out = c.do(http.MethodGet, "/driver/ads", driverToken, nil)
	require.Equal(t, http.StatusOK, code)
	ads := out["ads"].([]interface{})
	require.Len(t, ads, 1)
	assert.Equal(t, "Acme", ads[0].(map[string]interface{})["company_name"])

	code, out = c.do(http.MethodPost, "/driver/applications", driverToken, map[string]interface{}{
		"sponsorId": sponsorID, "adId": adID,
	})
	require.Equal(t, http.StatusCreated, code, out)
	appID := out["application"].(map[string]interface{})["id"].(float64)

	code, _ = c.do(http.MethodPost, "/driver/applications", driverToken, map[string]interface{}{"sponsorId": sponsorID})
	assert.Equal(t, http.StatusConflict, code)

	// not yet affiliated, so points cannot be granted
	code, out = c.do(http.MethodPost, fmt.Sprintf("/sponsor/drivers/%d/points/add", driverID), sponsorToken,
		map[string]interface{}{"points": 100, "reason": "welcome bonus"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Driver not found in your organization", out["error"])

	code, out = c.do(http.MethodGet, "/sponsor/applications", sponsorToken, nil)
	require.Equal(t, http.StatusOK, code)
	apps := out["applications"].([]interface{})
	require.Len(t, apps, 1)
	assert.Equal(t, "pending", apps[0].(map[string]interface{})["status"])
	assert.Equal(t, "d@x.com", apps[0].(map[string]interface{})["email"])

	code, out = c.do(http.MethodPut, fmt.Sprintf("/sponsor/applications/%d", int(appID)), sponsorToken,
		map[string]interface{}{"status": "accepted"})
	require.Equal(t, http.StatusOK, code, out)
	assert.Equal(t, "accepted", out["application"].(map[string]interface{})["status"])

	code, _ = c.do(http.MethodPut, fmt.Sprintf("/sponsor/applications/%d/review", int(appID)), sponsorToken,
		map[string]interface{}{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, code)

	code, out = c.do(http.MethodGet, "/driver/affiliation", driverToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, out["affiliated"])
	assert.EqualValues(t, sponsorID, out["sponsor_id"])
	assert.Equal(t, "Acme", out["company_name"])

	code, out = c.do(http.MethodPost, fmt.Sprintf("/sponsor/drivers/%d/points/add", driverID), sponsorToken,
		map[string]interface{}{"points": 100, "reason": "welcome bonus"})
	require.Equal(t, http.StatusOK, code, out)
	assert.EqualValues(t, 100, out["balance"])

	code, out = c.do(http.MethodPost, fmt.Sprintf("/sponsor/drivers/%d/points/deduct", driverID), sponsorToken,
		map[string]interface{}{"points": 30, "reason": "store purchase"})
	require.Equal(t, http.StatusOK, code, out)
	assert.EqualValues(t, -30, out["delta"])
	assert.EqualValues(t, 70, out["balance"])

	code, out = c.do(http.MethodPost, fmt.Sprintf("/sponsor/drivers/%d/points/deduct", driverID), sponsorToken,
		map[string]interface{}{"points": 100, "reason": "too much"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "insufficient points", out["error"])

	code, out = c.do(http.MethodGet, "/driver/points", driverToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 70, out["balance"])
	assert.Len(t, out["ledger"], 2)

	code, out = c.do(http.MethodGet, fmt.Sprintf("/sponsor/drivers/%d/points", driverID), sponsorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 70, out["balance"])
	assert.EqualValues(t, 70, out["sponsor_balance"])
	assert.Equal(t, "Dana", out["driver"].(map[string]interface{})["first_name"])

	code, out = c.do(http.MethodGet, "/sponsor/drivers", sponsorToken, nil)
	require.Equal(t, http.StatusOK, code)
	drivers := out["drivers"].([]interface{})
	require.Len(t, drivers, 1)
	assert.EqualValues(t, 70, drivers[0].(map[string]interface{})["points_balance"])

	code, out = c.do(http.MethodGet, "/sponsor/ebay/search?q=sony", sponsorToken, nil)
	require.Equal(t, http.StatusOK, code)
	items := out["items"].([]interface{})
	require.Len(t, items, 1)
	hit := items[0].(map[string]interface{})

	code, out = c.do(http.MethodPost, "/sponsor/catalog", sponsorToken, map[string]interface{}{
		"ebay_item_id": hit["ebay_item_id"],
		"title":        hit["title"],
		"image_url":    hit["image_url"],
		"price":        hit["price"],
	})
	require.Equal(t, http.StatusCreated, code, out)
	assert.EqualValues(t, 34800, out["item"].(map[string]interface{})["point_cost"])

	code, out = c.do(http.MethodGet, "/driver/catalog", driverToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, out["items"], 1)
}

func TestRoleGuards(t *testing.T) {
	c := client{t: t, router: newTestRouter(t, RoleAll)}
	c.register("/driver", map[string]interface{}{"email": "d@x.com", "password": "driverpass"})
	driverToken := c.login("/driver", "d@x.com", "driverpass")

	code, out := c.do(http.MethodGet, "/sponsor/drivers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Not authenticated", out["error"])

	code, out = c.do(http.MethodGet, "/sponsor/drivers", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token", out["error"])

	code, out = c.do(http.MethodGet, "/sponsor/drivers", driverToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Wrong role for this service", out["error"])

	code, _ = c.do(http.MethodPost, "/sponsor/auth/login", "", map[string]interface{}{
		"email": "d@x.com", "password": "driverpass",
	})
	assert.Equal(t, http.StatusUnauthorized, code, "a driver account cannot log in to the sponsor service")

	code, out = c.do(http.MethodPost, "/driver/auth/register", "", map[string]interface{}{
		"email": "D@x.com", "password": "driverpass",
	})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "Email already in use", out["error"])

	code, out = c.do(http.MethodPost, "/driver/auth/register", "", map[string]interface{}{"email": "x@x.com"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid input", out["error"])
	assert.Contains(t, out, "details")
}

func TestAccountRoutes(t *testing.T) {
	c := client{t: t, router: newTestRouter(t, RoleAll)}
	c.register("/admin", map[string]interface{}{"email": "a@x.com", "password": "adminpass", "displayName": "Ops"})
	token := c.login("/admin", "a@x.com", "adminpass")

	code, out := c.do(http.MethodGet, "/admin/me", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "a@x.com", out["user"].(map[string]interface{})["email"])
	assert.Equal(t, "Ops", out["profile"].(map[string]interface{})["display_name"])

	code, out = c.do(http.MethodPut, "/admin/me/profile", token, map[string]interface{}{"phone": "123"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, out = c.do(http.MethodPut, "/admin/me/profile", token, map[string]interface{}{
		"phone": "555-0100", "address": "1 Main St", "dob": "1980-01-31",
	})
	require.Equal(t, http.StatusOK, code, out)
	profile := out["profile"].(map[string]interface{})
	assert.Equal(t, "1 Main St", profile["address_line1"])
	assert.Equal(t, "Ops", profile["display_name"])

	code, _ = c.do(http.MethodPut, "/admin/me/password", token, map[string]interface{}{
		"currentPassword": "nope", "newPassword": "adminpass2",
	})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = c.do(http.MethodPut, "/admin/me/password", token, map[string]interface{}{
		"currentPassword": "adminpass", "newPassword": "adminpass2",
	})
	require.Equal(t, http.StatusOK, code)
	c.login("/admin", "a@x.com", "adminpass2")

	code, out = c.do(http.MethodGet, "/admin/users?role=admin", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, out["total"])

	code, out = c.do(http.MethodGet, "/admin/stats", token, nil)
	require.Equal(t, http.StatusOK, code)
	stats := out["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["users_by_role"].(map[string]interface{})["admin"])

	code, _ = c.do(http.MethodGet, "/admin/users/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = c.do(http.MethodPost, "/admin/auth/logout", "", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestLoginSetsScopedCookie(t *testing.T) {
	c := client{t: t, router: newTestRouter(t, RoleAll)}
	c.register("/driver", map[string]interface{}{"email": "d@x.com", "password": "driverpass"})

	body, _ := json.Marshal(map[string]string{"email": "d@x.com", "password": "driverpass"})
	req := httptest.NewRequest(http.MethodPost, "/driver/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Equal(t, "/driver", cookies[0].Path)
	assert.True(t, cookies[0].HttpOnly)

	req = httptest.NewRequest(http.MethodGet, "/driver/me", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	c.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSingleRoleMountsAtRoot(t *testing.T) {
	r := newTestRouter(t, "driver")
	c := client{t: t, router: r}

	c.register("", map[string]interface{}{"email": "d@x.com", "password": "driverpass"})
	token := c.login("", "d@x.com", "driverpass")

	code, out := c.do(http.MethodGet, "/catalog", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, out["items"])

	code, _ = c.do(http.MethodGet, "/driver/catalog", token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = c.do(http.MethodGet, "/ebay/search?q=sony", token, nil)
	assert.Equal(t, http.StatusNotFound, code, "marketplace is a sponsor capability")

	code, out = c.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "driver", out["role"])

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rewards_http_requests_total")
}

func TestUnknownRole(t *testing.T) {
	_, err := New(Deps{Config: testConfig("superuser")})
	assert.Error(t, err)
}
