package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"driver-rewards/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	InitJWT("test-secret", time.Hour)
	m.Run()
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, models.RoleSponsor)
	require.NoError(t, err)

	claims, err := ValidateToken(token)
	require.NoError(t, err)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
	assert.Equal(t, models.RoleSponsor, claims.Role)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	claims := &Claims{
		Role: models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = ValidateToken(forged)
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	claims := &Claims{
		Role: models.RoleDriver,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = ValidateToken(expired)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "wrong horse"))
}

func newProtectedRouter(role models.Role) *gin.Engine {
	r := gin.New()
	r.GET("/me", RequireRole(role), func(c *gin.Context) {
		id, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})
	return r
}

func TestRequireRole(t *testing.T) {
	driverToken, err := GenerateToken(5, models.RoleDriver)
	require.NoError(t, err)

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"no token", func(r *http.Request) {}, http.StatusUnauthorized},
		{"garbage token", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-jwt"})
		}, http.StatusUnauthorized},
		{"cookie with matching role", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: CookieName, Value: driverToken})
		}, http.StatusOK},
		{"bearer header", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer "+driverToken)
		}, http.StatusOK},
	}

	router := newProtectedRouter(models.RoleDriver)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireRoleWrongRole(t *testing.T) {
	token, err := GenerateToken(5, models.RoleDriver)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	w := httptest.NewRecorder()
	newProtectedRouter(models.RoleSponsor).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Wrong role for this service"}`, w.Body.String())
}

func TestCapabilities(t *testing.T) {
	assert.True(t, Can(models.RoleSponsor, CapManagePoints))
	assert.False(t, Can(models.RoleDriver, CapManagePoints))
	assert.True(t, Can(models.RoleDriver, CapShop))
	assert.False(t, Can(models.RoleAdmin, CapApply))
}

func TestRequireCapability(t *testing.T) {
	tests := []struct {
		name       string
		role       models.Role
		capability Capability
		status     int
	}{
		{"granted", models.RoleSponsor, CapManagePoints, http.StatusOK},
		{"not granted", models.RoleSponsor, CapApply, http.StatusForbidden},
		{"admin stats", models.RoleAdmin, CapStats, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(7, tt.role)
			require.NoError(t, err)

			r := gin.New()
			r.GET("/x", RequireRole(tt.role), RequireCapability(tt.capability), func(c *gin.Context) {
				role, ok := GetRole(c)
				assert.True(t, ok)
				c.JSON(http.StatusOK, gin.H{"role": role})
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	// Without RequireRole no role is in the context.
	r := gin.New()
	r.GET("/x", RequireCapability(CapStats), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
