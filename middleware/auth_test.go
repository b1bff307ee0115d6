package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "middleware-test-secret",
		JWTIssuer:   "sparesx-api",
		JWTAudience: "sparesx-web",
		JWTExpiry:   time.Hour,
	}
}

func issueToken(t *testing.T, cfg *config.Config, userID uint, role string) string {
	t.Helper()
	token, _, err := services.NewTokenService(cfg).Issue(userID, role)
	require.NoError(t, err)
	return token
}

func signClaims(t *testing.T, secret string, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestCustomClaims_HasRole(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		roles []string
		want  bool
	}{
		{"matches single role", models.RoleAdmin, []string{models.RoleAdmin}, true},
		{"matches one of several roles", models.RoleTechnician, []string{models.RoleAdmin, models.RoleTechnician}, true},
		{"does not match", models.RoleTechnician, []string{models.RoleAdmin}, false},
		{"empty role", "", []string{models.RoleAdmin}, false},
		{"no roles requested", models.RoleAdmin, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := CustomClaims{Role: tt.role}
			assert.Equal(t, tt.want, claims.HasRole(tt.roles...))
		})
	}
}

func TestCustomClaims_Validate(t *testing.T) {
	assert.NoError(t, CustomClaims{Role: models.RoleTechnician}.Validate(context.Background()))
	assert.Error(t, CustomClaims{}.Validate(context.Background()))
}

func TestEnsureValidToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "valid token",
			header:         "Bearer " + issueToken(t, cfg, 42, models.RoleTechnician),
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "UNAUTHORIZED",
		},
		{
			name:           "malformed header",
			header:         "Token abc",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_TOKEN",
		},
		{
			name:           "garbage token",
			header:         "Bearer not-a-jwt",
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_TOKEN",
		},
		{
			name: "wrong secret",
			header: "Bearer " + issueToken(t, &config.Config{
				JWTSecret: "other", JWTIssuer: cfg.JWTIssuer, JWTAudience: cfg.JWTAudience, JWTExpiry: time.Hour,
			}, 1, models.RoleAdmin),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_TOKEN",
		},
		{
			name: "expired token",
			header: "Bearer " + signClaims(t, cfg.JWTSecret, services.TokenClaims{
				Role: models.RoleTechnician,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "7",
					Issuer:    cfg.JWTIssuer,
					Audience:  jwt.ClaimStrings{cfg.JWTAudience},
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				},
			}),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_TOKEN",
		},
		{
			name: "wrong audience",
			header: "Bearer " + signClaims(t, cfg.JWTSecret, services.TokenClaims{
				Role: models.RoleTechnician,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "7",
					Issuer:    cfg.JWTIssuer,
					Audience:  jwt.ClaimStrings{"someone-else"},
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_TOKEN",
		},
		{
			name: "missing role claim",
			header: "Bearer " + signClaims(t, cfg.JWTSecret, services.TokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "7",
					Issuer:    cfg.JWTIssuer,
					Audience:  jwt.ClaimStrings{cfg.JWTAudience},
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_TOKEN",
		},
		{
			name: "non numeric subject",
			header: "Bearer " + signClaims(t, cfg.JWTSecret, services.TokenClaims{
				Role: models.RoleTechnician,
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "auth0|123",
					Issuer:    cfg.JWTIssuer,
					Audience:  jwt.ClaimStrings{cfg.JWTAudience},
					ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				},
			}),
			expectedStatus: http.StatusUnauthorized,
			expectedCode:   "INVALID_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			handlerCalled := false
			router.GET("/protected", EnsureValidToken(cfg), func(c *gin.Context) {
				handlerCalled = true
				id, err := GetUserID(c)
				require.NoError(t, err)
				c.JSON(http.StatusOK, gin.H{"id": id, "role": GetRole(c)})
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.False(t, handlerCalled, "handler must not run for rejected requests")
				assert.Contains(t, w.Body.String(), tt.expectedCode)
			} else {
				assert.True(t, handlerCalled)
				assert.JSONEq(t, `{"id":42,"role":"technician"}`, w.Body.String())
			}
		})
	}
}

func TestOptionalToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	router := gin.New()
	router.GET("/feed", OptionalToken(cfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"caller": OptionalUserID(c)})
	})

	t.Run("anonymous request passes", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/feed", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"caller":0}`, w.Body.String())
	})

	t.Run("valid token identifies caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, 9, models.RoleTechnician))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"caller":9}`, w.Body.String())
	})

	t.Run("invalid token is still rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/feed", nil)
		req.Header.Set("Authorization", "Bearer broken")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	tests := []struct {
		name           string
		role           string
		allowed        []string
		expectedStatus int
	}{
		{"admin allowed", models.RoleAdmin, []string{models.RoleAdmin}, http.StatusOK},
		{"technician on admin route", models.RoleTechnician, []string{models.RoleAdmin}, http.StatusForbidden},
		{"technician on shared route", models.RoleTechnician, []string{models.RoleTechnician, models.RoleAdmin}, http.StatusOK},
		{"admin on technician route", models.RoleAdmin, []string{models.RoleTechnician}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/guarded", EnsureValidToken(cfg), RequireRole(tt.allowed...), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			req.Header.Set("Authorization", "Bearer "+issueToken(t, cfg, 1, tt.role))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), "FORBIDDEN")
			}
		})
	}

	t.Run("without token middleware", func(t *testing.T) {
		router := gin.New()
		router.GET("/guarded", RequireRole(models.RoleAdmin), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGetUserID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantID    uint
		wantErr   bool
	}{
		{
			name: "successfully extracts user ID",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", uint(123))
			},
			wantID: 123,
		},
		{
			name:      "user ID not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "user ID is not a uint",
			setupFunc: func(c *gin.Context) {
				c.Set("user_id", "123")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupFunc(c)

			gotID, err := GetUserID(c)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Zero(t, gotID)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantID, gotID)
		})
	}
}

func TestGetClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		setupFunc func(*gin.Context)
		wantErr   bool
	}{
		{
			name: "successfully extracts claims",
			setupFunc: func(c *gin.Context) {
				c.Set("validated_claims", &validator.ValidatedClaims{
					CustomClaims: &CustomClaims{Role: models.RoleAdmin},
				})
			},
		},
		{
			name:      "claims not found in context",
			setupFunc: func(c *gin.Context) {},
			wantErr:   true,
		},
		{
			name: "claims have wrong type",
			setupFunc: func(c *gin.Context) {
				c.Set("validated_claims", "not claims")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			tt.setupFunc(c)

			claims, err := GetClaims(c)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, claims)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, claims)
		})
	}
}

func TestAuthError(t *testing.T) {
	err := &AuthError{Code: "TEST_ERROR", Message: "This is a test error"}
	assert.Equal(t, "This is a test error", err.Error())
	assert.Equal(t, "TEST_ERROR", err.Code)
}
