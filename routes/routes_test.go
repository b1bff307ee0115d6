package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/middleware"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/services"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type denyLimiter struct{}

func (denyLimiter) Allow(context.Context, string) (bool, error) { return false, nil }

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code string `json:"code"`
	} `json:"error"`
}

// RoutesTestSuite drives the fully wired router against an in-memory database
type RoutesTestSuite struct {
	suite.Suite
	router *gin.Engine
	cfg    *config.Config
	db     *gorm.DB
	mailer *services.MockMailer
}

func (s *RoutesTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *RoutesTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.Require().NoError(models.Migrate(db))
	config.SetDB(db)
	s.db = db

	s.cfg = &config.Config{
		GoEnv:       "test",
		JWTSecret:   "routes-test-secret",
		JWTIssuer:   "sparesx-api",
		JWTAudience: "sparesx-web",
		JWTExpiry:   time.Hour,
		CORSOrigins: []string{"https://sparesx.in"},
		UploadDir:   s.T().TempDir(),
	}
	config.SetConfig(s.cfg)

	s.mailer = services.NewMockMailer()
	services.SetMailer(s.mailer)
	services.SetImageService(services.NewMockImageService())

	s.router = Setup(s.cfg, middleware.NewMemoryLimiter(600, 100))
}

func (s *RoutesTestSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
	config.SetDB(nil)
	config.SetConfig(nil)
	services.SetMailer(nil)
	services.SetImageService(nil)
}

func (s *RoutesTestSuite) do(method, path string, body interface{}, token string) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func (s *RoutesTestSuite) register(email string) {
	w, _ := s.do(http.MethodPost, "/api/auth/register", gin.H{
		"name":     "Kiran Rao",
		"email":    email,
		"password": "secret123",
		"mobile":   "9876543210",
		"address":  "22 Residency Road",
		"pinCode":  "560025",
		"city":     "Bengaluru",
		"state":    "Karnataka",
	}, "")
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *RoutesTestSuite) login(email, password string) string {
	w, env := s.do(http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": password}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &data))
	s.Require().NotEmpty(data.Token)
	return data.Token
}

func (s *RoutesTestSuite) seedAdmin() string {
	created, err := services.SeedAdmin(s.db, "Admin", "admin@sparesx.in", "admin-pass")
	s.Require().NoError(err)
	s.Require().True(created)
	return s.login("admin@sparesx.in", "admin-pass")
}

func (s *RoutesTestSuite) TestHealth() {
	w, env := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.True(env.Success)

	w, _ = s.do(http.MethodGet, "/health/database", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "products")
}

func (s *RoutesTestSuite) TestMetricsEndpoint() {
	s.do(http.MethodGet, "/api/products", nil, "")

	w, _ := s.do(http.MethodGet, "/metrics", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "sparesx_http_requests_total")
}

func (s *RoutesTestSuite) TestCORSPreflight() {
	req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
	req.Header.Set("Origin", "https://sparesx.in")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal("https://sparesx.in", w.Header().Get("Access-Control-Allow-Origin"))
}

func (s *RoutesTestSuite) TestRegisterLoginListFlow() {
	s.register("kiran@example.com")
	token := s.login("Kiran@Example.com", "secret123")

	w, env := s.do(http.MethodGet, "/api/auth/me", nil, token)
	s.Require().Equal(http.StatusOK, w.Code)
	var me models.User
	s.Require().NoError(json.Unmarshal(env.Data, &me))
	s.Equal(models.RoleTechnician, me.Role)

	product := gin.H{
		"name":           "iPhone 12 Display",
		"description":    "OLED, tested",
		"price":          5400,
		"deviceCategory": "mobile",
		"brand":          "Apple",
		"deviceModel":    "iPhone 12",
		"partType":       "display",
		"condition":      "used",
	}
	w, env = s.do(http.MethodPost, "/api/technician/products", product, token)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created models.Product
	s.Require().NoError(json.Unmarshal(env.Data, &created))

	w, env = s.do(http.MethodGet, "/api/products?brand=apple&partType=display", nil, "")
	s.Require().Equal(http.StatusOK, w.Code)
	var page struct {
		Products []models.Product `json:"products"`
		Total    int64            `json:"total"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Require().Len(page.Products, 1)
	s.Equal(created.ID, page.Products[0].ID)

	w, _ = s.do(http.MethodGet, "/api/products/"+strconv.FormatUint(uint64(created.ID), 10), nil, "")
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodGet, "/api/sellers", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), `"productCount":1`)
}

func (s *RoutesTestSuite) TestGuards() {
	s.register("tech@example.com")
	techToken := s.login("tech@example.com", "secret123")
	adminToken := s.seedAdmin()

	tests := []struct {
		name           string
		method         string
		path           string
		token          string
		expectedStatus int
		expectedCode   string
	}{
		{"anonymous me", http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"garbage token", http.MethodGet, "/api/auth/me", "not-a-jwt", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"anonymous admin", http.MethodGet, "/api/admin/dashboard", "", http.StatusUnauthorized, "UNAUTHORIZED"},
		{"technician on admin", http.MethodGet, "/api/admin/dashboard", techToken, http.StatusForbidden, "FORBIDDEN"},
		{"technician on brand admin", http.MethodPost, "/api/admin/device-categories/mobile/brands", techToken, http.StatusForbidden, "FORBIDDEN"},
		{"technician on part categories", http.MethodGet, "/api/device-management/part-categories", techToken, http.StatusForbidden, "FORBIDDEN"},
		{"admin on technician routes", http.MethodGet, "/api/technician/products", adminToken, http.StatusForbidden, "FORBIDDEN"},
		{"admin creating a product", http.MethodPost, "/api/products", adminToken, http.StatusForbidden, "FORBIDDEN"},
		{"admin dashboard", http.MethodGet, "/api/admin/dashboard", adminToken, http.StatusOK, ""},
		{"technician profile", http.MethodGet, "/api/technician/profile", techToken, http.StatusOK, ""},
		{"public device types", http.MethodGet, "/api/device-types", "", http.StatusOK, ""},
		{"public brands", http.MethodGet, "/api/brands", "", http.StatusOK, ""},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			var body interface{}
			if tt.method == http.MethodPost {
				body = gin.H{}
			}
			w, env := s.do(tt.method, tt.path, body, tt.token)
			s.Equal(tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedCode != "" {
				s.Equal(tt.expectedCode, env.Error.Code)
			}
		})
	}
}

func (s *RoutesTestSuite) TestAdminCascadeDelete() {
	s.register("doomed@example.com")
	techToken := s.login("doomed@example.com", "secret123")
	adminToken := s.seedAdmin()

	for _, name := range []string{"Battery A", "Battery B"} {
		w, _ := s.do(http.MethodPost, "/api/products", gin.H{
			"name": name, "price": 800, "deviceCategory": "mobile", "brand": "Xiaomi",
			"deviceModel": "Redmi Note 10", "partType": "battery", "condition": "new",
		}, techToken)
		s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	var tech models.User
	s.Require().NoError(s.db.Where("email = ?", "doomed@example.com").First(&tech).Error)

	w, _ := s.do(http.MethodDelete, "/api/admin/technicians/"+strconv.FormatUint(uint64(tech.ID), 10), nil, adminToken)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var count int64
	s.db.Model(&models.Product{}).Count(&count)
	s.Zero(count)

	w, env := s.do(http.MethodGet, "/api/auth/me", nil, techToken)
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("USER_NOT_FOUND", env.Error.Code)
}

func (s *RoutesTestSuite) TestPasswordResetFlow() {
	s.register("forgetful@example.com")

	w, _ := s.do(http.MethodPost, "/api/auth/forgot-password/request", gin.H{"email": "forgetful@example.com"}, "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Require().Len(s.mailer.Sent(), 1)

	w, _ = s.do(http.MethodPost, "/api/auth/forgot-password/verify", gin.H{"email": "forgetful@example.com", "otp": "000000"}, "")
	// A random code matching 000000 is possible but vanishingly unlikely
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RoutesTestSuite) TestRateLimitedRoutes() {
	s.router = Setup(s.cfg, denyLimiter{})

	w, env := s.do(http.MethodPost, "/api/auth/forgot-password/request", gin.H{"email": "a@example.com"}, "")
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.Equal("RATE_LIMITED", env.Error.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/forgot-password/verify", gin.H{"email": "a@example.com", "otp": "123456"}, "")
	s.Equal(http.StatusTooManyRequests, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/forgot-password/reset", gin.H{"email": "a@example.com", "otp": "123456", "newPassword": "whatever-pass"}, "")
	s.Equal(http.StatusTooManyRequests, w.Code)

	w, _ = s.do(http.MethodPost, "/api/upload", gin.H{}, "")
	s.Equal(http.StatusTooManyRequests, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/login", gin.H{"email": "a@example.com", "password": "whatever"}, "")
	s.Equal(http.StatusUnauthorized, w.Code, "login is not throttled")
}

// postFrom sends a JSON POST with an optional X-Forwarded-For header
func (s *RoutesTestSuite) postFrom(path string, body interface{}, forwardedFor string) int {
	payload, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w.Code
}

func (s *RoutesTestSuite) TestResetCodeGuessingIsThrottled() {
	s.router = Setup(s.cfg, middleware.NewMemoryLimiter(10, 5))

	codes := map[int]int{}
	for i := 0; i < 20; i++ {
		codes[s.postFrom("/api/auth/forgot-password/verify", gin.H{"email": "a@example.com", "otp": "123456"}, "")]++
	}
	s.GreaterOrEqual(codes[http.StatusTooManyRequests], 10)
	s.LessOrEqual(codes[http.StatusBadRequest], 6)
}

func (s *RoutesTestSuite) TestForwardedForIsIgnoredFromUntrustedPeers() {
	s.router = Setup(s.cfg, middleware.NewMemoryLimiter(10, 5))

	limited := 0
	for i := 0; i < 20; i++ {
		code := s.postFrom("/api/auth/forgot-password/request", gin.H{"email": "a@example.com"}, "203.0.113."+strconv.Itoa(i+1))
		if code == http.StatusTooManyRequests {
			limited++
		}
	}
	s.GreaterOrEqual(limited, 10, "spoofed X-Forwarded-For must not mint new budgets")
}

func (s *RoutesTestSuite) TestForwardedForIsHonouredFromTrustedProxy() {
	// httptest requests come from 192.0.2.1
	s.cfg.TrustedProxies = []string{"192.0.2.0/24"}
	s.router = Setup(s.cfg, middleware.NewMemoryLimiter(10, 5))

	for i := 0; i < 20; i++ {
		code := s.postFrom("/api/auth/forgot-password/request", gin.H{"email": "a@example.com"}, "203.0.113."+strconv.Itoa(i+1))
		s.Equal(http.StatusOK, code)
	}
}

func TestRoutesTestSuite(t *testing.T) {
	suite.Run(t, new(RoutesTestSuite))
}
