package controllers

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sparesx/sparesx-api/config"
	"github.com/sparesx/sparesx-api/models"
	"github.com/sparesx/sparesx-api/services"
	"github.com/sparesx/sparesx-api/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "password123"

// setupTestDB opens a private in-memory database and installs it as config.DB
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db), "Failed to migrate test database")

	original := config.GetDB()
	config.SetDB(db)
	t.Cleanup(func() {
		config.SetDB(original)
		sqlDB.Close()
	})

	return db
}

// setupTestConfig installs a config with a known signing secret
func setupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		GoEnv:       "test",
		JWTSecret:   "controller-test-secret",
		JWTIssuer:   "sparesx-api",
		JWTAudience: "sparesx-web",
		JWTExpiry:   time.Hour,
		UploadDir:   t.TempDir(),
	}

	original := config.GetConfig()
	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(original) })

	return cfg
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	utils.RegisterValidators()
	return gin.New()
}

func createTestUser(t *testing.T, db *gorm.DB, role, email string) models.User {
	t.Helper()

	hash, err := utils.HashPassword(testPassword)
	require.NoError(t, err)

	user := models.User{
		Name:        "Test " + role,
		Email:       email,
		Password:    hash,
		Role:        role,
		Mobile:      "9876543210",
		CountryCode: "+91",
		Address:     "12 MG Road",
		PinCode:     "560001",
		City:        "Bengaluru",
		State:       "Karnataka",
		WhatsApp:    "9876543210",
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, owner models.User, name, status string) models.Product {
	t.Helper()

	product := models.Product{
		Name:           name,
		Description:    "Original part",
		Price:          1500,
		DeviceCategory: models.DeviceCategoryMobile,
		Brand:          "Samsung",
		DeviceModel:    "Galaxy S21",
		PartType:       "display",
		Condition:      models.ConditionNew,
		Images:         []string{},
		Status:         status,
		TechnicianID:   owner.ID,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func tokenFor(t *testing.T, cfg *config.Config, user models.User) string {
	t.Helper()
	token, _, err := services.NewTokenService(cfg).Issue(user.ID, user.Role)
	require.NoError(t, err)
	return token
}

// performRequest sends body as JSON, with a bearer token when token is not empty
func performRequest(router *gin.Engine, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
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
	router.ServeHTTP(w, req)
	return w
}

// decodeData unmarshals the "data" member of a success envelope into out
func decodeData(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success, "response was not successful: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(envelope.Data, out))
}

// errorCode returns error.code from a failure envelope
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var envelope struct {
		Success bool `json:"success"`
		Error   struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.False(t, envelope.Success)
	return envelope.Error.Code
}

func uintPath(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
