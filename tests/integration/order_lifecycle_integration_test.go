package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/atelie-moura/terno-api/config"
	"github.com/atelie-moura/terno-api/controllers"
	"github.com/atelie-moura/terno-api/middleware"
	"github.com/atelie-moura/terno-api/models"
	"github.com/atelie-moura/terno-api/services"
	"github.com/atelie-moura/terno-api/tests/testutil"
)

// OrderLifecycleIntegrationTestSuite exercises the full order lifecycle over
// HTTP with the real auth middleware and real tokens.
type OrderLifecycleIntegrationTestSuite struct {
	suite.Suite
	router *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
}

// SetupSuite runs once before all tests
func (suite *OrderLifecycleIntegrationTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	testutil.MustSetTestEnvironment(suite.T())
	os.Setenv("DATABASE_URL", "sqlite://:memory:")
	os.Setenv("JWT_SECRET", "integration-test-secret")
	os.Setenv("PORT", "8080")

	cfg, err := config.Load()
	suite.NoError(err)
	suite.cfg = cfg

	testutil.RequireTestEnvironment(suite.T())
}

// SetupTest runs before each test
func (suite *OrderLifecycleIntegrationTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.SubStep{},
		&models.FinalizationRecord{},
		&models.AdminNotification{},
	)
	suite.NoError(err)

	config.SetDB(db)
	config.SetConfig(suite.cfg)
	services.InitLifecycleService(services.NewGormOrderStore(db))

	mockPhoto := services.NewMockPhotoService()
	mockPhoto.SetAsMockForTesting()

	suite.router = gin.New()
	v1 := suite.router.Group("/api/v1")
	{
		v1.POST("/auth/login", controllers.Login)

		authenticated := v1.Group("")
		authenticated.Use(middleware.EnsureValidToken(suite.cfg))
		{
			authenticated.POST("/orders", controllers.CreateOrder)
			authenticated.GET("/orders", controllers.ListOrders)
			authenticated.GET("/orders/:id", controllers.GetOrder)
			authenticated.PUT("/orders/:id/finalize", controllers.FinalizeOrder)
			authenticated.GET("/orders/:id/substeps", controllers.ListSubSteps)
			authenticated.PUT("/substeps/:id", controllers.UpdateSubStep)
			authenticated.GET("/finalized-orders", controllers.ListFinalizedOrders)
		}
	}
}

// TearDownTest runs after each test
func (suite *OrderLifecycleIntegrationTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	if err == nil {
		sqlDB.Close()
	}
}

// createEmployee registers an account directly and returns a real token for it
func (suite *OrderLifecycleIntegrationTestSuite) createEmployee(username, name, role string) string {
	passwordHash, err := services.HashPassword("password-123")
	suite.NoError(err)

	user := models.User{
		Username:     username,
		PasswordHash: passwordHash,
		Name:         name,
		Role:         role,
	}
	suite.NoError(suite.db.Create(&user).Error)

	body, _ := json.Marshal(map[string]string{
		"username": username,
		"password": "password-123",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var response map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &response))
	return response["data"].(map[string]interface{})["token"].(string)
}

func (suite *OrderLifecycleIntegrationTestSuite) doJSON(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = &bytes.Buffer{}
	}

	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// TestFullLifecycle walks an order from intake through every sub-step to
// automatic finalization and its appearance in the finalized listing.
func (suite *OrderLifecycleIntegrationTestSuite) TestFullLifecycle() {
	token := suite.createEmployee("maria", "Maria Costa", models.RoleEmployee)

	// Intake
	w := suite.doJSON(http.MethodPost, "/api/v1/orders", token, map[string]interface{}{
		"code":         "T-5001",
		"client":       "Carlos Mendes",
		"service_type": "trousers",
		"due_date":     time.Now().AddDate(0, 0, 14).Format(time.RFC3339),
	})
	suite.Equal(http.StatusCreated, w.Code)

	var created map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &created))
	orderData := created["data"].(map[string]interface{})
	orderID := uint(orderData["id"].(float64))
	steps := orderData["sub_steps"].([]interface{})
	suite.Len(steps, 5)

	// Complete every step in order
	for _, raw := range steps {
		stepID := uint(raw.(map[string]interface{})["id"].(float64))
		w = suite.doJSON(http.MethodPut, fmt.Sprintf("/api/v1/substeps/%d", stepID), token, map[string]interface{}{
			"status": "completed",
		})
		suite.Equal(http.StatusOK, w.Code)
	}

	// The last completion finalized the order
	w = suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/orders/%d", orderID), token, nil)
	suite.Equal(http.StatusOK, w.Code)

	var fetched map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &fetched))
	suite.Equal("Finalized", fetched["data"].(map[string]interface{})["current_stage"])

	// Exactly one finalization record, attributed to the completing employee
	var records []models.FinalizationRecord
	suite.db.Where("order_id = ?", orderID).Find(&records)
	suite.Len(records, 1)
	suite.Equal("Maria Costa", records[0].TailorName)

	// The order shows up in the finalized listing
	w = suite.doJSON(http.MethodGet, "/api/v1/finalized-orders", token, nil)
	suite.Equal(http.StatusOK, w.Code)

	var finalized map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &finalized))
	entries := finalized["data"].([]interface{})
	suite.Len(entries, 1)
	entry := entries[0].(map[string]interface{})
	suite.Equal("T-5001", entry["order"].(map[string]interface{})["code"])
}

// TestManualFinalizeIsIdempotent finalizes administratively twice and checks
// that the second call changes nothing.
func (suite *OrderLifecycleIntegrationTestSuite) TestManualFinalizeIsIdempotent() {
	token := suite.createEmployee("maria", "Maria Costa", models.RoleAdmin)

	w := suite.doJSON(http.MethodPost, "/api/v1/orders", token, map[string]interface{}{
		"code":         "T-5002",
		"client":       "Ana Souza",
		"service_type": "adjustment",
		"due_date":     time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
	})
	suite.Equal(http.StatusCreated, w.Code)

	var created map[string]interface{}
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &created))
	orderID := uint(created["data"].(map[string]interface{})["id"].(float64))

	for i := 0; i < 2; i++ {
		w = suite.doJSON(http.MethodPut, fmt.Sprintf("/api/v1/orders/%d/finalize", orderID), token, nil)
		suite.Equal(http.StatusOK, w.Code)
	}

	var count int64
	suite.db.Model(&models.FinalizationRecord{}).Where("order_id = ?", orderID).Count(&count)
	suite.Equal(int64(1), count)
}

// TestRejectsRequestsWithoutToken checks that protected routes require auth
func (suite *OrderLifecycleIntegrationTestSuite) TestRejectsRequestsWithoutToken() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "MISSING_TOKEN")
}

// TestRejectsExpiredToken checks that a token past its TTL is refused even
// when it was signed with the right secret.
func (suite *OrderLifecycleIntegrationTestSuite) TestRejectsExpiredToken() {
	token, err := testutil.SignTestToken(suite.cfg.JWTSecret, 1, "Maria Costa", models.RoleEmployee, -time.Hour)
	suite.NoError(err)

	w := suite.doJSON(http.MethodGet, "/api/v1/orders", token, nil)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Contains(w.Body.String(), "INVALID_TOKEN")
}

func TestOrderLifecycleIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderLifecycleIntegrationTestSuite))
}
