package testutils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Kyz7/storefront/internal/auth"
	"github.com/Kyz7/storefront/internal/config"
	"github.com/Kyz7/storefront/internal/database"
	"github.com/Kyz7/storefront/internal/metrics"
	"github.com/Kyz7/storefront/internal/models"
	"github.com/Kyz7/storefront/internal/role"
	"github.com/Kyz7/storefront/internal/server"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const TestSecret = "test-secret-key-that-is-at-least-32-characters"

func TestConfig() *config.Config {
	return &config.Config{
		SecretKey:    TestSecret,
		Algorithm:    "HS256",
		TokenTTL:     30 * time.Minute,
		CORSOrigins:  []string{"*"},
		AllowedHosts: []string{"*"},
		LogLevel:     "error",
	}
}

func QuietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// TestDB opens a private in-memory database. One connection keeps every
// query on the same memory instance.
func TestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to create test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db), "Failed to migrate test database")
	return db
}

// RecordingNotifier captures order notifications.
type RecordingNotifier struct {
	mu     sync.Mutex
	Orders []uint
}

func (r *RecordingNotifier) OrderPlaced(ctx context.Context, user *models.User, order *models.Order) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Orders = append(r.Orders, order.ID)
}

type TestApp struct {
	App      *fiber.App
	DB       *gorm.DB
	Notifier *RecordingNotifier
}

// SetupTestApp builds the full HTTP stack over a fresh database seeded with
// the permission catalog and default roles.
func SetupTestApp(t *testing.T) *TestApp {
	db := TestDB(t)
	CreateTestRoles(t, db)

	notifier := &RecordingNotifier{}
	app := server.New(server.Deps{
		Config:   TestConfig(),
		DB:       db,
		Log:      QuietLogger(),
		Metrics:  metrics.New(),
		Notifier: notifier,
	})
	return &TestApp{App: app, DB: db, Notifier: notifier}
}

func CreateTestRoles(t *testing.T, db *gorm.DB) {
	ctx := context.Background()
	_, err := role.SyncPermissions(ctx, db)
	require.NoError(t, err, "Failed to seed permissions")
	require.NoError(t, role.SeedDefaultRoles(ctx, db), "Failed to seed roles")
}

func CreateTestUser(t *testing.T, db *gorm.DB, username, password string, superuser bool) *models.User {
	hashedPassword, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Name:        "Test " + username,
		Username:    username,
		Email:       username + "@test.com",
		Password:    hashedPassword,
		IsActive:    true,
		IsSuperuser: superuser,
	}
	require.NoError(t, db.Create(user).Error, "Failed to create test user")
	return user
}

// CreateTestUserWithRole creates a user and links them to an existing role.
func CreateTestUserWithRole(t *testing.T, db *gorm.DB, username, password, roleName string) *models.User {
	var r models.Role
	if err := db.Where("name = ?", roleName).First(&r).Error; err != nil {
		t.Fatalf("Failed to find role '%s': %v. Make sure CreateTestRoles was called.", roleName, err)
	}

	user := CreateTestUser(t, db, username, password, false)
	require.NoError(t, db.Create(&models.UserRole{UserID: user.ID, RoleID: r.ID}).Error)
	return user
}

func CreateTestProduct(t *testing.T, db *gorm.DB, name string, price, quantity int64) *models.Product {
	product := &models.Product{Name: name, Slug: fmt.Sprintf("%s-%d", name, time.Now().UnixNano()), Price: price, TotalQuantity: quantity}
	require.NoError(t, db.Create(product).Error, "Failed to create test product")
	return product
}

func GetAuthToken(t *testing.T, user *models.User) string {
	token, err := auth.NewTokenManager(TestConfig()).Issue(user)
	require.NoError(t, err, "Failed to generate test token")
	return token
}

func ID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func MakeRequest(app *fiber.App, method, url string, body interface{}, token string) (*httptest.ResponseRecorder, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, url, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()

	resp, err := app.Test(req, -1)
	if err != nil {
		return rec, err
	}

	rec.Code = resp.StatusCode

	io.Copy(rec.Body, resp.Body)
	resp.Body.Close()

	return rec, nil
}

func ParseResponse(t *testing.T, resp *httptest.ResponseRecorder, v interface{}) {
	if resp.Body.Len() == 0 {
		t.Log("Warning: Response body is empty")
		return
	}

	err := json.Unmarshal(resp.Body.Bytes(), v)
	if err != nil {
		t.Logf("Response body: %s", resp.Body.String())
		assert.NoError(t, err, "Failed to parse response")
	}
}

type StandardResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    interface{}  `json:"data"`
	Error   *ErrorDetail `json:"error"`
	Meta    *Meta        `json:"meta"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details"`
}

type Meta struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Count  int `json:"count"`
}

func AssertSuccess(t *testing.T, resp *httptest.ResponseRecorder) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.True(t, result.Success, "Expected success response")
	assert.Empty(t, result.Error, "Expected no error")
}

func AssertError(t *testing.T, resp *httptest.ResponseRecorder, expectedCode string) {
	var result StandardResponse
	ParseResponse(t, resp, &result)
	assert.False(t, result.Success, "Expected error response")
	if assert.NotNil(t, result.Error, "Expected error object") {
		assert.Equal(t, expectedCode, result.Error.Code, "Error code mismatch")
	}
}
