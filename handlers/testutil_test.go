package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"local-services-api/config"
	"local-services-api/middleware"
	"local-services-api/models"
	"local-services-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// setupTest gives each test its own in-memory database and a fully wired
// router. config.DB is a package global, so tests must not run in parallel.
func setupTest(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := "file:" + strings.ReplaceAll(t.Name(), "/", "_") + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	config.DB = db

	r := gin.New()
	r.Use(middleware.RequestID())
	routes.SetupRoutes(r)
	return r
}

func doJSON(r *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
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
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func createUser(t *testing.T, email string, userType models.UserType) (*models.User, string) {
	t.Helper()
	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     models.NormalizeEmail(email),
		UserType:  userType,
		IsActive:  true,
		Location:  models.Location{City: "Lahore"},
	}
	require.NoError(t, user.SetPassword("secret123"))
	require.NoError(t, config.DB.Create(user).Error)

	token, err := middleware.GenerateUserToken(user)
	require.NoError(t, err)
	return user, token
}

func createAdmin(t *testing.T, username string) (*models.Admin, string) {
	t.Helper()
	admin := &models.Admin{
		Username:    models.NormalizeUsername(username),
		FullName:    "Test Admin",
		Role:        models.RoleAdmin,
		Permissions: models.DefaultAdminPermissions(),
		IsActive:    true,
	}
	require.NoError(t, admin.SetPassword("Admin@123"))
	require.NoError(t, config.DB.Create(admin).Error)

	token, err := middleware.GenerateAdminToken(admin)
	require.NoError(t, err)
	return admin, token
}

func createBusiness(t *testing.T, owner *models.User, status models.BusinessStatus) *models.Business {
	t.Helper()
	business := &models.Business{
		OwnerID:      owner.ID,
		BusinessName: "Test Plumbing Co",
		BusinessType: "plumbing",
		Description:  "We fix leaky pipes and more, all across the city.",
		Contact:      models.Contact{Phone: "0300-1234567", Email: owner.Email},
		Location:     models.BusinessLocation{Address: "1 Canal Road", City: "Lahore"},
		Status:       status,
	}
	require.NoError(t, config.DB.Create(business).Error)
	return business
}

func createReview(t *testing.T, reviewer *models.User, business *models.Business, status models.ReviewStatus) *models.Review {
	t.Helper()
	review := &models.Review{
		ReviewerID: reviewer.ID,
		BusinessID: business.ID,
		Rating:     4,
		Title:      "Decent work",
		Comment:    "Showed up on time, fixed the issue.",
		Status:     status,
	}
	require.NoError(t, config.DB.Create(review).Error)
	return review
}

func businessStatus(t *testing.T, id uint) models.BusinessStatus {
	t.Helper()
	var business models.Business
	require.NoError(t, config.DB.First(&business, id).Error)
	return business.Status
}
