package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"parkres/src/db"
	"parkres/src/middlewares"
	"parkres/src/models"
	"parkres/src/types"
	"parkres/src/utils"
	"strconv"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	Mock       sqlmock.Sqlmock
	Token      string
	StaffToken string
	suite.Suite
}

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

// authMiddleware is a db-free stand-in for middlewares.AuthMiddleware:
// identity comes straight from the verified claims.
func authMiddleware(ctx *gin.Context) {
	bearerToken := ctx.Request.Header.Get("Authorization")
	if !strings.HasPrefix(bearerToken, "Bearer") {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	reqToken := strings.Split(bearerToken, " ")[1]
	if reqToken == "" {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	claims := &types.Claims{}
	tkn, err := jwt.ParseWithClaims(reqToken, claims, func(t *jwt.Token) (any, error) {
		return jwtKey, nil
	})
	if err != nil || !tkn.Valid {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	uid, err := strconv.Atoi(claims.Subject)
	if err != nil {
		ctx.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	ctx.Set("id", uint(uid))
	ctx.Set("username", claims.Username)
	ctx.Set("role", types.Role(claims.Role))
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}

	return gormDB, mock
}

func (s *TestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	registerValidators()

	d, mock := NewMockDB()
	db.NewDB(d)
	s.Mock = mock

	token, err := utils.GenerateJWT(&models.User{
		ID:       1,
		Username: "somedriver",
		Role:     types.ROLE_USER,
	})
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
	}
	s.Token = token

	staffToken, err := utils.GenerateJWT(&models.User{
		ID:       2,
		Username: "frontdesk",
		Role:     types.ROLE_STAFF,
	})
	if err != nil {
		log.Fatalf("Error generating JWT token: %s\n", err.Error())
	}
	s.StaffToken = staffToken
}

func (s *TestSuite) TestDashboardRoute() {
	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "parking_spots"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "parking_spots"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(29))
	s.Mock.ExpectCommit()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "parking_spots"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "spot_number", "zone", "is_available"}).
			AddRow(1, "A01", "A", false).
			AddRow(2, "A02", "A", true))

	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	body, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(body)
	assert.Equal(s.T(), int64(30), gjson.Get(sjson, "counts.total_spots").Int())
	assert.Equal(s.T(), int64(1), gjson.Get(sjson, "counts.occupied_spots").Int())
	assert.Equal(s.T(), "A01", gjson.Get(sjson, "spots.0.spot_number").String())
}

func (s *TestSuite) TestMaintenanceMode() {
	os.Setenv("MAINTENANCE_MODE", "true")
	defer os.Unsetenv("MAINTENANCE_MODE")

	router := gin.New()
	router = maintenanceModeMiddleware(router)
	apiv1Group(router)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1", nil)
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 503, w.Code)
}

func (s *TestSuite) TestAuthRoutes() {
	router := gin.New()
	guestAuthRoutes(router)

	s.Run("login with unknown username is unauthorized", func() {
		s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := httptest.NewRecorder()
		jbody := map[string]any{
			"username": "nobody",
			"password": "hunter2hunter2",
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("register rejects a short password", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"username": "somedriver",
			"password": "short",
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/auth/register", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("register returns a token", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`INSERT INTO "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		s.Mock.ExpectCommit()

		w := httptest.NewRecorder()
		jbody := map[string]any{
			"username": "newdriver",
			"password": "hunter2hunter2",
			"name":     "New Driver",
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/auth/register", strings.NewReader(string(sbody)))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 201, w.Code)
		body, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		assert.NotEmpty(s.T(), gjson.Get(string(body), "token").String())
	})
}

func (s *TestSuite) TestBookingRoutes() {
	router := gin.New()
	apiv1 := apiv1Group(router)
	apiv1.Use(authMiddleware)
	bookingHandlers(apiv1)

	s.Run("requires a token", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 401, w.Code)
	})

	s.Run("rejects a booking without required fields", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"phone_number": "0812345678",
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
		body, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		assert.NotEmpty(s.T(), gjson.Get(string(body), "error").String())
	})

	s.Run("rejects a booking dated in the past", func() {
		w := httptest.NewRecorder()
		jbody := map[string]any{
			"car_license":  "ABC123",
			"car_model":    "Civic",
			"phone_number": "0812345678",
			"booking_date": "2020-01-01",
			"start_time":   "09:00",
			"end_time":     "17:00",
		}
		sbody, _ := json.Marshal(&jbody)
		req, _ := http.NewRequest("POST", "/api/v1/bookings", strings.NewReader(string(sbody)))
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 400, w.Code)
	})

	s.Run("lists own bookings with counters", func() {
		s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "user_id", "status"}).
				AddRow(1, "PK20250614A1B2C3", 1, "WAITING").
				AddRow(2, "PK20250610D4E5F6", 1, "APPROVED"))
		s.Mock.ExpectQuery(`SELECT (.+) FROM "tickets"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/api/v1/bookings", nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 200, w.Code)
		body, err := io.ReadAll(w.Body)
		assert.Nil(s.T(), err)
		sjson := string(body)
		assert.Equal(s.T(), int64(2), gjson.Get(sjson, "counts.total").Int())
		assert.Equal(s.T(), int64(1), gjson.Get(sjson, "counts.pending").Int())
		assert.Equal(s.T(), int64(1), gjson.Get(sjson, "counts.approved").Int())
	})
}

func (s *TestSuite) TestStaffDashboard() {
	router := gin.New()
	staff := apiv1Group(router)
	staff.Use(authMiddleware, middlewares.StaffOnly)
	staffHandlers(staff)

	s.Mock.ExpectBegin()
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "parking_spots"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(30))
	s.Mock.ExpectQuery(`SELECT count\(\*\) FROM "parking_spots"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(29))
	s.Mock.ExpectCommit()
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "user_id", "status"}).
			AddRow(1, "PK20250614A1B2C3", 1, "WAITING"))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).
			AddRow(1, "somedriver"))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/v1/staff/dashboard", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
	router.ServeHTTP(w, req)

	assert.Equal(s.T(), 200, w.Code)
	body, err := io.ReadAll(w.Body)
	assert.Nil(s.T(), err)
	sjson := string(body)
	assert.Equal(s.T(), int64(1), gjson.Get(sjson, "waiting_count").Int())
	assert.Equal(s.T(), int64(30), gjson.Get(sjson, "spots.total_spots").Int())
	assert.Equal(s.T(), "somedriver", gjson.Get(sjson, "waiting.0.user.username").String())
}

func (s *TestSuite) TestStaffGate() {
	router := gin.New()
	staff := apiv1Group(router)
	staff.Use(authMiddleware, middlewares.StaffOnly)
	staffHandlers(staff)

	s.Run("regular users are rejected", func() {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/staff/bookings/PK20250614A1B2C3/approve", nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.Token))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 403, w.Code)
	})

	s.Run("approving an unknown booking is a 404", func() {
		s.Mock.ExpectBegin()
		s.Mock.ExpectQuery(`SELECT (.+) FROM "bookings"(.+)FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		s.Mock.ExpectRollback()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/v1/staff/bookings/PK00000000000000/approve", nil)
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.StaffToken))
		router.ServeHTTP(w, req)

		assert.Equal(s.T(), 404, w.Code)
	})
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}
