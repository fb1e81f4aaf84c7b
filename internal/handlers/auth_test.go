package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	ptotp "github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/stratos-aero/stratos/internal/models"
	"github.com/stratos-aero/stratos/internal/service"
	"github.com/stratos-aero/stratos/internal/tokens"
	"github.com/stratos-aero/stratos/internal/totp"
)

var (
	testSecret = []byte("handler-test-secret")
	bg         = context.Background()
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Aircraft{},
		&models.Flight{},
		&models.MaintenanceRecord{},
		&models.MaintenanceLogEntry{},
		&models.Airport{},
		&models.AircraftTypeInfo{},
	))
	return db
}

func authHandler(t *testing.T) (*AuthHandler, *service.UserService) {
	t.Helper()
	users := &service.UserService{DB: testDB(t)}
	return &AuthHandler{Users: users, JWTSecret: testSecret}, users
}

func jsonRequest(method, target, body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func createUser(t *testing.T, users *service.UserService, username, password string, role models.UserRole) *models.User {
	t.Helper()
	user, err := users.Create(bg, service.UserInput{Username: username, Password: password, Role: role})
	require.NoError(t, err)
	return user
}

func enrollUser(t *testing.T, users *service.UserService, user *models.User) string {
	t.Helper()
	secret, err := totp.GenerateSecret(user.Username)
	require.NoError(t, err)
	user.OTPSecret = secret
	require.NoError(t, users.DB.Save(user).Error)
	return secret
}

func TestLoginReturnsTokenAndUser(t *testing.T) {
	h, users := authHandler(t)
	createUser(t, users, "alice", "pw123", models.RoleAdmin)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"pw123"}`)
	c := e.NewContext(req, rec)

	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
		User  struct {
			Username     string `json:"username"`
			Role         string `json:"role"`
			IsOTPEnabled bool   `json:"isOtpEnabled"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "alice", body.User.Username)
	require.Equal(t, "ADMIN", body.User.Role)
	require.False(t, body.User.IsOTPEnabled)
	require.NotContains(t, rec.Body.String(), "passwordHash")

	claims, err := tokens.Parse(body.Token, testSecret)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Subject)
	require.Equal(t, "ADMIN", claims.Role)
	require.Equal(t, tokens.Issuer, claims.Issuer)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	h, users := authHandler(t)
	createUser(t, users, "alice", "pw123", models.RoleAdmin)

	e := echo.New()
	for _, body := range []string{
		`{"username":"alice","password":"wrong"}`,
		`{"username":"ghost","password":"pw123"}`,
	} {
		req, rec := jsonRequest(http.MethodPost, "/api/auth/login", body)
		c := e.NewContext(req, rec)

		err := h.Login(c)
		he, ok := err.(*echo.HTTPError)
		require.True(t, ok)
		require.Equal(t, http.StatusUnauthorized, he.Code)
		require.Equal(t, "Invalid username or password", he.Message)
	}
}

func TestEnableOTPRequiresMatchingSubject(t *testing.T) {
	h, users := authHandler(t)
	createUser(t, users, "alice", "pw123", models.RoleAdmin)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/auth/enable-otp/alice", "")
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("alice")
	c.Set("username", "mallory")

	err := h.EnableOTP(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusForbidden, he.Code)
}

func TestEnableOTPReturnsQRAndKeepsSecretStable(t *testing.T) {
	h, users := authHandler(t)
	user := createUser(t, users, "alice", "pw123", models.RoleAdmin)

	e := echo.New()
	enable := func() string {
		req, rec := jsonRequest(http.MethodPost, "/api/auth/enable-otp/alice", "")
		c := e.NewContext(req, rec)
		c.SetParamNames("username")
		c.SetParamValues("alice")
		c.Set("username", "alice")
		require.NoError(t, h.EnableOTP(c))
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			QRCode string `json:"qrCode"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.NotEmpty(t, body.QRCode)
		return body.QRCode
	}

	first := enable()

	stored, err := users.Get(bg, user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.OTPSecret)
	require.False(t, stored.OTPEnabled)

	// A second enrollment reuses the stored secret, so the QR is identical.
	second := enable()
	require.Equal(t, first, second)
}

func TestVerifyOTPFlow(t *testing.T) {
	h, users := authHandler(t)
	user := createUser(t, users, "alice", "pw123", models.RoleAdmin)
	secret := enrollUser(t, users, user)

	e := echo.New()

	// Wrong code is rejected and OTP stays off.
	req, rec := jsonRequest(http.MethodPost, "/api/auth/verify-otp", `{"username":"alice","code":"000000"}`)
	c := e.NewContext(req, rec)
	verifyErr := h.VerifyOTP(c)
	he, ok := verifyErr.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusUnauthorized, he.Code)

	stored, err := users.Get(bg, user.ID)
	require.NoError(t, err)
	require.False(t, stored.OTPEnabled)

	code, err := ptotp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	req, rec = jsonRequest(http.MethodPost, "/api/auth/verify-otp", `{"username":"alice","code":"`+code+`"}`)
	c = e.NewContext(req, rec)
	require.NoError(t, h.VerifyOTP(c))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err = users.Get(bg, user.ID)
	require.NoError(t, err)
	require.True(t, stored.OTPEnabled)
}

func TestVerifyOTPResetIssuesShortLivedToken(t *testing.T) {
	h, users := authHandler(t)
	user := createUser(t, users, "alice", "pw123", models.RoleAdmin)
	secret := enrollUser(t, users, user)

	code, err := ptotp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/auth/verify-otp-reset", `{"username":"alice","code":"`+code+`"}`)
	c := e.NewContext(req, rec)
	require.NoError(t, h.VerifyOTPReset(c))

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	claims, err := tokens.Parse(body.Token, testSecret)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	require.True(t, claims.ExpiresAt.Before(time.Now().Add(6*time.Minute)),
		"reset token must be short-lived")
}

func TestResetPassword(t *testing.T) {
	h, users := authHandler(t)
	createUser(t, users, "alice", "old-pw", models.RoleAdmin)

	e := echo.New()
	req, rec := jsonRequest(http.MethodPost, "/api/auth/reset-password", `{"username":"alice","password":"new-pw"}`)
	c := e.NewContext(req, rec)
	require.NoError(t, h.ResetPassword(c))
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = jsonRequest(http.MethodPost, "/api/auth/login", `{"username":"alice","password":"new-pw"}`)
	c = e.NewContext(req, rec)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
}
