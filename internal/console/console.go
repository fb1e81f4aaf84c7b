// Package console serves the server-rendered administrative pages: login,
// the role dashboards and OTP enrollment. Pages sit behind the guard
// middleware; every denial lands back on the login page.
package console

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/stratos-aero/stratos/internal/hash"
	"github.com/stratos-aero/stratos/internal/logging"
	"github.com/stratos-aero/stratos/internal/models"
	"github.com/stratos-aero/stratos/internal/service"
	"github.com/stratos-aero/stratos/internal/session"
	"github.com/stratos-aero/stratos/internal/tokens"
	"github.com/stratos-aero/stratos/internal/totp"
)

type Handler struct {
	Sessions    session.Store
	Users       *service.UserService
	Aircraft    *service.AircraftService
	Flights     *service.FlightService
	Maintenance *service.MaintenanceService
	Pending     *PendingEnrollments
	JWTSecret   []byte
}

type loginPageData struct {
	Error string
}

type setupOTPPageData struct {
	Username string
	QRCode   string
	Error    string
}

func tokenExpiry() time.Time {
	return time.Now().Add(tokens.AccessTokenTTL)
}

func (h *Handler) Root(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/login")
}

func (h *Handler) LoginPage(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", loginPageData{})
}

// Login handles the credential form. The token and role are written to the
// session store before any redirect is issued, because the guard on the
// destination reads them synchronously. OTP-less accounts are detoured to
// enrollment before any role dispatch happens.
func (h *Handler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")
	ctx := c.Request().Context()

	user, err := h.Users.GetByUsername(ctx, username)
	if err != nil || !hash.CheckPassword(user.PasswordHash, password) {
		return c.Render(http.StatusUnauthorized, "login.html", loginPageData{Error: "Login failed, please try again"})
	}

	token, err := tokens.Sign(user, tokens.AccessTokenTTL, h.JWTSecret)
	if err != nil {
		logging.FromContext(ctx).Error("token sign failed", "error", err)
		return c.Render(http.StatusInternalServerError, "login.html", loginPageData{Error: "Login failed, please try again"})
	}

	exp := tokenExpiry()
	h.Sessions.SetToken(c, token, exp)
	h.Sessions.SetRole(c, string(user.Role), exp)

	if !user.OTPEnabled {
		ticket := h.Pending.Issue(user.Username)
		return c.Redirect(http.StatusSeeOther, "/setup-otp?ticket="+ticket)
	}

	switch user.Role {
	case models.RoleAdmin:
		return c.Redirect(http.StatusSeeOther, "/admin/dashboard")
	case models.RoleEngineer:
		return c.Redirect(http.StatusSeeOther, "/engineer/dashboard/"+user.ID.String())
	case models.RolePilot:
		return c.Render(http.StatusOK, "login.html", loginPageData{Error: "Pilot console is not supported yet"})
	default:
		return c.Render(http.StatusOK, "login.html", loginPageData{Error: "Unknown role, please contact support"})
	}
}

func (h *Handler) Logout(c echo.Context) error {
	h.Sessions.Clear(c)
	return c.Redirect(http.StatusSeeOther, "/login")
}

// SetupOTPPage only renders when reached through a login that issued an
// enrollment ticket; direct visits, refreshes and replays are sent back to
// the login page.
func (h *Handler) SetupOTPPage(c echo.Context) error {
	username, ok := h.Pending.Claim(c.QueryParam("ticket"))
	if !ok {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	return h.renderSetupOTP(c, username, "")
}

func (h *Handler) renderSetupOTP(c echo.Context, username, errMsg string) error {
	ctx := c.Request().Context()
	user, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	if user.OTPSecret == "" {
		secret, err := totp.GenerateSecret(user.Username)
		if err != nil {
			return err
		}
		user.OTPSecret = secret
		user.OTPEnabled = false
		if err := h.Users.DB.WithContext(ctx).Save(user).Error; err != nil {
			return err
		}
	}
	qr, err := totp.EnrollmentQR(user.Username, user.OTPSecret)
	if err != nil {
		return err
	}
	return c.Render(http.StatusOK, "setup_otp.html", setupOTPPageData{
		Username: user.Username,
		QRCode:   qr,
		Error:    errMsg,
	})
}

// SetupOTPVerify checks the first authenticator code. Success enables OTP
// and returns the user to the login page to sign in again.
func (h *Handler) SetupOTPVerify(c echo.Context) error {
	username := c.FormValue("username")
	code := c.FormValue("code")
	ctx := c.Request().Context()

	user, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	if !totp.Verify(code, user.OTPSecret) {
		return h.renderSetupOTP(c, username, "Invalid code, please try again")
	}
	user.OTPEnabled = true
	if err := h.Users.DB.WithContext(ctx).Save(user).Error; err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/login")
}

type adminDashboardData struct {
	Username    string
	Users       []models.User
	Aircraft    []models.Aircraft
	Flights     []models.Flight
	Maintenance []models.MaintenanceRecord
}

func (h *Handler) AdminDashboard(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.Users.List(ctx, service.UserFilter{})
	if err != nil {
		return err
	}
	aircraft, err := h.Aircraft.List(ctx)
	if err != nil {
		return err
	}
	flights, err := h.Flights.List(ctx)
	if err != nil {
		return err
	}
	records, err := h.Maintenance.List(ctx, service.MaintenanceFilter{})
	if err != nil {
		return err
	}
	username, _ := c.Get("username").(string)
	return c.Render(http.StatusOK, "admin_dashboard.html", adminDashboardData{
		Username:    username,
		Users:       users,
		Aircraft:    aircraft,
		Flights:     flights,
		Maintenance: records,
	})
}

type engineerDashboardData struct {
	Username    string
	Maintenance []models.MaintenanceRecord
}

func (h *Handler) EngineerDashboard(c echo.Context) error {
	engineerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/login")
	}
	records, err := h.Maintenance.List(c.Request().Context(), service.MaintenanceFilter{EngineerID: engineerID})
	if err != nil {
		return err
	}
	username, _ := c.Get("username").(string)
	return c.Render(http.StatusOK, "engineer_dashboard.html", engineerDashboardData{
		Username:    username,
		Maintenance: records,
	})
}
