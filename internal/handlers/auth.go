package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/stratos-aero/stratos/internal/audit"
	"github.com/stratos-aero/stratos/internal/hash"
	"github.com/stratos-aero/stratos/internal/service"
	"github.com/stratos-aero/stratos/internal/tokens"
	"github.com/stratos-aero/stratos/internal/totp"
)

type AuthHandler struct {
	Users     *service.UserService
	JWTSecret []byte
	Producer  *audit.Producer
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type otpRequest struct {
	Username string `json:"username"`
	Code     string `json:"code"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	user, err := h.Users.GetByUsername(c.Request().Context(), req.Username)
	if err != nil || !hash.CheckPassword(user.PasswordHash, req.Password) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	token, err := tokens.Sign(user, tokens.AccessTokenTTL, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create token")
	}

	publish(c, h.Producer, user.ID.String(), map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID.String(),
		"username": user.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{
		"token": token,
		"user":  user,
	})
}

// EnableOTP provisions (or re-issues) the TOTP secret for the account and
// returns the enrollment QR. Self-service only: the path username must match
// the token subject.
func (h *AuthHandler) EnableOTP(c echo.Context) error {
	username := c.Param("username")
	if subject, _ := c.Get("username").(string); subject != username {
		return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
	}

	ctx := c.Request().Context()
	user, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid user")
	}

	if user.OTPSecret == "" {
		secret, err := totp.GenerateSecret(user.Username)
		if err != nil {
			return errorJSON(c, err)
		}
		user.OTPSecret = secret
	}
	user.OTPEnabled = false
	if err := h.Users.DB.WithContext(ctx).Save(user).Error; err != nil {
		return errorJSON(c, err)
	}

	qr, err := totp.EnrollmentQR(user.Username, user.OTPSecret)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"qrCode": qr})
}

// VerifyOTP confirms the first code from the authenticator and turns OTP on
// for the account.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	ctx := c.Request().Context()
	user, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user")
	}
	if !totp.Verify(req.Code, user.OTPSecret) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid code")
	}
	user.OTPEnabled = true
	if err := h.Users.DB.WithContext(ctx).Save(user).Error; err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, user.ID.String(), map[string]any{
		"type":     "otp_enabled",
		"userID":   user.ID.String(),
		"username": user.Username,
	})

	return c.NoContent(http.StatusOK)
}

// VerifyOTPReset exchanges a valid code for a short-lived token that
// authorizes a password reset.
func (h *AuthHandler) VerifyOTPReset(c echo.Context) error {
	var req otpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	user, err := h.Users.GetByUsername(c.Request().Context(), req.Username)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user")
	}
	if !totp.Verify(req.Code, user.OTPSecret) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid code")
	}
	token, err := tokens.Sign(user, tokens.ResetTokenTTL, h.JWTSecret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not create token")
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req credentials
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.Users.SetPassword(c.Request().Context(), req.Username, req.Password); err != nil {
		return errorJSON(c, err)
	}

	publish(c, h.Producer, req.Username, map[string]any{
		"type":     "password_reset",
		"username": req.Username,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated."})
}
