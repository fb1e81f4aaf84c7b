// Package guard gates routes on the claims of a session token. The console
// tier decodes without verification and redirects to the login page on any
// failure; the API tier verifies the signature and answers 401/403.
package guard

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/stratos-aero/stratos/internal/logging"
	"github.com/stratos-aero/stratos/internal/session"
	"github.com/stratos-aero/stratos/internal/tokens"
)

// AnyRole accepts every authenticated role.
const AnyRole = "*"

const LoginPath = "/login"

type DenyReason string

const (
	DenyMissingToken     DenyReason = "missing_token"
	DenyMalformedToken   DenyReason = "malformed_token"
	DenyBadIssuer        DenyReason = "bad_issuer"
	DenyExpired          DenyReason = "expired"
	DenyIncompleteClaims DenyReason = "incomplete_claims"
	DenyRoleMismatch     DenyReason = "role_mismatch"
)

// Verdict is the settled outcome of one evaluation. Either Allowed is set
// with the identity claims, or Reason says which check failed.
type Verdict struct {
	Allowed bool
	UserID  string
	Role    string
	Reason  DenyReason
}

func allow(userID, role string) Verdict {
	return Verdict{Allowed: true, UserID: userID, Role: role}
}

func deny(reason DenyReason) Verdict {
	return Verdict{Reason: reason}
}

// Evaluate runs the claim checks in a fixed order: issuer, expiry, claim
// presence, role. Pure and total; callers pass the clock in.
func Evaluate(claims *tokens.AccessClaims, requiredRole string, now time.Time) Verdict {
	if claims == nil {
		return deny(DenyMalformedToken)
	}
	if claims.Issuer != tokens.Issuer {
		return deny(DenyBadIssuer)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.UnixMilli() <= now.UnixMilli() {
		return deny(DenyExpired)
	}
	if claims.UserID == "" || claims.Role == "" {
		return deny(DenyIncompleteClaims)
	}
	if requiredRole != AnyRole && claims.Role != requiredRole {
		return deny(DenyRoleMismatch)
	}
	return allow(claims.UserID, claims.Role)
}

// Check resolves the session token against the required role. Decode
// failures collapse into a deny verdict, never an error.
func Check(raw, requiredRole string, now time.Time) Verdict {
	if raw == "" {
		return deny(DenyMissingToken)
	}
	claims, err := tokens.Decode(raw)
	if err != nil {
		return deny(DenyMalformedToken)
	}
	return Evaluate(claims, requiredRole, now)
}

func setIdentity(c echo.Context, claims *tokens.AccessClaims) {
	c.Set("userID", claims.UserID)
	c.Set("role", claims.Role)
	c.Set("username", claims.Subject)
}

// Console returns middleware gating server-rendered pages. The token is
// decoded, not verified: the API re-checks authority on every call. Denial
// always lands on the login page and discards the attempted destination.
func Console(store session.Store, requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := store.Token(c)
			v := Check(raw, requiredRole, time.Now())
			if !v.Allowed {
				logging.FromContext(c.Request().Context()).Warn("console access denied",
					"path", c.Request().URL.Path, "reason", string(v.Reason))
				return c.Redirect(http.StatusFound, LoginPath)
			}
			claims, _ := tokens.Decode(raw)
			setIdentity(c, claims)
			return next(c)
		}
	}
}

// API returns middleware for the JSON tier. The signature is verified and
// the same claim checks re-run; a role mismatch is 403, everything else 401.
func API(secret []byte, requiredRole string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			claims, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "), secret)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			now := time.Now()
			if claims.IssuedAt == nil || claims.IssuedAt.After(now) {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			v := Evaluate(claims, requiredRole, now)
			if !v.Allowed {
				if v.Reason == DenyRoleMismatch {
					return echo.NewHTTPError(http.StatusForbidden, "not enough rights")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}
			setIdentity(c, claims)
			return next(c)
		}
	}
}
