package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stratos-aero/stratos/internal/models"
)

// Issuer is the fixed issuer claim stamped into every token and required
// back by the guard.
const Issuer = "Stratos"

const (
	AccessTokenTTL = 60 * time.Minute
	ResetTokenTTL  = 5 * time.Minute
)

type AccessClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Sign issues an HS256 token for the user, subject set to the username.
func Sign(user *models.User, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID: user.ID.String(),
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// Parse verifies the signature and returns the typed claims. Used on the
// API tier, which is the actual enforcement point.
func Parse(raw string, secret []byte) (*AccessClaims, error) {
	var claims AccessClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}

// Decode extracts claims without verifying the signature. The console guard
// uses it for routing decisions only; every API call re-verifies the same
// bearer token, so nothing of authority hangs off the unverified claims.
func Decode(raw string) (*AccessClaims, error) {
	var claims AccessClaims
	if _, _, err := jwt.NewParser().ParseUnverified(raw, &claims); err != nil {
		return nil, err
	}
	return &claims, nil
}
