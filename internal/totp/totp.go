// Package totp handles authenticator enrollment: secret generation, the
// otpauth provisioning URL and its QR image, and code verification.
package totp

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/url"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/stratos-aero/stratos/internal/tokens"
)

const (
	secretSize = 20
	qrSize     = 250
)

// GenerateSecret returns a new base32 TOTP secret for the account.
func GenerateSecret(username string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      tokens.Issuer,
		AccountName: username,
		SecretSize:  secretSize,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

// ProvisioningURL builds the otpauth URL shown to the authenticator app.
func ProvisioningURL(username, secret string) string {
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s",
		tokens.Issuer, url.PathEscape(username), secret, tokens.Issuer)
}

// EnrollmentQR renders the provisioning URL as a 250x250 PNG and returns it
// base64 encoded, the shape the setup page embeds directly in an img tag.
func EnrollmentQR(username, secret string) (string, error) {
	key, err := otp.NewKeyFromURL(ProvisioningURL(username, secret))
	if err != nil {
		return "", err
	}
	img, err := key.Image(qrSize, qrSize)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Verify checks a 6-digit code against the secret.
func Verify(code, secret string) bool {
	return totp.Validate(code, secret)
}
