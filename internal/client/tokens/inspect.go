package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gymhub/gymclient/internal/common"
)

// Claims is what the client can read from an access token without the
// server's key. It is diagnostic only and never gates a request.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Expired reports whether the token carried an expiry that lies before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Inspect decodes the JWT payload of an access token without verifying it.
func Inspect(accessToken string) (Claims, error) {
	var rc jwt.RegisteredClaims

	_, _, err := jwt.NewParser().ParseUnverified(Normalize(accessToken), &rc)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, nil
}
