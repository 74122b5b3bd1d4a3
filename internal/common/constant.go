// Package common contains shared constants and sentinel errors used across
// gymclient components.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on HTTP requests,
	// the notification stream and the STOMP CONNECT frame.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the scheme label prepended to access tokens on the wire.
	BearerScheme = "Bearer"

	// RequestIDHeaderName tags every logical API call; replays keep the id.
	RequestIDHeaderName = "X-Request-ID"

	// Metadata keys of the persisted token pair.
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// BearerValue formats token as an Authorization header value.
func BearerValue(token string) string {
	return BearerScheme + " " + token
}
