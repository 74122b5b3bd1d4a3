package models

// Role is the account role reported by the identity endpoint.
type Role string

const (
	RoleEndUser      Role = "END_USER"
	RolePendingOwner Role = "PENDING_OWNER"
	RoleOwner        Role = "OWNER"
)

// Session is the resolved identity behind the current access token.
// It is never persisted; it is re-derived from GET /users/me.
type Session struct {
	UserID       int64  `json:"userId"`
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	AuthProvider string `json:"authProvider"`
}

// IsOwner reports whether the session acts on behalf of a gym.
func (s Session) IsOwner() bool {
	return s.Role == RoleOwner
}

// TokenPair is the persisted credential pair. Empty strings mean absent.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// HasAccess reports whether an access token is present.
func (p TokenPair) HasAccess() bool { return p.AccessToken != "" }

// HasRefresh reports whether a refresh token is present.
func (p TokenPair) HasRefresh() bool { return p.RefreshToken != "" }
