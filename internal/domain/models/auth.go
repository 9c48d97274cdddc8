package models

import "github.com/golang-jwt/jwt/v5"

// Token types carried in the "type" claim.
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

// Claims is the JWT payload for locally issued tokens. Subject is the user
// id.
type Claims struct {
	Role      string `json:"role"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the verified (user, role) pair placed in the request context
// by the auth middleware.
type Identity struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
