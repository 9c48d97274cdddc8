package auth

import "inkwell/internal/domain/models"

// TokenVerifier validates access tokens for the middleware.
// Two implementations exist: the local HMAC verifier used by the built-in
// login flow, and a JWKS verifier for deployments that delegate identity to
// an external issuer.
type TokenVerifier interface {
	// VerifyToken validates a token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid
	// signature.
	VerifyToken(tokenString string) (*models.Claims, error)

	// Close releases any resources held by the verifier (e.g., HTTP
	// connections for JWKS). Should be called when the verifier is no
	// longer needed.
	Close() error
}
