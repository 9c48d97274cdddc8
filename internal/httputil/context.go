package httputil

import (
	"context"
	"net/http"

	"inkwell/internal/domain/models"
)

// Context key type to avoid collisions
type contextKey string

const identityKey contextKey = "identity"

// WithIdentity adds the verified identity to the request context
func WithIdentity(r *http.Request, identity models.Identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityKey, identity)
	return r.WithContext(ctx)
}

// GetIdentity retrieves the identity from context. The zero Identity means
// the request is anonymous.
func GetIdentity(r *http.Request) models.Identity {
	identity, _ := r.Context().Value(identityKey).(models.Identity)
	return identity
}
