package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"inkwell/internal/domain/models"
)

// ParseJSON decodes JSON from the request body into the given destination.
// It limits the request body size to prevent abuse and provides clear error messages.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	// Limit request body to 1MB; uploads go through multipart, not JSON
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

// Pagination defaults and bounds.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ParsePage reads ?page and ?size query parameters, clamping to sane bounds.
func ParsePage(r *http.Request) models.PageRequest {
	page := 0
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			page = n
		}
	}
	size := DefaultPageSize
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = n
		}
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return models.PageRequest{Page: page, Size: size}
}
