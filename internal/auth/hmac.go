package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

// HMACIssuer signs and verifies tokens with a shared secret. This backs the
// built-in email/password flow.
type HMACIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
}

// NewHMACIssuer creates an issuer. The secret must be non-empty.
func NewHMACIssuer(secret string, accessTTL, refreshTTL time.Duration, logger *slog.Logger) (*HMACIssuer, error) {
	if secret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	return &HMACIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}, nil
}

// IssueAccessToken signs a short-lived access token for the user.
func (i *HMACIssuer) IssueAccessToken(userID, role string) (string, error) {
	return i.sign(userID, role, models.TokenAccess, i.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the user.
func (i *HMACIssuer) IssueRefreshToken(userID, role string) (string, error) {
	return i.sign(userID, role, models.TokenRefresh, i.refreshTTL)
}

func (i *HMACIssuer) sign(userID, role, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &models.Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates an access token. Refresh tokens are rejected here;
// they are only accepted by VerifyRefreshToken.
func (i *HMACIssuer) VerifyToken(tokenString string) (*models.Claims, error) {
	claims, err := i.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != models.TokenAccess {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// VerifyRefreshToken validates a refresh token.
func (i *HMACIssuer) VerifyRefreshToken(tokenString string) (*models.Claims, error) {
	claims, err := i.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != models.TokenRefresh {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func (i *HMACIssuer) parse(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Prevent algorithm confusion attacks - only the method we sign with
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return i.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	claims, ok := token.Claims.(*models.Claims)
	if !ok || claims.Subject == "" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

// Close is a no-op for graceful shutdown compatibility.
func (i *HMACIssuer) Close() error { return nil }
