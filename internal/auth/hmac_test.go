package auth

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

func newTestIssuer(t *testing.T) *HMACIssuer {
	t.Helper()
	issuer, err := NewHMACIssuer("test-secret", time.Minute, time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("NewHMACIssuer: %v", err)
	}
	return issuer
}

func TestHMACIssuerRequiresSecret(t *testing.T) {
	if _, err := NewHMACIssuer("", time.Minute, time.Hour, slog.Default()); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueAccessToken("user-1", models.RoleAdmin)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}

	claims, err := issuer.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Errorf("subject = %q, want user-1", claims.Subject)
	}
	if claims.Role != models.RoleAdmin {
		t.Errorf("role = %q, want %q", claims.Role, models.RoleAdmin)
	}
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	issuer := newTestIssuer(t)

	access, err := issuer.IssueAccessToken("user-1", models.RoleUser)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	refresh, err := issuer.IssueRefreshToken("user-1", models.RoleUser)
	if err != nil {
		t.Fatalf("IssueRefreshToken: %v", err)
	}

	if _, err := issuer.VerifyToken(refresh); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("VerifyToken(refresh) err = %v, want ErrUnauthorized", err)
	}
	if _, err := issuer.VerifyRefreshToken(access); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("VerifyRefreshToken(access) err = %v, want ErrUnauthorized", err)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	issuer, err := NewHMACIssuer("test-secret", -time.Minute, time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("NewHMACIssuer: %v", err)
	}

	token, err := issuer.IssueAccessToken("user-1", models.RoleUser)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := issuer.VerifyToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("VerifyToken(expired) err = %v, want ErrUnauthorized", err)
	}
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := newTestIssuer(t)
	other, err := NewHMACIssuer("other-secret", time.Minute, time.Hour, slog.Default())
	if err != nil {
		t.Fatalf("NewHMACIssuer: %v", err)
	}

	token, err := issuer.IssueAccessToken("user-1", models.RoleUser)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := other.VerifyToken(token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("VerifyToken with wrong secret err = %v, want ErrUnauthorized", err)
	}

	if _, err := issuer.VerifyToken("not-a-token"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("VerifyToken(garbage) err = %v, want ErrUnauthorized", err)
	}
}
