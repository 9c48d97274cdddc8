package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"inkwell/internal/auth"
	"inkwell/internal/domain"
	"inkwell/internal/domain/models"
)

func newAuthService(t *testing.T) (*AuthService, *memUserRepo) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer, err := auth.NewHMACIssuer("test-secret", time.Minute, time.Hour, logger)
	if err != nil {
		t.Fatalf("NewHMACIssuer: %v", err)
	}
	users := &memUserRepo{users: map[string]*models.User{}}
	return NewAuthService(users, issuer, logger), users
}

func TestFirstRegisteredUserIsAdmin(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, &RegisterRequest{
		Email:    "owner@example.com",
		Username: "owner",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if first.User.Role != models.RoleAdmin {
		t.Errorf("first user role = %q, want admin", first.User.Role)
	}

	second, err := svc.Register(ctx, &RegisterRequest{
		Email:    "guest@example.com",
		Username: "guest",
		Password: "another pass",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if second.User.Role != models.RoleUser {
		t.Errorf("second user role = %q, want user", second.User.Role)
	}
	if second.Tokens.AccessToken == "" || second.Tokens.RefreshToken == "" {
		t.Error("expected tokens on register")
	}
}

func TestRegisterDuplicatesConflict(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Username: "alice", Password: "password1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Username: "alice2", Password: "password1"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate email err = %v, want ErrConflict", err)
	}
	_, err = svc.Register(ctx, &RegisterRequest{Email: "b@example.com", Username: "alice", Password: "password1"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate username err = %v, want ErrConflict", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "not-an-email", Username: "alice", Password: "password1"}},
		{"short username", RegisterRequest{Email: "a@example.com", Username: "ab", Password: "password1"}},
		{"short password", RegisterRequest{Email: "a@example.com", Username: "alice", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, &tc.req); !errors.Is(err, domain.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestLoginWrongCredentialsIndistinguishable(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Username: "alice", Password: "password1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPass := svc.Login(ctx, &LoginRequest{Email: "a@example.com", Password: "wrong-pass"})
	_, wrongMail := svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "password1"})
	if !errors.Is(wrongPass, domain.ErrUnauthorized) {
		t.Errorf("wrong password err = %v, want ErrUnauthorized", wrongPass)
	}
	if !errors.Is(wrongMail, domain.ErrUnauthorized) {
		t.Errorf("unknown email err = %v, want ErrUnauthorized", wrongMail)
	}
	if wrongPass.Error() != wrongMail.Error() {
		t.Errorf("errors differ: %q vs %q", wrongPass, wrongMail)
	}

	result, err := svc.Login(ctx, &LoginRequest{Email: "a@example.com", Password: "password1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if result.User.Username != "alice" {
		t.Errorf("username = %q, want alice", result.User.Username)
	}
}

func TestRefreshPicksUpRoleChange(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, &RegisterRequest{Email: "a@example.com", Username: "alice", Password: "password1"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Demote the account, then refresh. The new access token must carry the
	// stored role, not the one baked into the refresh token.
	users.users[result.User.ID].Role = models.RoleUser
	pair, err := svc.Refresh(ctx, result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	issuer, _ := auth.NewHMACIssuer("test-secret", time.Minute, time.Hour, slog.Default())
	claims, err := issuer.VerifyToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Role != models.RoleUser {
		t.Errorf("refreshed role = %q, want user", claims.Role)
	}

	if _, err := svc.Refresh(ctx, result.Tokens.AccessToken); !errors.Is(err, domain.ErrUnauthorized) {
		t.Errorf("Refresh(access token) err = %v, want ErrUnauthorized", err)
	}
}
