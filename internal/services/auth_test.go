package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/testutil"
	"github.com/Brooks-Cole/brooks-books/internal/services"
)

func newAuthService(t *testing.T) services.AuthService {
	t.Helper()
	log := testutil.NewLogger(t)
	db := testutil.NewDB(t)
	users := catalog.NewUserRepo(db, log)
	cfg := services.AuthConfig{Secret: "test-secret", TTL: time.Hour}
	return services.NewAuthService(users, cfg, log)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService(t)

	user, token, err := auth.Register(ctx, "Kid@Example.com", "kid", "supersecret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "kid@example.com" {
		t.Fatalf("email not normalized: %q", user.Email)
	}
	if token == "" {
		t.Fatalf("expected a token")
	}

	claims, err := auth.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("claims user = %s, want %s", claims.UserID, user.ID)
	}
	if claims.IsAdmin {
		t.Fatalf("new users must not be admins")
	}

	logged, _, err := auth.Login(ctx, "kid@example.com", "supersecret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned wrong user")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService(t)
	if _, _, err := auth.Register(ctx, "kid@example.com", "kid", "supersecret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, _, err := auth.Login(ctx, "kid@example.com", "wrongpassword")
	if !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
	_, _, err = auth.Login(ctx, "nobody@example.com", "whatever")
	if !errors.Is(err, services.ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	auth := newAuthService(t)
	if _, _, err := auth.Register(ctx, "kid@example.com", "kid", "supersecret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := auth.Register(ctx, "kid@example.com", "other", "supersecret"); err == nil {
		t.Fatalf("duplicate email must be rejected")
	}
}

func TestRegisterShortPassword(t *testing.T) {
	auth := newAuthService(t)
	if _, _, err := auth.Register(context.Background(), "kid@example.com", "kid", "short"); err == nil {
		t.Fatalf("short password must be rejected")
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	auth := newAuthService(t)
	if _, err := auth.Verify("not-a-token"); err == nil {
		t.Fatalf("garbage token must fail verification")
	}
}
