package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Brooks-Cole/brooks-books/internal/data/repos/catalog"
	"github.com/Brooks-Cole/brooks-books/internal/data/repos/testutil"
	"github.com/Brooks-Cole/brooks-books/internal/domain"
	"github.com/Brooks-Cole/brooks-books/internal/http/middleware"
	"github.com/Brooks-Cole/brooks-books/internal/services"
)

type authFixture struct {
	router *gin.Engine
	token  string
	admin  string
	userID uuid.UUID
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := testutil.NewLogger(t)
	db := testutil.NewDB(t)
	users := catalog.NewUserRepo(db, log)
	auth := services.NewAuthService(users, services.AuthConfig{Secret: "test-secret", TTL: time.Hour}, log)

	ctx := context.Background()
	user, token, err := auth.Register(ctx, "kid@example.com", "kid", "supersecret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := auth.Register(ctx, "grown@example.com", "grown", "supersecret"); err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if err := db.Model(&domain.User{}).Where("email = ?", "grown@example.com").Update("is_admin", true).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	_, adminToken, err := auth.Login(ctx, "grown@example.com", "supersecret")
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}

	mw := middleware.NewAuthMiddleware(auth, log)
	r := gin.New()
	r.GET("/me", mw.RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": middleware.UserID(c)})
	})
	r.GET("/admin", mw.RequireAuth(), mw.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &authFixture{router: r, token: token, admin: adminToken, userID: user.ID}
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	f := newAuthFixture(t)
	if w := get(f.router, "/me", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	f := newAuthFixture(t)
	if w := get(f.router, "/me", "garbage"); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestRequireAuthAcceptsValidToken(t *testing.T) {
	f := newAuthFixture(t)
	w := get(f.router, "/me", f.token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
}

func TestRequireAdminGate(t *testing.T) {
	f := newAuthFixture(t)
	if w := get(f.router, "/admin", f.token); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin status = %d, want 403", w.Code)
	}
	if w := get(f.router, "/admin", f.admin); w.Code != http.StatusOK {
		t.Fatalf("admin status = %d, want 200", w.Code)
	}
}
