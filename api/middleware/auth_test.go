package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ABBA-DALHATU/football-network-app/pkg/config"
	"github.com/ABBA-DALHATU/football-network-app/pkg/db/models"
	"github.com/ABBA-DALHATU/football-network-app/pkg/enums"
	pkgerrors "github.com/ABBA-DALHATU/football-network-app/pkg/errors"
	"github.com/ABBA-DALHATU/football-network-app/pkg/identity"
)

type stubResolver struct {
	user *models.User
	err  error
}

func (s stubResolver) ResolveOrCreate(_ context.Context, _ identity.Identity) (*models.User, error) {
	return s.user, s.err
}

func testAuthConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, subject string) string {
	t.Helper()
	token, err := identity.MintAccessToken(cfg, time.Now(), identity.Identity{
		Subject:  subject,
		FullName: "Test Player",
		Email:    "player@example.com",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthRejectsMissingToken(t *testing.T) {
	handler := Auth(testAuthConfig(), stubResolver{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	handler := Auth(testAuthConfig(), stubResolver{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer invalid")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthResolvesAndSeedsContext(t *testing.T) {
	cfg := testAuthConfig()
	user := &models.User{ID: uuid.New(), Role: enums.RolePlayer}
	token := mintTestToken(t, cfg, "ext-subject-1")

	var captured struct {
		user    string
		subject string
		role    string
	}
	handler := Auth(cfg, stubResolver{user: user}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.user = UserIDFromContext(r.Context())
		captured.subject = SubjectFromContext(r.Context())
		captured.role = RoleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.user != user.ID.String() {
		t.Fatalf("expected user %s in context got %s", user.ID, captured.user)
	}
	if captured.subject != "ext-subject-1" {
		t.Fatalf("expected subject in context got %s", captured.subject)
	}
	if captured.role != string(enums.RolePlayer) {
		t.Fatalf("expected role PLAYER got %s", captured.role)
	}
}

func TestAuthPropagatesResolverError(t *testing.T) {
	cfg := testAuthConfig()
	token := mintTestToken(t, cfg, "ext-subject-1")

	handler := Auth(cfg, stubResolver{err: pkgerrors.New(pkgerrors.CodeDependency, "db down")}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}
