package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atencion-digital/tramites-bot/internal/citizens"
	"github.com/atencion-digital/tramites-bot/pkg/logging"
)

const testAdminSecret = "test-secret"

func newTestRouter(t *testing.T) (http.Handler, *citizens.InMemoryRepository) {
	t.Helper()

	logger := logging.Default()
	repo := citizens.NewInMemoryRepository()

	cfg := &Config{
		Logger:          logger,
		CitizensHandler: citizens.NewHandler(repo, logger),
		AdminAuthSecret: testAdminSecret,
	}
	return New(cfg), repo
}

func TestRouterHealthEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterCitizenRoutes(t *testing.T) {
	router, _ := newTestRouter(t)

	body, _ := json.Marshal(citizens.CreateCitizenRequest{
		DNI: "30111222", FirstName: "Ana", LastName: "Lopez",
	})
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/citizens", bytes.NewReader(body)))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rr.Code)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/citizens/30111222", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}

func TestRouterAdminDeleteRequiresToken(t *testing.T) {
	router, repo := newTestRouter(t)

	if _, err := repo.Create(context.Background(), &citizens.CreateCitizenRequest{
		DNI: "30111222", FirstName: "Ana", LastName: "Lopez",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/citizens/30111222", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d without token, got %d", http.StatusUnauthorized, rr.Code)
	}

	req := httptest.NewRequest(http.MethodDelete, "/citizens/30111222", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, testAdminSecret))
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status %d with token, got %d", http.StatusNoContent, rr.Code)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func signedToken(t *testing.T, secret string) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "official-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
