package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func signedToken(t *testing.T, secret string, method jwt.SigningMethod) string {
	t.Helper()
	token := jwt.NewWithClaims(method, jwt.MapClaims{
		"sub":      "player-1",
		"username": "neo",
		"role":     "player",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "secret", jwt.SigningMethodHS256))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Auth("secret")(func(c echo.Context) error {
		called = true
		if c.Get("player_id") != "player-1" {
			t.Fatalf("player_id not set")
		}
		if c.Get("username") != "neo" {
			t.Fatalf("username not set")
		}
		if c.Get("role") != "player" {
			t.Fatalf("role not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Auth("secret")(func(c echo.Context) error {
		t.Fatal("next should not run")
		return nil
	})(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthMiddleware_WrongSecret(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "other-secret", jwt.SigningMethodHS256))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Auth("secret")(func(c echo.Context) error {
		t.Fatal("next should not run")
		return nil
	})(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "player-1",
		"role": "player",
		"exp":  time.Now().Add(-time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mwErr := Auth("secret")(func(c echo.Context) error {
		t.Fatal("next should not run")
		return nil
	})(c)

	he, ok := mwErr.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", mwErr)
	}
}

func TestAuthMiddleware_MalformedHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abcdef")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := Auth("secret")(func(c echo.Context) error {
		t.Fatal("next should not run")
		return nil
	})(c)

	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
