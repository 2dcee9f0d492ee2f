package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, username, password, email, role string) (*domain.User, *domain.Player, error)
	loginFn    func(ctx context.Context, username, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password, email, role string) (*domain.User, *domain.Player, error) {
	return s.registerFn(ctx, username, password, email, role)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func newAuthContext(t *testing.T, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, username, password, email, role string) (*domain.User, *domain.Player, error) {
			if username != "neo" || role != domain.RolePlayer {
				t.Fatalf("unexpected args: %s %s", username, role)
			}
			user := &domain.User{ID: "user-1", Username: username, Role: role}
			player := &domain.Player{ID: "player-1", Username: username, Progression: domain.Progression{Vitality: 100, Level: 1}}
			return user, player, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(t, "/auth/register", `{"username":"neo","password":"redpill123","email":"neo@matrix.io"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	player, ok := resp["player"].(map[string]any)
	if !ok {
		t.Fatalf("expected player in response: %s", rec.Body.String())
	}
	progression := player["progression"].(map[string]any)
	if progression["vitality"] != float64(100) || progression["level"] != float64(1) {
		t.Errorf("starting progression = %+v", progression)
	}
}

func TestAuthHandler_Register_UserExists(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _, _, _, _ string) (*domain.User, *domain.Player, error) {
			return nil, nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(t, "/auth/register", `{"username":"neo","password":"redpill123"}`)
	_ = h.Register(c)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{})

	c, rec := newAuthContext(t, "/auth/register", `{"username":"neo","password":"short"}`)
	_ = h.Register(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (string, *domain.User, error) {
			return "jwt-token", &domain.User{ID: "user-1", Username: username, Role: domain.RolePlayer}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(t, "/auth/login", `{"username":"neo","password":"redpill123"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "jwt-token" {
		t.Errorf("token = %v", resp["token"])
	}
}

func TestAuthHandler_Login_UnknownUserHidden(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, _, _ string) (string, *domain.User, error) {
			return "", nil, domain.ErrUserNotFound
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newAuthContext(t, "/auth/login", `{"username":"trinity","password":"pw"}`)
	_ = h.Login(c)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if strings.Contains(resp.Error, "not found") {
		t.Error("login must not reveal whether the username exists")
	}
}
