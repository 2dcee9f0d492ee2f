package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

type stubPlayerService struct {
	getProfileFn    func(ctx context.Context, playerID string) (*domain.Player, error)
	updateFn        func(ctx context.Context, input ports.UpdateBiometricsInput) (*domain.Player, error)
	getByUsernameFn func(ctx context.Context, username string) (*domain.Player, error)
	listFn          func(ctx context.Context, filter ports.ChoiceFilter) (*ports.ChoicePage, error)
	weeklyFn        func(ctx context.Context, playerID string) (*ports.WeeklyReport, error)
}

func (s *stubPlayerService) GetProfile(ctx context.Context, playerID string) (*domain.Player, error) {
	return s.getProfileFn(ctx, playerID)
}

func (s *stubPlayerService) UpdateBiometrics(ctx context.Context, input ports.UpdateBiometricsInput) (*domain.Player, error) {
	return s.updateFn(ctx, input)
}

func (s *stubPlayerService) GetByUsername(ctx context.Context, username string) (*domain.Player, error) {
	return s.getByUsernameFn(ctx, username)
}

func (s *stubPlayerService) ListChoices(ctx context.Context, filter ports.ChoiceFilter) (*ports.ChoicePage, error) {
	return s.listFn(ctx, filter)
}

func (s *stubPlayerService) WeeklyReport(ctx context.Context, playerID string) (*ports.WeeklyReport, error) {
	return s.weeklyFn(ctx, playerID)
}

func testPlayer() *domain.Player {
	p := domain.NewPlayer("neo", "neo@matrix.io", time.Now().UTC())
	p.ID = "player-1"
	p.Progression.Level = 7
	return p
}

func newPlayerContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("role", domain.RolePlayer)
	c.Set("player_id", "player-1")
	return c, rec
}

func TestPlayerHandler_GetProfile(t *testing.T) {
	stub := &stubPlayerService{
		getProfileFn: func(_ context.Context, playerID string) (*domain.Player, error) {
			if playerID != "player-1" {
				t.Fatalf("player id = %q", playerID)
			}
			return testPlayer(), nil
		},
	}
	h := NewPlayerHandler(stub)

	c, rec := newPlayerContext(t, http.MethodGet, "/v1/profile", "")
	if err := h.GetProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "neo" {
		t.Errorf("username = %v", resp["username"])
	}
	if resp["rank"] != "INTERMEDIATE" { // level 7
		t.Errorf("rank = %v", resp["rank"])
	}
}

func TestPlayerHandler_GetProfile_NotFound(t *testing.T) {
	stub := &stubPlayerService{
		getProfileFn: func(_ context.Context, _ string) (*domain.Player, error) {
			return nil, domain.ErrPlayerNotFound
		},
	}
	h := NewPlayerHandler(stub)

	c, rec := newPlayerContext(t, http.MethodGet, "/v1/profile", "")
	_ = h.GetProfile(c)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestPlayerHandler_UpdateProfile(t *testing.T) {
	stub := &stubPlayerService{
		updateFn: func(_ context.Context, input ports.UpdateBiometricsInput) (*domain.Player, error) {
			if input.Class != "glucose-guardian" || input.Age != 34 {
				t.Fatalf("unexpected input: %+v", input)
			}
			p := testPlayer()
			p.Biometrics.Class = domain.ClassGlucoseGuardian
			p.Biometrics.Age = 34
			return p, nil
		},
	}
	h := NewPlayerHandler(stub)

	body := `{"age":34,"weight_kg":82.5,"height_cm":180,"medical_history":"type 2 diabetes","daily_activity":"sedentary","class":"glucose-guardian"}`
	c, rec := newPlayerContext(t, http.MethodPut, "/v1/profile", body)
	if err := h.UpdateProfile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestPlayerHandler_UpdateProfile_RejectsUnknownClass(t *testing.T) {
	h := NewPlayerHandler(&stubPlayerService{})

	c, rec := newPlayerContext(t, http.MethodPut, "/v1/profile", `{"class":"necromancer"}`)
	_ = h.UpdateProfile(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPlayerHandler_ListChoices(t *testing.T) {
	stub := &stubPlayerService{
		listFn: func(_ context.Context, filter ports.ChoiceFilter) (*ports.ChoicePage, error) {
			if filter.PlayerID != "player-1" || filter.Page != 2 || filter.Limit != 10 {
				t.Fatalf("unexpected filter: %+v", filter)
			}
			if filter.DateFrom.IsZero() {
				t.Fatal("date_from not parsed")
			}
			return &ports.ChoicePage{
				Items:      []*domain.ChoiceRecord{{ID: "choice-1", PlayerID: "player-1", FoodName: "apple", Tag: domain.ChoiceOptimized}},
				Total:      11,
				Page:       2,
				Limit:      10,
				TotalPages: 2,
			}, nil
		},
	}
	h := NewPlayerHandler(stub)

	c, rec := newPlayerContext(t, http.MethodGet, "/v1/choices?page=2&limit=10&date_from=2026-08-01T00:00:00Z", "")
	if err := h.ListChoices(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["total"] != float64(11) || resp["total_pages"] != float64(2) {
		t.Errorf("paging = %+v", resp)
	}
}

func TestPlayerHandler_ListChoices_BadDate(t *testing.T) {
	h := NewPlayerHandler(&stubPlayerService{})

	c, rec := newPlayerContext(t, http.MethodGet, "/v1/choices?date_from=yesterday", "")
	_ = h.ListChoices(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPlayerHandler_WeeklyReport(t *testing.T) {
	stub := &stubPlayerService{
		weeklyFn: func(_ context.Context, playerID string) (*ports.WeeklyReport, error) {
			return &ports.WeeklyReport{Scans: 4, GoodChoices: 3, BadChoices: 1, HealthScore: 88}, nil
		},
	}
	h := NewPlayerHandler(stub)

	c, rec := newPlayerContext(t, http.MethodGet, "/v1/report/weekly", "")
	if err := h.WeeklyReport(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp weeklyReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.HealthScore != 88 || resp.Scans != 4 {
		t.Errorf("report = %+v", resp)
	}
}

func TestPlayerHandler_GetByUsername(t *testing.T) {
	stub := &stubPlayerService{
		getByUsernameFn: func(_ context.Context, username string) (*domain.Player, error) {
			if username != "neo" {
				t.Fatalf("username = %q", username)
			}
			return testPlayer(), nil
		},
	}
	h := NewPlayerHandler(stub)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/players/neo", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("username")
	c.SetParamValues("neo")
	c.Set("role", domain.RoleAdmin)

	if err := h.GetByUsername(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
