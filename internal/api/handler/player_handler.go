package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

// PlayerHandler handles profile, history and report requests.
type PlayerHandler struct {
	service ports.PlayerService
}

func NewPlayerHandler(service ports.PlayerService) *PlayerHandler {
	return &PlayerHandler{service: service}
}

type updateBiometricsRequest struct {
	Age            int     `json:"age"             validate:"omitempty,gt=0,lt=130"`
	WeightKg       float64 `json:"weight_kg"       validate:"omitempty,gt=0"`
	HeightCm       float64 `json:"height_cm"       validate:"omitempty,gt=0"`
	MedicalHistory string  `json:"medical_history" validate:"omitempty,max=2000"`
	DailyActivity  string  `json:"daily_activity"  validate:"omitempty,oneof=sedentary light moderate active extreme"`
	Class          string  `json:"class"           validate:"omitempty,oneof=glucose-guardian metabolic-warrior hypertrophy-titan pressure-regulator general"`
}

type profileResponse struct {
	ID          string             `json:"id"`
	Username    string             `json:"username"`
	Email       string             `json:"email,omitempty"`
	Biometrics  domain.Biometrics  `json:"biometrics"`
	Progression domain.Progression `json:"progression"`
	Rank        string             `json:"rank"`
	CreatedAt   time.Time          `json:"created_at"`
}

type choiceHistoryResponse struct {
	Items      []*domain.ChoiceRecord `json:"items"`
	Total      int64                  `json:"total"`
	Page       int                    `json:"page"`
	Limit      int                    `json:"limit"`
	TotalPages int                    `json:"total_pages"`
}

type weeklyReportResponse struct {
	Scans       int64 `json:"scans"`
	GoodChoices int64 `json:"good_choices"`
	BadChoices  int64 `json:"bad_choices"`
	HealthScore int   `json:"health_score"`
}

func toProfileResponse(p *domain.Player) profileResponse {
	return profileResponse{
		ID:          p.ID,
		Username:    p.Username,
		Email:       p.Email,
		Biometrics:  p.Biometrics,
		Progression: p.Progression,
		Rank:        string(p.Progression.Rank()),
		CreatedAt:   p.CreatedAt,
	}
}

// GetProfile handles GET /v1/profile.
//
// @Summary      Get the authenticated player's profile
// @Tags         players
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/profile [get]
func (h *PlayerHandler) GetProfile(c echo.Context) error {
	playerID, _, err := ctxPlayer(c)
	if err != nil {
		return err
	}

	player, err := h.service.GetProfile(c.Request().Context(), playerID)
	if err != nil {
		return playerError(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResponse(player))
}

// UpdateProfile handles PUT /v1/profile — the onboarding questionnaire.
//
// @Summary      Update biometrics and class archetype
// @Tags         players
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      updateBiometricsRequest  true  "Onboarding answers"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/profile [put]
func (h *PlayerHandler) UpdateProfile(c echo.Context) error {
	var req updateBiometricsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	playerID, _, err := ctxPlayer(c)
	if err != nil {
		return err
	}

	player, err := h.service.UpdateBiometrics(c.Request().Context(), ports.UpdateBiometricsInput{
		PlayerID:       playerID,
		Age:            req.Age,
		WeightKg:       req.WeightKg,
		HeightCm:       req.HeightCm,
		MedicalHistory: req.MedicalHistory,
		DailyActivity:  req.DailyActivity,
		Class:          req.Class,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidActivity) || errors.Is(err, domain.ErrInvalidClass) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return playerError(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResponse(player))
}

// ListChoices handles GET /v1/choices — the calendar/history feed.
//
// @Summary      List the player's committed choices
// @Tags         players
// @Produce      json
// @Security     BearerAuth
// @Param        page       query     int     false  "1-based page"
// @Param        limit      query     int     false  "page size (max 100)"
// @Param        date_from  query     string  false  "RFC3339 lower bound"
// @Param        date_to    query     string  false  "RFC3339 upper bound"
// @Success      200  {object}  choiceHistoryResponse
// @Failure      400  {object}  errorResponse
// @Router       /v1/choices [get]
func (h *PlayerHandler) ListChoices(c echo.Context) error {
	playerID, _, err := ctxPlayer(c)
	if err != nil {
		return err
	}

	filter := ports.ChoiceFilter{PlayerID: playerID}
	filter.Page, _ = strconv.Atoi(c.QueryParam("page"))
	filter.Limit, _ = strconv.Atoi(c.QueryParam("limit"))

	if raw := c.QueryParam("date_from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "date_from must be RFC3339"})
		}
		filter.DateFrom = t
	}
	if raw := c.QueryParam("date_to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "date_to must be RFC3339"})
		}
		filter.DateTo = t
	}

	page, err := h.service.ListChoices(c.Request().Context(), filter)
	if err != nil {
		return playerError(c, err)
	}

	items := page.Items
	if items == nil {
		items = []*domain.ChoiceRecord{}
	}
	return c.JSON(http.StatusOK, choiceHistoryResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}

// WeeklyReport handles GET /v1/report/weekly.
//
// @Summary      Aggregate the last seven days of choices
// @Tags         players
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  weeklyReportResponse
// @Router       /v1/report/weekly [get]
func (h *PlayerHandler) WeeklyReport(c echo.Context) error {
	playerID, _, err := ctxPlayer(c)
	if err != nil {
		return err
	}

	report, err := h.service.WeeklyReport(c.Request().Context(), playerID)
	if err != nil {
		return playerError(c, err)
	}
	return c.JSON(http.StatusOK, weeklyReportResponse{
		Scans:       report.Scans,
		GoodChoices: report.GoodChoices,
		BadChoices:  report.BadChoices,
		HealthScore: report.HealthScore,
	})
}

// GetByUsername handles GET /v1/players/:username — admin lookup.
//
// @Summary      Get any player's profile by username
// @Tags         players
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Player username"
// @Success      200       {object}  profileResponse
// @Failure      403       {object}  errorResponse
// @Failure      404       {object}  errorResponse
// @Router       /v1/players/{username} [get]
func (h *PlayerHandler) GetByUsername(c echo.Context) error {
	player, err := h.service.GetByUsername(c.Request().Context(), c.Param("username"))
	if err != nil {
		return playerError(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResponse(player))
}

func playerError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "player not found"})
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "temporarily unavailable"})
	}
	return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
}
