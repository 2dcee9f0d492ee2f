package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResponse struct {
	Token  string         `json:"token,omitempty"`
	User   *domain.User   `json:"user,omitempty"`
	Player *domain.Player `json:"player,omitempty"`
}

// Register creates a new account plus the starting player profile.
//
// @Summary      Register a new player
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	user, player, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Email, domain.RolePlayer)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, domain.ErrUserExists):
			status = http.StatusConflict
		case errors.Is(err, domain.ErrInvalidCredentials):
			status = http.StatusBadRequest
		}
		return c.JSON(status, errorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusCreated, authResponse{User: user, Player: player})
}

// Login authenticates a player and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		// Do not reveal whether the username exists.
		if errors.Is(err, domain.ErrInvalidCredentials) || errors.Is(err, domain.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}

	return c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}
