package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// ctxPlayer extracts the auth claims injected by the Auth middleware.
// A missing role means the middleware never ran; a player-role token without
// a subject id cannot be mapped to a profile. Both are rejected as 401.
func ctxPlayer(c echo.Context) (playerID, role string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	playerID, _ = c.Get("player_id").(string)
	if role == domain.RolePlayer && playerID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing player identity")
	}

	return playerID, role, nil
}
