package ports

import (
	"context"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// AuthService handles registration and login. Registering a player-role user
// also creates the starting player profile.
type AuthService interface {
	Register(ctx context.Context, username, password, email, role string) (*domain.User, *domain.Player, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
