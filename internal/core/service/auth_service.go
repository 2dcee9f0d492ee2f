package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

// AuthService implements registration and login.
type AuthService struct {
	users     ports.AuthRepository
	players   ports.PlayerRepository
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(users ports.AuthRepository, players ports.PlayerRepository, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, players: players, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Register creates the auth user and, for player-role users, the starting
// profile (vitality 100, level 1, no experience).
func (s *AuthService) Register(ctx context.Context, username, password, email, role string) (*domain.User, *domain.Player, error) {
	if role == "" {
		role = domain.RolePlayer
	}
	if username == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}
	if role != domain.RoleAdmin && role != domain.RolePlayer {
		return nil, nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        email,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	var player *domain.Player
	if role == domain.RolePlayer {
		player, err = s.players.Create(ctx, domain.NewPlayer(username, email, now))
		if err != nil {
			s.log.Error().Err(err).Str("username", username).Msg("failed to create player profile")
			return nil, nil, err
		}
	}

	s.log.Info().Str("username", username).Str("role", role).Msg("user registered")
	return created, player, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
