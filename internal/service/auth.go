package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"jsmc-rsvp/internal/config"
	"jsmc-rsvp/internal/logger"
	"jsmc-rsvp/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService checks the single admin account from config and issues JWTs.
type AuthService struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	now          func() time.Time
}

func NewAuthService(cfg config.AuthConfig) *AuthService {
	s := &AuthService{
		username:     cfg.Username,
		passwordHash: []byte(cfg.PasswordHash),
		secret:       []byte(cfg.JWTSecret),
		ttl:          cfg.TokenTTL,
		now:          time.Now,
	}
	if s.ttl <= 0 {
		s.ttl = 12 * time.Hour
	}
	if s.Enabled() && len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			panic(fmt.Sprintf("generate jwt secret: %v", err))
		}
		logger.Warn("auth.ephemeral_secret", "hint", "set auth.jwt_secret so tokens survive restarts")
	}
	return s
}

// Enabled reports whether admin routes require a token.
func (s *AuthService) Enabled() bool { return len(s.passwordHash) > 0 }

func (s *AuthService) Secret() []byte { return s.secret }

func (s *AuthService) TTL() time.Duration { return s.ttl }

func (s *AuthService) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("admin login is disabled: %w", ErrNotFound)
	}
	if username != s.username || bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) != nil {
		logger.FromContext(ctx).Warn("login.failed", "username", username)
		return nil, ErrUnauthorized
	}

	exp := s.now().Add(s.ttl)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"exp": exp.Unix(),
	}).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	logger.FromContext(ctx).Info("login.ok", "username", username)
	return &model.LoginResponse{Token: token, ExpiresAt: exp.Unix()}, nil
}
