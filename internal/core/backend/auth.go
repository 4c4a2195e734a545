// Package backend implements the reference blog API the client talks to.
package backend

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
	"github.com/inkpress/blogkit/internal/metrics"
)

var _ ports.AuthService = (*AuthService)(nil)

// AuthService checks credentials and signs HS256 tokens whose subject is
// the user id.
type AuthService struct {
	users     ports.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAuthService(users ports.UserRepository, jwtSecret string, tokenTTL time.Duration) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

// Register creates an author account with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Seed registers every username/password pair that does not exist yet.
func (s *AuthService) Seed(ctx context.Context, accounts map[string]string) error {
	for username, password := range accounts {
		if _, err := s.Register(ctx, username, password); err != nil && !errors.Is(err, domain.ErrUserExists) {
			return err
		}
	}
	return nil
}

// Login returns a signed token. Unknown users and wrong passwords are both
// reported as domain.ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	token, err := s.login(ctx, username, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return "", err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return token, nil
}

func (s *AuthService) login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.ErrUnauthorized
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, domain.ErrUserNotFound) {
		return "", domain.ErrUnauthorized
	}
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", domain.ErrUnauthorized
	}
	return s.generateToken(user)
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
