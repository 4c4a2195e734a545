package service

import (
	"context"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
	"github.com/inkpress/blogkit/internal/httpclient"
)

var _ ports.AuthAPI = (*AuthService)(nil)

// AuthService logs in against the API. Persisting the returned token is
// the caller's job.
type AuthService struct {
	http *httpclient.Client
}

func NewAuthService(c *httpclient.Client) *AuthService {
	return &AuthService{http: c}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.LoginResult, error) {
	resp, err := s.http.PostJSON(ctx, "/api/auth/login", domain.Credentials{Username: username, Password: password})
	if err != nil {
		return nil, err
	}
	var out domain.LoginResult
	if err := httpclient.DecodeJSON(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
