package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/inkpress/blogkit/internal/core/domain"
	"github.com/inkpress/blogkit/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges credentials for a bearer token.
// POST /api/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req domain.Credentials
	if err := bindValid(c, &req); err != nil {
		return err
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, domain.LoginResult{AccessToken: token})
}
