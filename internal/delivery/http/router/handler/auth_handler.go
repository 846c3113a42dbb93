// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	deliverycontext "memantra/internal/delivery/context"
	"memantra/internal/delivery/http/response"
	domainerrors "memantra/internal/domain/errors"
	"memantra/internal/usecase"
)

// registerRequest is the wire shape of a local registration.
type registerRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=30"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DeviceToken string `json:"device_token" validate:"omitempty,max=512"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// googleSignInRequest carries the ID token as issued by Google to the
// mobile client. Presence is checked in the usecase so an empty token gets
// its own message instead of the generic validation one.
type googleSignInRequest struct {
	IDToken     string `json:"idToken"`
	DeviceToken string `json:"device_token" validate:"omitempty,max=512"`
}

// authResponse is the wire shape of every successful authentication.
type authResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc     usecase.AuthUsecase
	logger *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{uc: uc, logger: logger}
}

// Register handles the local registration request.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrValidationFailed
	}
	if err := c.Validate(&req); err != nil {
		return domainerrors.ErrValidationFailed
	}

	output, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		Password:    req.Password,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, authResponse{
		User:  output.User,
		Token: output.Token,
	})
}

// Login handles the password login request.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrValidationFailed
	}
	if err := c.Validate(&req); err != nil {
		return domainerrors.ErrValidationFailed
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, authResponse{
		User:  output.User,
		Token: output.Token,
	})
}

// GoogleSignIn handles the federated sign-in request.
func (h *AuthHandler) GoogleSignIn(c echo.Context) error {
	var req googleSignInRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrValidationFailed
	}
	if err := c.Validate(&req); err != nil {
		return domainerrors.ErrValidationFailed
	}

	output, err := h.uc.GoogleSignIn(c.Request().Context(), usecase.GoogleSignInInput{
		IDToken:     req.IDToken,
		DeviceToken: req.DeviceToken,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, authResponse{
		User:  output.User,
		Token: output.Token,
	})
}

// Me returns the account behind the verified bearer token.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := deliverycontext.GetUserID(c)
	if !ok {
		return domainerrors.ErrAuthenticationRequired
	}

	user, err := h.uc.CurrentUser(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, user)
}
