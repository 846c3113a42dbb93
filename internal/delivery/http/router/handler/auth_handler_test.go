package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"memantra/internal/delivery/http/middleware"
	"memantra/internal/delivery/http/router"
	"memantra/internal/delivery/http/router/handler"
	"memantra/internal/delivery/http/validator"
	"memantra/internal/domain/entity"
	domainerrors "memantra/internal/domain/errors"
	"memantra/internal/domain/service"
	"memantra/internal/usecase"
)

// stubAuthUsecase returns canned outputs so handler tests stay focused on
// binding, validation, and the response envelope.
type stubAuthUsecase struct {
	output          *usecase.AuthOutput
	current         *entity.PublicUser
	registerErr     error
	loginErr        error
	googleErr       error
	currentErr      error
	lastGoogleInput usecase.GoogleSignInInput
}

func (s *stubAuthUsecase) Register(_ context.Context, _ usecase.RegisterInput) (*usecase.AuthOutput, error) {
	return s.output, s.registerErr
}

func (s *stubAuthUsecase) Login(_ context.Context, _ usecase.LoginInput) (*usecase.AuthOutput, error) {
	return s.output, s.loginErr
}

func (s *stubAuthUsecase) GoogleSignIn(_ context.Context, input usecase.GoogleSignInInput) (*usecase.AuthOutput, error) {
	s.lastGoogleInput = input
	return s.output, s.googleErr
}

func (s *stubAuthUsecase) CurrentUser(_ context.Context, _ int64) (*entity.PublicUser, error) {
	return s.current, s.currentErr
}

type stubTokenService struct {
	claims *service.TokenClaims
}

func (s *stubTokenService) Issue(_ int64, _ string) (string, error) {
	return "stub-token", nil
}

func (s *stubTokenService) Verify(_ string) (*service.TokenClaims, error) {
	if s.claims == nil {
		return nil, domainerrors.ErrInvalidToken
	}

	return s.claims, nil
}

// newTestServer assembles the real routing, validation, and error handling
// around a stubbed usecase.
func newTestServer(uc usecase.AuthUsecase, tokenSvc service.TokenService) *echo.Echo {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	e := echo.New()
	e.Validator = validator.New()
	e.HTTPErrorHandler = middleware.NewErrorMiddleware(logger).HandleHTTPError

	r := router.NewRouter(router.RouterParams{
		AuthHandler:    handler.NewAuthHandler(uc, logger),
		AuthMiddleware: middleware.NewAuthMiddleware(tokenSvc, logger),
	})
	r.RegisterRoutes(e)

	return e
}

func doJSON(e *echo.Echo, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))

	return env
}

func sampleOutput() *usecase.AuthOutput {
	return &usecase.AuthOutput{
		User: &entity.PublicUser{
			ID:       42,
			Username: "walker",
			Email:    "walker@example.com",
		},
		Token: "issued-token",
	}
}

func TestRegisterEndpoint(t *testing.T) {
	t.Run("valid payload returns 201 success envelope", func(t *testing.T) {
		e := newTestServer(&stubAuthUsecase{output: sampleOutput()}, &stubTokenService{})

		rec := doJSON(e, http.MethodPost, "/auth/register",
			`{"username":"walker","email":"walker@example.com","password":"correct-horse"}`, nil)

		require.Equal(t, http.StatusCreated, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "success", env.Status)

		var data struct {
			User struct {
				UserID   int64  `json:"user_id"`
				Username string `json:"username"`
				Email    string `json:"email"`
			} `json:"user"`
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, int64(42), data.User.UserID)
		assert.Equal(t, "walker", data.User.Username)
		assert.Equal(t, "issued-token", data.Token)
	})

	t.Run("invalid email returns validation error", func(t *testing.T) {
		e := newTestServer(&stubAuthUsecase{output: sampleOutput()}, &stubTokenService{})

		rec := doJSON(e, http.MethodPost, "/auth/register",
			`{"username":"walker","email":"not-an-email","password":"correct-horse"}`, nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, "Invalid request payload", env.Message)
	})

	t.Run("short password returns validation error", func(t *testing.T) {
		e := newTestServer(&stubAuthUsecase{output: sampleOutput()}, &stubTokenService{})

		rec := doJSON(e, http.MethodPost, "/auth/register",
			`{"username":"walker","email":"walker@example.com","password":"short"}`, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("duplicate email maps to 400 with its message", func(t *testing.T) {
		e := newTestServer(&stubAuthUsecase{registerErr: domainerrors.ErrEmailTaken}, &stubTokenService{})

		rec := doJSON(e, http.MethodPost, "/auth/register",
			`{"username":"walker","email":"walker@example.com","password":"correct-horse"}`, nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "error", env.Status)
		assert.Equal(t, "Email already in use", env.Message)
	})
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("valid credentials return token", func(t *testing.T) {
		e := newTestServer(&stubAuthUsecase{output: sampleOutput()}, &stubTokenService{})

		rec := doJSON(e, http.MethodPost, "/auth/login",
			`{"email":"walker@example.com","password":"correct-horse"}`, nil)

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "success", env.Status)
	})

	t.Run("rejected credentials return 401 with uniform message", func(t *testing.T) {
		e := newTestServer(&stubAuthUsecase{loginErr: domainerrors.ErrInvalidCredentials}, &stubTokenService{})

		rec := doJSON(e, http.MethodPost, "/auth/login",
			`{"email":"walker@example.com","password":"battery-staple"}`, nil)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "Invalid credentials", env.Message)
	})
}

func TestGoogleSignInEndpoint(t *testing.T) {
	t.Run("missing token maps to 400 with its message", func(t *testing.T) {
		e := newTestServer(&stubAuthUsecase{googleErr: domainerrors.ErrGoogleTokenRequired}, &stubTokenService{})

		rec := doJSON(e, http.MethodPost, "/auth/google", `{}`, nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "Google ID token is required", env.Message)
	})

	t.Run("verified token returns 200", func(t *testing.T) {
		e := newTestServer(&stubAuthUsecase{output: sampleOutput()}, &stubTokenService{})

		rec := doJSON(e, http.MethodPost, "/auth/google", `{"idToken":"some-google-jwt"}`, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("idToken field is forwarded verbatim", func(t *testing.T) {
		uc := &stubAuthUsecase{output: sampleOutput()}
		e := newTestServer(uc, &stubTokenService{})

		doJSON(e, http.MethodPost, "/auth/google", `{"idToken":"google-issued-jwt"}`, nil)

		assert.Equal(t, "google-issued-jwt", uc.lastGoogleInput.IDToken)
	})
}

func TestMeEndpoint(t *testing.T) {
	t.Run("authenticated request returns the account", func(t *testing.T) {
		uc := &stubAuthUsecase{current: &entity.PublicUser{ID: 42, Username: "walker", Email: "walker@example.com"}}
		tokenSvc := &stubTokenService{claims: &service.TokenClaims{UserID: 42, Email: "walker@example.com"}}
		e := newTestServer(uc, tokenSvc)

		rec := doJSON(e, http.MethodGet, "/auth/me", "", map[string]string{
			echo.HeaderAuthorization: "Bearer issued-token",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "success", env.Status)

		var user struct {
			UserID   int64  `json:"user_id"`
			Username string `json:"username"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &user))
		assert.Equal(t, int64(42), user.UserID)
	})

	t.Run("missing token returns 401", func(t *testing.T) {
		e := newTestServer(&stubAuthUsecase{}, &stubTokenService{})

		rec := doJSON(e, http.MethodGet, "/auth/me", "", nil)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("deleted account returns 404", func(t *testing.T) {
		uc := &stubAuthUsecase{currentErr: domainerrors.ErrUserNotFound}
		tokenSvc := &stubTokenService{claims: &service.TokenClaims{UserID: 42}}
		e := newTestServer(uc, tokenSvc)

		rec := doJSON(e, http.MethodGet, "/auth/me", "", map[string]string{
			echo.HeaderAuthorization: "Bearer issued-token",
		})

		require.Equal(t, http.StatusNotFound, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "User not found", env.Message)
	})
}

func TestHealthEndpoint(t *testing.T) {
	e := newTestServer(&stubAuthUsecase{}, &stubTokenService{})

	rec := doJSON(e, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "success", env.Status)
}
