package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"memantra/config"
	"memantra/internal/domain/service"
)

const minSecretLength = 32

// Placeholder secrets that must never reach a real deployment. The
// constructor rejects them outside the test environment.
var placeholderSecrets = map[string]struct{}{
	"secret":          {},
	"changeme":        {},
	"change-me":       {},
	"your-secret-key": {},
	"jwt-secret":      {},
	"jwt_secret":      {},
	"dev-secret":      {},
}

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
type jwtService struct {
	secret string
	ttl    time.Duration
}

// NewJWTService is the constructor for jwtService. It fails fast on an absent
// secret, and outside the "test" environment it also refuses placeholder or
// short secrets so an insecure deployment never starts.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	secret := cfg.JWT.Secret
	if secret == "" {
		return nil, errors.New("jwt secret must be provided")
	}

	if cfg.Env.Env != "test" {
		if _, known := placeholderSecrets[strings.ToLower(secret)]; known {
			return nil, errors.New("jwt secret is a known placeholder value")
		}
		if len(secret) < minSecretLength {
			return nil, errors.Errorf("jwt secret must be at least %d characters", minSecretLength)
		}
	}

	ttl, err := parseExpiry(cfg.JWT.ExpiresIn)
	if err != nil {
		return nil, err
	}

	return &jwtService{
		secret: secret,
		ttl:    ttl,
	}, nil
}

// Issue creates a signed HS256 token carrying the user identity claims.
func (s *jwtService) Issue(userID int64, email string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   strconv.FormatInt(userID, 10), // Subject (who the token is for)
		"email": email,
		"iat":   now.Unix(),            // Issued At
		"exp":   now.Add(s.ttl).Unix(), // Expiration Time
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", errors.Wrap(err, "failed to sign token")
	}

	return signed, nil
}

// Verify checks the token's signature and expiry and extracts the identity claims.
func (s *jwtService) Verify(tokenString string) (*service.TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse token")
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("failed to parse token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, errors.New("subject claim missing from token")
	}
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, errors.Wrap(err, "invalid subject claim in token")
	}

	email, _ := claims["email"].(string)

	return &service.TokenClaims{
		UserID: userID,
		Email:  email,
	}, nil
}

// parseExpiry accepts a plain number of seconds ("86400") or a Go duration
// string ("24h"). An empty value falls back to one day.
func parseExpiry(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 24 * time.Hour, nil
	}

	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if seconds <= 0 {
			return 0, errors.Errorf("token expiry must be positive, got %d seconds", seconds)
		}

		return time.Duration(seconds) * time.Second, nil
	}

	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid token expiry %q", raw)
	}
	if ttl <= 0 {
		return 0, errors.Errorf("token expiry must be positive, got %s", ttl)
	}

	return ttl, nil
}
