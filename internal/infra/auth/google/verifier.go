// Package google verifies Google-issued ID tokens for the federated sign-in flow.
package google

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"

	"memantra/config"
	"memantra/internal/domain/service"
)

// validateFunc matches idtoken.Validate so the signature check can be
// substituted in tests.
type validateFunc func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)

// verifier implements service.IdentityVerifier for Google ID tokens.
type verifier struct {
	clientID string
	logger   *slog.Logger
	validate validateFunc
}

// NewVerifier creates a Google identity verifier constrained to the
// configured OAuth client ID as the expected audience. Signature, audience
// and expiry are checked against Google's published certificates by the
// hosted validator.
func NewVerifier(cfg *config.Config, logger *slog.Logger) service.IdentityVerifier {
	clientID := ""
	if cfg.GoogleOAuth != nil {
		clientID = cfg.GoogleOAuth.ClientID
	}

	return &verifier{
		clientID: clientID,
		logger:   logger,
		validate: idtoken.Validate,
	}
}

// VerifyIDToken implements service.IdentityVerifier.
func (v *verifier) VerifyIDToken(ctx context.Context, idToken string) (*service.VerifiedIdentity, error) {
	payload, err := v.validate(ctx, idToken, v.clientID)
	if err != nil {
		v.logger.Warn("Google ID token validation failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "token validation failed")
	}

	if err := verifyPayloadClaims(payload); err != nil {
		v.logger.Warn("Google ID token claims rejected", slog.Any("error", err))

		return nil, errors.Wrap(err, "token verification failed")
	}

	return &service.VerifiedIdentity{
		Subject: payload.Subject,
		Email:   claimString(payload, "email"),
		Name:    claimString(payload, "name"),
	}, nil
}

// verifyPayloadClaims enforces the identity post-conditions on a
// signature-validated payload: a Google issuer and a verified email.
func verifyPayloadClaims(payload *idtoken.Payload) error {
	if payload.Issuer != "https://accounts.google.com" && payload.Issuer != "accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if claimString(payload, "email") == "" {
		return errors.New("email claim missing")
	}

	verified, _ := payload.Claims["email_verified"].(bool)
	if !verified {
		return errors.New("email not verified")
	}

	return nil
}

func claimString(payload *idtoken.Payload, key string) string {
	s, _ := payload.Claims[key].(string)
	return s
}
