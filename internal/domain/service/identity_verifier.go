package service

import "context"

// VerifiedIdentity holds the claims extracted from a successfully verified
// third-party identity token.
type VerifiedIdentity struct {
	Subject string // The provider's stable user id (Google's 'sub' claim).
	Email   string // Verified email address.
	Name    string // Display name, may be empty.
}

// IdentityVerifier validates an identity token issued by a federated provider
// against a trusted issuer and the configured audience.
type IdentityVerifier interface {
	// VerifyIDToken verifies the raw token and returns its identity claims.
	// Any failure (malformed token, untrusted issuer, audience mismatch,
	// expiry, unverified email) is reported as an error; callers do not
	// distinguish between the causes.
	VerifyIDToken(ctx context.Context, idToken string) (*VerifiedIdentity, error)
}
