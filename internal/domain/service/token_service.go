package service

// TokenClaims is the identity payload carried inside an issued bearer token.
type TokenClaims struct {
	UserID int64
	Email  string
}

// TokenService issues and verifies signed, expiring bearer tokens.
// Validity is derived purely from the signature and expiry; there is no
// revocation list or session store.
type TokenService interface {
	// Issue produces a signed token bound to the given user identity.
	Issue(userID int64, email string) (string, error)

	// Verify checks the token's signature and expiry and returns its claims.
	// Every failure mode (expired, malformed, tampered, wrong algorithm)
	// returns a non-nil error; callers must treat all errors uniformly.
	Verify(tokenString string) (*TokenClaims, error)
}
