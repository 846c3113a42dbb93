package context

import (
	"github.com/labstack/echo/v4"
)

// SetIdentity stores the authenticated user's id and email in echo.Context.
// The authorization middleware calls this after verifying the bearer token;
// the identity lives only for the duration of the request.
func SetIdentity(c echo.Context, userID int64, email string) {
	c.Set(string(KeyUserID), userID)
	c.Set(string(KeyUserEmail), email)
}

// GetUserID extracts the authenticated user's id from echo.Context.
// The second return value reports whether an id was present.
func GetUserID(c echo.Context) (int64, bool) {
	id, ok := c.Get(string(KeyUserID)).(int64)
	return id, ok
}

// GetUserEmail extracts the authenticated user's email from echo.Context.
func GetUserEmail(c echo.Context) (string, bool) {
	email, ok := c.Get(string(KeyUserEmail)).(string)
	return email, ok
}
