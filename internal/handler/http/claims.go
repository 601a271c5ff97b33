package http

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

// userIDFromRequest returns the user_id claim of the verified token.
// AuthRequired guarantees it is present on authenticated routes.
func userIDFromRequest(r *http.Request) (string, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	userID, ok := claims["user_id"].(string)
	return userID, ok && userID != ""
}
