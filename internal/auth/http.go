// ABOUTME: HTTP middleware for bearer-token authentication on API endpoints
// ABOUTME: Extracts the JWT from the Authorization header and adds identity to context

package auth

import (
	"net/http"
	"strings"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// HTTPAuthMiddleware creates an HTTP middleware that verifies bearer tokens
// and attaches an AuthContext to the request context. Authorization failures
// are returned as-is with 401 semantics, never masked.
func HTTPAuthMiddleware(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				writeAuthError(w, errMsg)
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				writeAuthError(w, "invalid token")
				return
			}

			ac := &AuthContext{
				UserID: userID,
				Token:  token,
			}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), ac)))
		})
	}
}

// writeAuthError writes a 401 response with the error taxonomy body used by
// the chat API.
func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"` + msg + `","kind":"authorization_error"}`))
}
