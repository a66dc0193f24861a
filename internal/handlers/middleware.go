package handlers

import (
	"context"
	"net/http"
	"os"
	"strings"

	"github.com/littlegems/admissions/internal/auth"
	"github.com/littlegems/admissions/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

// CurrentUser returns the authenticated user attached by RequireUser.
func CurrentUser(r *http.Request) *models.User {
	u, _ := r.Context().Value(userKey).(*models.User)
	return u
}

// sessionToken pulls the token from the session cookie or a Bearer header.
func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(auth.SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	h := r.Header.Get("Authorization")
	if parts := strings.SplitN(h, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// RequireUser blocks unauthenticated requests and attaches the fresh user
// record to the context.
func (h *AuthHandler) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := sessionToken(r)
		if tok == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		claims, err := auth.ParseSession(tok)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		user, err := h.Auth.GetUser(r.Context(), claims.Subject)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// RequireVerified additionally demands a confirmed email; unverified users
// belong on the verification gate, not here.
func (h *AuthHandler) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil || !user.Verified() {
			writeError(w, http.StatusUnauthorized, "Email not verified")
			return
		}
		next.ServeHTTP(w, r)
	})
}

const adminCookieName = "admin_session"

// Default password if env not set
func adminPassword() string {
	if p := os.Getenv("ADMIN_PASSWORD"); p != "" {
		return p
	}
	return "admin123" // change in production: export ADMIN_PASSWORD=...
}

// RequireAdmin guards the export endpoints with the shared admin session.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(adminCookieName)
		if err != nil || c.Value != "ok" {
			writeError(w, http.StatusUnauthorized, "admin login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// POST /admin/login
func AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if body.Password != adminPassword() {
		writeError(w, http.StatusUnauthorized, "invalid password")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "ok",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
