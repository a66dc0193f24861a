package handlers

import (
	"errors"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/littlegems/admissions/internal/auth"
	"github.com/littlegems/admissions/internal/models"
	"github.com/littlegems/admissions/internal/ratelimit"
)

// AuthHandler serves signup, signin, verification, and resend.
type AuthHandler struct {
	Auth    *auth.Service
	Resends ratelimit.Limiter
	Log     *zap.Logger
}

func setSession(w http.ResponseWriter, user *models.User) error {
	tok, err := auth.SignSession(user.ID, user.Email, user.FullName)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	user, err := h.Auth.SignUp(r.Context(), body.Email, body.Password, body.FullName)
	switch {
	case errors.Is(err, auth.ErrEmailInUse):
		writeError(w, http.StatusConflict, "Email already registered")
		return
	case errors.Is(err, auth.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	case errors.Is(err, auth.ErrBadSignup):
		writeError(w, http.StatusBadRequest, "Validation failed")
		return
	case err != nil:
		h.Log.Error("signup failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	if err := setSession(w, user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    map[string]string{"id": user.ID, "email": user.Email},
	})
}

// POST /auth/signin
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	user, err := h.Auth.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err := setSession(w, user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"verified": user.Verified(),
	})
}

// POST /auth/resend-verification
// Body {email?}; falls back to the session email. Rate-limited per address.
func (h *AuthHandler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	_ = readJSON(r, &body) // empty body is fine

	email := body.Email
	var sessionUser *models.User
	if tok := sessionToken(r); tok != "" {
		if claims, err := auth.ParseSession(tok); err == nil {
			if u, err := h.Auth.GetUser(r.Context(), claims.Subject); err == nil {
				sessionUser = u
				if email == "" {
					email = u.Email
				}
			}
		}
	}
	if email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}
	if sessionUser != nil && sessionUser.Verified() {
		writeError(w, http.StatusBadRequest, "Email is already verified")
		return
	}

	allowed, err := h.Resends.Allow(r.Context(), email)
	if err != nil {
		h.Log.Error("rate limit check failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}
	if !allowed {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please wait before trying again.")
		return
	}

	switch err := h.Auth.ResendVerification(r.Context(), email); {
	case errors.Is(err, auth.ErrAlreadyVerified):
		writeError(w, http.StatusBadRequest, "Email is already verified")
	case errors.Is(err, auth.ErrUserNotFound):
		// Don't leak which addresses have accounts.
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	case err != nil:
		h.Log.Error("resend verification failed", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Failed to resend verification email")
	default:
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Verification email sent successfully",
		})
	}
}

// POST /auth/verify
// Body {email?, token}: the manual token-paste path of the gate.
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Token string `json:"token"`
	}
	if err := readJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	user, err := h.Auth.VerifyToken(r.Context(), body.Email, body.Token)
	switch {
	case errors.Is(err, auth.ErrAlreadyVerified):
		writeError(w, http.StatusBadRequest, "Email is already verified")
		return
	case err != nil:
		writeError(w, http.StatusBadRequest, "Invalid or expired token")
		return
	}

	if err := setSession(w, user); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GET /auth/callback?token=...
// Target of the emailed verification link; lands on the form when the token
// is good and back on the gate with an error code when it is not.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Redirect(w, r, "/apply/verify-email?error=invalid_request", http.StatusSeeOther)
		return
	}

	user, err := h.Auth.VerifyToken(r.Context(), "", token)
	switch {
	case errors.Is(err, auth.ErrAlreadyVerified):
		http.Redirect(w, r, "/apply/form", http.StatusSeeOther)
		return
	case err != nil:
		http.Redirect(w, r, "/apply/verify-email?error="+url.QueryEscape("expired"), http.StatusSeeOther)
		return
	}

	if err := setSession(w, user); err != nil {
		http.Redirect(w, r, "/apply/verify-email?error=session_error", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/apply/form", http.StatusSeeOther)
}
