package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/littlegems/admissions/internal/db"
	"github.com/littlegems/admissions/internal/models"
	"github.com/littlegems/admissions/internal/services"
	"github.com/littlegems/admissions/internal/validation"
)

// ApplyHandler serves the application submission and the success/tracking
// endpoints behind it.
type ApplyHandler struct {
	Submission *services.Submission
	Log        *zap.Logger
}

// POST /apply/submit
// Requires an authenticated, verified session (middleware). The full draft
// is re-validated here regardless of what the client checked.
func (h *ApplyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)

	var form validation.ApplicationForm
	if err := readJSON(r, &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ref, err := h.Submission.Submit(r.Context(), user.ID, &form)
	if err != nil {
		var fieldErrs validation.FieldErrors
		if errors.As(err, &fieldErrs) {
			writeFieldErrors(w, fieldErrs)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to submit application")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":          true,
		"reference_number": ref,
		"message":          "Application submitted successfully",
	})
}

// GET /apply/success?ref=LGS-xxxxxx
// The success view is not directly linkable without a reference: a missing
// or unknown ref bounces back to the entry point.
func (h *ApplyHandler) Success(w http.ResponseWriter, r *http.Request) {
	ref := r.URL.Query().Get("ref")
	if ref == "" {
		http.Redirect(w, r, "/apply", http.StatusSeeOther)
		return
	}

	var app models.Application
	if err := db.Conn().Where("reference_number = ?", ref).First(&app).Error; err != nil {
		http.Redirect(w, r, "/apply", http.StatusSeeOther)
		return
	}

	var count int64
	_ = db.Conn().Model(&models.ApplicationChild{}).Where("application_id = ?", app.ID).Count(&count).Error

	writeJSON(w, http.StatusOK, map[string]any{
		"reference_number": app.ReferenceNumber,
		"status":           app.Status,
		"submitted_at":     app.SubmittedAt,
		"parent_full_name": app.ParentFullName,
		"children":         count,
	})
}

// GET /apply/qr/{ref}.png
// QR of the tracking URL so the confirmation can be scanned from print.
func (h *ApplyHandler) QR(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	if ref == "" {
		http.NotFound(w, r)
		return
	}
	// ensure the reference exists
	var app models.Application
	if err := db.Conn().Where("reference_number = ?", ref).First(&app).Error; err != nil {
		http.NotFound(w, r)
		return
	}

	url := "http://" + r.Host + "/apply/success?ref=" + ref

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, "failed to generate qr", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
