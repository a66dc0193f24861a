package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/littlegems/admissions/internal/validation"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeFieldErrors is the 400 shape for validation failures: a message plus
// the ordered field-path errors.
func writeFieldErrors(w http.ResponseWriter, errs validation.FieldErrors) {
	writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":  "Invalid form data",
		"errors": errs,
	})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	return dec.Decode(v)
}
