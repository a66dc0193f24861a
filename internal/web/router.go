package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/littlegems/admissions/internal/handlers"
)

// Deps are the constructed handlers the router wires up.
type Deps struct {
	Auth  *handlers.AuthHandler
	Apply *handlers.ApplyHandler
}

func Router(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handlers.Health)

	// --- Account: signup + verification ---
	r.Post("/auth/signup", d.Auth.Signup)
	r.Post("/auth/signin", d.Auth.Signin)
	r.Post("/auth/resend-verification", d.Auth.ResendVerification)
	r.Post("/auth/verify", d.Auth.Verify)
	r.Get("/auth/callback", d.Auth.Callback)

	// --- Application submission (verified accounts only) ---
	r.Group(func(pr chi.Router) {
		pr.Use(d.Auth.RequireUser)
		pr.Use(d.Auth.RequireVerified)
		pr.Post("/apply/submit", d.Apply.Submit)
	})

	// Success view contract: reference comes in the query; QR for print.
	r.Get("/apply/success", d.Apply.Success)
	r.Get("/apply/qr/{ref}.png", d.Apply.QR)

	// --- Admin exports (with login + guard) ---
	r.Post("/admin/login", handlers.AdminLogin)
	r.Group(func(ar chi.Router) {
		ar.Use(handlers.RequireAdmin)
		ar.Get("/admin/applications.csv", handlers.ApplicationsCSV)
		ar.Get("/admin/applications.xlsx", handlers.ApplicationsXLSX)
	})

	return r
}
