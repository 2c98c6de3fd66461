package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/AnshRaj112/studylink-backend/internal/handlers"
	"github.com/AnshRaj112/studylink-backend/internal/middleware"
)

// SetupRoutes registers the site's pages. The session middleware must
// already be on r.
func SetupRoutes(r chi.Router, h *handlers.Handler, trustProxy bool) {
	r.Get("/", h.Home)

	// Account routes
	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)
	r.Get("/logout", h.LogoutPage)
	r.Post("/logout", h.Logout)

	// Logged-in only
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin)

		r.Get("/profile", h.Profile)
		r.Post("/profile", h.UpdateProfile)

		r.With(middleware.SubmissionRateLimit(trustProxy)).Post("/contact", h.SubmitContact)
		r.Get("/contact", h.ContactPage)
		r.Get("/api/contacts", h.ListContacts)
	})
}
