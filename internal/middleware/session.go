package middleware

import (
	"net/http"
	"net/url"

	"github.com/AnshRaj112/studylink-backend/internal/session"
)

// LoadSession attaches the visitor's session context to the request.
func LoadSession(m *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sc := m.Load(r)
			next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), sc)))
		})
	}
}

// RequireLogin redirects anonymous visitors to the login page, remembering
// the page they asked for.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc := session.FromContext(r.Context())
		if sc == nil || !sc.IsAuthenticated() {
			http.Redirect(w, r, "/login?redirect="+url.QueryEscape(r.URL.Path), http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}
