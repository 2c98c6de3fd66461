package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/AnshRaj112/studylink-backend/internal/database"
	"github.com/AnshRaj112/studylink-backend/internal/models"
	"github.com/AnshRaj112/studylink-backend/internal/services"
	"github.com/AnshRaj112/studylink-backend/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = []string{"home", "register", "login", "logout", "profile", "contact"}

// Handler renders the site's pages on top of the user directory and contact log.
type Handler struct {
	users    *services.UserDirectory
	contacts *services.ContactLog
	appName  string
	log      zerolog.Logger
	tmpl     map[string]*template.Template
	now      func() time.Time
}

func New(users *services.UserDirectory, contacts *services.ContactLog, appName string, log zerolog.Logger) (*Handler, error) {
	funcs := template.FuncMap{
		"date": func(ts models.Timestamp, layout string) string {
			if ts.IsZero() {
				return ""
			}
			return ts.Local().Format(layout)
		},
		"list": func(n ...int) []int { return n },
	}

	tmpl := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+p+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", p, err)
		}
		tmpl[p] = t
	}

	return &Handler{
		users:    users,
		contacts: contacts,
		appName:  appName,
		log:      log.With().Str("component", "handlers").Logger(),
		tmpl:     tmpl,
		now:      time.Now,
	}, nil
}

// page is what every template receives.
type page struct {
	AppName   string
	Title     string
	Page      string
	User      *models.Identity
	CSRFToken string
	Errors    []string
	Data      any
}

func sessionFrom(r *http.Request) *session.Context {
	return session.FromContext(r.Context())
}

// render saves the session, then writes the named page with status.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, title string, errs []string, data any) {
	sc := sessionFrom(r)

	p := page{AppName: h.appName, Title: title, Page: name, Errors: errs, Data: data}
	if id, ok := sc.Identity(); ok {
		p.User = &id
	}

	tok, err := sc.IssueCSRFToken()
	if err != nil {
		h.log.Error().Err(err).Msg("issue csrf token")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	p.CSRFToken = tok

	var buf bytes.Buffer
	if err := h.tmpl[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		h.log.Error().Err(err).Str("page", name).Msg("render template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	if err := sc.Save(w); err != nil {
		h.log.Error().Err(err).Msg("save session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// redirect saves the session and sends a 303 to target.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, target string) {
	if err := sessionFrom(r).Save(w); err != nil {
		h.log.Error().Err(err).Msg("save session")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// fault logs an unexpected error (storage faults above all) and returns the
// message shown to the visitor.
func (h *Handler) fault(err error, op, msg string) string {
	var se *database.StorageError
	if errors.As(err, &se) {
		h.log.Error().Err(se.Err).Str("op", se.Op).Str("collection", se.Collection).Msg(op)
	} else {
		h.log.Error().Err(err).Msg(op)
	}
	return msg
}

// safeRedirect only allows local absolute paths so ?redirect= cannot send a
// visitor off-site.
func safeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}

// Health handles GET /health.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}

// Home handles GET /.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "home", "Home", nil, nil)
}
