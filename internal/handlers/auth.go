package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/studylink-backend/internal/services"
	"github.com/AnshRaj112/studylink-backend/pkg/utils"
)

type registerData struct {
	Name    string
	Email   string
	Success bool
}

// RegisterPage handles GET /register.
func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r).IsAuthenticated() {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "register", "Register", nil, registerData{})
}

// Register handles POST /register.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r)
	if sc.IsAuthenticated() {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	form := registerForm{
		Name:            utils.CleanInput(r.PostFormValue("name")),
		Email:           utils.CleanInput(r.PostFormValue("email")),
		Password:        r.PostFormValue("password"),
		ConfirmPassword: r.PostFormValue("confirm_password"),
	}
	data := registerData{Name: form.Name, Email: form.Email}

	if !sc.VerifyCSRFToken(r.PostFormValue("csrf_token")) {
		h.render(w, r, http.StatusForbidden, "register", "Register", []string{msgInvalidRequest}, data)
		return
	}

	if errs := utils.ValidateForm(form, registerMessages); len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "register", "Register", messages(errs), data)
		return
	}

	_, err := h.users.Register(form.Name, form.Email, form.Password)
	switch {
	case errors.Is(err, services.ErrUserExists):
		h.render(w, r, http.StatusConflict, "register", "Register",
			[]string{"An account with this email already exists."}, data)
		return
	case err != nil:
		msg := h.fault(err, "register user", "Registration failed. Please try again.")
		h.render(w, r, http.StatusInternalServerError, "register", "Register", []string{msg}, data)
		return
	}

	h.render(w, r, http.StatusOK, "register", "Register", nil, registerData{Success: true})
}

type loginData struct {
	Email      string
	Redirect   string
	Registered bool
	LoggedOut  bool
}

func loginDataFrom(r *http.Request) loginData {
	q := r.URL.Query()
	return loginData{
		Redirect:   safeRedirect(q.Get("redirect"), ""),
		Registered: q.Get("registered") == "1",
		LoggedOut:  q.Get("logout") == "1",
	}
}

// LoginPage handles GET /login.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if sessionFrom(r).IsAuthenticated() {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "login", "Login", nil, loginDataFrom(r))
}

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r)
	if sc.IsAuthenticated() {
		http.Redirect(w, r, "/profile", http.StatusSeeOther)
		return
	}

	form := loginForm{
		Email:    utils.CleanInput(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	data := loginDataFrom(r)
	data.Email = form.Email
	if target := r.PostFormValue("redirect"); target != "" {
		data.Redirect = safeRedirect(target, "")
	}

	if !sc.VerifyCSRFToken(r.PostFormValue("csrf_token")) {
		h.render(w, r, http.StatusForbidden, "login", "Login", []string{msgInvalidRequest}, data)
		return
	}

	if errs := utils.ValidateForm(form, loginMessages); len(errs) > 0 {
		h.render(w, r, http.StatusUnprocessableEntity, "login", "Login", messages(errs), data)
		return
	}

	user, err := h.users.VerifyLogin(form.Email, form.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		h.log.Info().Msg("failed login attempt")
		h.render(w, r, http.StatusUnauthorized, "login", "Login", []string{"Invalid email or password."}, data)
		return
	case err != nil:
		msg := h.fault(err, "verify login", "Login failed. Please try again.")
		h.render(w, r, http.StatusInternalServerError, "login", "Login", []string{msg}, data)
		return
	}

	sc.Login(user)
	h.log.Info().Str("user_id", user.ID).Msg("user logged in")
	h.redirect(w, r, safeRedirect(data.Redirect, "/profile"))
}

// LogoutPage handles GET /logout. It only asks for confirmation so a
// cross-site link or image cannot end the session.
func (h *Handler) LogoutPage(w http.ResponseWriter, r *http.Request) {
	if !sessionFrom(r).IsAuthenticated() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "logout", "Logout", nil, nil)
}

// Logout handles POST /logout, which must carry the CSRF token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r)
	id, ok := sc.Identity()
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	if !sc.VerifyCSRFToken(r.PostFormValue("csrf_token")) {
		h.render(w, r, http.StatusForbidden, "logout", "Logout", []string{msgInvalidRequest}, nil)
		return
	}

	sc.Logout()
	h.log.Info().Str("user_id", id.UserID).Msg("user logged out")
	h.redirect(w, r, "/login?logout=1")
}
