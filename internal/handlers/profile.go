package handlers

import (
	"errors"
	"net/http"

	"github.com/AnshRaj112/studylink-backend/internal/models"
	"github.com/AnshRaj112/studylink-backend/internal/services"
	"github.com/AnshRaj112/studylink-backend/pkg/utils"
)

type profileData struct {
	Account      *models.User
	DaysAsMember int
	Submissions  int
	Success      string
}

// loadProfile fills in the account details for the logged-in user. A session whose
// user no longer exists is logged out.
func (h *Handler) loadProfile(userID, email string) (profileData, error) {
	user, err := h.users.FindByID(userID)
	if err != nil {
		return profileData{}, err
	}
	n, err := h.contacts.CountByEmail(email)
	if err != nil {
		return profileData{}, err
	}
	return profileData{
		Account:      user,
		DaysAsMember: user.DaysAsMember(models.NewTimestamp(h.now())),
		Submissions:  n,
	}, nil
}

func (h *Handler) profileFault(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrUserNotFound) {
		sessionFrom(r).Logout()
		h.redirect(w, r, "/login")
		return
	}
	msg := h.fault(err, "load profile", "Failed to load your profile. Please try again.")
	h.render(w, r, http.StatusInternalServerError, "profile", "Profile", []string{msg}, profileData{})
}

// Profile handles GET /profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, _ := sessionFrom(r).Identity()
	data, err := h.loadProfile(id.UserID, id.Email)
	if err != nil {
		h.profileFault(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "profile", "Profile", nil, data)
}

// UpdateProfile handles POST /profile with action=update_profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r)
	id, _ := sc.Identity()

	var (
		status = http.StatusOK
		errs   []string
		notice string
	)

	switch {
	case r.PostFormValue("action") != "update_profile":
		status, errs = http.StatusBadRequest, []string{msgInvalidRequest}
	case !sc.VerifyCSRFToken(r.PostFormValue("csrf_token")):
		status, errs = http.StatusForbidden, []string{"Invalid security token. Please try again."}
	default:
		form := profileForm{
			Name:  utils.CleanInput(r.PostFormValue("name")),
			Email: utils.CleanInput(r.PostFormValue("email")),
		}
		if verrs := utils.ValidateForm(form, profileMessages); len(verrs) > 0 {
			status, errs = http.StatusUnprocessableEntity, messages(verrs)
			break
		}

		user, err := h.users.UpdateProfile(id.UserID, form.Name, form.Email)
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			status, errs = http.StatusConflict, []string{"This email address is already registered to another account."}
		case errors.Is(err, services.ErrUserNotFound):
			sc.Logout()
			h.redirect(w, r, "/login")
			return
		case err != nil:
			status, errs = http.StatusInternalServerError,
				[]string{h.fault(err, "update profile", "Failed to update profile. Please try again.")}
		default:
			sc.SetProfile(user.Name, user.Email)
			id.Email = user.Email
			notice = "Profile updated successfully!"
		}
	}

	data, err := h.loadProfile(id.UserID, id.Email)
	if err != nil {
		h.profileFault(w, r, err)
		return
	}
	data.Success = notice
	h.render(w, r, status, "profile", "Profile", errs, data)
}
