package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AnshRaj112/studylink-backend/internal/models"
	"github.com/AnshRaj112/studylink-backend/pkg/utils"
)

type contactData struct {
	Form        contactForm
	Submissions []models.ContactSubmission
	Total       int
	Success     bool
}

func (h *Handler) renderContact(w http.ResponseWriter, r *http.Request, status int, errs []string, data contactData) {
	subs, err := h.contacts.ListAll()
	if err != nil {
		errs = append(errs, h.fault(err, "list contacts", "Failed to load recent messages."))
		if status == http.StatusOK {
			status = http.StatusInternalServerError
		}
	}
	data.Submissions = subs
	data.Total = len(subs)
	h.render(w, r, status, "contact", "Contact", errs, data)
}

// ContactPage handles GET /contact.
func (h *Handler) ContactPage(w http.ResponseWriter, r *http.Request) {
	id, _ := sessionFrom(r).Identity()
	h.renderContact(w, r, http.StatusOK, nil, contactData{
		Form: contactForm{Name: id.Name, Email: id.Email},
	})
}

// SubmitContact handles POST /contact.
func (h *Handler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	sc := sessionFrom(r)
	id, _ := sc.Identity()

	form := contactForm{
		Name:    utils.CleanInput(r.PostFormValue("name")),
		Email:   utils.CleanInput(r.PostFormValue("email")),
		Subject: utils.CleanInput(r.PostFormValue("subject")),
		Message: utils.CleanInput(r.PostFormValue("message")),
		Rating:  atoiOrZero(r.PostFormValue("rating")),
	}

	if !sc.VerifyCSRFToken(r.PostFormValue("csrf_token")) {
		h.renderContact(w, r, http.StatusForbidden, []string{msgInvalidRequest}, contactData{Form: form})
		return
	}

	if errs := utils.ValidateForm(form, contactMessages); len(errs) > 0 {
		h.renderContact(w, r, http.StatusUnprocessableEntity, messages(errs), contactData{Form: form})
		return
	}

	_, err := h.contacts.Append(form.Name, form.Email, form.Subject, form.Message, form.Rating)
	if err != nil {
		var verr *utils.ValidationError
		if errors.As(err, &verr) {
			h.renderContact(w, r, http.StatusUnprocessableEntity, []string{verr.Message}, contactData{Form: form})
			return
		}
		msg := h.fault(err, "append contact", "Failed to submit your message. Please try again.")
		h.renderContact(w, r, http.StatusInternalServerError, []string{msg}, contactData{Form: form})
		return
	}

	h.renderContact(w, r, http.StatusOK, nil, contactData{
		Form:    contactForm{Name: id.Name, Email: id.Email},
		Success: true,
	})
}

// ContactsResponse is the JSON body of GET /api/contacts.
type ContactsResponse struct {
	Success  bool                       `json:"success"`
	Message  string                     `json:"message,omitempty"`
	Contacts []models.ContactSubmission `json:"contacts"`
	Total    int                        `json:"total"`
}

// ListContacts handles GET /api/contacts, newest first.
func (h *Handler) ListContacts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	subs, err := h.contacts.ListAll()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(ContactsResponse{
			Success:  false,
			Message:  h.fault(err, "list contacts", "Failed to fetch contacts"),
			Contacts: []models.ContactSubmission{},
		})
		return
	}

	json.NewEncoder(w).Encode(ContactsResponse{
		Success:  true,
		Contacts: subs,
		Total:    len(subs),
	})
}
