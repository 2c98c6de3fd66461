package handlers

import (
	"strconv"

	"github.com/AnshRaj112/studylink-backend/pkg/utils"
)

const msgInvalidRequest = "Invalid request. Please try again."

type registerForm struct {
	Name            string `validate:"required,min=2,max=100"`
	Email           string `validate:"required,email,max=255"`
	Password        string `validate:"required,min=8,max=255"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

var registerMessages = utils.Messages{
	"Name.required":     "Full name is required.",
	"Name.min":          "Full name must be at least 2 characters long.",
	"Name":              "Full name must be at most 100 characters long.",
	"Email.required":    "Email is required.",
	"Email":             "Please enter a valid email address.",
	"Password.required": "Password is required.",
	"Password.min":      "Password must be at least 8 characters long.",
	"Password":          "Password must be at most 255 characters long.",
	"ConfirmPassword":   "Passwords do not match.",
}

type loginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

var loginMessages = utils.Messages{
	"Email.required": "Email is required.",
	"Email":          "Please enter a valid email address.",
	"Password":       "Password is required.",
}

type profileForm struct {
	Name  string `validate:"required,min=2,max=100"`
	Email string `validate:"required,email,max=255"`
}

var profileMessages = utils.Messages{
	"Name":  "Name must be between 2 and 100 characters.",
	"Email": "Please enter a valid email address.",
}

type contactForm struct {
	Name    string `validate:"required,max=100"`
	Email   string `validate:"required,email"`
	Subject string `validate:"required,max=200"`
	Message string `validate:"required,min=10,max=1000"`
	Rating  int    `validate:"min=1,max=5"`
}

var contactMessages = utils.Messages{
	"Name.required":    "Full name is required.",
	"Name":             "Full name must be at most 100 characters long.",
	"Email.required":   "Email is required.",
	"Email":            "Please enter a valid email address.",
	"Subject.required": "Subject is required.",
	"Subject":          "Subject must be at most 200 characters long.",
	"Message.required": "Message is required.",
	"Message.min":      "Message must be at least 10 characters long.",
	"Message":          "Message must be at most 1000 characters long.",
	"Rating":           "Please select a rating between 1 and 5 stars.",
}

// messages flattens validation errors for the template.
func messages(errs []*utils.ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

// atoiOrZero mirrors a lenient integer read: anything unparsable is 0.
func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
