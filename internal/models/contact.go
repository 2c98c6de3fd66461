package models

const (
	MinRating        = 1
	MaxRating        = 5
	MinMessageLength = 10
	MaxMessageLength = 1000
	MaxSubjectLength = 200
)

// ContactSubmission is one entry of contacts.json. Entries are never edited.
type ContactSubmission struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	Message     string    `json:"message"`
	Rating      int       `json:"rating"`
	SubmittedAt Timestamp `json:"submitted_at"`
}
