package services

import (
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/studylink-backend/internal/database"
	"github.com/AnshRaj112/studylink-backend/internal/models"
	"github.com/AnshRaj112/studylink-backend/pkg/utils"
)

// ContactLog is the append-only contacts collection.
type ContactLog struct {
	contacts *database.Collection[models.ContactSubmission]
	log      zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewContactLog(store *database.Store, log zerolog.Logger) *ContactLog {
	return &ContactLog{
		contacts: database.NewCollection[models.ContactSubmission](store, database.ContactsCollection),
		log:      log.With().Str("component", "contacts").Logger(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Append stores a new submission stamped with the current time. Rating and
// message length are checked here because they are invariants of the
// collection; the remaining fields are the caller's responsibility.
func (l *ContactLog) Append(name, email, subject, message string, rating int) (*models.ContactSubmission, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, &utils.ValidationError{Field: "rating", Message: "Please select a rating between 1 and 5 stars."}
	}
	if utf8.RuneCountInString(message) < models.MinMessageLength {
		return nil, &utils.ValidationError{Field: "message", Message: "Message must be at least 10 characters long."}
	}

	sub := models.ContactSubmission{
		ID:          l.newID(),
		Name:        name,
		Email:       email,
		Subject:     subject,
		Message:     message,
		Rating:      rating,
		SubmittedAt: models.NewTimestamp(l.now()),
	}

	err := l.contacts.Update(func(all []models.ContactSubmission) ([]models.ContactSubmission, error) {
		return append(all, sub), nil
	})
	if err != nil {
		return nil, err
	}

	l.log.Info().Str("contact_id", sub.ID).Int("rating", rating).Msg("contact submission stored")
	return &sub, nil
}

// ListAll returns every submission, newest first. Submissions with the same
// timestamp are ordered with the most recently inserted first.
func (l *ContactLog) ListAll() ([]models.ContactSubmission, error) {
	all, err := l.contacts.Load()
	if err != nil {
		return nil, err
	}
	slices.Reverse(all)
	slices.SortStableFunc(all, func(a, b models.ContactSubmission) int {
		return b.SubmittedAt.Compare(a.SubmittedAt.Time)
	})
	return all, nil
}

// CountByEmail returns the number of submissions sent from exactly email.
func (l *ContactLog) CountByEmail(email string) (int, error) {
	all, err := l.contacts.Load()
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range all {
		if all[i].Email == email {
			n++
		}
	}
	return n, nil
}
