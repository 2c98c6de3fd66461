package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/studylink-backend/internal/database"
	"github.com/AnshRaj112/studylink-backend/internal/models"
)

// PasswordHasher is satisfied by utils.PasswordHasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hashedPassword string) (bool, error)
}

// UserDirectory owns the users collection. Emails are matched exactly as
// stored; callers validate name and email grammar before calling in.
type UserDirectory struct {
	users  *database.Collection[models.User]
	hasher PasswordHasher
	log    zerolog.Logger

	now   func() time.Time
	newID func() string

	dummyOnce sync.Once
	dummyHash string
}

func NewUserDirectory(store *database.Store, hasher PasswordHasher, log zerolog.Logger) *UserDirectory {
	return &UserDirectory{
		users:  database.NewCollection[models.User](store, database.UsersCollection),
		hasher: hasher,
		log:    log.With().Str("component", "users").Logger(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

func indexByEmail(users []models.User, email string) int {
	for i := range users {
		if users[i].Email == email {
			return i
		}
	}
	return -1
}

func indexByID(users []models.User, id string) int {
	for i := range users {
		if users[i].ID == id {
			return i
		}
	}
	return -1
}

// Exists reports whether a user with exactly this email is registered.
func (d *UserDirectory) Exists(email string) (bool, error) {
	users, err := d.users.Load()
	if err != nil {
		return false, err
	}
	return indexByEmail(users, email) >= 0, nil
}

// FindByEmail returns ErrUserNotFound when no user has this email.
func (d *UserDirectory) FindByEmail(email string) (*models.User, error) {
	users, err := d.users.Load()
	if err != nil {
		return nil, err
	}
	i := indexByEmail(users, email)
	if i < 0 {
		return nil, ErrUserNotFound
	}
	return &users[i], nil
}

// FindByID returns ErrUserNotFound when no user has this id.
func (d *UserDirectory) FindByID(id string) (*models.User, error) {
	users, err := d.users.Load()
	if err != nil {
		return nil, err
	}
	i := indexByID(users, id)
	if i < 0 {
		return nil, ErrUserNotFound
	}
	return &users[i], nil
}

// Register creates a user with a hashed password. It returns ErrUserExists
// if the email is already registered.
func (d *UserDirectory) Register(name, email, password string) (*models.User, error) {
	// Cheap check first so duplicates don't pay for a hash.
	exists, err := d.Exists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	created := models.User{
		ID:        d.newID(),
		Name:      name,
		Email:     email,
		Password:  hash,
		CreatedAt: models.NewTimestamp(d.now()),
	}

	err = d.users.Update(func(users []models.User) ([]models.User, error) {
		// Re-check under the lock; another registration may have won.
		if indexByEmail(users, email) >= 0 {
			return nil, ErrUserExists
		}
		return append(users, created), nil
	})
	if err != nil {
		return nil, err
	}

	d.log.Info().Str("user_id", created.ID).Msg("user registered")
	return &created, nil
}

// VerifyLogin returns the user whose email and password match. Unknown email
// and wrong password both yield ErrInvalidCredentials.
func (d *UserDirectory) VerifyLogin(email, password string) (*models.User, error) {
	user, err := d.FindByEmail(email)
	if errors.Is(err, ErrUserNotFound) {
		// Spend the same work as a real verification.
		_, _ = d.hasher.Verify(password, d.dummy())
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := d.hasher.Verify(password, user.Password)
	if err != nil {
		d.log.Warn().Err(err).Str("user_id", user.ID).Msg("stored password hash is unreadable")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (d *UserDirectory) dummy() string {
	d.dummyOnce.Do(func() {
		h, err := d.hasher.Hash(uuid.NewString())
		if err != nil {
			d.log.Error().Err(err).Msg("generate dummy hash")
			return
		}
		d.dummyHash = h
	})
	return d.dummyHash
}

// UpdateProfile changes the name and email of the user with userID. It
// returns ErrEmailTaken if newEmail belongs to a different user and
// ErrUserNotFound if userID is unknown; nothing is written in either case.
func (d *UserDirectory) UpdateProfile(userID, newName, newEmail string) (*models.User, error) {
	var updated models.User
	err := d.users.Update(func(users []models.User) ([]models.User, error) {
		for i := range users {
			if users[i].Email == newEmail && users[i].ID != userID {
				return nil, ErrEmailTaken
			}
		}
		i := indexByID(users, userID)
		if i < 0 {
			return nil, ErrUserNotFound
		}
		users[i].Name = newName
		users[i].Email = newEmail
		updated = users[i]
		return users, nil
	})
	if err != nil {
		return nil, err
	}

	d.log.Info().Str("user_id", userID).Msg("profile updated")
	return &updated, nil
}
