package models

// User is a registered account as persisted in users.json.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password"` // argon2id or legacy bcrypt hash, never plaintext
	CreatedAt Timestamp `json:"created_at"`
}

// Identity is the snapshot of a user kept in the visitor's session.
type Identity struct {
	UserID string
	Name   string
	Email  string
}

// Identity returns the session snapshot for u.
func (u *User) Identity() Identity {
	return Identity{UserID: u.ID, Name: u.Name, Email: u.Email}
}

// DaysAsMember returns the number of whole days between CreatedAt and now.
func (u *User) DaysAsMember(now Timestamp) int {
	if u.CreatedAt.IsZero() {
		return 0
	}
	d := now.Time.Sub(u.CreatedAt.Time)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
