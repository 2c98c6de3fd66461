// Package session holds the per-visitor identity context: who is logged in
// and the anti-forgery token for the visitor's forms.
package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/AnshRaj112/studylink-backend/internal/models"
)

const (
	keyUserID    = "user_id"
	keyUserName  = "user_name"
	keyUserEmail = "user_email"
	keyCSRF      = "csrf_token"

	csrfTokenBytes = 32
)

// Context is one visitor's session bound to the current request. It is
// either anonymous or authenticated as a user snapshot.
type Context struct {
	sess *sessions.Session
	r    *http.Request
}

func newContext(sess *sessions.Session, r *http.Request) *Context {
	return &Context{sess: sess, r: r}
}

func (c *Context) str(key string) string {
	v, _ := c.sess.Values[key].(string)
	return v
}

// Identity returns the logged-in user's snapshot, or false if anonymous.
func (c *Context) Identity() (models.Identity, bool) {
	id := c.str(keyUserID)
	if id == "" {
		return models.Identity{}, false
	}
	return models.Identity{UserID: id, Name: c.str(keyUserName), Email: c.str(keyUserEmail)}, true
}

// IsAuthenticated reports whether a user is logged in.
func (c *Context) IsAuthenticated() bool {
	_, ok := c.Identity()
	return ok
}

// Login records user as the visitor's identity. The CSRF token and (for
// server-side stores) the session ID are replaced so nothing issued before
// login stays valid after it.
func (c *Context) Login(user *models.User) {
	c.sess.ID = ""
	delete(c.sess.Values, keyCSRF)
	c.sess.Values[keyUserID] = user.ID
	c.sess.Values[keyUserName] = user.Name
	c.sess.Values[keyUserEmail] = user.Email
}

// SetProfile refreshes the name and email of the logged-in snapshot.
func (c *Context) SetProfile(name, email string) {
	if !c.IsAuthenticated() {
		return
	}
	c.sess.Values[keyUserName] = name
	c.sess.Values[keyUserEmail] = email
}

// Logout clears the identity and CSRF token and destroys the session on the
// next Save.
func (c *Context) Logout() {
	for k := range c.sess.Values {
		delete(c.sess.Values, k)
	}
	opts := sessions.Options{MaxAge: -1, Path: "/"}
	if c.sess.Options != nil {
		opts = *c.sess.Options
		opts.MaxAge = -1
	}
	c.sess.Options = &opts
}

// IssueCSRFToken returns the visitor's token, generating a 256-bit random
// one if none exists yet.
func (c *Context) IssueCSRFToken() (string, error) {
	if tok := c.str(keyCSRF); tok != "" {
		return tok, nil
	}
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	tok := hex.EncodeToString(buf)
	c.sess.Values[keyCSRF] = tok
	return tok, nil
}

// VerifyCSRFToken reports whether candidate equals the visitor's token. It is
// false when no token was issued or candidate is empty.
func (c *Context) VerifyCSRFToken(candidate string) bool {
	tok := c.str(keyCSRF)
	if tok == "" || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(tok), []byte(candidate)) == 1
}

// Save writes the session to its store. It must be called before the
// response body or a redirect is written.
func (c *Context) Save(w http.ResponseWriter) error {
	return c.sess.Save(c.r, w)
}

type ctxKey struct{}

// WithContext returns a copy of ctx carrying sc.
func WithContext(ctx context.Context, sc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, sc)
}

// FromContext returns the session context placed by the session middleware,
// or nil.
func FromContext(ctx context.Context) *Context {
	sc, _ := ctx.Value(ctxKey{}).(*Context)
	return sc
}
