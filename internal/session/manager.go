package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

// DefaultName is the session cookie name.
const DefaultName = "studylink_session"

// Options configures the session cookie.
type Options struct {
	Name     string
	HashKey  []byte // signs the cookie, required
	BlockKey []byte // encrypts the cookie when set (16, 24 or 32 bytes)
	MaxAge   time.Duration
	Secure   bool
}

func (o Options) cookieOptions() *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   int(o.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   o.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o Options) keyPairs() [][]byte {
	if len(o.BlockKey) > 0 {
		return [][]byte{o.HashKey, o.BlockKey}
	}
	return [][]byte{o.HashKey}
}

// NewCookieStore keeps the whole session in a signed (and optionally
// encrypted) cookie.
func NewCookieStore(o Options) *sessions.CookieStore {
	store := sessions.NewCookieStore(o.keyPairs()...)
	store.Options = o.cookieOptions()
	store.MaxAge(store.Options.MaxAge)
	return store
}

func codecs(o Options) []securecookie.Codec {
	cs := securecookie.CodecsFromPairs(o.keyPairs()...)
	for _, c := range cs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(int(o.MaxAge.Seconds()))
		}
	}
	return cs
}

// Manager binds sessions to requests.
type Manager struct {
	store sessions.Store
	name  string
	log   zerolog.Logger
}

func NewManager(store sessions.Store, name string, log zerolog.Logger) *Manager {
	if name == "" {
		name = DefaultName
	}
	return &Manager{store: store, name: name, log: log.With().Str("component", "session").Logger()}
}

// Load returns the visitor's session context. A cookie that cannot be
// decoded (rotated keys, tampering) or an unreachable backend starts a fresh
// anonymous session; only the latter is logged as a warning.
func (m *Manager) Load(r *http.Request) *Context {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		var cookieErr securecookie.Error
		if errors.As(err, &cookieErr) && cookieErr.IsDecode() {
			m.log.Debug().Err(err).Msg("undecodable session cookie, starting fresh session")
		} else {
			m.log.Warn().Err(err).Msg("session backend failed, starting fresh session")
		}
	}
	if sess == nil {
		sess = sessions.NewSession(m.store, m.name)
		sess.Options = &sessions.Options{Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode}
		sess.IsNew = true
	}
	return newContext(sess, r)
}
