package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnshRaj112/studylink-backend/internal/models"
)

var testOptions = Options{
	HashKey:  []byte("0123456789abcdef0123456789abcdef"),
	BlockKey: []byte("abcdef0123456789abcdef0123456789"),
	MaxAge:   time.Hour,
}

func newCookieManager() *Manager {
	return NewManager(NewCookieStore(testOptions), "", zerolog.Nop())
}

// carry replays the cookies set on rec into a fresh request.
func carry(rec *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

var ann = &models.User{ID: "u1", Name: "Ann", Email: "ann@x.com"}

func TestAnonymousByDefault(t *testing.T) {
	sc := newCookieManager().Load(httptest.NewRequest(http.MethodGet, "/", nil))

	_, ok := sc.Identity()
	assert.False(t, ok)
	assert.False(t, sc.IsAuthenticated())
}

func TestIssueCSRFTokenIsStable(t *testing.T) {
	m := newCookieManager()
	sc := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))

	tok, err := sc.IssueCSRFToken()
	require.NoError(t, err)
	assert.Len(t, tok, 64, "32 random bytes, hex encoded")

	again, err := sc.IssueCSRFToken()
	require.NoError(t, err)
	assert.Equal(t, tok, again)

	rec := httptest.NewRecorder()
	require.NoError(t, sc.Save(rec))

	next := m.Load(carry(rec))
	fromCookie, err := next.IssueCSRFToken()
	require.NoError(t, err)
	assert.Equal(t, tok, fromCookie)
	assert.True(t, next.VerifyCSRFToken(tok))
}

func TestVerifyCSRFToken(t *testing.T) {
	sc := newCookieManager().Load(httptest.NewRequest(http.MethodGet, "/", nil))

	assert.False(t, sc.VerifyCSRFToken("anything"), "no token issued yet")

	tok, err := sc.IssueCSRFToken()
	require.NoError(t, err)

	assert.True(t, sc.VerifyCSRFToken(tok))
	assert.False(t, sc.VerifyCSRFToken(""))
	assert.False(t, sc.VerifyCSRFToken(tok[:len(tok)-1]))

	flipped := []byte(tok)
	if flipped[10] == 'a' {
		flipped[10] = 'b'
	} else {
		flipped[10] = 'a'
	}
	assert.False(t, sc.VerifyCSRFToken(string(flipped)))
}

func TestLoginLogout(t *testing.T) {
	m := newCookieManager()
	sc := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))

	before, err := sc.IssueCSRFToken()
	require.NoError(t, err)

	sc.Login(ann)
	id, ok := sc.Identity()
	require.True(t, ok)
	assert.Equal(t, models.Identity{UserID: "u1", Name: "Ann", Email: "ann@x.com"}, id)

	after, err := sc.IssueCSRFToken()
	require.NoError(t, err)
	assert.NotEqual(t, before, after, "login rotates the token")
	assert.False(t, sc.VerifyCSRFToken(before))

	rec := httptest.NewRecorder()
	require.NoError(t, sc.Save(rec))

	sc = m.Load(carry(rec))
	require.True(t, sc.IsAuthenticated())

	sc.Logout()
	assert.False(t, sc.IsAuthenticated())
	assert.False(t, sc.VerifyCSRFToken(after))

	rec = httptest.NewRecorder()
	require.NoError(t, sc.Save(rec))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.True(t, cookies[0].MaxAge < 0, "cookie is expired on logout")
}

func TestSetProfile(t *testing.T) {
	sc := newCookieManager().Load(httptest.NewRequest(http.MethodGet, "/", nil))

	sc.SetProfile("Nobody", "nobody@x.com")
	assert.False(t, sc.IsAuthenticated(), "anonymous sessions are untouched")

	sc.Login(ann)
	sc.SetProfile("Ann Smith", "smith@x.com")
	id, _ := sc.Identity()
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, "Ann Smith", id.Name)
	assert.Equal(t, "smith@x.com", id.Email)
}

func TestTamperedCookieStartsFreshSession(t *testing.T) {
	m := newCookieManager()
	sc := m.Load(httptest.NewRequest(http.MethodGet, "/", nil))
	sc.Login(ann)
	rec := httptest.NewRecorder()
	require.NoError(t, sc.Save(rec))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range rec.Result().Cookies() {
		c.Value = strings.ToUpper(c.Value)
		r.AddCookie(c)
	}
	assert.False(t, m.Load(r).IsAuthenticated())
}

func TestCookieOptions(t *testing.T) {
	store := NewCookieStore(Options{HashKey: testOptions.HashKey, MaxAge: time.Hour, Secure: true})
	assert.Equal(t, 3600, store.Options.MaxAge)
	assert.True(t, store.Options.HttpOnly)
	assert.True(t, store.Options.Secure)
	assert.Equal(t, http.SameSiteLaxMode, store.Options.SameSite)
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	sc := newContext(sessions.NewSession(nil, "x"), nil)
	assert.Same(t, sc, FromContext(WithContext(context.Background(), sc)))
}
