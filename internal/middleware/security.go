package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/unrolled/secure"
	"golang.org/x/time/rate"

	"github.com/AnshRaj112/studylink-backend/internal/session"
	"github.com/AnshRaj112/studylink-backend/pkg/clientip"
)

const (
	limiterCleanupInterval = 5 * time.Minute
	limiterTTL             = 30 * time.Minute

	// Page views: 5 req/s, burst 20 per IP.
	globalRateLimitRPS   = 5
	globalRateLimitBurst = 20

	// POST /login and /register: 1 req/5s, burst 3 per IP.
	loginRateLimitEvery = 5 * time.Second
	loginRateLimitBurst = 3

	// POST /contact: 1 req/30s, burst 3 per user (per IP when anonymous).
	submitRateLimitEvery = 30 * time.Second
	submitRateLimitBurst = 3
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(isDevelopment bool) func(http.Handler) http.Handler {
	s := secure.New(secure.Options{
		IsDevelopment:         isDevelopment,
		ContentTypeNosniff:    true,
		FrameDeny:             true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		STSSeconds:            31536000,
		STSIncludeSubdomains:  true,
	})
	return s.Handler
}

// HostCheck returns 403 when r.Host does not match allowedHost (e.g. studylink.example.com).
// allowedHost should be the bare hostname without scheme or port; empty disables the check.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	allowedHost = strings.TrimSpace(allowedHost)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), allowedHost) {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type limiterEntry struct {
	limiter *rate.Limiter
	lastUse time.Time
}

// keyedLimiter hands out one token bucket per key and forgets keys idle for
// longer than limiterTTL.
type keyedLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	entries map[string]*limiterEntry
	cleanup sync.Once
}

func newKeyedLimiter(limit rate.Limit, burst int) *keyedLimiter {
	return &keyedLimiter{limit: limit, burst: burst, entries: make(map[string]*limiterEntry)}
}

func (l *keyedLimiter) allow(key string) bool {
	l.cleanup.Do(l.startCleanup)

	l.mu.Lock()
	e, ok := l.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastUse = time.Now()
	l.mu.Unlock()

	return e.limiter.Allow()
}

func (l *keyedLimiter) startCleanup() {
	go func() {
		ticker := time.NewTicker(limiterCleanupInterval)
		defer ticker.Stop()
		for range ticker.C {
			l.sweep(time.Now())
		}
	}()
}

func (l *keyedLimiter) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entries {
		if now.Sub(e.lastUse) > limiterTTL {
			delete(l.entries, k)
		}
	}
}

func tooMany(w http.ResponseWriter, msg string) {
	w.Header().Set("Retry-After", "5")
	http.Error(w, msg, http.StatusTooManyRequests)
}

// GlobalRateLimit limits every request per client IP.
func GlobalRateLimit(trustProxy bool) func(http.Handler) http.Handler {
	l := newKeyedLimiter(rate.Limit(globalRateLimitRPS), globalRateLimitBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.allow(clientip.RealClientIP(r, trustProxy)) {
				tooMany(w, "Too many requests. Please slow down.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

var loginPaths = map[string]bool{
	"/login":    true,
	"/register": true,
}

// LoginRateLimit applies a stricter per-IP limit to credential form posts.
func LoginRateLimit(trustProxy bool) func(http.Handler) http.Handler {
	l := newKeyedLimiter(rate.Every(loginRateLimitEvery), loginRateLimitBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || !loginPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			if !l.allow(clientip.RealClientIP(r, trustProxy)) {
				tooMany(w, "Too many login attempts. Please try again later.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SubmissionRateLimit limits form posts per logged-in user, falling back to the
// client IP for anonymous visitors. Must run after LoadSession.
func SubmissionRateLimit(trustProxy bool) func(http.Handler) http.Handler {
	l := newKeyedLimiter(rate.Every(submitRateLimitEvery), submitRateLimitBurst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}
			key := "ip:" + clientip.RealClientIP(r, trustProxy)
			if sc := session.FromContext(r.Context()); sc != nil {
				if id, ok := sc.Identity(); ok {
					key = "user:" + id.UserID
				}
			}
			if !l.allow(key) {
				tooMany(w, "You are sending messages too quickly. Please wait a moment.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit.
func ProductionSecurity(allowedHost string, trustProxy bool) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders(false),
		HostCheck(allowedHost),
		GlobalRateLimit(trustProxy),
		LoginRateLimit(trustProxy),
	}
}
