package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/AnshRaj112/studylink-backend/internal/config"
	"github.com/AnshRaj112/studylink-backend/internal/database"
	"github.com/AnshRaj112/studylink-backend/internal/handlers"
	"github.com/AnshRaj112/studylink-backend/internal/middleware"
	"github.com/AnshRaj112/studylink-backend/internal/routes"
	"github.com/AnshRaj112/studylink-backend/internal/services"
	"github.com/AnshRaj112/studylink-backend/internal/session"
	"github.com/AnshRaj112/studylink-backend/pkg/utils"
)

func newLogger(cfg *config.Config) zerolog.Logger {
	if cfg.IsProduction() {
		return zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func main() {
	// Load env
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}
	log := newLogger(cfg)
	if envErr != nil {
		log.Debug().Msg("no .env file found")
	}

	if cfg.EncryptionKey == nil {
		log.Warn().Msg("ENCRYPTION_KEY not set; session cookies are signed but not encrypted (generate with: openssl rand -base64 32)")
	}

	store, err := database.Open(cfg.DataDir, log, database.UsersCollection, database.ContactsCollection)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to open record store")
	}
	log.Info().Str("dir", store.Dir()).Msg("record store ready")

	hasher := utils.NewPasswordHasher(cfg.Argon2.Iterations, cfg.Argon2.Memory, cfg.Argon2.Parallelism)
	users := services.NewUserDirectory(store, hasher, log)
	contacts := services.NewContactLog(store, log)

	hashKey := sha256.Sum256([]byte(cfg.SessionSecret))
	sessOpts := session.Options{
		HashKey:  hashKey[:],
		BlockKey: cfg.EncryptionKey,
		MaxAge:   cfg.SessionTTL,
		Secure:   cfg.SecureCookies(),
	}

	var (
		sessStore sessions.Store
		rdb       *redis.Client
	)
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		rdb, err = database.ConnectRedis(context.Background(), cfg.RedisURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		sessStore = session.NewRedisStore(rdb, sessOpts)
		log.Info().Msg("sessions stored in redis")
	default:
		sessStore = session.NewCookieStore(sessOpts)
		log.Info().Msg("sessions stored in cookies")
	}
	sessManager := session.NewManager(sessStore, session.DefaultName, log)

	h, err := handlers.New(users, contacts, cfg.AppName, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load templates")
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(log, cfg.TrustProxy))
	r.Use(chimw.Recoverer)

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: relaxed security headers only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost, cfg.TrustProxy) {
			r.Use(mw)
		}
		log.Info().Str("allowed_host", cfg.AllowedHost).Msg("production security enabled (security headers, host check, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.SecurityHeaders(true))
	}

	// Health check (no session)
	r.Get("/health", handlers.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadSession(sessManager))
		routes.SetupRoutes(r, h, cfg.TrustProxy)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Environment).Msgf("%s running", cfg.AppName)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
