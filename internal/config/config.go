package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/AnshRaj112/studylink-backend/pkg/utils"
)

const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"

	devSessionSecret = "dev-session-secret-change-in-production"
)

type Config struct {
	AppName       string
	Port          string
	Host          string // Raw HOST env (e.g. https://studylink.example.com)
	AllowedHost   string // Hostname only for strict host check (production only)
	Environment   string // ENV: production, development, etc.
	DataDir       string // holds users.json and contacts.json
	TrustProxy    bool   // honour X-Forwarded-For / X-Real-IP

	SessionStore  string // cookie or redis
	SessionSecret string
	EncryptionKey []byte // optional 32-byte cookie encryption key (ENCRYPTION_KEY, base64)
	SessionTTL    time.Duration
	RedisURI      string

	Argon2 Argon2Config
}

type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
}

// Load reads the environment and, when CONFIG_FILE is set, that file. The
// environment wins over the file.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.SetDefault("APP_NAME", "StudyLink")
	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "http://localhost:8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_DIR", "storage")
	v.SetDefault("TRUST_PROXY", false)
	v.SetDefault("SESSION_STORE", SessionStoreCookie)
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("REDIS_URI", "redis://localhost:6379/0")

	cfg := &Config{
		AppName:       v.GetString("APP_NAME"),
		Port:          v.GetString("PORT"),
		Host:          v.GetString("HOST"),
		Environment:   strings.ToLower(strings.TrimSpace(v.GetString("ENV"))),
		DataDir:       v.GetString("DATA_DIR"),
		TrustProxy:    v.GetBool("TRUST_PROXY"),
		SessionStore:  strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE"))),
		SessionSecret: v.GetString("SESSION_SECRET"),
		SessionTTL:    v.GetDuration("SESSION_TTL"),
		RedisURI:      v.GetString("REDIS_URI"),
	}

	// Unset Argon2 keys stay 0 and the hasher applies its defaults.
	memory, err := argon2Param(v, "ARGON2_MEMORY", utils.MaxMemoryCost)
	if err != nil {
		return nil, err
	}
	iterations, err := argon2Param(v, "ARGON2_ITERATIONS", 100)
	if err != nil {
		return nil, err
	}
	parallelism, err := argon2Param(v, "ARGON2_PARALLELISM", 255)
	if err != nil {
		return nil, err
	}
	cfg.Argon2 = Argon2Config{
		Memory:      uint32(memory),
		Iterations:  uint32(iterations),
		Parallelism: uint8(parallelism),
	}

	// AllowedHost is only set in production; host check is skipped in development
	if cfg.IsProduction() {
		cfg.AllowedHost = bareHost(cfg.Host)
	}

	if key := v.GetString("ENCRYPTION_KEY"); key != "" {
		decoded, err := utils.DecodeKey(key, 32)
		if err != nil {
			return nil, errors.New("ENCRYPTION_KEY: " + err.Error() + " (generate with: openssl rand -base64 32)")
		}
		cfg.EncryptionKey = decoded
	}

	if cfg.SessionSecret == "" {
		if cfg.IsProduction() {
			return nil, errors.New("SESSION_SECRET must be set in production")
		}
		cfg.SessionSecret = devSessionSecret
	}
	if len(cfg.SessionSecret) < 32 && cfg.IsProduction() {
		return nil, errors.New("SESSION_SECRET must be at least 32 characters")
	}

	switch cfg.SessionStore {
	case SessionStoreCookie, SessionStoreRedis:
	default:
		return nil, errors.New("SESSION_STORE must be cookie or redis")
	}

	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}

	return cfg, nil
}

func argon2Param(v *viper.Viper, key string, max int) (int, error) {
	if !v.IsSet(key) {
		return 0, nil
	}
	n := v.GetInt(key)
	if n <= 0 || n > max {
		return 0, fmt.Errorf("%s must be between 1 and %d", key, max)
	}
	return n, nil
}

// bareHost strips scheme, path and port from a HOST value.
func bareHost(host string) string {
	host = strings.TrimSpace(host)
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if idx := strings.Index(host, "/"); idx != -1 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return strings.TrimSpace(host)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// SecureCookies reports whether cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return c.IsProduction() || strings.HasPrefix(c.Host, "https://")
}
