package config

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "StudyLink", c.AppName)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "development", c.Environment)
	assert.Equal(t, "storage", c.DataDir)
	assert.Equal(t, SessionStoreCookie, c.SessionStore)
	assert.Equal(t, 7*24*time.Hour, c.SessionTTL)
	assert.Equal(t, devSessionSecret, c.SessionSecret)
	assert.Nil(t, c.EncryptionKey)
	assert.False(t, c.IsProduction())
	assert.False(t, c.SecureCookies())
}

func TestLoadFromEnv(t *testing.T) {
	key := base64.StdEncoding.EncodeToString(make([]byte, 32))
	t.Setenv("PORT", "9090")
	t.Setenv("DATA_DIR", "/var/lib/studylink")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("ENCRYPTION_KEY", key)
	t.Setenv("ARGON2_MEMORY", "1024")
	t.Setenv("HOST", "https://studylink.example.com")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "/var/lib/studylink", c.DataDir)
	assert.Equal(t, SessionStoreRedis, c.SessionStore)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
	assert.Len(t, c.EncryptionKey, 32)
	assert.Equal(t, uint32(1024), c.Argon2.Memory)
	assert.True(t, c.SecureCookies())
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("encryption key", func(t *testing.T) {
		t.Setenv("ENCRYPTION_KEY", "not-base64!")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("session store", func(t *testing.T) {
		t.Setenv("SESSION_STORE", "memcached")
		_, err := Load()
		assert.Error(t, err)
	})
	t.Run("production without secret", func(t *testing.T) {
		t.Setenv("ENV", "production")
		_, err := Load()
		assert.Error(t, err)
	})
	for key, val := range map[string]string{
		"ARGON2_MEMORY":      "-1",
		"ARGON2_ITERATIONS":  "0",
		"ARGON2_PARALLELISM": "256",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
	t.Run("production short secret", func(t *testing.T) {
		t.Setenv("ENV", "production")
		t.Setenv("SESSION_SECRET", "short")
		_, err := Load()
		assert.Error(t, err)
	})
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")

	c, err := Load()
	require.NoError(t, err)
	assert.True(t, c.IsProduction())
	assert.True(t, c.SecureCookies())
	assert.Equal(t, "localhost", c.AllowedHost)
}

func TestAllowedHostOnlyInProduction(t *testing.T) {
	t.Setenv("HOST", "https://studylink.example.com:8443/app")

	c, err := Load()
	require.NoError(t, err)
	assert.Empty(t, c.AllowedHost)

	t.Setenv("ENV", "production")
	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	c, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "studylink.example.com", c.AllowedHost)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "studylink.yaml")
	require.NoError(t, os.WriteFile(path, []byte("PORT: \"7070\"\nDATA_DIR: /srv/data\n"), 0o644))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATA_DIR", "/from/env")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", c.Port)
	assert.Equal(t, "/from/env", c.DataDir, "environment wins over the file")
}
