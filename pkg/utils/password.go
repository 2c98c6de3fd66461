package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

const (
	saltLength = 16
	keyLength  = 32

	// Defaults tuned for roughly 100ms per verification on commodity hardware.
	DefaultTimeCost    = 3
	DefaultMemoryCost  = 64 * 1024
	DefaultParallelism = 2

	// MaxMemoryCost caps the memory (KiB) a stored or configured hash may ask for.
	MaxMemoryCost = 1024 * 1024
)

// ErrInvalidHash is returned when a stored hash is in no known format.
var ErrInvalidHash = errors.New("invalid hash format")

// PasswordHasher hashes new passwords with Argon2id and verifies both
// Argon2id hashes and legacy bcrypt hashes ($2y$/$2a$/$2b$) written by the
// previous version of the site.
type PasswordHasher struct {
	TimeCost    uint32
	MemoryCost  uint32 // KiB
	Parallelism uint8
}

// NewPasswordHasher returns a hasher with the given Argon2id parameters,
// falling back to the defaults for zero values.
func NewPasswordHasher(timeCost, memoryCost uint32, parallelism uint8) *PasswordHasher {
	h := &PasswordHasher{TimeCost: timeCost, MemoryCost: memoryCost, Parallelism: parallelism}
	if h.TimeCost == 0 {
		h.TimeCost = DefaultTimeCost
	}
	if h.MemoryCost == 0 {
		h.MemoryCost = DefaultMemoryCost
	}
	if h.Parallelism == 0 {
		h.Parallelism = DefaultParallelism
	}
	return h
}

// Hash hashes a password using Argon2id with a fresh random salt.
// Format: $argon2id$v=19$m=65536,t=3,p=2$salt$hash
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(password), salt, h.TimeCost, h.MemoryCost, h.Parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, h.MemoryCost, h.TimeCost, h.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// Verify reports whether password matches hashedPassword. The parameters
// encoded in the hash are used, so changing the hasher's cost does not
// invalidate existing accounts.
func (h *PasswordHasher) Verify(password, hashedPassword string) (bool, error) {
	if isBcrypt(hashedPassword) {
		err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return err == nil, err
	}

	// $argon2id$v=19$m=65536,t=3,p=2$salt$hash
	parts := strings.Split(hashedPassword, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrInvalidHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, ErrInvalidHash
	}

	// argon2.IDKey panics on zero costs; a huge m would exhaust memory.
	if time == 0 || memory == 0 || threads == 0 || memory > MaxMemoryCost {
		return false, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 {
		return false, ErrInvalidHash
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(hash)))

	return subtle.ConstantTimeCompare(computed, hash) == 1, nil
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2y$") || strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$")
}
