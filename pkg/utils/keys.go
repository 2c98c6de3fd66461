package utils

import (
	"encoding/base64"
	"errors"
)

// DecodeKey decodes a base64 key and checks it is exactly size bytes. It is
// used for ENCRYPTION_KEY, which must be 32 bytes (AES-256) to encrypt the
// session cookie.
func DecodeKey(keyBase64 string, size int) ([]byte, error) {
	if keyBase64 == "" {
		return nil, errors.New("key not set")
	}

	keyBytes, err := base64.StdEncoding.DecodeString(keyBase64)
	if err != nil {
		return nil, errors.New("key must be base64-encoded")
	}

	if len(keyBytes) != size {
		return nil, errors.New("key has the wrong length")
	}

	return keyBytes, nil
}
