package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters
const (
	scryptN      = 16384
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
	saltLen      = 16
)

const hashScheme = "scrypt"

var errMalformedHash = errors.New("malformed password hash")

// HashPassword derives a salted one-way hash of password:
//
//	scrypt${base64 salt}${base64 key}
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("HashPassword: rand failed: %w", err)
	}

	key, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("HashPassword: scrypt failed: %w", err)
	}

	return strings.Join([]string{
		hashScheme,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	}, "$"), nil
}

// VerifyPassword reports whether password matches the hash produced by
// HashPassword. The comparison runs in constant time.
func VerifyPassword(hash, password string) bool {
	salt, want, err := parseHash(hash)
	if err != nil {
		return false
	}

	got, err := scrypt.Key([]byte(password), salt, scryptN, scryptR, scryptP, len(want))
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(got, want) == 1
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// dummyPasswordHash is a hash of a random password nobody knows.
func dummyPasswordHash() string {
	dummyHashOnce.Do(func() {
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			logger.WithError(err).Warn("dummyPasswordHash: rand failed")
			return
		}
		h, err := HashPassword(base64.RawStdEncoding.EncodeToString(secret))
		if err != nil {
			logger.WithError(err).Warn("dummyPasswordHash: HashPassword failed")
			return
		}
		dummyHash = h
	})
	return dummyHash
}

// RejectPassword does the work of a VerifyPassword call that fails. Use
// it when there is no user to check against, so that answering "no such
// user" takes as long as answering "wrong password". It returns false.
func RejectPassword(password string) bool {
	VerifyPassword(dummyPasswordHash(), password)
	return false
}

func parseHash(hash string) (salt, key []byte, err error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 3 || parts[0] != hashScheme {
		return nil, nil, errMalformedHash
	}
	if salt, err = base64.RawStdEncoding.DecodeString(parts[1]); err != nil {
		return nil, nil, errMalformedHash
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[2]); err != nil || len(key) == 0 {
		return nil, nil, errMalformedHash
	}
	return salt, key, nil
}
