// Package credential hashes and verifies user passwords with bcrypt and
// upgrades legacy plain-text values in place.
package credential

import (
	"crypto/subtle"
	"errors"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// Cost is the bcrypt work factor.
const Cost = 10

const hashLength = 60

var hashPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

// ErrPasswordTooLong is returned by Hash for inputs over MaxPasswordBytes.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hash returns a salted bcrypt hash of raw.
func Hash(raw string) (string, error) {
	if len(raw) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(raw), Cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	return string(b), err
}

// Verify reports whether raw matches the bcrypt hash.
func Verify(raw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(raw)) == nil
}

// IsHash reports whether value has the shape of a bcrypt hash.
func IsHash(value string) bool {
	if len(value) != hashLength {
		return false
	}
	for _, p := range hashPrefixes {
		if strings.HasPrefix(value, p) {
			return true
		}
	}
	return false
}

// Matches checks raw against a stored value. Hashes are verified with bcrypt;
// a stored value that is not a hash is compared in constant time only when
// allowLegacy is set.
func Matches(raw, stored string, allowLegacy bool) bool {
	if IsHash(stored) {
		return Verify(raw, stored)
	}
	if !allowLegacy || stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(raw), []byte(stored)) == 1
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// Reject spends the same bcrypt work as a failed Verify and always reports
// false. Login uses it for unknown usernames so both failures cost the same.
func Reject(raw string) bool {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), Cost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(raw))
	return false
}
