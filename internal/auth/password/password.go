// Package password hashes and verifies user passwords with bcrypt.
package password

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch is returned when a password does not match its hash.
var ErrMismatch = errors.New("password mismatch")

// Cost is the bcrypt work factor for new hashes.
const Cost = 12

// dummyHash is compared against when the user does not exist, so unknown
// usernames cost as much as wrong passwords.
var dummyHash = sync.OnceValue(func() string {
	return mustHash("timing-equalizer-password")
})

// Hash returns the bcrypt hash of plain.
func Hash(plain string) (string, error) {
	return hashWithCost(plain, Cost)
}

func hashWithCost(plain string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare checks plain against hash. Any failure is ErrMismatch.
func Compare(hash, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)); err != nil {
		return ErrMismatch
	}
	return nil
}

// CompareDummy burns the same CPU as Compare for a missing user.
func CompareDummy(plain string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash()), []byte(plain))
}

func mustHash(plain string) string {
	hash, err := hashWithCost(plain, Cost)
	if err != nil {
		panic(err)
	}
	return hash
}
