package auth

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.New("password mismatch")

// placeholderHash is compared against when no account exists so that unknown
// usernames cost as much as wrong passwords.
var placeholderHash = sync.OnceValue(func() []byte {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("placeholder"), bcrypt.DefaultCost)
	return hashed
})

// HashPassword hashes a plaintext password. Costs below bcrypt.MinCost use the default cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword checks plain against hashed. An empty hash stands for a
// missing account and always fails with ErrPasswordMismatch.
func VerifyPassword(hashed, plain string) error {
	if hashed == "" {
		_ = bcrypt.CompareHashAndPassword(placeholderHash(), []byte(plain))
		return ErrPasswordMismatch
	}
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return err
}
