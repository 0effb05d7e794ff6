package user

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrWalletOnlyAccount is returned when password verification is attempted
// against an account that only authenticates via wallet signatures.
var ErrWalletOnlyAccount = errors.New("account has no password credential")

// HashPassword derives a bcrypt digest from a plaintext password.
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// VerifyPassword checks a plaintext password against the account's stored hash.
func (a *Account) VerifyPassword(password string) error {
	if a.IsWalletOnly() {
		return ErrWalletOnlyAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return fmt.Errorf("password mismatch: %w", err)
	}
	return nil
}
