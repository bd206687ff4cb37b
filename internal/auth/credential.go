package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/redlink/internal/domain"
)

// HashCredential hashes the donor's login credential. The cost is clamped to
// the range bcrypt accepts.
func HashCredential(credential string, cost int) (string, error) {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", fmt.Errorf("credential longer than 72 bytes: %w", domain.ErrInvalidCredential)
		}
		return "", err
	}
	return string(hashed), nil
}

// CompareCredential returns domain.ErrInvalidCredential when plain does not match hashed.
func CompareCredential(hashed, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)); err != nil {
		return domain.ErrInvalidCredential
	}
	return nil
}
