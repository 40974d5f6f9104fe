package services

import (
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

const publicKeyLength = 32

// IsValidAddress reports whether s is a base58 encoded 32-byte public key
func IsValidAddress(s string) bool {
	if s == "" || len(s) > 44 {
		return false
	}
	raw, err := base58.Decode(s)
	return err == nil && len(raw) == publicKeyLength
}

func validateAddress(s string) error {
	if !IsValidAddress(s) {
		return fmt.Errorf("%w: %q", entities.ErrInvalidAddress, s)
	}
	return nil
}
