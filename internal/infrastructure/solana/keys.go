package solana

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// LoadSigner decodes a base58 encoded 64-byte ed25519 secret key.
// An empty secret yields a nil key. When address is set it must match the
// public half of the key.
func LoadSigner(secret, address string) (solana.PrivateKey, error) {
	if secret == "" {
		return nil, nil
	}

	raw, err := base58.Decode(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: secret key is not base58", entities.ErrSignerUnavailable)
	}
	if len(raw) != 64 {
		return nil, fmt.Errorf("%w: secret key must be 64 bytes, got %d", entities.ErrSignerUnavailable, len(raw))
	}

	key := solana.PrivateKey(raw)
	if address != "" && key.PublicKey().String() != address {
		return nil, fmt.Errorf("%w: secret key does not match %s", entities.ErrSignerUnavailable, address)
	}
	return key, nil
}
