package repositories

import (
	"context"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// PendingMintRepository stores staged mints between the two signing phases
type PendingMintRepository interface {
	// Stage stores a pending mint under its request id
	Stage(ctx context.Context, mint *entities.PendingMint) error

	// Finalize atomically reads and removes the pending mint.
	// Returns entities.ErrMintNotFound when absent, expired or already consumed.
	Finalize(ctx context.Context, requestID string) (*entities.PendingMint, error)
}
