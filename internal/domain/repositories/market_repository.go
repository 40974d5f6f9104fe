package repositories

import (
	"context"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// FloorQuote is a raw floor lookup result as reported by a marketplace.
// Listed is false when the collection exists but has no active listing.
type FloorQuote struct {
	Raw    float64
	Listed bool
}

// PrimaryMarketRepository is the marketplace consulted first
type PrimaryMarketRepository interface {
	// ResolveSlug maps a mint to its marketplace collection slug
	ResolveSlug(ctx context.Context, mint string) (string, error)

	// CollectionFloor returns the floor of the collection with the given slug
	CollectionFloor(ctx context.Context, slug string) (*FloorQuote, error)

	// LastSalePrice returns the most recent non-zero sale or listing price of a mint
	LastSalePrice(ctx context.Context, mint string) (float64, error)
}

// SecondaryMarketRepository is consulted when the primary marketplace has no price
type SecondaryMarketRepository interface {
	CollectionFloor(ctx context.Context, collection string) (*FloorQuote, error)
}

// PriceRepository fetches a single fiat price from one source
type PriceRepository interface {
	FetchUSD(ctx context.Context, kind entities.PriceKind) (float64, error)
}
