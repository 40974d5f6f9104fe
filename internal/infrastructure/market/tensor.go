package market

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
)

// Tensor is the secondary marketplace client
type Tensor struct {
	http jsonClient
}

// NewTensor creates a Tensor client
func NewTensor(cfg config.MarketConfig) *Tensor {
	return &Tensor{
		http: newJSONClient("tensor", cfg.TensorURL, cfg.RequestTimeout, map[string]string{
			"x-tensor-api-key": cfg.TensorKey,
		}),
	}
}

type tensorCollection struct {
	CollID string `json:"collId"`
	Stats  struct {
		BuyNowPrice *string `json:"buyNowPrice"`
		NumListed   int     `json:"numListed"`
	} `json:"stats"`
}

// CollectionFloor returns the buy-now floor of a collection by its on-chain identifier.
// Prices arrive as lamport strings.
func (t *Tensor) CollectionFloor(ctx context.Context, collection string) (*repositories.FloorQuote, error) {
	var coll tensorCollection
	path := "/collections/find_collection?filter=" + url.QueryEscape(collection)
	if err := t.http.get(ctx, "find_collection", path, &coll); err != nil {
		return nil, fmt.Errorf("failed to find collection: %w", err)
	}
	if coll.CollID == "" {
		return nil, ErrNotFound
	}

	if coll.Stats.BuyNowPrice == nil || *coll.Stats.BuyNowPrice == "" {
		return &repositories.FloorQuote{Listed: false}, nil
	}
	price, err := decimal.NewFromString(*coll.Stats.BuyNowPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid buy now price %q: %w", *coll.Stats.BuyNowPrice, err)
	}
	if !price.IsPositive() {
		return &repositories.FloorQuote{Listed: false}, nil
	}
	return &repositories.FloorQuote{Raw: price.InexactFloat64(), Listed: true}, nil
}
