package market

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
)

// MagicEden is the primary marketplace client
type MagicEden struct {
	http jsonClient
}

// NewMagicEden creates a Magic Eden client
func NewMagicEden(cfg config.MarketConfig) *MagicEden {
	return &MagicEden{
		http: newJSONClient("magiceden", cfg.MagicEdenURL, cfg.RequestTimeout, map[string]string{
			"Authorization": bearer(cfg.MagicEdenKey),
		}),
	}
}

type meToken struct {
	Collection string `json:"collection"`
}

type meStats struct {
	Symbol      string   `json:"symbol"`
	FloorPrice  *float64 `json:"floorPrice"`
	ListedCount int      `json:"listedCount"`
}

type meActivity struct {
	Type  string  `json:"type"`
	Price float64 `json:"price"`
}

// ResolveSlug maps a mint to its Magic Eden collection symbol
func (m *MagicEden) ResolveSlug(ctx context.Context, mint string) (string, error) {
	var tok meToken
	if err := m.http.get(ctx, "token", "/tokens/"+url.PathEscape(mint), &tok); err != nil {
		return "", fmt.Errorf("failed to resolve slug: %w", err)
	}
	if tok.Collection == "" {
		return "", ErrNotFound
	}
	return tok.Collection, nil
}

// CollectionFloor returns the floor of the collection with the given slug.
// Floors are reported in lamports.
func (m *MagicEden) CollectionFloor(ctx context.Context, slug string) (*repositories.FloorQuote, error) {
	var stats meStats
	if err := m.http.get(ctx, "collection_stats", "/collections/"+url.PathEscape(slug)+"/stats", &stats); err != nil {
		return nil, fmt.Errorf("failed to get collection stats: %w", err)
	}
	if stats.Symbol == "" && stats.FloorPrice == nil {
		return nil, ErrNotFound
	}
	if stats.FloorPrice == nil || *stats.FloorPrice <= 0 {
		return &repositories.FloorQuote{Listed: false}, nil
	}
	return &repositories.FloorQuote{Raw: *stats.FloorPrice, Listed: true}, nil
}

// LastSalePrice returns the most recent non-zero sale or listing price of a mint
func (m *MagicEden) LastSalePrice(ctx context.Context, mint string) (float64, error) {
	var acts []meActivity
	path := "/tokens/" + url.PathEscape(mint) + "/activities?offset=0&limit=20"
	if err := m.http.get(ctx, "token_activities", path, &acts); err != nil {
		return 0, fmt.Errorf("failed to get activities: %w", err)
	}
	for _, a := range acts {
		if a.Price > 0 {
			return a.Price, nil
		}
	}
	return 0, ErrNotFound
}

func bearer(key string) string {
	if key == "" {
		return ""
	}
	return "Bearer " + key
}
