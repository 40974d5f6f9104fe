package market

import (
	"context"
	"fmt"
	"net/url"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// CoinGecko fetches USD spot prices
type CoinGecko struct {
	http  jsonClient
	coins map[entities.PriceKind]string
}

// NewCoinGecko creates a CoinGecko price client
func NewCoinGecko(cfg config.MarketConfig) *CoinGecko {
	return &CoinGecko{
		http: newJSONClient("coingecko", cfg.CoinGeckoURL, cfg.RequestTimeout, map[string]string{
			"x-cg-demo-api-key": cfg.CoinGeckoKey,
		}),
		coins: map[entities.PriceKind]string{
			entities.PriceSOL: cfg.SOLCoinID,
			entities.PriceSKR: cfg.SKRCoinID,
		},
	}
}

// FetchUSD returns the current USD price of kind
func (c *CoinGecko) FetchUSD(ctx context.Context, kind entities.PriceKind) (float64, error) {
	id, ok := c.coins[kind]
	if !ok || id == "" {
		return 0, fmt.Errorf("%w: no coin id for %s", entities.ErrPriceUnavailable, kind)
	}

	var prices map[string]map[string]float64
	path := "/simple/price?ids=" + url.QueryEscape(id) + "&vs_currencies=usd"
	if err := c.http.get(ctx, "simple_price", path, &prices); err != nil {
		return 0, fmt.Errorf("failed to fetch %s price: %w", kind, err)
	}

	usd, ok := prices[id]["usd"]
	if !ok || usd <= 0 {
		return 0, fmt.Errorf("%w: missing usd price for %s", entities.ErrPriceUnavailable, id)
	}
	return usd, nil
}
