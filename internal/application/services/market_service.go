package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
	"github.com/bimakw/identity-prism/internal/infrastructure/cache"
)

const (
	// raw prices above this are in lamports
	lamportThreshold = 1e6

	magicEdenMarketURL = "https://magiceden.io/marketplace/"
	tensorTradeURL     = "https://www.tensor.trade/trade/"
)

// MarketService resolves collection floor prices across marketplaces.
// Every step is best effort. Failures fall through to the next step.
type MarketService struct {
	primary   repositories.PrimaryMarketRepository
	secondary repositories.SecondaryMarketRepository
	cache     *cache.RedisCache
	logger    *zap.Logger
}

// NewMarketService creates a new market service. cache may be nil.
func NewMarketService(
	primary repositories.PrimaryMarketRepository,
	secondary repositories.SecondaryMarketRepository,
	cache *cache.RedisCache,
	logger *zap.Logger,
) *MarketService {
	return &MarketService{
		primary:   primary,
		secondary: secondary,
		cache:     cache,
		logger:    logger,
	}
}

// resolution accumulates state across resolve steps
type resolution struct {
	query     entities.CollectionQuery
	slug      string
	price     *float64
	source    string
	notListed bool
}

type resolveStep struct {
	name string
	run  func(ctx context.Context, r *resolution) error
}

// CollectionStats resolves the floor of a collection. It never fails; total
// resolution failure is reported as FloorUnknown.
func (s *MarketService) CollectionStats(ctx context.Context, q entities.CollectionQuery) *entities.CollectionStats {
	cacheKey := fmt.Sprintf("collection-stats:%s:%s:%s:%s", q.Collection, q.Mint, strings.ToLower(q.Symbol), strings.ToLower(q.Name))

	var cached entities.CollectionStats
	if s.cache != nil {
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.logger.Debug("Cache hit", zap.String("key", cacheKey))
			return &cached
		}
	}

	r := &resolution{query: q}
	steps := []resolveStep{
		{name: "slug", run: s.resolveSlug},
		{name: "magiceden", run: s.primaryFloor},
		{name: "tensor", run: s.secondaryFloor},
		{name: "last_sale", run: s.lastSale},
	}
	for _, step := range steps {
		if r.price != nil {
			break
		}
		if err := step.run(ctx, r); err != nil {
			s.logger.Warn("Collection resolve step failed",
				zap.String("step", step.name),
				zap.String("collection", q.Collection),
				zap.String("mint", q.Mint),
				zap.Error(err),
			)
		}
	}

	stats := r.stats()

	if s.cache != nil && stats.Status != entities.FloorUnknown {
		if err := s.cache.Set(ctx, cacheKey, stats); err != nil {
			s.logger.Warn("Failed to cache collection stats", zap.Error(err))
		}
	}

	return stats
}

func (s *MarketService) resolveSlug(ctx context.Context, r *resolution) error {
	if r.query.Mint == "" {
		return nil
	}
	slug, err := s.primary.ResolveSlug(ctx, r.query.Mint)
	if err != nil {
		return err
	}
	r.slug = slug
	return nil
}

// primaryFloor tries the resolved slug, then every slug derived from symbol and name.
// The first priced candidate wins.
func (s *MarketService) primaryFloor(ctx context.Context, r *resolution) error {
	candidates := CandidateSlugs(r.query.Symbol, r.query.Name)
	if r.slug != "" {
		candidates = append([]string{r.slug}, candidates...)
	}

	var lastErr error
	for _, slug := range candidates {
		floor, err := s.primary.CollectionFloor(ctx, slug)
		if err != nil {
			lastErr = err
			continue
		}
		if !floor.Listed || floor.Raw <= 0 {
			r.notListed = true
			continue
		}
		price := normalizeSOL(floor.Raw)
		r.price = &price
		r.source = "magiceden"
		r.slug = slug
		return nil
	}
	return lastErr
}

func (s *MarketService) secondaryFloor(ctx context.Context, r *resolution) error {
	if r.query.Collection == "" {
		return nil
	}
	floor, err := s.secondary.CollectionFloor(ctx, r.query.Collection)
	if err != nil {
		return err
	}
	if !floor.Listed || floor.Raw <= 0 {
		r.notListed = true
		return nil
	}
	price := normalizeSOL(floor.Raw)
	r.price = &price
	r.source = "tensor"
	return nil
}

func (s *MarketService) lastSale(ctx context.Context, r *resolution) error {
	if r.query.Mint == "" {
		return nil
	}
	raw, err := s.primary.LastSalePrice(ctx, r.query.Mint)
	if err != nil {
		return err
	}
	if raw <= 0 {
		return nil
	}
	price := normalizeSOL(raw)
	r.price = &price
	r.source = "magiceden_activity"
	return nil
}

func (r *resolution) stats() *entities.CollectionStats {
	stats := &entities.CollectionStats{
		FloorSOL: r.price,
		Source:   r.source,
	}
	switch {
	case r.price != nil:
		stats.Status = entities.FloorListed
	case r.notListed:
		stats.Status = entities.FloorNotListed
	default:
		stats.Status = entities.FloorUnknown
	}

	if r.slug != "" {
		stats.MEURL = magicEdenMarketURL + r.slug
	}
	switch {
	case r.slug != "":
		stats.TensorURL = tensorTradeURL + r.slug
	case r.query.Collection != "":
		stats.TensorURL = tensorTradeURL + r.query.Collection
	}
	return stats
}

// CandidateSlugs derives marketplace slugs from a symbol and a name.
// Each is lowercased and tried with underscores, hyphens and no separator.
func CandidateSlugs(symbol, name string) []string {
	seen := make(map[string]bool)
	var slugs []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			slugs = append(slugs, s)
		}
	}

	for _, hint := range []string{symbol, name} {
		base := strings.Join(strings.Fields(strings.ToLower(hint)), " ")
		if base == "" {
			continue
		}
		add(strings.ReplaceAll(base, " ", "_"))
		add(strings.ReplaceAll(base, " ", "-"))
		add(strings.ReplaceAll(base, " ", ""))
	}
	return slugs
}

func normalizeSOL(raw float64) float64 {
	if raw > lamportThreshold {
		return raw / lamportsPerSOL
	}
	return raw
}
