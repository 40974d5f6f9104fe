package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
	"github.com/bimakw/identity-prism/internal/observability"
)

type cachedPrice struct {
	usd       float64
	fetchedAt time.Time
}

// PriceService memoizes fiat prices per kind. Each kind has its own TTL clock.
// A failed refresh keeps serving the last good value.
type PriceService struct {
	repo   repositories.PriceRepository
	ttl    time.Duration
	mint   config.MintConfig
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	entries map[entities.PriceKind]cachedPrice
}

// NewPriceService creates a new price service
func NewPriceService(repo repositories.PriceRepository, ttl time.Duration, mint config.MintConfig, logger *zap.Logger) *PriceService {
	return &PriceService{
		repo:    repo,
		ttl:     ttl,
		mint:    mint,
		logger:  logger,
		now:     time.Now,
		entries: make(map[entities.PriceKind]cachedPrice),
	}
}

// GetCachedPrice returns the USD price of kind, or nil when it was never fetched
// successfully. Concurrent misses may fetch more than once.
func (s *PriceService) GetCachedPrice(ctx context.Context, kind entities.PriceKind) *float64 {
	s.mu.Lock()
	entry, ok := s.entries[kind]
	s.mu.Unlock()

	now := s.now()
	if ok && now.Sub(entry.fetchedAt) < s.ttl {
		return &entry.usd
	}

	usd, err := s.repo.FetchUSD(ctx, kind)
	if err != nil {
		if ok {
			observability.StalePriceServed(string(kind))
			s.logger.Warn("Price refresh failed, serving stale value",
				zap.String("kind", string(kind)),
				zap.Duration("age", now.Sub(entry.fetchedAt)),
				zap.Error(err),
			)
			return &entry.usd
		}
		s.logger.Warn("Price unavailable",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		return nil
	}

	s.mu.Lock()
	s.entries[kind] = cachedPrice{usd: usd, fetchedAt: now}
	s.mu.Unlock()
	return &usd
}

// GetMintQuote prices one mint in SOL and in the discounted alternate asset
func (s *PriceService) GetMintQuote(ctx context.Context) (*entities.MintQuote, error) {
	sol := s.GetCachedPrice(ctx, entities.PriceSOL)
	skr := s.GetCachedPrice(ctx, entities.PriceSKR)
	if sol == nil || skr == nil {
		return nil, entities.ErrPriceUnavailable
	}

	quote, err := ComputeQuote(*sol, *skr, s.mint.BasePriceSOL, s.mint.SKRDiscount, s.mint.SKRDecimals)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ComputeQuote converts baseSOL into an alt-asset amount at the given discount.
// The alt amount is rounded up to a whole unit and is at least 1.
func ComputeQuote(solUSD, altUSD, baseSOL, discount float64, altDecimals int32) (entities.MintQuote, error) {
	if solUSD <= 0 || altUSD <= 0 {
		return entities.MintQuote{}, fmt.Errorf("%w: non-positive price", entities.ErrPriceUnavailable)
	}

	baseUSD := decimal.NewFromFloat(baseSOL).Mul(decimal.NewFromFloat(solUSD))
	discountedUSD := baseUSD.Mul(decimal.NewFromInt(1).Sub(decimal.NewFromFloat(discount)))

	amount := discountedUSD.Div(decimal.NewFromFloat(altUSD)).Ceil()
	if amount.LessThan(decimal.NewFromInt(1)) {
		amount = decimal.NewFromInt(1)
	}

	return entities.MintQuote{
		SOLUSD:        solUSD,
		SKRUSD:        altUSD,
		BaseSOL:       baseSOL,
		Discount:      discount,
		BaseUSD:       baseUSD.InexactFloat64(),
		DiscountedUSD: discountedUSD.InexactFloat64(),
		SKRAmount:     amount.IntPart(),
		SKRAmountRaw:  amount.Shift(altDecimals).StringFixed(0),
	}, nil
}
