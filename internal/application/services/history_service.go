package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
)

const defaultHistoryPageSize = 1000

// HistoryFetcher pages through the signature history of an account
type HistoryFetcher struct {
	pageSize int
	maxPages int
	logger   *zap.Logger
}

// NewHistoryFetcher creates a fetcher. A zero HistoryMaxPages fetches until the
// upstream runs out of records.
func NewHistoryFetcher(cfg config.SolanaConfig, logger *zap.Logger) *HistoryFetcher {
	pageSize := cfg.HistoryPageSize
	if pageSize <= 0 {
		pageSize = defaultHistoryPageSize
	}
	return &HistoryFetcher{
		pageSize: pageSize,
		maxPages: cfg.HistoryMaxPages,
		logger:   logger,
	}
}

// Fetch returns the signatures of address newest first. Paging stops on a short
// page or once the page cap is reached. A full page at the cap is followed
// by a single-record lookup so truncation is only reported when older records exist.
func (f *HistoryFetcher) Fetch(ctx context.Context, chain repositories.ChainRepository, address string) (*entities.History, error) {
	history := &entities.History{}
	before := ""

	for {
		page, err := chain.GetSignaturesPage(ctx, address, before, f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch history page %d: %w", history.Pages+1, err)
		}
		history.Pages++
		history.Records = append(history.Records, page...)

		if len(page) < f.pageSize {
			break
		}

		next := page[len(page)-1].Signature
		if next == before {
			// cursor did not advance
			f.logger.Warn("History cursor stalled",
				zap.String("address", address),
				zap.String("cursor", next),
			)
			break
		}
		before = next

		if f.maxPages > 0 && history.Pages >= f.maxPages {
			history.Truncated = f.hasMore(ctx, chain, address, before)
			break
		}
	}

	f.logger.Debug("Fetched history",
		zap.String("address", address),
		zap.Int("records", len(history.Records)),
		zap.Int("pages", history.Pages),
		zap.Bool("truncated", history.Truncated),
	)
	return history, nil
}

// hasMore reports whether any signature is older than cursor. A failed lookup
// counts as more history, since the age is then known to be a lower bound at best.
func (f *HistoryFetcher) hasMore(ctx context.Context, chain repositories.ChainRepository, address, cursor string) bool {
	page, err := chain.GetSignaturesPage(ctx, address, cursor, 1)
	if err != nil {
		f.logger.Warn("Failed to check for older history",
			zap.String("address", address),
			zap.Error(err),
		)
		return true
	}
	return len(page) > 0
}
