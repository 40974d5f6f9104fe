package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bimakw/identity-prism/internal/domain/classification"
	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
	"github.com/bimakw/identity-prism/internal/domain/scoring"
	"github.com/bimakw/identity-prism/internal/observability"
)

const lamportsPerSOL = 1_000_000_000

// MaxBatchSize is the largest number of addresses accepted by Batch
const MaxBatchSize = 5

// ReputationService builds identity snapshots
type ReputationService struct {
	upstreams  repositories.UpstreamProvider
	history    *HistoryFetcher
	classifier *classification.Classifier
	logger     *zap.Logger
	now        func() time.Time
}

// NewReputationService creates a new reputation service
func NewReputationService(
	upstreams repositories.UpstreamProvider,
	history *HistoryFetcher,
	classifier *classification.Classifier,
	logger *zap.Logger,
) *ReputationService {
	return &ReputationService{
		upstreams:  upstreams,
		history:    history,
		classifier: classifier,
		logger:     logger,
		now:        time.Now,
	}
}

// ReputationDTO is the API representation of a snapshot
type ReputationDTO struct {
	Address   string                  `json:"address"`
	Score     int                     `json:"score"`
	Tier      entities.Tier           `json:"tier"`
	Rarity    string                  `json:"rarity"`
	Badges    []entities.Badge        `json:"badges"`
	Breakdown entities.ScoreBreakdown `json:"breakdown"`
	Stats     entities.WalletStats    `json:"stats"`
}

// BatchEntry is one result of a batch lookup. Failed lookups carry only the
// address and the error message.
type BatchEntry struct {
	*ReputationDTO
	Address string `json:"address"`
	Error   string `json:"error,omitempty"`
}

// BatchResponse is the API response for batch lookups
type BatchResponse struct {
	Results []BatchEntry `json:"results"`
}

// CompareResponse is the API response for comparing two addresses.
// Diff is the score of A minus the score of B.
type CompareResponse struct {
	A      ReputationDTO `json:"a"`
	B      ReputationDTO `json:"b"`
	Diff   int           `json:"diff"`
	Winner string        `json:"winner"`
}

// ToDTO converts a snapshot to its API representation
func ToDTO(s *entities.Snapshot) ReputationDTO {
	badges := s.Result.Badges
	if badges == nil {
		badges = []entities.Badge{}
	}
	return ReputationDTO{
		Address:   s.Address,
		Score:     s.Result.Score,
		Tier:      s.Result.Tier,
		Rarity:    s.Result.Rarity,
		Badges:    badges,
		Breakdown: s.Result.Breakdown,
		Stats:     s.Stats,
	}
}

// GetReputation builds the snapshot of address and formats it
func (s *ReputationService) GetReputation(ctx context.Context, address string) (*ReputationDTO, error) {
	snapshot, err := s.BuildSnapshot(ctx, address)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(snapshot)
	return &dto, nil
}

// BuildSnapshot fetches balance, history, token accounts and assets of address
// concurrently, then classifies and scores them.
// Only the asset list fails over across the credential ring. If it fails on every
// credential the snapshot is built from an empty asset list.
func (s *ReputationService) BuildSnapshot(ctx context.Context, address string) (snapshot *entities.Snapshot, err error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	defer func() { observability.SnapshotBuilt(err) }()

	ring, err := s.upstreams.Route(address)
	if err != nil {
		return nil, err
	}
	primary := ring[0]

	var (
		lamports uint64
		history  *entities.History
		accounts []entities.TokenAccountRecord
		assets   []entities.AssetRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		lamports, err = primary.Chain.GetBalance(gctx, address)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.history.Fetch(gctx, primary.Chain, address)
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = primary.Chain.GetTokenAccounts(gctx, address)
		return err
	})
	g.Go(func() error {
		assets = s.fetchAssets(gctx, ring, address)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build snapshot: %w", err)
	}

	holdings := s.classifier.Classify(assets, accounts)
	now := s.now().UTC()
	firstTx := history.OldestBlockTime()
	sol := float64(lamports) / lamportsPerSOL

	result := scoring.Compute(entities.ScoreInput{
		TxCount:          len(history.Records),
		FirstTxTime:      firstTx,
		Now:              now,
		SOLBalance:       sol,
		UniqueTokenCount: holdings.UniqueTokenCount,
		NFTCount:         holdings.NFTCount,
		Holdings:         holdings,
	})

	s.logger.Debug("Snapshot built",
		zap.String("address", address),
		zap.String("upstream", primary.Label),
		zap.Int("score", result.Score),
		zap.String("tier", string(result.Tier)),
	)

	return &entities.Snapshot{
		Address: address,
		Result:  result,
		Stats: entities.WalletStats{
			WalletAgeDays:    scoring.WalletAgeDays(firstTx, now),
			SOLBalance:       sol,
			TxCount:          len(history.Records),
			TokenCount:       holdings.FungibleTokenCount,
			NFTCount:         holdings.NFTCount,
			UniqueTokenCount: holdings.UniqueTokenCount,
			HistoryTruncated: history.Truncated,
		},
		Holdings:    holdings,
		FirstTxTime: firstTx,
		BuiltAt:     now,
	}, nil
}

// fetchAssets tries every upstream of the ring in order
func (s *ReputationService) fetchAssets(ctx context.Context, ring []repositories.Upstream, address string) []entities.AssetRecord {
	var lastErr error
	for _, up := range ring {
		assets, err := up.Assets.GetAssetsByOwner(ctx, address)
		if err == nil {
			return assets
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		s.logger.Warn("Asset list fetch failed, trying next upstream",
			zap.String("address", address),
			zap.String("upstream", up.Label),
			zap.Error(err),
		)
	}

	observability.AssetListDegraded()
	s.logger.Warn("Asset list unavailable on every upstream, scoring without assets",
		zap.String("address", address),
		zap.Int("upstreams", len(ring)),
		zap.Error(lastErr),
	)
	return nil
}

// Compare builds both snapshots concurrently
func (s *ReputationService) Compare(ctx context.Context, a, b string) (*CompareResponse, error) {
	var snapA, snapB *entities.Snapshot

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapA, err = s.BuildSnapshot(gctx, a)
		return err
	})
	g.Go(func() error {
		var err error
		snapB, err = s.BuildSnapshot(gctx, b)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	resp := &CompareResponse{
		A:    ToDTO(snapA),
		B:    ToDTO(snapB),
		Diff: snapA.Result.Score - snapB.Result.Score,
	}
	switch {
	case resp.Diff > 0:
		resp.Winner = a
	case resp.Diff < 0:
		resp.Winner = b
	default:
		resp.Winner = "tie"
	}
	return resp, nil
}

// Batch builds snapshots for up to MaxBatchSize addresses. A failed address is
// reported in its entry and never fails the batch. Results keep input order.
func (s *ReputationService) Batch(ctx context.Context, addresses []string) (*BatchResponse, error) {
	if len(addresses) == 0 || len(addresses) > MaxBatchSize {
		return nil, fmt.Errorf("%w: batch size must be between 1 and %d", entities.ErrInvalidRequest, MaxBatchSize)
	}

	results := make([]BatchEntry, len(addresses))
	var g errgroup.Group
	for i, address := range addresses {
		i, address := i, address
		g.Go(func() error {
			dto, err := s.GetReputation(ctx, address)
			if err != nil {
				s.logger.Warn("Batch entry failed",
					zap.String("address", address),
					zap.Error(err),
				)
				results[i] = BatchEntry{Address: address, Error: publicMessage(err)}
				return nil
			}
			results[i] = BatchEntry{ReputationDTO: dto, Address: address}
			return nil
		})
	}
	_ = g.Wait()

	return &BatchResponse{Results: results}, nil
}

// publicMessage returns the sentinel text of err, hiding upstream detail
func publicMessage(err error) string {
	for _, sentinel := range []error{
		entities.ErrInvalidAddress,
		entities.ErrInvalidRequest,
		entities.ErrNoRoute,
		entities.ErrUpstream,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "failed to build snapshot"
}
