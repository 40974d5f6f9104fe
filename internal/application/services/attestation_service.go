package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	sdk "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
	"github.com/bimakw/identity-prism/internal/infrastructure/solana"
)

// Attestation is the memo payload written on chain
type Attestation struct {
	App     string        `json:"app"`
	Address string        `json:"address"`
	Score   int           `json:"score"`
	Tier    entities.Tier `json:"tier"`
	TS      int64         `json:"ts"`
}

// AttestationResponse carries the co-signed memo transaction
type AttestationResponse struct {
	Transaction string        `json:"transaction"`
	Score       int           `json:"score"`
	Tier        entities.Tier `json:"tier"`
	Memo        string        `json:"memo"`
}

// AttestationService records a snapshot's score on chain through the memo program
type AttestationService struct {
	reputation *ReputationService
	txs        repositories.TransactionRepository
	treasury   sdk.PrivateKey
	app        string
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttestationService creates a new attestation service
func NewAttestationService(
	reputation *ReputationService,
	txs repositories.TransactionRepository,
	treasury sdk.PrivateKey,
	app string,
	logger *zap.Logger,
) *AttestationService {
	return &AttestationService{
		reputation: reputation,
		txs:        txs,
		treasury:   treasury,
		app:        app,
		logger:     logger,
		now:        time.Now,
	}
}

// Attest builds a memo transaction paid by address and co-signed by the treasury
func (s *AttestationService) Attest(ctx context.Context, address string) (*AttestationResponse, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}
	if s.treasury == nil {
		return nil, fmt.Errorf("%w: attestation needs the treasury key", entities.ErrSignerUnavailable)
	}
	if s.txs == nil {
		return nil, entities.ErrNoRoute
	}

	snapshot, err := s.reputation.BuildSnapshot(ctx, address)
	if err != nil {
		return nil, err
	}

	memo, err := json.Marshal(Attestation{
		App:     s.app,
		Address: address,
		Score:   snapshot.Result.Score,
		Tier:    snapshot.Result.Tier,
		TS:      s.now().Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode attestation: %w", err)
	}

	payer := sdk.MustPublicKeyFromBase58(address)
	blockhash, err := s.txs.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.BuildTransaction(
		[]sdk.Instruction{solana.MemoInstruction(memo, payer, s.treasury.PublicKey())},
		blockhash,
		payer,
	)
	if err != nil {
		return nil, err
	}
	if err := solana.PartialSign(tx, s.treasury); err != nil {
		return nil, err
	}

	raw, err := solana.EncodeTransaction(tx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Attestation built",
		zap.String("address", address),
		zap.Int("score", snapshot.Result.Score),
	)

	return &AttestationResponse{
		Transaction: base64.StdEncoding.EncodeToString(raw),
		Score:       snapshot.Result.Score,
		Tier:        snapshot.Result.Tier,
		Memo:        string(memo),
	}, nil
}
