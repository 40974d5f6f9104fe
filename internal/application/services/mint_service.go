package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sdk "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
	"github.com/bimakw/identity-prism/internal/infrastructure/solana"
)

// MintRequest is the body of both mint phases. The finalize phase is selected
// by the presence of RequestID and SignedTransaction.
type MintRequest struct {
	Owner             string                `json:"owner"`
	PaymentAsset      entities.PaymentAsset `json:"paymentAsset,omitempty"`
	RequestID         string                `json:"requestId,omitempty"`
	SignedTransaction string                `json:"signedTransaction,omitempty"`
}

// IsFinalize reports whether the request completes a staged mint
func (r *MintRequest) IsFinalize() bool {
	return r.RequestID != "" && r.SignedTransaction != ""
}

// StageMintResponse carries the partially signed transaction for the client to sign
type StageMintResponse struct {
	Transaction string `json:"transaction"`
	AssetID     string `json:"assetId"`
	RequestID   string `json:"requestId"`
	Finalize    bool   `json:"finalize"`
}

// FinalizeMintResponse is returned once the mint has been submitted
type FinalizeMintResponse struct {
	Signature string `json:"signature"`
	AssetID   string `json:"assetId"`
	Finalized bool   `json:"finalized"`
}

// MintService runs the two-phase Core asset mint.
// Stage builds and partially signs the transaction, Finalize adds the asset
// signature to the client-signed copy and submits it.
type MintService struct {
	txs      repositories.TransactionRepository
	store    repositories.PendingMintRepository
	prices   *PriceService
	cfg      config.MintConfig
	treasury sdk.PrivateKey
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

// NewMintService creates a new mint service. treasury may be nil, in which case
// only mints without a collection can be staged.
func NewMintService(
	txs repositories.TransactionRepository,
	store repositories.PendingMintRepository,
	prices *PriceService,
	cfg config.MintConfig,
	treasury sdk.PrivateKey,
	logger *zap.Logger,
) *MintService {
	return &MintService{
		txs:      txs,
		store:    store,
		prices:   prices,
		cfg:      cfg,
		treasury: treasury,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Stage builds the mint transaction for req.Owner
func (s *MintService) Stage(ctx context.Context, req *MintRequest) (*StageMintResponse, error) {
	owner, err := sdk.PublicKeyFromBase58(req.Owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidAddress, req.Owner)
	}
	if s.txs == nil {
		return nil, entities.ErrNoRoute
	}

	recipient, err := s.treasuryAddress()
	if err != nil {
		return nil, err
	}

	var collection, authority sdk.PublicKey
	if s.cfg.CollectionAddress != "" {
		if s.treasury == nil {
			return nil, fmt.Errorf("%w: collection mints need the treasury key", entities.ErrSignerUnavailable)
		}
		collection, err = sdk.PublicKeyFromBase58(s.cfg.CollectionAddress)
		if err != nil {
			return nil, fmt.Errorf("invalid collection address: %w", err)
		}
		authority = s.treasury.PublicKey()
	}

	assetKey, err := sdk.NewRandomPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate asset key: %w", err)
	}

	var instructions []sdk.Instruction
	payment, err := s.paymentInstruction(ctx, req.PaymentAsset, owner, recipient)
	if err != nil {
		return nil, err
	}
	if payment != nil {
		instructions = append(instructions, payment)
	}

	create, err := solana.CreateV1Instruction(solana.CoreAsset{
		Asset:      assetKey.PublicKey(),
		Collection: collection,
		Authority:  authority,
		Payer:      owner,
		Owner:      owner,
		Name:       s.cfg.AssetName,
		URI:        fmt.Sprintf("%s/%s.json", strings.TrimRight(s.cfg.MetadataBaseURI, "/"), owner),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build mint instruction: %w", err)
	}
	instructions = append(instructions, create)

	blockhash, err := s.txs.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := solana.BuildTransaction(instructions, blockhash, owner)
	if err != nil {
		return nil, err
	}
	if s.treasury != nil && !authority.IsZero() {
		if err := solana.PartialSign(tx, s.treasury); err != nil {
			return nil, err
		}
	}

	raw, err := solana.EncodeTransaction(tx)
	if err != nil {
		return nil, err
	}

	pending := &entities.PendingMint{
		RequestID:      s.newID(),
		Owner:          owner.String(),
		AssetID:        assetKey.PublicKey().String(),
		AssetSecretKey: []byte(assetKey),
		Transaction:    raw,
		CreatedAt:      s.now(),
	}
	if err := s.store.Stage(ctx, pending); err != nil {
		return nil, fmt.Errorf("failed to stage mint: %w", err)
	}

	s.logger.Info("Mint staged",
		zap.String("request_id", pending.RequestID),
		zap.String("owner", pending.Owner),
		zap.String("asset", pending.AssetID),
		zap.String("payment", string(req.PaymentAsset)),
	)

	return &StageMintResponse{
		Transaction: base64.StdEncoding.EncodeToString(raw),
		AssetID:     pending.AssetID,
		RequestID:   pending.RequestID,
		Finalize:    true,
	}, nil
}

// Finalize completes a staged mint. The staged entry is consumed even when the
// submitted transaction is rejected.
func (s *MintService) Finalize(ctx context.Context, req *MintRequest) (*FinalizeMintResponse, error) {
	if !req.IsFinalize() {
		return nil, fmt.Errorf("%w: requestId and signedTransaction are required", entities.ErrInvalidRequest)
	}
	if s.txs == nil {
		return nil, entities.ErrNoRoute
	}

	raw, err := base64.StdEncoding.DecodeString(req.SignedTransaction)
	if err != nil {
		return nil, fmt.Errorf("%w: signedTransaction is not base64", entities.ErrInvalidRequest)
	}
	signed, err := solana.DecodeTransaction(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrInvalidRequest, err)
	}

	pending, err := s.store.Finalize(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	staged, err := solana.DecodeTransaction(pending.Transaction)
	if err != nil {
		return nil, fmt.Errorf("failed to decode staged transaction: %w", err)
	}
	same, err := solana.SameMessage(staged, signed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrInvalidRequest, err)
	}
	if !same {
		return nil, fmt.Errorf("%w: transaction does not match the staged mint", entities.ErrInvalidRequest)
	}

	owner, err := sdk.PublicKeyFromBase58(pending.Owner)
	if err != nil {
		return nil, fmt.Errorf("invalid staged owner: %w", err)
	}
	if !solana.IsSignedBy(signed, owner) {
		return nil, fmt.Errorf("%w: transaction is not signed by the owner", entities.ErrInvalidRequest)
	}

	keys := []sdk.PrivateKey{sdk.PrivateKey(pending.AssetSecretKey)}
	if s.treasury != nil {
		keys = append(keys, s.treasury)
	}
	if err := solana.PartialSign(signed, keys...); err != nil {
		return nil, err
	}

	final, err := solana.EncodeTransaction(signed)
	if err != nil {
		return nil, err
	}
	sig, err := s.txs.SendRawTransaction(ctx, final)
	if err != nil {
		s.logger.Error("Mint submission failed",
			zap.String("request_id", pending.RequestID),
			zap.Error(err),
		)
		return nil, err
	}

	s.logger.Info("Mint finalized",
		zap.String("request_id", pending.RequestID),
		zap.String("asset", pending.AssetID),
		zap.String("signature", sig),
	)

	return &FinalizeMintResponse{
		Signature: sig,
		AssetID:   pending.AssetID,
		Finalized: true,
	}, nil
}

func (s *MintService) treasuryAddress() (sdk.PublicKey, error) {
	if s.cfg.TreasuryAddress != "" {
		pk, err := sdk.PublicKeyFromBase58(s.cfg.TreasuryAddress)
		if err != nil {
			return sdk.PublicKey{}, fmt.Errorf("%w: invalid treasury address", entities.ErrSignerUnavailable)
		}
		return pk, nil
	}
	if s.treasury != nil {
		return s.treasury.PublicKey(), nil
	}
	return sdk.PublicKey{}, fmt.Errorf("%w: treasury address", entities.ErrSignerUnavailable)
}

// paymentInstruction returns nil for free mints
func (s *MintService) paymentInstruction(ctx context.Context, asset entities.PaymentAsset, owner, recipient sdk.PublicKey) (sdk.Instruction, error) {
	switch asset {
	case "", entities.PaymentSOL:
		if s.cfg.BasePriceSOL <= 0 {
			return nil, nil
		}
		lamports := decimal.NewFromFloat(s.cfg.BasePriceSOL).Shift(9).Ceil().IntPart()
		return solana.SOLPaymentInstruction(owner, recipient, uint64(lamports)), nil

	case entities.PaymentSKR:
		if s.prices == nil {
			return nil, entities.ErrPriceUnavailable
		}
		quote, err := s.prices.GetMintQuote(ctx)
		if err != nil {
			return nil, err
		}
		amount, err := strconv.ParseUint(quote.SKRAmountRaw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quote amount %q: %w", quote.SKRAmountRaw, err)
		}
		mint, err := sdk.PublicKeyFromBase58(s.cfg.SKRMint)
		if err != nil {
			return nil, fmt.Errorf("invalid payment mint: %w", err)
		}
		return solana.TokenPaymentInstruction(owner, recipient, mint, amount, uint8(s.cfg.SKRDecimals))

	default:
		return nil, fmt.Errorf("%w: unsupported payment asset %q", entities.ErrInvalidRequest, asset)
	}
}

// IsMintNotFound reports whether err means the staged entry is gone
func IsMintNotFound(err error) bool {
	return errors.Is(err, entities.ErrMintNotFound)
}
