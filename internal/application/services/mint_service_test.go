package services

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"
	"time"

	sdk "github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/infrastructure/solana"
	"github.com/bimakw/identity-prism/internal/infrastructure/staging"
	"github.com/bimakw/identity-prism/internal/testutil"
)

type mintFixture struct {
	service  *MintService
	txs      *testutil.MockTransactionRepository
	prices   *testutil.MockPriceRepository
	treasury sdk.PrivateKey
	owner    sdk.PrivateKey
}

func mustKey(t *testing.T) sdk.PrivateKey {
	t.Helper()
	k, err := sdk.NewRandomPrivateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	return k
}

func setupMintServiceTest(t *testing.T, mutate func(cfg *config.MintConfig)) mintFixture {
	t.Helper()

	f := mintFixture{
		txs:      testutil.NewMockTransactionRepository(testutil.TestBlockhash),
		prices:   testutil.NewMockPriceRepository(),
		treasury: mustKey(t),
		owner:    mustKey(t),
	}

	cfg := testMintConfig()
	cfg.TreasuryAddress = f.treasury.PublicKey().String()
	cfg.CollectionAddress = mustKey(t).PublicKey().String()
	if mutate != nil {
		mutate(&cfg)
	}

	logger := zap.NewNop()
	prices := NewPriceService(f.prices, time.Minute, cfg, logger)
	f.service = NewMintService(f.txs, staging.NewMemoryStore(cfg.StagingTTL), prices, cfg, f.treasury, logger)
	return f
}

// clientSign decodes a staged transaction and adds the owner signature
func clientSign(t *testing.T, encoded string, owner sdk.PrivateKey) string {
	t.Helper()

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("staged transaction is not base64: %v", err)
	}
	tx, err := solana.DecodeTransaction(raw)
	if err != nil {
		t.Fatalf("failed to decode staged transaction: %v", err)
	}
	if err := solana.PartialSign(tx, owner); err != nil {
		t.Fatalf("failed to sign: %v", err)
	}
	out, err := solana.EncodeTransaction(tx)
	if err != nil {
		t.Fatalf("failed to encode: %v", err)
	}
	return base64.StdEncoding.EncodeToString(out)
}

func decodeStaged(t *testing.T, encoded string) *sdk.Transaction {
	t.Helper()
	raw, _ := base64.StdEncoding.DecodeString(encoded)
	tx, err := solana.DecodeTransaction(raw)
	if err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	return tx
}

func TestMintService_StageAndFinalize(t *testing.T) {
	f := setupMintServiceTest(t, nil)
	ctx := context.Background()
	owner := f.owner.PublicKey().String()

	staged, err := f.service.Stage(ctx, &MintRequest{Owner: owner})
	if err != nil {
		t.Fatalf("unexpected stage error: %v", err)
	}
	if !staged.Finalize || staged.RequestID == "" || staged.AssetID == "" {
		t.Fatalf("unexpected stage response: %+v", staged)
	}

	tx := decodeStaged(t, staged.Transaction)
	if n := tx.Message.Header.NumRequiredSignatures; n != 3 {
		t.Errorf("expected 3 signers, got %d", n)
	}
	if !tx.Message.AccountKeys[0].Equals(f.owner.PublicKey()) {
		t.Error("expected owner to pay fees")
	}
	if !solana.IsSignedBy(tx, f.treasury.PublicKey()) {
		t.Error("expected treasury signature on staged transaction")
	}
	if solana.IsSignedBy(tx, f.owner.PublicKey()) {
		t.Error("expected owner slot to be empty")
	}

	result, err := f.service.Finalize(ctx, &MintRequest{
		RequestID:         staged.RequestID,
		SignedTransaction: clientSign(t, staged.Transaction, f.owner),
	})
	if err != nil {
		t.Fatalf("unexpected finalize error: %v", err)
	}
	if !result.Finalized || result.Signature != testutil.TestTxSignature || result.AssetID != staged.AssetID {
		t.Errorf("unexpected finalize response: %+v", result)
	}

	if len(f.txs.Sent) != 1 {
		t.Fatalf("expected 1 submitted transaction, got %d", len(f.txs.Sent))
	}
	sent, err := solana.DecodeTransaction(f.txs.Sent[0])
	if err != nil {
		t.Fatalf("failed to decode submitted transaction: %v", err)
	}
	if err := sent.VerifySignatures(); err != nil {
		t.Errorf("expected fully signed transaction: %v", err)
	}
}

func TestMintService_FinalizeTwice(t *testing.T) {
	f := setupMintServiceTest(t, nil)
	ctx := context.Background()

	staged, err := f.service.Stage(ctx, &MintRequest{Owner: f.owner.PublicKey().String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := &MintRequest{
		RequestID:         staged.RequestID,
		SignedTransaction: clientSign(t, staged.Transaction, f.owner),
	}

	if _, err := f.service.Finalize(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = f.service.Finalize(ctx, req)
	if !IsMintNotFound(err) {
		t.Errorf("expected ErrMintNotFound, got %v", err)
	}
	if len(f.txs.Sent) != 1 {
		t.Errorf("expected a single submission, got %d", len(f.txs.Sent))
	}
}

func TestMintService_FinalizeRejectsOtherMessage(t *testing.T) {
	f := setupMintServiceTest(t, nil)
	ctx := context.Background()
	owner := f.owner.PublicKey().String()

	first, _ := f.service.Stage(ctx, &MintRequest{Owner: owner})
	second, _ := f.service.Stage(ctx, &MintRequest{Owner: owner})

	_, err := f.service.Finalize(ctx, &MintRequest{
		RequestID:         first.RequestID,
		SignedTransaction: clientSign(t, second.Transaction, f.owner),
	})
	if !errors.Is(err, entities.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
	if len(f.txs.Sent) != 0 {
		t.Error("expected nothing submitted")
	}
}

func TestMintService_FinalizeRequiresOwnerSignature(t *testing.T) {
	f := setupMintServiceTest(t, nil)
	ctx := context.Background()

	staged, _ := f.service.Stage(ctx, &MintRequest{Owner: f.owner.PublicKey().String()})

	_, err := f.service.Finalize(ctx, &MintRequest{
		RequestID:         staged.RequestID,
		SignedTransaction: staged.Transaction,
	})
	if !errors.Is(err, entities.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestMintService_FinalizeValidation(t *testing.T) {
	f := setupMintServiceTest(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		req  MintRequest
		want error
	}{
		{"missing fields", MintRequest{RequestID: "x"}, entities.ErrInvalidRequest},
		{"not base64", MintRequest{RequestID: "x", SignedTransaction: "%%%"}, entities.ErrInvalidRequest},
		{"not a transaction", MintRequest{RequestID: "x", SignedTransaction: base64.StdEncoding.EncodeToString([]byte{1, 2})}, entities.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.service.Finalize(ctx, &tt.req); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestMintService_FinalizeUnknownRequest(t *testing.T) {
	f := setupMintServiceTest(t, nil)
	ctx := context.Background()

	staged, _ := f.service.Stage(ctx, &MintRequest{Owner: f.owner.PublicKey().String()})

	_, err := f.service.Finalize(ctx, &MintRequest{
		RequestID:         "never-staged",
		SignedTransaction: clientSign(t, staged.Transaction, f.owner),
	})
	if !IsMintNotFound(err) {
		t.Errorf("expected ErrMintNotFound, got %v", err)
	}
}

func TestMintService_StageSKRPayment(t *testing.T) {
	f := setupMintServiceTest(t, nil)
	f.prices.SetPrice(entities.PriceSOL, 150)
	f.prices.SetPrice(entities.PriceSKR, 0.02)

	staged, err := f.service.Stage(context.Background(), &MintRequest{
		Owner:        f.owner.PublicKey().String(),
		PaymentAsset: entities.PaymentSKR,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tx := decodeStaged(t, staged.Transaction)
	payment := tx.Message.Instructions[0]
	program := tx.Message.AccountKeys[payment.ProgramIDIndex]
	if !program.Equals(sdk.TokenProgramID) {
		t.Fatalf("expected token program payment, got %s", program)
	}
	// TransferChecked: discriminator, u64 amount, u8 decimals
	if amount := binary.LittleEndian.Uint64(payment.Data[1:9]); amount != 38_000_000 {
		t.Errorf("expected 38000000 base units, got %d", amount)
	}
	if payment.Data[9] != 6 {
		t.Errorf("expected 6 decimals, got %d", payment.Data[9])
	}
}

func TestMintService_StageSKRWithoutPrice(t *testing.T) {
	f := setupMintServiceTest(t, nil)

	_, err := f.service.Stage(context.Background(), &MintRequest{
		Owner:        f.owner.PublicKey().String(),
		PaymentAsset: entities.PaymentSKR,
	})
	if !errors.Is(err, entities.ErrPriceUnavailable) {
		t.Errorf("expected ErrPriceUnavailable, got %v", err)
	}
}

func TestMintService_StageErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid owner", func(t *testing.T) {
		f := setupMintServiceTest(t, nil)
		if _, err := f.service.Stage(ctx, &MintRequest{Owner: "nope"}); !errors.Is(err, entities.ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress, got %v", err)
		}
	})

	t.Run("unsupported payment", func(t *testing.T) {
		f := setupMintServiceTest(t, nil)
		_, err := f.service.Stage(ctx, &MintRequest{Owner: f.owner.PublicKey().String(), PaymentAsset: "usdc"})
		if !errors.Is(err, entities.ErrInvalidRequest) {
			t.Errorf("expected ErrInvalidRequest, got %v", err)
		}
	})

	t.Run("collection without treasury key", func(t *testing.T) {
		f := setupMintServiceTest(t, nil)
		f.service.treasury = nil
		_, err := f.service.Stage(ctx, &MintRequest{Owner: f.owner.PublicKey().String()})
		if !errors.Is(err, entities.ErrSignerUnavailable) {
			t.Errorf("expected ErrSignerUnavailable, got %v", err)
		}
	})

	t.Run("no treasury at all", func(t *testing.T) {
		f := setupMintServiceTest(t, func(cfg *config.MintConfig) {
			cfg.TreasuryAddress = ""
			cfg.CollectionAddress = ""
		})
		f.service.treasury = nil
		_, err := f.service.Stage(ctx, &MintRequest{Owner: f.owner.PublicKey().String()})
		if !errors.Is(err, entities.ErrSignerUnavailable) {
			t.Errorf("expected ErrSignerUnavailable, got %v", err)
		}
	})
}

func TestMintService_StageWithoutCollection(t *testing.T) {
	f := setupMintServiceTest(t, func(cfg *config.MintConfig) {
		cfg.CollectionAddress = ""
	})
	f.service.treasury = nil

	staged, err := f.service.Stage(context.Background(), &MintRequest{Owner: f.owner.PublicKey().String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// owner and asset only
	tx := decodeStaged(t, staged.Transaction)
	if n := tx.Message.Header.NumRequiredSignatures; n != 2 {
		t.Errorf("expected 2 signers, got %d", n)
	}
}
