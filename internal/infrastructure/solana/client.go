package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/observability"
)

// token2022ProgramID owns token-extension accounts
var token2022ProgramID = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")

// Client wraps the Solana RPC client with retry logic and a per-call timeout
type Client struct {
	rpc    *rpc.Client
	config config.SolanaConfig
	label  string
	logger *zap.Logger
}

// NewClient creates a new Solana RPC client for one endpoint.
// label identifies the credential in logs and metrics and must not contain the key.
func NewClient(endpoint, label string, cfg config.SolanaConfig, logger *zap.Logger) *Client {
	return &Client{
		rpc:    rpc.New(endpoint),
		config: cfg,
		label:  label,
		logger: logger,
	}
}

// retry runs fn up to MaxRetries+1 times, each attempt under its own timeout
func retry[T any](ctx context.Context, c *Client, method string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	var err error

	for i := 0; i <= c.config.MaxRetries; i++ {
		start := time.Now()
		callCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
		result, err = fn(callCtx)
		cancel()
		observability.ObserveUpstream(c.label, method, start, err)
		if err == nil {
			return result, nil
		}

		c.logger.Warn("Solana RPC call failed, retrying",
			zap.String("method", method),
			zap.String("upstream", c.label),
			zap.Int("attempt", i+1),
			zap.Error(err),
		)

		if i < c.config.MaxRetries {
			select {
			case <-ctx.Done():
				return result, fmt.Errorf("%w: %s: %w", entities.ErrUpstream, method, ctx.Err())
			case <-time.After(c.config.RetryDelay):
			}
		}
	}

	return result, fmt.Errorf("%w: %s after %d retries: %w", entities.ErrUpstream, method, c.config.MaxRetries, err)
}

// GetBalance returns the native balance in lamports
func (c *Client) GetBalance(ctx context.Context, address string) (uint64, error) {
	owner, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", entities.ErrInvalidAddress, err)
	}

	res, err := retry(ctx, c, "getBalance", func(ctx context.Context) (*rpc.GetBalanceResult, error) {
		return c.rpc.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return res.Value, nil
}

// GetSignaturesPage returns up to limit signatures older than before
func (c *Client) GetSignaturesPage(ctx context.Context, address, before string, limit int) ([]entities.SignatureRecord, error) {
	account, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrInvalidAddress, err)
	}

	opts := &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	}
	if before != "" {
		sig, err := solana.SignatureFromBase58(before)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", before, err)
		}
		opts.Before = sig
	}

	sigs, err := retry(ctx, c, "getSignaturesForAddress", func(ctx context.Context) ([]*rpc.TransactionSignature, error) {
		return c.rpc.GetSignaturesForAddressWithOpts(ctx, account, opts)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}

	records := make([]entities.SignatureRecord, 0, len(sigs))
	for _, s := range sigs {
		if s == nil {
			continue
		}
		rec := entities.SignatureRecord{
			Signature: s.Signature.String(),
			Slot:      s.Slot,
			Failed:    s.Err != nil,
		}
		if s.BlockTime != nil {
			bt := int64(*s.BlockTime)
			rec.BlockTime = &bt
		}
		records = append(records, rec)
	}
	return records, nil
}

// parsedTokenAccount is the jsonParsed layout of a token account
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			Mint        string `json:"mint"`
			TokenAmount struct {
				UIAmount *float64 `json:"uiAmount"`
				Decimals int      `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

// GetTokenAccounts returns the token accounts of both token programs owned by owner
func (c *Client) GetTokenAccounts(ctx context.Context, owner string) ([]entities.TokenAccountRecord, error) {
	ownerPk, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entities.ErrInvalidAddress, err)
	}

	var records []entities.TokenAccountRecord
	for _, programID := range []solana.PublicKey{solana.TokenProgramID, token2022ProgramID} {
		programID := programID
		res, err := retry(ctx, c, "getTokenAccountsByOwner", func(ctx context.Context) (*rpc.GetTokenAccountsResult, error) {
			return c.rpc.GetTokenAccountsByOwner(ctx, ownerPk,
				&rpc.GetTokenAccountsConfig{ProgramId: &programID},
				&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed},
			)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get token accounts: %w", err)
		}

		for _, acct := range res.Value {
			if rec, ok := c.parseTokenAccount(acct); ok {
				records = append(records, rec)
			}
		}
	}
	return records, nil
}

func (c *Client) parseTokenAccount(acct *rpc.TokenAccount) (entities.TokenAccountRecord, bool) {
	if acct == nil || acct.Account.Data == nil {
		return entities.TokenAccountRecord{}, false
	}
	raw := acct.Account.Data.GetRawJSON()
	if raw == nil {
		return entities.TokenAccountRecord{}, false
	}

	var parsed parsedTokenAccount
	if err := json.Unmarshal(raw, &parsed); err != nil {
		c.logger.Debug("Skipping unparsable token account",
			zap.String("account", acct.Pubkey.String()),
			zap.Error(err),
		)
		return entities.TokenAccountRecord{}, false
	}

	info := parsed.Parsed.Info
	if info.Mint == "" {
		return entities.TokenAccountRecord{}, false
	}

	rec := entities.TokenAccountRecord{
		Address:  acct.Pubkey.String(),
		Mint:     info.Mint,
		Decimals: info.TokenAmount.Decimals,
	}
	if info.TokenAmount.UIAmount != nil {
		rec.UIAmount = *info.TokenAmount.UIAmount
	}
	return rec, true
}

// LatestBlockhash returns the most recent finalized blockhash
func (c *Client) LatestBlockhash(ctx context.Context) (string, error) {
	res, err := retry(ctx, c, "getLatestBlockhash", func(ctx context.Context) (*rpc.GetLatestBlockhashResult, error) {
		return c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	})
	if err != nil {
		return "", fmt.Errorf("failed to get latest blockhash: %w", err)
	}
	return res.Value.Blockhash.String(), nil
}

// SendRawTransaction submits a fully signed transaction. It is not retried.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	sig, err := c.rpc.SendRawTransactionWithOpts(callCtx, raw, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	observability.ObserveUpstream(c.label, "sendTransaction", start, err)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send transaction: %w", entities.ErrUpstream, err)
	}
	return sig.String(), nil
}

// HealthCheck asks the node for its health status
func (c *Client) HealthCheck(ctx context.Context) error {
	status, err := c.rpc.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("%w: getHealth: %w", entities.ErrUpstream, err)
	}
	if status != rpc.HealthOk {
		return fmt.Errorf("%w: node reports %s", entities.ErrUpstream, status)
	}
	return nil
}

// Label returns the upstream label
func (c *Client) Label() string {
	return c.label
}
