package repositories

import (
	"context"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// ChainRepository defines the JSON-RPC account and transaction API
type ChainRepository interface {
	// GetBalance returns the native balance in lamports
	GetBalance(ctx context.Context, address string) (uint64, error)

	// GetSignaturesPage returns up to limit signatures older than before.
	// An empty before starts from the most recent signature.
	GetSignaturesPage(ctx context.Context, address, before string, limit int) ([]entities.SignatureRecord, error)

	// GetTokenAccounts returns every parsed token-program account owned by the address
	GetTokenAccounts(ctx context.Context, owner string) ([]entities.TokenAccountRecord, error)
}

// AssetRepository defines the indexing API for owned assets
type AssetRepository interface {
	// GetAssetsByOwner returns fungible and non-fungible assets in one list
	GetAssetsByOwner(ctx context.Context, owner string) ([]entities.AssetRecord, error)
}

// TransactionRepository submits transactions and supplies blockhashes
type TransactionRepository interface {
	LatestBlockhash(ctx context.Context) (string, error)
	SendRawTransaction(ctx context.Context, raw []byte) (string, error)
}

// Upstream is one credential's view of the cluster
type Upstream struct {
	Label  string
	Chain  ChainRepository
	Assets AssetRepository
}

// UpstreamProvider routes an address onto the configured credentials
type UpstreamProvider interface {
	// Route returns every upstream in ring order starting at the address's
	// home credential. Returns entities.ErrNoRoute when none are configured.
	Route(address string) ([]Upstream, error)
}
