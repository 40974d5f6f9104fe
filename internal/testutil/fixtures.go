package testutil

import (
	"fmt"
	"time"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

// Common test addresses. Every one decodes to a 32-byte public key.
const (
	AliceAddress = "US517G5965aydkZ46HS38QLi7UQiSojurfbQfKCELFx"
	BobAddress   = "Vote111111111111111111111111111111111111111"
	CharlieAddr  = "Stake11111111111111111111111111111111111111"

	// TestBlockhash is 32 bytes of 0x07 in base58
	TestBlockhash = "US517G5965aydkZ46HS38QLi7UQiSojurfbQfKCELFx"

	TestTxSignature = "2AXDGYSE4f2sz7tvMMzyHvUfcoJmxudvdhBcmiUSo6ijwfYmfZYsKRxboQMPh3R4kUhXRVdtSXFXMheka4Rc4P2"

	SeekerGenesisMint = "GT22s89nU4iWFkNXj1Bw6uYhJJWDRPpShHt4Bk8f99Te"
	BonkMint          = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"
)

// BaseTime is the block time of the newest fixture signature
var BaseTime = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// CreateTestAsset creates a non-fungible asset with default values
func CreateTestAsset(opts ...AssetOption) entities.AssetRecord {
	a := entities.AssetRecord{
		ID:        "Asset1111111111111111111111111111111111111",
		Interface: entities.InterfaceV1NFT,
		Name:      "Test NFT #1",
		Symbol:    "TNFT",
		ImageURL:  "https://example.com/1.png",
		Supply:    1,
	}

	for _, opt := range opts {
		opt(&a)
	}

	return a
}

type AssetOption func(*entities.AssetRecord)

func AssetWithID(id string) AssetOption {
	return func(a *entities.AssetRecord) {
		a.ID = id
	}
}

func AssetWithName(name string) AssetOption {
	return func(a *entities.AssetRecord) {
		a.Name = name
	}
}

func AssetWithSymbol(symbol string) AssetOption {
	return func(a *entities.AssetRecord) {
		a.Symbol = symbol
	}
}

func AssetWithCollection(address, name string) AssetOption {
	return func(a *entities.AssetRecord) {
		a.Groupings = append(a.Groupings, entities.Grouping{Key: "collection", Value: address, Name: name})
	}
}

func AssetWithAuthority(authority string) AssetOption {
	return func(a *entities.AssetRecord) {
		a.Authorities = append(a.Authorities, authority)
	}
}

// AssetFungible turns the asset into a fungible token balance in base units
func AssetFungible(decimals int, rawBalance uint64) AssetOption {
	return func(a *entities.AssetRecord) {
		a.Interface = entities.InterfaceFungibleToken
		a.Decimals = decimals
		a.RawBalance = rawBalance
		a.Supply = 1_000_000_000
		a.ImageURL = ""
	}
}

// CreateTestAssets creates count distinct non-fungible assets
func CreateTestAssets(count int, opts ...AssetOption) []entities.AssetRecord {
	assets := make([]entities.AssetRecord, count)
	for i := 0; i < count; i++ {
		a := CreateTestAsset(opts...)
		a.ID = fmt.Sprintf("asset-%04d", i)
		a.Name = fmt.Sprintf("Test NFT #%d", i+1)
		assets[i] = a
	}
	return assets
}

// CreateTestTokenAccount creates a parsed token account holding uiAmount of mint
func CreateTestTokenAccount(mint string, uiAmount float64, decimals int) entities.TokenAccountRecord {
	return entities.TokenAccountRecord{
		Address:  "acct-" + mint,
		Mint:     mint,
		UIAmount: uiAmount,
		Decimals: decimals,
	}
}

// CreateTestSignatures creates count records newest first, one hour apart,
// with the newest at BaseTime
func CreateTestSignatures(count int) []entities.SignatureRecord {
	records := make([]entities.SignatureRecord, count)
	for i := 0; i < count; i++ {
		bt := BaseTime.Add(-time.Duration(i) * time.Hour).Unix()
		records[i] = entities.SignatureRecord{
			Signature: fmt.Sprintf("sig-%06d", i),
			Slot:      uint64(300_000_000 - i),
			BlockTime: &bt,
		}
	}
	return records
}

// PointerTo returns a pointer to the given value
func PointerTo[T any](v T) *T {
	return &v
}
