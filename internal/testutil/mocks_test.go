package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

func TestMockChainRepository_GetSignaturesPage(t *testing.T) {
	repo := NewMockChainRepository()
	repo.AddSignatures(CreateTestSignatures(5)...)

	ctx := context.Background()

	page, err := repo.GetSignaturesPage(ctx, AliceAddress, "", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 records, got %d", len(page))
	}

	page, err = repo.GetSignaturesPage(ctx, AliceAddress, page[1].Signature, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 || page[0].Signature != "sig-000002" {
		t.Errorf("unexpected second page: %+v", page)
	}

	page, _ = repo.GetSignaturesPage(ctx, AliceAddress, page[1].Signature, 2)
	if len(page) != 1 {
		t.Errorf("expected 1 record on last page, got %d", len(page))
	}

	if repo.CallCount("GetSignaturesPage") != 3 {
		t.Errorf("expected 3 calls, got %d", repo.CallCount("GetSignaturesPage"))
	}
}

func TestMockChainRepository_BalanceAndAccounts(t *testing.T) {
	repo := NewMockChainRepository()
	repo.SetBalance(2_500_000_000)
	repo.AddTokenAccounts(CreateTestTokenAccount(BonkMint, 1000, 5))

	ctx := context.Background()

	lamports, err := repo.GetBalance(ctx, AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lamports != 2_500_000_000 {
		t.Errorf("expected 2500000000 lamports, got %d", lamports)
	}

	accounts, err := repo.GetTokenAccounts(ctx, AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Mint != BonkMint {
		t.Errorf("unexpected accounts: %+v", accounts)
	}
}

func TestMockAssetRepository_Err(t *testing.T) {
	repo := NewMockAssetRepository()
	repo.AddAssets(CreateTestAssets(3)...)

	assets, err := repo.GetAssetsByOwner(context.Background(), AliceAddress)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 3 {
		t.Errorf("expected 3 assets, got %d", len(assets))
	}

	repo.Err = entities.ErrUpstream
	if _, err := repo.GetAssetsByOwner(context.Background(), AliceAddress); !errors.Is(err, entities.ErrUpstream) {
		t.Errorf("expected ErrUpstream, got %v", err)
	}
	if repo.CallCount() != 2 {
		t.Errorf("expected 2 calls, got %d", repo.CallCount())
	}
}

func TestMockUpstreamProvider_NoRoute(t *testing.T) {
	provider := NewMockUpstreamProvider()

	if _, err := provider.Route(AliceAddress); !errors.Is(err, entities.ErrNoRoute) {
		t.Errorf("expected ErrNoRoute, got %v", err)
	}
}

func TestMockPriceRepository(t *testing.T) {
	repo := NewMockPriceRepository()
	repo.SetPrice(entities.PriceSOL, 150)

	price, err := repo.FetchUSD(context.Background(), entities.PriceSOL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 150 {
		t.Errorf("expected 150, got %f", price)
	}

	if _, err := repo.FetchUSD(context.Background(), entities.PriceSKR); !errors.Is(err, entities.ErrPriceUnavailable) {
		t.Errorf("expected ErrPriceUnavailable, got %v", err)
	}
	if repo.CallCount(entities.PriceSOL) != 1 {
		t.Errorf("expected 1 SOL call, got %d", repo.CallCount(entities.PriceSOL))
	}
}

func TestMockPrimaryMarket(t *testing.T) {
	market := NewMockPrimaryMarket()
	market.SetSlug("mint-1", "mad_lads")
	market.SetFloor("mad_lads", 95_000_000_000, true)

	ctx := context.Background()

	slug, err := market.ResolveSlug(ctx, "mint-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slug != "mad_lads" {
		t.Errorf("expected mad_lads, got %s", slug)
	}

	floor, err := market.CollectionFloor(ctx, slug)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !floor.Listed || floor.Raw != 95_000_000_000 {
		t.Errorf("unexpected floor: %+v", floor)
	}

	if _, err := market.CollectionFloor(ctx, "unknown"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if market.CallCount("CollectionFloor") != 2 {
		t.Errorf("expected 2 CollectionFloor calls, got %d", market.CallCount("CollectionFloor"))
	}
}

func TestMockHealthChecker(t *testing.T) {
	checker := NewMockHealthChecker(true)
	ctx := context.Background()

	if err := checker.HealthCheck(ctx); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	checker.SetHealthy(false)
	if err := checker.HealthCheck(ctx); err == nil {
		t.Error("expected error for unhealthy checker")
	}

	checker.Error = errors.New("connection refused")
	if err := checker.HealthCheck(ctx); err == nil || err.Error() != "connection refused" {
		t.Errorf("expected custom error, got %v", err)
	}

	if checker.Calls != 3 {
		t.Errorf("expected 3 calls, got %d", checker.Calls)
	}
}

func TestFixtures(t *testing.T) {
	asset := CreateTestAsset(
		AssetWithID("a-1"),
		AssetWithCollection("col-1", "Collection One"),
		AssetWithAuthority("auth-1"),
		AssetWithName("Seeker Genesis"),
		AssetWithSymbol("SGT"),
	)
	if asset.ID != "a-1" {
		t.Errorf("expected id a-1, got %s", asset.ID)
	}
	if asset.Name != "Seeker Genesis" || asset.Symbol != "SGT" {
		t.Errorf("unexpected display metadata: %s %s", asset.Name, asset.Symbol)
	}
	if vals := asset.CollectionValues(); len(vals) != 1 || vals[0] != "col-1" {
		t.Errorf("unexpected collection values: %v", vals)
	}

	sigs := CreateTestSignatures(3)
	if *sigs[0].BlockTime <= *sigs[2].BlockTime {
		t.Error("expected signatures newest first")
	}

	if p := PointerTo(42); *p != 42 {
		t.Errorf("expected 42, got %d", *p)
	}
}
