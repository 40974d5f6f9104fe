package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
)

type MockCall struct {
	Method string
	Args   []interface{}
}

// MockChainRepository is a mock implementation of ChainRepository.
// Signatures are served newest first and paged by the before cursor.
type MockChainRepository struct {
	mu            sync.RWMutex
	balance       uint64
	signatures    []entities.SignatureRecord
	tokenAccounts []entities.TokenAccountRecord

	// Function hooks for custom behavior
	GetBalanceFunc        func(ctx context.Context, address string) (uint64, error)
	GetSignaturesPageFunc func(ctx context.Context, address, before string, limit int) ([]entities.SignatureRecord, error)
	GetTokenAccountsFunc  func(ctx context.Context, owner string) ([]entities.TokenAccountRecord, error)

	// Call tracking
	Calls []MockCall
}

func NewMockChainRepository() *MockChainRepository {
	return &MockChainRepository{
		Calls: make([]MockCall, 0),
	}
}

func (m *MockChainRepository) GetBalance(ctx context.Context, address string) (uint64, error) {
	m.record("GetBalance", address)

	if m.GetBalanceFunc != nil {
		return m.GetBalanceFunc(ctx, address)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balance, nil
}

func (m *MockChainRepository) GetSignaturesPage(ctx context.Context, address, before string, limit int) ([]entities.SignatureRecord, error) {
	m.record("GetSignaturesPage", address, before, limit)

	if m.GetSignaturesPageFunc != nil {
		return m.GetSignaturesPageFunc(ctx, address, before, limit)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	start := 0
	if before != "" {
		start = len(m.signatures)
		for i, s := range m.signatures {
			if s.Signature == before {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(m.signatures) {
		end = len(m.signatures)
	}

	page := make([]entities.SignatureRecord, end-start)
	copy(page, m.signatures[start:end])
	return page, nil
}

func (m *MockChainRepository) GetTokenAccounts(ctx context.Context, owner string) ([]entities.TokenAccountRecord, error) {
	m.record("GetTokenAccounts", owner)

	if m.GetTokenAccountsFunc != nil {
		return m.GetTokenAccountsFunc(ctx, owner)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entities.TokenAccountRecord(nil), m.tokenAccounts...), nil
}

// SetBalance sets the balance in lamports
func (m *MockChainRepository) SetBalance(lamports uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balance = lamports
}

// AddSignatures appends records, which must be ordered newest first
func (m *MockChainRepository) AddSignatures(records ...entities.SignatureRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.signatures = append(m.signatures, records...)
}

func (m *MockChainRepository) AddTokenAccounts(accounts ...entities.TokenAccountRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenAccounts = append(m.tokenAccounts, accounts...)
}

// CallCount returns how many times method was called
func (m *MockChainRepository) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countCalls(m.Calls, method)
}

func (m *MockChainRepository) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// MockAssetRepository is a mock implementation of AssetRepository
type MockAssetRepository struct {
	mu     sync.RWMutex
	assets []entities.AssetRecord

	// Err is returned by every call when set
	Err error

	GetAssetsByOwnerFunc func(ctx context.Context, owner string) ([]entities.AssetRecord, error)

	Calls []MockCall
}

func NewMockAssetRepository() *MockAssetRepository {
	return &MockAssetRepository{
		assets: make([]entities.AssetRecord, 0),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockAssetRepository) GetAssetsByOwner(ctx context.Context, owner string) ([]entities.AssetRecord, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "GetAssetsByOwner", Args: []interface{}{owner}})
	m.mu.Unlock()

	if m.GetAssetsByOwnerFunc != nil {
		return m.GetAssetsByOwnerFunc(ctx, owner)
	}
	if m.Err != nil {
		return nil, m.Err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]entities.AssetRecord(nil), m.assets...), nil
}

func (m *MockAssetRepository) AddAssets(assets ...entities.AssetRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets = append(m.assets, assets...)
}

func (m *MockAssetRepository) CallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Calls)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mu sync.Mutex

	Blockhash string
	Signature string

	// Sent holds every raw transaction submitted
	Sent [][]byte

	LatestBlockhashFunc    func(ctx context.Context) (string, error)
	SendRawTransactionFunc func(ctx context.Context, raw []byte) (string, error)

	Calls []MockCall
}

func NewMockTransactionRepository(blockhash string) *MockTransactionRepository {
	return &MockTransactionRepository{
		Blockhash: blockhash,
		Signature: TestTxSignature,
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockTransactionRepository) LatestBlockhash(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "LatestBlockhash"})
	m.mu.Unlock()

	if m.LatestBlockhashFunc != nil {
		return m.LatestBlockhashFunc(ctx)
	}
	return m.Blockhash, nil
}

func (m *MockTransactionRepository) SendRawTransaction(ctx context.Context, raw []byte) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "SendRawTransaction", Args: []interface{}{raw}})
	m.Sent = append(m.Sent, raw)
	m.mu.Unlock()

	if m.SendRawTransactionFunc != nil {
		return m.SendRawTransactionFunc(ctx, raw)
	}
	return m.Signature, nil
}

// MockUpstreamProvider routes every address onto a fixed ring
type MockUpstreamProvider struct {
	Upstreams []repositories.Upstream
	Err       error
}

func NewMockUpstreamProvider(upstreams ...repositories.Upstream) *MockUpstreamProvider {
	return &MockUpstreamProvider{Upstreams: upstreams}
}

func (m *MockUpstreamProvider) Route(address string) ([]repositories.Upstream, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Upstreams) == 0 {
		return nil, entities.ErrNoRoute
	}
	return m.Upstreams, nil
}

// MockPriceRepository is a mock implementation of PriceRepository
type MockPriceRepository struct {
	mu     sync.RWMutex
	prices map[entities.PriceKind]float64

	FetchUSDFunc func(ctx context.Context, kind entities.PriceKind) (float64, error)

	Calls []MockCall
}

func NewMockPriceRepository() *MockPriceRepository {
	return &MockPriceRepository{
		prices: make(map[entities.PriceKind]float64),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockPriceRepository) FetchUSD(ctx context.Context, kind entities.PriceKind) (float64, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "FetchUSD", Args: []interface{}{kind}})
	m.mu.Unlock()

	if m.FetchUSDFunc != nil {
		return m.FetchUSDFunc(ctx, kind)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	price, ok := m.prices[kind]
	if !ok {
		return 0, entities.ErrPriceUnavailable
	}
	return price, nil
}

func (m *MockPriceRepository) SetPrice(kind entities.PriceKind, usd float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[kind] = usd
}

func (m *MockPriceRepository) CallCount(kind entities.PriceKind) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := 0
	for _, c := range m.Calls {
		if len(c.Args) > 0 && c.Args[0] == kind {
			n++
		}
	}
	return n
}

// MockPrimaryMarket is a mock implementation of PrimaryMarketRepository.
// Unknown slugs and mints return ErrNotFound.
type MockPrimaryMarket struct {
	mu        sync.RWMutex
	slugs     map[string]string
	floors    map[string]repositories.FloorQuote
	lastSales map[string]float64

	ResolveSlugFunc     func(ctx context.Context, mint string) (string, error)
	CollectionFloorFunc func(ctx context.Context, slug string) (*repositories.FloorQuote, error)
	LastSalePriceFunc   func(ctx context.Context, mint string) (float64, error)

	Calls []MockCall
}

var ErrNotFound = errors.New("not found")

func NewMockPrimaryMarket() *MockPrimaryMarket {
	return &MockPrimaryMarket{
		slugs:     make(map[string]string),
		floors:    make(map[string]repositories.FloorQuote),
		lastSales: make(map[string]float64),
		Calls:     make([]MockCall, 0),
	}
}

func (m *MockPrimaryMarket) ResolveSlug(ctx context.Context, mint string) (string, error) {
	m.record("ResolveSlug", mint)
	if m.ResolveSlugFunc != nil {
		return m.ResolveSlugFunc(ctx, mint)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	slug, ok := m.slugs[mint]
	if !ok {
		return "", ErrNotFound
	}
	return slug, nil
}

func (m *MockPrimaryMarket) CollectionFloor(ctx context.Context, slug string) (*repositories.FloorQuote, error) {
	m.record("CollectionFloor", slug)
	if m.CollectionFloorFunc != nil {
		return m.CollectionFloorFunc(ctx, slug)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.floors[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}

func (m *MockPrimaryMarket) LastSalePrice(ctx context.Context, mint string) (float64, error) {
	m.record("LastSalePrice", mint)
	if m.LastSalePriceFunc != nil {
		return m.LastSalePriceFunc(ctx, mint)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	price, ok := m.lastSales[mint]
	if !ok {
		return 0, ErrNotFound
	}
	return price, nil
}

func (m *MockPrimaryMarket) SetSlug(mint, slug string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slugs[mint] = slug
}

func (m *MockPrimaryMarket) SetFloor(slug string, raw float64, listed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floors[slug] = repositories.FloorQuote{Raw: raw, Listed: listed}
}

func (m *MockPrimaryMarket) SetLastSale(mint string, raw float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSales[mint] = raw
}

// CallCount returns how many times method was called
func (m *MockPrimaryMarket) CallCount(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return countCalls(m.Calls, method)
}

func (m *MockPrimaryMarket) record(method string, args ...interface{}) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
	m.mu.Unlock()
}

// MockSecondaryMarket is a mock implementation of SecondaryMarketRepository
type MockSecondaryMarket struct {
	mu     sync.RWMutex
	floors map[string]repositories.FloorQuote

	CollectionFloorFunc func(ctx context.Context, collection string) (*repositories.FloorQuote, error)

	Calls []MockCall
}

func NewMockSecondaryMarket() *MockSecondaryMarket {
	return &MockSecondaryMarket{
		floors: make(map[string]repositories.FloorQuote),
		Calls:  make([]MockCall, 0),
	}
}

func (m *MockSecondaryMarket) CollectionFloor(ctx context.Context, collection string) (*repositories.FloorQuote, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Method: "CollectionFloor", Args: []interface{}{collection}})
	m.mu.Unlock()

	if m.CollectionFloorFunc != nil {
		return m.CollectionFloorFunc(ctx, collection)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.floors[collection]
	if !ok {
		return nil, ErrNotFound
	}
	return &q, nil
}

func (m *MockSecondaryMarket) SetFloor(collection string, raw float64, listed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.floors[collection] = repositories.FloorQuote{Raw: raw, Listed: listed}
}

// MockHealthChecker is a mock implementation of HealthChecker
type MockHealthChecker struct {
	mu      sync.RWMutex
	Healthy bool
	Error   error
	Calls   int
}

func NewMockHealthChecker(healthy bool) *MockHealthChecker {
	return &MockHealthChecker{Healthy: healthy}
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.Healthy {
		if m.Error != nil {
			return m.Error
		}
		return errors.New("unhealthy")
	}
	return nil
}

func (m *MockHealthChecker) SetHealthy(healthy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Healthy = healthy
}

func countCalls(calls []MockCall, method string) int {
	n := 0
	for _, c := range calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
