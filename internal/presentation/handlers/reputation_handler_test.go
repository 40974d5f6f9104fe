package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/application/services"
	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/classification"
	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
	"github.com/bimakw/identity-prism/internal/testutil"
)

func setupReputationHandlerTest() (chi.Router, *testutil.MockChainRepository) {
	chain := testutil.NewMockChainRepository()
	provider := testutil.NewMockUpstreamProvider(repositories.Upstream{
		Label:  "key-0",
		Chain:  chain,
		Assets: testutil.NewMockAssetRepository(),
	})

	logger := zap.NewNop()
	service := services.NewReputationService(
		provider,
		services.NewHistoryFetcher(config.SolanaConfig{HistoryPageSize: 1000, HistoryMaxPages: 3}, logger),
		classification.NewClassifier(classification.DefaultCatalog()),
		logger,
	)

	r := chi.NewRouter()
	NewReputationHandler(service, logger).RegisterRoutes(r)
	return r, chain
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func postJSON(path string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	return body["error"]
}

func TestReputationHandler_GetReputation(t *testing.T) {
	r, chain := setupReputationHandlerTest()
	chain.SetBalance(3_000_000_000)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/reputation?address="+testutil.AliceAddress, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var dto services.ReputationDTO
	if err := json.NewDecoder(rec.Body).Decode(&dto); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if dto.Address != testutil.AliceAddress {
		t.Errorf("expected address %s, got %s", testutil.AliceAddress, dto.Address)
	}
	if dto.Stats.SOLBalance != 3 {
		t.Errorf("expected 3 SOL, got %f", dto.Stats.SOLBalance)
	}
	if dto.Badges == nil {
		t.Error("expected badges to serialize as a list")
	}
}

func TestReputationHandler_GetReputation_InvalidAddress(t *testing.T) {
	r, chain := setupReputationHandlerTest()

	for _, q := range []string{"", "?address=", "?address=nope"} {
		rec := serve(r, httptest.NewRequest(http.MethodGet, "/reputation"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%q: expected status 400, got %d", q, rec.Code)
		}
		if msg := decodeError(t, rec); msg != "invalid wallet address" {
			t.Errorf("%q: unexpected error %q", q, msg)
		}
	}
	if chain.CallCount("GetBalance") != 0 {
		t.Error("expected no upstream calls")
	}
}

func TestReputationHandler_GetReputation_UpstreamFailure(t *testing.T) {
	r, chain := setupReputationHandlerTest()
	chain.GetBalanceFunc = func(ctx context.Context, address string) (uint64, error) {
		return 0, entities.ErrUpstream
	}

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/reputation?address="+testutil.AliceAddress, nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", rec.Code)
	}
}

func TestReputationHandler_Batch(t *testing.T) {
	r, chain := setupReputationHandlerTest()
	chain.SetBalance(1_000_000_000)

	rec := serve(r, postJSON("/reputation/batch", BatchRequest{
		Addresses: []string{testutil.AliceAddress, "malformed", testutil.BobAddress},
	}))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response services.BatchResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(response.Results))
	}
	if response.Results[1].Error != "invalid wallet address" {
		t.Errorf("expected malformed entry to carry an error, got %+v", response.Results[1])
	}
	if response.Results[0].Error != "" || response.Results[2].Error != "" {
		t.Error("expected valid entries to succeed")
	}
}

func TestReputationHandler_Batch_BadRequests(t *testing.T) {
	r, _ := setupReputationHandlerTest()

	six := make([]string, services.MaxBatchSize+1)
	for i := range six {
		six[i] = testutil.AliceAddress
	}

	tests := []struct {
		name string
		req  *http.Request
	}{
		{"empty list", postJSON("/reputation/batch", BatchRequest{})},
		{"too many", postJSON("/reputation/batch", BatchRequest{Addresses: six})},
		{"not json", httptest.NewRequest(http.MethodPost, "/reputation/batch", strings.NewReader("{"))},
		{"unknown field", httptest.NewRequest(http.MethodPost, "/reputation/batch", strings.NewReader(`{"wallets":[]}`))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(r, tt.req); rec.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", rec.Code)
			}
		})
	}
}

func TestReputationHandler_Compare(t *testing.T) {
	r, chain := setupReputationHandlerTest()
	chain.GetBalanceFunc = func(ctx context.Context, address string) (uint64, error) {
		if address == testutil.BobAddress {
			return 20_000_000_000, nil
		}
		return 0, nil
	}

	path := "/reputation/compare?a=" + testutil.AliceAddress + "&b=" + testutil.BobAddress
	rec := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response services.CompareResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Winner != testutil.BobAddress {
		t.Errorf("expected winner %s, got %s", testutil.BobAddress, response.Winner)
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/reputation/compare?a="+testutil.AliceAddress, nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400 for missing b, got %d", rec.Code)
	}
}
