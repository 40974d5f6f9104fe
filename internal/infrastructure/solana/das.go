package solana

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/observability"
)

const (
	dasPageLimit = 1000
	dasMaxPages  = 10
)

// DASClient reads owned assets from a Digital Asset Standard indexing endpoint
type DASClient struct {
	endpoint  string
	label     string
	client    *http.Client
	config    config.SolanaConfig
	logger    *zap.Logger
	requestID atomic.Uint64
}

// NewDASClient creates a new indexing API client
func NewDASClient(endpoint, label string, cfg config.SolanaConfig, logger *zap.Logger) *DASClient {
	return &DASClient{
		endpoint: endpoint,
		label:    label,
		client:   &http.Client{Timeout: cfg.RequestTimeout},
		config:   cfg,
		logger:   logger,
	}
}

type dasRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

type dasResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *dasError       `json:"error,omitempty"`
}

type dasError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *dasError) Error() string {
	return fmt.Sprintf("DAS error %d: %s", e.Code, e.Message)
}

type getAssetsByOwnerParams struct {
	OwnerAddress   string          `json:"ownerAddress"`
	Page           int             `json:"page"`
	Limit          int             `json:"limit"`
	DisplayOptions map[string]bool `json:"displayOptions"`
}

type dasAssetPage struct {
	Total int        `json:"total"`
	Limit int        `json:"limit"`
	Page  int        `json:"page"`
	Items []dasAsset `json:"items"`
}

type dasAddress struct {
	Address string `json:"address"`
}

type dasAsset struct {
	Interface string `json:"interface"`
	ID        string `json:"id"`
	Content   struct {
		Metadata struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"metadata"`
		Links struct {
			Image string `json:"image"`
		} `json:"links"`
	} `json:"content"`
	Grouping []struct {
		GroupKey           string `json:"group_key"`
		GroupValue         string `json:"group_value"`
		CollectionMetadata *struct {
			Name string `json:"name"`
		} `json:"collection_metadata,omitempty"`
	} `json:"grouping"`
	Creators    []dasAddress `json:"creators"`
	Authorities []dasAddress `json:"authorities"`
	Compression struct {
		Compressed bool `json:"compressed"`
	} `json:"compression"`
	TokenInfo *struct {
		Symbol   string `json:"symbol"`
		Balance  uint64 `json:"balance"`
		Supply   uint64 `json:"supply"`
		Decimals int    `json:"decimals"`
	} `json:"token_info,omitempty"`
	MintExtensions *struct {
		MetadataPointer *struct {
			MetadataAddress string `json:"metadata_address"`
		} `json:"metadata_pointer,omitempty"`
		GroupMemberPointer *struct {
			MemberAddress string `json:"member_address"`
		} `json:"group_member_pointer,omitempty"`
	} `json:"mint_extensions,omitempty"`
}

// GetAssetsByOwner returns fungible and non-fungible assets owned by owner
func (c *DASClient) GetAssetsByOwner(ctx context.Context, owner string) ([]entities.AssetRecord, error) {
	var records []entities.AssetRecord

	for page := 1; page <= dasMaxPages; page++ {
		params := getAssetsByOwnerParams{
			OwnerAddress: owner,
			Page:         page,
			Limit:        dasPageLimit,
			DisplayOptions: map[string]bool{
				"showFungible":           true,
				"showCollectionMetadata": true,
				"showZeroBalance":        false,
			},
		}

		var result dasAssetPage
		if err := c.call(ctx, "getAssetsByOwner", params, &result); err != nil {
			return nil, fmt.Errorf("failed to get assets by owner: %w", err)
		}

		for _, item := range result.Items {
			records = append(records, item.toRecord())
		}

		if len(result.Items) < dasPageLimit {
			break
		}
	}

	return records, nil
}

func (a dasAsset) toRecord() entities.AssetRecord {
	rec := entities.AssetRecord{
		ID:         a.ID,
		Interface:  a.Interface,
		Name:       a.Content.Metadata.Name,
		Symbol:     a.Content.Metadata.Symbol,
		ImageURL:   a.Content.Links.Image,
		Compressed: a.Compression.Compressed,
	}

	if a.TokenInfo != nil {
		rec.Decimals = a.TokenInfo.Decimals
		rec.Supply = a.TokenInfo.Supply
		rec.RawBalance = a.TokenInfo.Balance
		if rec.Symbol == "" {
			rec.Symbol = a.TokenInfo.Symbol
		}
	}

	for _, g := range a.Grouping {
		grp := entities.Grouping{Key: g.GroupKey, Value: g.GroupValue}
		if g.CollectionMetadata != nil {
			grp.Name = g.CollectionMetadata.Name
		}
		rec.Groupings = append(rec.Groupings, grp)
	}
	for _, cr := range a.Creators {
		rec.Creators = append(rec.Creators, cr.Address)
	}
	for _, au := range a.Authorities {
		rec.Authorities = append(rec.Authorities, au.Address)
	}

	if ext := a.MintExtensions; ext != nil {
		switch {
		case ext.MetadataPointer != nil && ext.MetadataPointer.MetadataAddress != "":
			rec.MetadataPointer = ext.MetadataPointer.MetadataAddress
		case ext.GroupMemberPointer != nil:
			rec.MetadataPointer = ext.GroupMemberPointer.MemberAddress
		}
	}

	return rec
}

// call performs a JSON-RPC call with retries. RPC errors are not retried.
func (c *DASClient) call(ctx context.Context, method string, params interface{}, result interface{}) error {
	start := time.Now()
	err := c.doCall(ctx, method, params, result)
	observability.ObserveUpstream(c.label, method, start, err)
	return err
}

func (c *DASClient) doCall(ctx context.Context, method string, params interface{}, result interface{}) error {
	body, err := json.Marshal(dasRequest{
		JSONRPC: "2.0",
		ID:      fmt.Sprintf("identity-prism-%d", c.requestID.Add(1)),
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %w", entities.ErrUpstream, ctx.Err())
			case <-time.After(c.config.RetryDelay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			lastErr = fmt.Errorf("rate limited (429)")
			c.logger.Warn("DAS rate limited",
				zap.String("upstream", c.label),
				zap.Int("attempt", attempt+1),
			)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(respBody, 256))
			continue
		}

		var rpcResp dasResponse
		if err := json.Unmarshal(respBody, &rpcResp); err != nil {
			lastErr = fmt.Errorf("unmarshal response: %w", err)
			continue
		}

		if rpcResp.Error != nil {
			return fmt.Errorf("%w: %w", entities.ErrUpstream, rpcResp.Error)
		}

		if result != nil && rpcResp.Result != nil {
			if err := json.Unmarshal(rpcResp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: max retries exceeded: %w", entities.ErrUpstream, lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
