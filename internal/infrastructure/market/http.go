// Package market holds HTTP clients for marketplace and price APIs.
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bimakw/identity-prism/internal/domain/entities"
	"github.com/bimakw/identity-prism/internal/observability"
)

// ErrNotFound is returned when the API has no record of the requested item
var ErrNotFound = errors.New("not found")

// jsonClient issues GET requests and decodes JSON bodies
type jsonClient struct {
	name    string
	baseURL string
	headers map[string]string
	client  *http.Client
}

func newJSONClient(name, baseURL string, timeout time.Duration, headers map[string]string) jsonClient {
	return jsonClient{
		name:    name,
		baseURL: baseURL,
		headers: headers,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c jsonClient) get(ctx context.Context, method, path string, dest interface{}) (err error) {
	start := time.Now()
	defer func() { observability.ObserveUpstream(c.name, method, start, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		if v != "" {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s request: %w", entities.ErrUpstream, c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%w: %s status %d: %s", entities.ErrUpstream, c.name, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %s decode: %w", entities.ErrUpstream, c.name, err)
	}
	return nil
}
