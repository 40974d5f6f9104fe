package solana

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/config"
	"github.com/bimakw/identity-prism/internal/domain/repositories"
)

// Provider routes addresses onto per-credential RPC and indexing clients
type Provider struct {
	router    *KeyRouter
	upstreams []repositories.Upstream
	clients   []*Client
}

// NewProvider creates one RPC and one indexing client per configured API key
func NewProvider(cfg config.SolanaConfig, logger *zap.Logger) *Provider {
	router := NewKeyRouter(cfg.APIKeys)

	p := &Provider{router: router}
	for i, key := range router.credentials {
		endpoint := fmt.Sprintf(cfg.RPCURLTemplate, key)
		label := fmt.Sprintf("key-%d", i)

		client := NewClient(endpoint, label, cfg, logger)
		p.clients = append(p.clients, client)
		p.upstreams = append(p.upstreams, repositories.Upstream{
			Label:  label,
			Chain:  client,
			Assets: NewDASClient(endpoint, label, cfg, logger),
		})
	}

	logger.Info("Solana upstreams configured",
		zap.Int("credentials", len(p.upstreams)),
	)
	return p
}

// Route returns every upstream in ring order starting at the home credential of address
func (p *Provider) Route(address string) ([]repositories.Upstream, error) {
	order, err := p.router.Order(address)
	if err != nil {
		return nil, err
	}

	ring := make([]repositories.Upstream, 0, len(order))
	for _, i := range order {
		ring = append(ring, p.upstreams[i])
	}
	return ring, nil
}

// Transactions returns the client used for blockhashes and submission.
// System calls carry no routing key and always use the first credential.
func (p *Provider) Transactions() (repositories.TransactionRepository, error) {
	idx, err := p.router.Index("")
	if err != nil {
		return nil, err
	}
	return p.clients[idx], nil
}

// Len returns the number of configured credentials
func (p *Provider) Len() int {
	return p.router.Len()
}

// HealthCheck checks the node behind the first credential
func (p *Provider) HealthCheck(ctx context.Context) error {
	idx, err := p.router.Index("")
	if err != nil {
		return err
	}
	return p.clients[idx].HealthCheck(ctx)
}
