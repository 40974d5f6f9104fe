package solana

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

func TestProvider_Route(t *testing.T) {
	cfg := testSolanaConfig()
	cfg.APIKeys = []string{"k0", "", "k1", "k2"}
	cfg.RPCURLTemplate = "http://127.0.0.1:0/?api-key=%s"

	p := NewProvider(cfg, zap.NewNop())
	require.Equal(t, 3, p.Len())

	ring, err := p.Route(testOwner)
	require.NoError(t, err)
	require.Len(t, ring, 3)

	home, err := p.router.Index(testOwner)
	require.NoError(t, err)
	assert.Equal(t, "key-"+string(rune('0'+home)), ring[0].Label)

	again, err := p.Route(testOwner)
	require.NoError(t, err)
	for i := range ring {
		assert.Equal(t, ring[i].Label, again[i].Label)
	}

	seen := make(map[string]bool)
	for _, up := range ring {
		assert.NotContains(t, []string{"k0", "k1", "k2"}, up.Label)
		seen[up.Label] = true
	}
	assert.Len(t, seen, 3)
}

func TestProvider_NoCredentials(t *testing.T) {
	p := NewProvider(testSolanaConfig(), zap.NewNop())

	_, err := p.Route(testOwner)
	assert.True(t, errors.Is(err, entities.ErrNoRoute))

	_, err = p.Transactions()
	assert.True(t, errors.Is(err, entities.ErrNoRoute))

	assert.True(t, errors.Is(p.HealthCheck(context.Background()), entities.ErrNoRoute))
}
