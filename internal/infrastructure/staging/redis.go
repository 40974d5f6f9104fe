package staging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bimakw/identity-prism/internal/domain/entities"
)

const keyPrefix = "mint:pending:"

// RedisStore keeps pending mints in Redis so several API replicas can share them.
// Expiry is delegated to the key TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisStore creates a Redis backed store whose entries live for ttl
func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Stage stores the pending mint with SET NX so an existing request id is never overwritten
func (s *RedisStore) Stage(ctx context.Context, mint *entities.PendingMint) error {
	if mint.CreatedAt.IsZero() {
		mint.CreatedAt = time.Now()
	}
	data, err := json.Marshal(mint)
	if err != nil {
		return fmt.Errorf("failed to marshal pending mint: %w", err)
	}

	ok, err := s.client.SetNX(ctx, keyPrefix+mint.RequestID, data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to stage mint: %w", err)
	}
	if !ok {
		return ErrAlreadyStaged
	}
	return nil
}

// Finalize reads and deletes the pending mint with a single GETDEL
func (s *RedisStore) Finalize(ctx context.Context, requestID string) (*entities.PendingMint, error) {
	val, err := s.client.GetDel(ctx, keyPrefix+requestID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, entities.ErrMintNotFound
		}
		return nil, fmt.Errorf("failed to finalize mint: %w", err)
	}

	var mint entities.PendingMint
	if err := json.Unmarshal(val, &mint); err != nil {
		s.logger.Error("Discarding unreadable pending mint",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return nil, entities.ErrMintNotFound
	}
	return &mint, nil
}
