// Package cache holds the Redis-backed read cache for account balances.
// Cached balances are for display only and are never used to decide a mutation.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"purse/internal/money"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

// Key generation
func (s *CacheService) GenerateKey(entityType, keyType string, value interface{}) string {
	return fmt.Sprintf("%s:%s:%v", entityType, keyType, value)
}

// Balance caching
func (s *CacheService) balanceKey(accountID uint) string {
	return s.GenerateKey("balance", "account", accountID)
}

// GetBalance returns the cached balance of accountID and whether it was present.
func (s *CacheService) GetBalance(ctx context.Context, accountID uint) (money.Money, bool, error) {
	var balance money.Money
	found, err := s.Get(ctx, s.balanceKey(accountID), &balance)
	if err != nil || !found {
		return money.Zero, false, err
	}
	return balance, true, nil
}

func (s *CacheService) balanceVersionKey(accountID uint) string {
	return s.GenerateKey("balance", "version", accountID)
}

// BalanceVersion returns the invalidation counter of accountID. Read it before
// loading the balance from the store and hand it back to SetBalance.
func (s *CacheService) BalanceVersion(ctx context.Context, accountID uint) (int64, error) {
	version, err := s.client.Get(ctx, s.balanceVersionKey(accountID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get balance version: %w", err)
	}
	return version, nil
}

// SetBalance caches a balance loaded at version. The write is skipped when
// InvalidateBalance ran since version was read, so a read racing a commit
// never caches the pre-commit balance. If an invalidation itself is lost the
// entry is stale for at most the TTL.
func (s *CacheService) SetBalance(ctx context.Context, accountID uint, balance money.Money, version int64) error {
	data, err := json.Marshal(balance)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	versionKey := s.balanceVersionKey(accountID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.balanceKey(accountID), data, s.ttl)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// InvalidateBalance drops the cached balances of every given account and bumps
// their versions so in-flight backfills are discarded.
func (s *CacheService) InvalidateBalance(ctx context.Context, accountIDs ...uint) error {
	if len(accountIDs) == 0 {
		return nil
	}
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range accountIDs {
			pipe.Incr(ctx, s.balanceVersionKey(id))
			pipe.Del(ctx, s.balanceKey(id))
		}
		return nil
	})
	return err
}

// HealthCheck pings the server.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Close closes the Redis client connection
func (s *CacheService) Close() error {
	return s.client.Close()
}
