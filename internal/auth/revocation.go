// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/readanddownload/internal/platform/constants"
	redisstore "github.com/taibuivan/readanddownload/internal/platform/redis"
)

// RedisRevocationStore keeps logged-out tokens in Redis until they expire.
//
// Keys hold a SHA-256 digest of the token, never the token itself, under the
// client's namespace.
type RedisRevocationStore struct {
	client *redisstore.Client
}

// NewRedisRevocationStore creates a store over an already connected client.
func NewRedisRevocationStore(client *redisstore.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

// revokedKey derives the namespace-free part of a token's key.
func revokedKey(token string) string {
	digest := sha256.Sum256([]byte(token))
	return constants.RedisPrefixRevokedToken + hex.EncodeToString(digest[:])
}

func (store *RedisRevocationStore) key(token string) string {
	return store.client.Key(revokedKey(token))
}

/*
Revoke marks token as revoked for ttl.

Parameters:
  - ctx: context.Context
  - token: the raw bearer token
  - ttl: remaining lifetime of the token
*/
func (store *RedisRevocationStore) Revoke(ctx context.Context, token string, ttl time.Duration) error {
	if err := store.client.Set(ctx, store.key(token), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_revoke_token_failed: %w", err)
	}
	return nil
}

// IsRevoked reports whether token was revoked and has not expired yet.
func (store *RedisRevocationStore) IsRevoked(ctx context.Context, token string) (bool, error) {
	err := store.client.Get(ctx, store.key(token)).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, fmt.Errorf("redis_revocation_lookup_failed: %w", err)
	}
}

// Ping checks that Redis answers.
func (store *RedisRevocationStore) Ping(ctx context.Context) error {
	return redisstore.Ping(ctx, store.client)
}
