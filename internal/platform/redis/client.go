// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects to the optional Redis instance holding revoked tokens.

Several services may share one Redis, so every key goes through [Client.Key]
and lands under this service's namespace (REDIS_NAMESPACE).
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second

	// Revocation traffic is one GET per authenticated request.
	poolSize     = 10
	minIdleConns = 1
	maxIdleConns = 4
)

// Options configures [NewClient].
type Options struct {
	URL string
	// Namespace prefixes every key. Empty disables prefixing.
	Namespace string
}

// Client is a go-redis client bound to a key namespace.
type Client struct {
	*redis.Client
	namespace string
}

// Wrap binds an existing go-redis client to namespace.
func Wrap(client *redis.Client, namespace string) *Client {
	namespace = strings.Trim(strings.TrimSpace(namespace), ":")
	if namespace != "" {
		namespace += ":"
	}
	return &Client{Client: client, namespace: namespace}
}

// Key returns name inside the client's namespace.
func (c *Client) Key(name string) string {
	return c.namespace + name
}

// NewClient parses opts.URL, connects and pings once.
func NewClient(ctx context.Context, opts Options, logger *slog.Logger) (*Client, error) {
	options, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.MaxIdleConns = maxIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := Wrap(redis.NewClient(options), opts.Namespace)

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis client connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.String("namespace", client.namespace),
	)

	return client, nil
}

// Ping verifies that Redis answers within pingTimeout.
func Ping(ctx context.Context, client *Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}

	return nil
}
