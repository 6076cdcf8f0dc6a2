package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
)

var ErrCacheMiss = errors.New("cache miss")

const taxRateKey = "settings:tax_rate"

type Client struct {
	rdb *redis.Client
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Tax rate cache
func (c *Client) GetTaxRate(ctx context.Context) (decimal.Decimal, error) {
	val, err := c.rdb.Get(ctx, taxRateKey).Result()
	if err != nil {
		if err == redis.Nil {
			return decimal.Zero, ErrCacheMiss
		}
		return decimal.Zero, fmt.Errorf("failed to get tax rate: %w", err)
	}

	rate, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid cached tax rate %q: %w", val, err)
	}
	return rate, nil
}

func (c *Client) SetTaxRate(ctx context.Context, rate decimal.Decimal, ttl time.Duration) error {
	return c.rdb.Set(ctx, taxRateKey, rate.String(), ttl).Err()
}

func (c *Client) InvalidateTaxRate(ctx context.Context) error {
	return c.rdb.Del(ctx, taxRateKey).Err()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
