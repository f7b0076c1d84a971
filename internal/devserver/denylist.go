package devserver

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist revokes refresh tokens by JTI using Redis. Optional: when no
// Redis URL is configured the server runs without revocation.
type Denylist struct {
	client *redis.Client
}

// NewDenylist connects to Redis and verifies the connection
func NewDenylist(redisURL string) (*Denylist, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Denylist{client: client}, nil
}

// Close closes the Redis connection
func (d *Denylist) Close() error {
	return d.client.Close()
}

func denylistKey(tokenID string) string {
	return fmt.Sprintf("denylist:jti:%s", tokenID)
}

// Add revokes a token until its natural expiry
func (d *Denylist) Add(ctx context.Context, tokenID string, expiry time.Time) error {
	ttl := time.Until(expiry)
	if ttl <= 0 {
		// Already expired, nothing to revoke
		return nil
	}

	if err := d.client.Set(ctx, denylistKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to denylist token: %w", err)
	}
	return nil
}

// IsRevoked checks whether a token has been revoked
func (d *Denylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	exists, err := d.client.Exists(ctx, denylistKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check denylist: %w", err)
	}
	return exists > 0, nil
}
