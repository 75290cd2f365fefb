package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	feedFirstPageKey = "feed:first"
	postKeyPrefix    = "post:%d"
	verdictKeyPrefix = "chain:verdict:%s"
)

const (
	// FeedTTL is short: the feed is the hottest read and tolerates a few
	// seconds of staleness under the client's optimistic-then-poll UI.
	FeedTTL = 15 * time.Second
	PostTTL = 5 * time.Minute
)

// FeedFirstPageKey is the cache key for the default first page of the feed.
func FeedFirstPageKey() string {
	return feedFirstPageKey
}

// PostKey is the cache key for a single post.
func PostKey(postID uint) string {
	return fmt.Sprintf(postKeyPrefix, postID)
}

// VerdictKey is the cache key for a chain verification verdict. Finality is
// immutable, so Confirmed/Failed verdicts are stored without expiry.
func VerdictKey(signature string) string {
	return fmt.Sprintf(verdictKeyPrefix, signature)
}

// GetJSON attempts to get the key from Redis and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if client == nil {
		return false, nil
	}
	s, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and sets the key with TTL.
func SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, b, ttl).Err()
}

// Aside tries Redis first, on miss it calls fetch (which should populate dest),
// then stores the result in Redis with ttl. fetch must write into dest.
// Cache errors degrade to a plain fetch; the cache is never load-bearing.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := GetJSON(ctx, key, dest)
	if err == nil && found {
		return nil
	}

	// Fetch from source (DB)
	if err := fetch(); err != nil {
		return err
	}

	// Store into cache (best-effort)
	_ = SetJSON(ctx, key, dest, ttl)
	return nil
}

// Invalidate removes a key, best-effort.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateFeed removes the cached first feed page.
func InvalidateFeed(ctx context.Context) {
	Invalidate(ctx, feedFirstPageKey)
}

// InvalidatePost removes a cached post.
func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}

// GetString reads a raw string value. Returns ("", false) on miss or error.
func GetString(ctx context.Context, key string) (string, bool) {
	if client == nil {
		return "", false
	}
	s, err := client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return s, true
}

// SetString stores a raw string value, best-effort. A zero ttl means no expiry.
func SetString(ctx context.Context, key, val string, ttl time.Duration) {
	if client == nil {
		return
	}
	client.Set(ctx, key, val, ttl)
}
