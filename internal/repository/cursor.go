package repository

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FeedCursor is a keyset position in the feed: the (created_at, id) pair of
// the last post the caller has seen. Pagination against a fixed cursor never
// duplicates or skips entries when new posts land concurrently, which offset
// pagination cannot guarantee.
type FeedCursor struct {
	CreatedAt time.Time
	ID        uint
}

// EncodeFeedCursor renders a cursor as an opaque URL-safe token.
func EncodeFeedCursor(c FeedCursor) string {
	raw := fmt.Sprintf("%d:%d", c.CreatedAt.UnixNano(), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeFeedCursor parses a token produced by EncodeFeedCursor.
func DecodeFeedCursor(token string) (FeedCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return FeedCursor{}, fmt.Errorf("malformed cursor: %w", err)
	}
	nanosStr, idStr, found := strings.Cut(string(raw), ":")
	if !found {
		return FeedCursor{}, fmt.Errorf("malformed cursor")
	}
	nanos, err := strconv.ParseInt(nanosStr, 10, 64)
	if err != nil {
		return FeedCursor{}, fmt.Errorf("malformed cursor: %w", err)
	}
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil {
		return FeedCursor{}, fmt.Errorf("malformed cursor: %w", err)
	}
	return FeedCursor{CreatedAt: time.Unix(0, nanos), ID: uint(id)}, nil
}
