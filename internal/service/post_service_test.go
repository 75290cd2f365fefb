package service

import (
	"strings"
	"testing"
	"time"

	"soltip/internal/cache"
	"soltip/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
}

func TestCreatePost(t *testing.T) {
	wallet := solana.NewWallet().PublicKey().String()
	repo := newStubPostRepo()
	svc := NewPostService(repo, 20)

	post, err := svc.CreatePost(t.Context(), wallet, "  gm solana  ")
	require.NoError(t, err)
	assert.Equal(t, "gm solana", post.Content)
	assert.Equal(t, wallet, post.Wallet)
	assert.False(t, post.CreatedAt.IsZero())
	require.Len(t, repo.created, 1)
}

func TestCreatePostValidation(t *testing.T) {
	wallet := solana.NewWallet().PublicKey().String()
	repo := newStubPostRepo()
	svc := NewPostService(repo, 20)

	tests := []struct {
		name    string
		wallet  string
		content string
	}{
		{"bad wallet", "not-base58!", "hello"},
		{"empty content", wallet, ""},
		{"whitespace content", wallet, "   \n\t "},
		{"too long", wallet, strings.Repeat("x", models.MaxPostContentLength+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreatePost(t.Context(), tt.wallet, tt.content)
			require.Error(t, err)
			appErr, ok := err.(*models.AppError)
			require.True(t, ok)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}

	assert.Empty(t, repo.created)
}

func TestCreatePostLengthCountsRunes(t *testing.T) {
	wallet := solana.NewWallet().PublicKey().String()
	repo := newStubPostRepo()
	svc := NewPostService(repo, 20)

	// 280 multibyte characters are within the limit even though the byte
	// count is far larger.
	content := strings.Repeat("ü", models.MaxPostContentLength)
	_, err := svc.CreatePost(t.Context(), wallet, content)
	require.NoError(t, err)

	_, err = svc.CreatePost(t.Context(), wallet, content+"ü")
	require.Error(t, err)
}

func TestFeedLimitClamping(t *testing.T) {
	repo := newStubPostRepo()
	svc := NewPostService(repo, 20)

	tests := []struct {
		requested int
		effective int
	}{
		{0, 20},
		{-5, 20},
		{101, 20},
		{7, 7},
		{100, 100},
	}

	for _, tt := range tests {
		// A non-default page bypasses the first-page cache path.
		_, _, err := svc.Feed(t.Context(), tt.requested, "some-cursor")
		require.NoError(t, err)
		assert.Equal(t, tt.effective, repo.listLimit, "requested %d", tt.requested)
	}
}

func TestFeedPassesCursor(t *testing.T) {
	repo := newStubPostRepo()
	repo.listNext = "next-token"
	svc := NewPostService(repo, 20)

	_, next, err := svc.Feed(t.Context(), 10, "cursor-token")
	require.NoError(t, err)
	assert.Equal(t, "cursor-token", repo.listCursor)
	assert.Equal(t, "next-token", next)
}

func TestFeedCacheHitKeepsTipAggregates(t *testing.T) {
	setupCache(t)

	tipped := &models.Post{
		ID:                   1,
		Wallet:               solana.NewWallet().PublicKey().String(),
		Content:              "tipped post",
		TipsReceivedLamports: 500_000_000,
		TipCount:             1,
		CreatedAt:            time.Now().UTC(),
	}
	tipped.FillDerived()

	repo := newStubPostRepo()
	repo.listPosts = []*models.Post{tipped}
	svc := NewPostService(repo, 20)

	first, _, err := svc.Feed(t.Context(), 0, "")
	require.NoError(t, err)
	require.Len(t, first, 1)
	require.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 0.5, first[0].TipsReceived)

	// Within the TTL the page is served from the cache; the tip aggregates
	// must match what the miss served, not decay to zero.
	second, _, err := svc.Feed(t.Context(), 0, "")
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 0.5, second[0].TipsReceived)
	assert.Equal(t, 1, second[0].TipCount)
	assert.Equal(t, tipped.Timestamp, second[0].Timestamp)
}

func TestGetPostCacheAside(t *testing.T) {
	setupCache(t)

	post := &models.Post{
		ID:                   3,
		Wallet:               solana.NewWallet().PublicKey().String(),
		Content:              "cached post",
		TipsReceivedLamports: 250_000_000,
		TipCount:             2,
		CreatedAt:            time.Now().UTC(),
	}
	post.FillDerived()

	repo := newStubPostRepo(post)
	svc := NewPostService(repo, 20)

	first, err := svc.GetPost(t.Context(), 3)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getCalls)

	second, err := svc.GetPost(t.Context(), 3)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)
	assert.Equal(t, first.Content, second.Content)
	assert.Equal(t, 0.25, second.TipsReceived)
	assert.Equal(t, 2, second.TipCount)

	// Invalidation forces the next read back to the repository.
	cache.InvalidatePost(t.Context(), 3)
	_, err = svc.GetPost(t.Context(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.getCalls)
}

func TestGetPostMissingNotCached(t *testing.T) {
	setupCache(t)

	repo := newStubPostRepo()
	svc := NewPostService(repo, 20)

	_, err := svc.GetPost(t.Context(), 42)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, appErr.Code)

	// The miss is not negatively cached; every lookup hits the repository.
	_, err = svc.GetPost(t.Context(), 42)
	require.Error(t, err)
	assert.Equal(t, 2, repo.getCalls)
}

func TestPostsByWalletValidatesAddress(t *testing.T) {
	repo := newStubPostRepo()
	svc := NewPostService(repo, 20)

	_, err := svc.PostsByWallet(t.Context(), "garbage", 10)
	require.Error(t, err)
}
