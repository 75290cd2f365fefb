package service

import (
	"errors"
	"testing"

	"soltip/internal/models"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	wallet := solana.NewWallet().PublicKey().String()

	walletRepo := &stubWalletRepo{stats: map[string]*models.WalletStats{
		wallet: {Wallet: wallet, PostCount: 3, ReputationScore: 60},
	}}
	postRepo := newStubPostRepo(&models.Post{ID: 1, Wallet: wallet, Content: "hello"})
	verifier := &stubVerifier{balance: 1_500_000_000}
	svc := NewWalletService(walletRepo, postRepo, verifier, 20)

	profile, err := svc.GetProfile(t.Context(), wallet)
	require.NoError(t, err)
	assert.Equal(t, wallet, profile.Wallet)
	assert.Equal(t, 3, profile.Stats.PostCount)
	assert.Len(t, profile.Posts, 1)
	require.NotNil(t, profile.BalanceSol)
	assert.Equal(t, 1.5, *profile.BalanceSol)
}

func TestGetProfileDegradesWithoutBalance(t *testing.T) {
	wallet := solana.NewWallet().PublicKey().String()

	walletRepo := &stubWalletRepo{}
	postRepo := newStubPostRepo()
	verifier := &stubVerifier{balErr: errors.New("rpc down")}
	svc := NewWalletService(walletRepo, postRepo, verifier, 20)

	profile, err := svc.GetProfile(t.Context(), wallet)
	require.NoError(t, err)
	assert.Nil(t, profile.BalanceSol)
	assert.Equal(t, wallet, profile.Stats.Wallet)
}

func TestGetProfileValidatesAddress(t *testing.T) {
	svc := NewWalletService(&stubWalletRepo{}, newStubPostRepo(), &stubVerifier{}, 20)

	_, err := svc.GetProfile(t.Context(), "not-a-wallet")
	require.Error(t, err)
}

func TestLeaderboardClampsLimit(t *testing.T) {
	repo := &stubWalletRepo{}
	svc := NewWalletService(repo, newStubPostRepo(), &stubVerifier{}, 20)

	tests := []struct {
		requested int
		effective int
	}{
		{0, 20},
		{-1, 20},
		{500, 20},
		{5, 5},
	}
	for _, tt := range tests {
		_, err := svc.Leaderboard(t.Context(), tt.requested)
		require.NoError(t, err)
		assert.Equal(t, tt.effective, repo.lastLimit, "requested %d", tt.requested)
	}
}

func TestReputationScore(t *testing.T) {
	p := ReputationParams{TipPointsPerSol: 10, PostPoints: 2}

	// 0.5 SOL received plus one post: 5 + 2.
	assert.Equal(t, int64(7), p.Score(500_000_000, 1))
	assert.Equal(t, int64(0), p.Score(0, 0))
	assert.Equal(t, int64(2), p.Score(0, 1))
	assert.Equal(t, int64(10), p.Score(models.LamportsPerSol, 0))
	// Fractions floor: 0.19 SOL at 10 points/SOL is 1 point.
	assert.Equal(t, int64(1), p.Score(190_000_000, 0))
	// Level boundaries in terms of raw aggregates.
	assert.Equal(t, int64(50), p.Score(5*models.LamportsPerSol, 0))
	assert.Equal(t, models.LevelActive, models.ReputationLevel(p.Score(5*models.LamportsPerSol, 0)))
}
