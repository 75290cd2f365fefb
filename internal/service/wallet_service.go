package service

import (
	"context"
	"log/slog"
	"time"

	"soltip/internal/chain"
	"soltip/internal/middleware"
	"soltip/internal/models"
	"soltip/internal/repository"
)

const balanceLookupTimeout = 3 * time.Second

// Profile is the composite view served for a wallet: stats, recent posts,
// and the live chain balance.
type Profile struct {
	Wallet string              `json:"wallet"`
	Stats  *models.WalletStats `json:"stats"`
	Posts  []*models.Post      `json:"posts"`
	// BalanceSol is fetched live from the chain and never persisted. It is
	// null when the lookup fails; the rest of the profile is still served.
	BalanceSol *float64 `json:"balance_sol"`
}

// WalletService assembles profile and leaderboard views.
type WalletService struct {
	walletRepo repository.WalletRepository
	postRepo   repository.PostRepository
	verifier   chain.Verifier
	pageSize   int
}

// NewWalletService creates a new wallet service.
func NewWalletService(walletRepo repository.WalletRepository, postRepo repository.PostRepository, verifier chain.Verifier, pageSize int) *WalletService {
	return &WalletService{walletRepo: walletRepo, postRepo: postRepo, verifier: verifier, pageSize: pageSize}
}

// GetProfile returns a wallet's stats, recent posts and live balance. A
// failed balance lookup degrades to a null balance rather than failing the
// whole request.
func (s *WalletService) GetProfile(ctx context.Context, wallet string) (*Profile, error) {
	if err := chain.ValidateAddress(wallet); err != nil {
		return nil, err
	}

	stats, err := s.walletRepo.Get(ctx, wallet)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByWallet(ctx, wallet, s.pageSize)
	if err != nil {
		return nil, err
	}

	profile := &Profile{Wallet: wallet, Stats: stats, Posts: posts}

	bctx, cancel := context.WithTimeout(ctx, balanceLookupTimeout)
	defer cancel()
	if lamports, err := s.verifier.Balance(bctx, wallet); err != nil {
		middleware.Logger.WarnContext(ctx, "balance lookup failed, serving profile without balance",
			slog.String("wallet", wallet), slog.String("error", err.Error()))
	} else {
		sol := models.LamportsToSol(int64(lamports))
		profile.BalanceSol = &sol
	}

	return profile, nil
}

// GetBalance returns a wallet's live balance in lamports.
func (s *WalletService) GetBalance(ctx context.Context, wallet string) (uint64, error) {
	if err := chain.ValidateAddress(wallet); err != nil {
		return 0, err
	}
	return s.verifier.Balance(ctx, wallet)
}

// Leaderboard returns the top-n wallets by reputation score.
func (s *WalletService) Leaderboard(ctx context.Context, limit int) ([]*models.WalletStats, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.walletRepo.Leaderboard(ctx, limit)
}
