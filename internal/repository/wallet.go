// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"soltip/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScoreFunc computes a reputation score from a wallet's aggregates. The
// weights live in configuration; repositories only apply the function so the
// stored score never drifts from the aggregates it derives from.
type ScoreFunc func(receivedLamports int64, postCount int) int64

// WalletRepository defines the interface for wallet stats data operations
type WalletRepository interface {
	Get(ctx context.Context, wallet string) (*models.WalletStats, error)
	Leaderboard(ctx context.Context, limit int) ([]*models.WalletStats, error)
}

type walletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet stats repository
func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

// Get returns the stats row for a wallet. Wallets the ledger has never seen
// get an ephemeral zero row; stats rows are only persisted by a first post or
// first tip, never by a read.
func (r *walletRepository) Get(ctx context.Context, wallet string) (*models.WalletStats, error) {
	var stats models.WalletStats
	err := r.db.WithContext(ctx).First(&stats, "wallet = ?", wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.WalletStats{Wallet: wallet, JoinedAt: time.Now().UTC()}
		stats.FillDerived()
		return &stats, nil
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &stats, nil
}

// Leaderboard returns the top wallets ordered by reputation score, ties
// broken by tips received, then by earliest join.
func (r *walletRepository) Leaderboard(ctx context.Context, limit int) ([]*models.WalletStats, error) {
	var stats []*models.WalletStats
	err := r.db.WithContext(ctx).
		Order("reputation_score DESC, total_tips_received_lamports DESC, joined_at ASC").
		Limit(limit).
		Find(&stats).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return stats, nil
}

// ensureWallet creates the stats row for a wallet if it does not exist yet,
// stamping joined_at on first sight. Safe under concurrent creators.
func ensureWallet(tx *gorm.DB, wallet string, seenAt time.Time) error {
	row := models.WalletStats{Wallet: wallet, JoinedAt: seenAt}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// refreshReputation recomputes the cached reputation score from the row's own
// aggregates inside the caller's transaction.
func refreshReputation(tx *gorm.DB, score ScoreFunc, wallet string) error {
	if score == nil {
		return nil
	}
	var stats models.WalletStats
	if err := tx.First(&stats, "wallet = ?", wallet).Error; err != nil {
		return err
	}
	return tx.Model(&models.WalletStats{}).
		Where("wallet = ?", wallet).
		Update("reputation_score", score(stats.TotalTipsReceivedLamports, stats.PostCount)).Error
}
