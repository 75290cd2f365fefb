package repository

import (
	"context"
	"errors"

	"soltip/internal/cache"
	"soltip/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TipRepository defines the interface for tip ledger data operations
type TipRepository interface {
	// Apply records the tip and its aggregate effects as one indivisible
	// unit. Returns false when the signature was already applied, in which
	// case tip is overwritten with the stored record and nothing changes.
	Apply(ctx context.Context, tip *models.Tip) (bool, error)
	GetBySignature(ctx context.Context, signature string) (*models.Tip, error)
	ListByPost(ctx context.Context, postID uint) ([]*models.Tip, error)
}

type tipRepository struct {
	db    *gorm.DB
	score ScoreFunc
}

// NewTipRepository creates a new tip ledger repository
func NewTipRepository(db *gorm.DB, score ScoreFunc) TipRepository {
	return &tipRepository{db: db, score: score}
}

// Apply runs the whole tip application in one database transaction:
//
//  1. Insert the tip row. The signature is the primary key, so a concurrent
//     or repeated claim collapses to ON CONFLICT DO NOTHING and the original
//     tip is returned unchanged.
//  2. Bump the post's aggregates with relative increments, which serialize
//     per row and never lose concurrent updates.
//  3. Ensure both wallet rows exist, bump payer given / payee received, and
//     refresh the payee's reputation score from its new aggregates. Wallet
//     rows are touched in lexicographic address order so lock order is
//     global regardless of who pays whom.
//
// Either every effect commits or none does; a reader can never observe the
// tip count without the tip amount, or a tip row without its aggregates.
func (r *tipRepository) Apply(ctx context.Context, tip *models.Tip) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(tip)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var existing models.Tip
			if err := tx.First(&existing, "tx_signature = ?", tip.TxSignature).Error; err != nil {
				return err
			}
			*tip = existing
			tip.FillDerived()
			return nil
		}
		applied = true

		res = tx.Model(&models.Post{}).
			Where("id = ?", tip.PostID).
			Updates(map[string]interface{}{
				"tips_received_lamports": gorm.Expr("tips_received_lamports + ?", tip.AmountLamports),
				"tip_count":              gorm.Expr("tip_count + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		first, second := tip.FromWallet, tip.ToWallet
		if second < first {
			first, second = second, first
		}
		for _, w := range []string{first, second} {
			if err := ensureWallet(tx, w, tip.AppliedAt); err != nil {
				return err
			}
			var col string
			if w == tip.FromWallet {
				col = "total_tips_given_lamports"
			} else {
				col = "total_tips_received_lamports"
			}
			if err := tx.Model(&models.WalletStats{}).
				Where("wallet = ?", w).
				Update(col, gorm.Expr(col+" + ?", tip.AmountLamports)).Error; err != nil {
				return err
			}
		}

		return refreshReputation(tx, r.score, tip.ToWallet)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, models.NewNotFoundError("Post", tip.PostID)
		}
		return false, models.NewStorageError(err)
	}
	if applied {
		cache.InvalidateFeed(ctx)
		cache.InvalidatePost(ctx, tip.PostID)
	}
	return applied, nil
}

func (r *tipRepository) GetBySignature(ctx context.Context, signature string) (*models.Tip, error) {
	var tip models.Tip
	err := r.db.WithContext(ctx).First(&tip, "tx_signature = ?", signature).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Tip", signature)
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &tip, nil
}

func (r *tipRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Tip, error) {
	var tips []*models.Tip
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("applied_at DESC").
		Find(&tips).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return tips, nil
}
