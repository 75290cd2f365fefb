package repository

import (
	"context"
	"errors"

	"soltip/internal/cache"
	"soltip/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, limit int, cursor string) ([]*models.Post, string, error)
	ListByWallet(ctx context.Context, wallet string, limit int) ([]*models.Post, error)
}

type postRepository struct {
	db    *gorm.DB
	score ScoreFunc
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB, score ScoreFunc) PostRepository {
	return &postRepository{db: db, score: score}
}

// Create inserts the post and, in the same transaction, ensures the author's
// stats row exists, bumps its post count and refreshes its reputation score.
func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		if err := ensureWallet(tx, post.Wallet, post.CreatedAt); err != nil {
			return err
		}
		if err := tx.Model(&models.WalletStats{}).
			Where("wallet = ?", post.Wallet).
			Update("post_count", gorm.Expr("post_count + 1")).Error; err != nil {
			return err
		}
		return refreshReputation(tx, r.score, post.Wallet)
	})
	if err != nil {
		return models.NewStorageError(err)
	}
	cache.InvalidateFeed(ctx)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("Post", id)
	}
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return &post, nil
}

// List returns up to limit posts newest first, starting strictly after the
// cursor position. The second return value is the continuation cursor, empty
// when the feed is exhausted.
func (r *postRepository) List(ctx context.Context, limit int, cursor string) ([]*models.Post, string, error) {
	q := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit)

	if cursor != "" {
		cur, err := DecodeFeedCursor(cursor)
		if err != nil {
			return nil, "", models.NewValidationError("invalid cursor")
		}
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)",
			cur.CreatedAt, cur.CreatedAt, cur.ID)
	}

	var posts []*models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, "", models.NewStorageError(err)
	}

	next := ""
	if len(posts) == limit {
		last := posts[len(posts)-1]
		next = EncodeFeedCursor(FeedCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return posts, next, nil
}

func (r *postRepository) ListByWallet(ctx context.Context, wallet string, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("wallet = ?", wallet).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	return posts, nil
}
