package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"soltip/internal/cache"
	"soltip/internal/chain"
	"soltip/internal/models"
	"soltip/internal/observability"
	"soltip/internal/repository"
)

// PostService implements post creation and the feed/profile read paths.
type PostService struct {
	postRepo repository.PostRepository
	pageSize int
}

// NewPostService creates a new post service. pageSize is the default feed
// page size.
func NewPostService(postRepo repository.PostRepository, pageSize int) *PostService {
	return &PostService{postRepo: postRepo, pageSize: pageSize}
}

// CreatePost validates and stores a new post for the wallet.
func (s *PostService) CreatePost(ctx context.Context, wallet, content string) (*models.Post, error) {
	if err := chain.ValidateAddress(wallet); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > models.MaxPostContentLength {
		return nil, models.NewValidationError("Post content too long (max 280 chars)")
	}

	post := &models.Post{
		Wallet:    wallet,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	observability.PostsCreated.Inc()
	return post, nil
}

// Feed returns a page of the global feed, newest first, plus the
// continuation cursor. The default first page is served cache-aside.
func (s *PostService) Feed(ctx context.Context, limit int, cursor string) ([]*models.Post, string, error) {
	if limit <= 0 || limit > 100 {
		limit = s.pageSize
	}

	if cursor == "" && limit == s.pageSize {
		var page struct {
			Posts []*models.Post `json:"posts"`
			Next  string         `json:"next"`
		}
		err := cache.Aside(ctx, cache.FeedFirstPageKey(), &page, cache.FeedTTL, func() error {
			var fetchErr error
			page.Posts, page.Next, fetchErr = s.postRepo.List(ctx, limit, "")
			return fetchErr
		})
		if err != nil {
			return nil, "", err
		}
		// The derived presentation fields round-trip through the cached JSON;
		// the lamport columns do not, so never recompute from them here.
		return page.Posts, page.Next, nil
	}

	return s.postRepo.List(ctx, limit, cursor)
}

// PostsByWallet returns a wallet's recent posts, newest first.
func (s *PostService) PostsByWallet(ctx context.Context, wallet string, limit int) ([]*models.Post, error) {
	if err := chain.ValidateAddress(wallet); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = s.pageSize
	}
	return s.postRepo.ListByWallet(ctx, wallet, limit)
}

// GetPost returns a single post by id, cache-aside. The cached entry is
// invalidated whenever a tip lands on the post.
func (s *PostService) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post *models.Post
	err := cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
		var fetchErr error
		post, fetchErr = s.postRepo.GetByID(ctx, id)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}
