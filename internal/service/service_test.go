package service

import (
	"context"

	"soltip/internal/chain"
	"soltip/internal/models"
)

// stubPostRepo is an in-memory PostRepository for service tests.
type stubPostRepo struct {
	posts map[uint]*models.Post

	created    []*models.Post
	createErr  error
	listLimit  int
	listCursor string
	listPosts  []*models.Post
	listNext   string
	listCalls  int
	getCalls   int
}

func newStubPostRepo(posts ...*models.Post) *stubPostRepo {
	r := &stubPostRepo{posts: make(map[uint]*models.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *stubPostRepo) Create(ctx context.Context, post *models.Post) error {
	if r.createErr != nil {
		return r.createErr
	}
	post.ID = uint(len(r.created) + 1)
	r.created = append(r.created, post)
	r.posts[post.ID] = post
	return nil
}

func (r *stubPostRepo) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	r.getCalls++
	post, ok := r.posts[id]
	if !ok {
		return nil, models.NewNotFoundError("Post", id)
	}
	cp := *post
	return &cp, nil
}

func (r *stubPostRepo) List(ctx context.Context, limit int, cursor string) ([]*models.Post, string, error) {
	r.listCalls++
	r.listLimit = limit
	r.listCursor = cursor
	return r.listPosts, r.listNext, nil
}

func (r *stubPostRepo) ListByWallet(ctx context.Context, wallet string, limit int) ([]*models.Post, error) {
	r.listLimit = limit
	var out []*models.Post
	for _, p := range r.posts {
		if p.Wallet == wallet {
			out = append(out, p)
		}
	}
	return out, nil
}

// stubTipRepo records Apply calls and answers with a canned result.
type stubTipRepo struct {
	applied   bool
	applyErr  error
	lastTip   *models.Tip
	applyCall int
}

func (r *stubTipRepo) Apply(ctx context.Context, tip *models.Tip) (bool, error) {
	r.applyCall++
	r.lastTip = tip
	if r.applyErr != nil {
		return false, r.applyErr
	}
	return r.applied, nil
}

func (r *stubTipRepo) GetBySignature(ctx context.Context, signature string) (*models.Tip, error) {
	if r.lastTip != nil && r.lastTip.TxSignature == signature {
		return r.lastTip, nil
	}
	return nil, models.NewNotFoundError("Tip", signature)
}

func (r *stubTipRepo) ListByPost(ctx context.Context, postID uint) ([]*models.Tip, error) {
	return nil, nil
}

// stubWalletRepo serves canned stats rows.
type stubWalletRepo struct {
	stats       map[string]*models.WalletStats
	leaderboard []*models.WalletStats
	lastLimit   int
}

func (r *stubWalletRepo) Get(ctx context.Context, wallet string) (*models.WalletStats, error) {
	if s, ok := r.stats[wallet]; ok {
		return s, nil
	}
	s := &models.WalletStats{Wallet: wallet}
	s.FillDerived()
	return s, nil
}

func (r *stubWalletRepo) Leaderboard(ctx context.Context, limit int) ([]*models.WalletStats, error) {
	r.lastLimit = limit
	return r.leaderboard, nil
}

// stubVerifier returns a fixed verdict or error for every transfer.
type stubVerifier struct {
	verdict   chain.Verdict
	verifyErr error
	balance   uint64
	balErr    error
	calls     int
}

func (v *stubVerifier) VerifyTransfer(ctx context.Context, signature, fromWallet, toWallet string, lamports uint64) (chain.Verdict, error) {
	v.calls++
	if v.verifyErr != nil {
		return chain.Verdict{}, v.verifyErr
	}
	return v.verdict, nil
}

func (v *stubVerifier) Balance(ctx context.Context, wallet string) (uint64, error) {
	if v.balErr != nil {
		return 0, v.balErr
	}
	return v.balance, nil
}
