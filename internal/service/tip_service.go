package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"soltip/internal/chain"
	"soltip/internal/middleware"
	"soltip/internal/models"
	"soltip/internal/observability"
	"soltip/internal/repository"
)

// TipService applies tip claims: verify on chain first, then credit exactly
// once. "Apply once confirmed" rather than "apply then reconcile" — a wrongly
// credited tip is much harder to unwind than a delayed credit.
type TipService struct {
	tipRepo  repository.TipRepository
	postRepo repository.PostRepository
	verifier chain.Verifier
}

// NewTipService creates a new tip service.
func NewTipService(tipRepo repository.TipRepository, postRepo repository.PostRepository, verifier chain.Verifier) *TipService {
	return &TipService{tipRepo: tipRepo, postRepo: postRepo, verifier: verifier}
}

// ApplyTipInput is a tip claim as submitted by the client.
type ApplyTipInput struct {
	PostID      uint
	FromWallet  string
	AmountSol   float64
	TxSignature string
}

// ApplyTip verifies the claimed transfer against the chain and, on a
// Confirmed verdict, records the tip and its aggregate effects exactly once.
// Re-submitting a signature that was already applied returns the original
// tip with applied=false and changes nothing.
func (s *TipService) ApplyTip(ctx context.Context, in ApplyTipInput) (tip *models.Tip, post *models.Post, applied bool, err error) {
	if err := chain.ValidateAddress(in.FromWallet); err != nil {
		observability.TipsRejected.WithLabelValues("validation").Inc()
		return nil, nil, false, err
	}
	if err := chain.ValidateSignature(in.TxSignature); err != nil {
		observability.TipsRejected.WithLabelValues("validation").Inc()
		return nil, nil, false, err
	}
	lamports := solToLamports(in.AmountSol)
	if lamports <= 0 {
		observability.TipsRejected.WithLabelValues("validation").Inc()
		return nil, nil, false, models.NewValidationError("Amount must be positive")
	}

	post, err = s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		observability.TipsRejected.WithLabelValues("not_found").Inc()
		return nil, nil, false, err
	}
	if post.Wallet == in.FromWallet {
		observability.TipsRejected.WithLabelValues("self_tip").Inc()
		return nil, nil, false, models.NewSelfTipError()
	}

	verdict, err := s.verifier.VerifyTransfer(ctx, in.TxSignature, in.FromWallet, post.Wallet, uint64(lamports))
	if err != nil {
		return nil, nil, false, err
	}
	switch verdict.Status {
	case chain.StatusPending:
		observability.TipsRejected.WithLabelValues("pending").Inc()
		return nil, nil, false, models.NewChainPendingError(in.TxSignature)
	case chain.StatusFailed:
		observability.TipsRejected.WithLabelValues("verification_failed").Inc()
		return nil, nil, false, models.NewChainFailedError(verdict.Reason)
	}

	// The transfer has irrevocably happened on chain; from here the apply
	// must run to completion even if the client disconnects mid-request.
	dctx := context.WithoutCancel(ctx)

	tip = &models.Tip{
		TxSignature:    in.TxSignature,
		PostID:         post.ID,
		FromWallet:     in.FromWallet,
		ToWallet:       post.Wallet,
		AmountLamports: lamports,
		AppliedAt:      time.Now().UTC(),
	}
	applied, err = s.tipRepo.Apply(dctx, tip)
	if err != nil {
		return nil, nil, false, err
	}

	if applied {
		observability.TipsApplied.Inc()
		middleware.Logger.InfoContext(ctx, "tip applied",
			slog.String("tx_signature", tip.TxSignature),
			slog.Uint64("post_id", uint64(tip.PostID)),
			slog.String("from", tip.FromWallet),
			slog.String("to", tip.ToWallet),
			slog.Int64("lamports", tip.AmountLamports),
		)
	} else {
		observability.TipsDuplicate.Inc()
	}

	post, err = s.postRepo.GetByID(dctx, post.ID)
	if err != nil {
		return nil, nil, false, err
	}
	return tip, post, applied, nil
}

// solToLamports converts a SOL amount to integer lamports, rounding to the
// nearest lamport to absorb float representation noise in the request body.
func solToLamports(sol float64) int64 {
	return int64(math.Round(sol * float64(models.LamportsPerSol)))
}
