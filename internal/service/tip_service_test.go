package service

import (
	"testing"

	"soltip/internal/chain"
	"soltip/internal/models"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWallets(t *testing.T) (author, tipper string) {
	t.Helper()
	return solana.NewWallet().PublicKey().String(), solana.NewWallet().PublicKey().String()
}

func testTxSignature(b byte) string {
	var sig solana.Signature
	sig[0] = b
	return sig.String()
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T", err)
	return appErr.Code
}

func TestApplyTipConfirmed(t *testing.T) {
	author, tipper := testWallets(t)
	post := &models.Post{ID: 1, Wallet: author, Content: "hi"}

	postRepo := newStubPostRepo(post)
	tipRepo := &stubTipRepo{applied: true}
	verifier := &stubVerifier{verdict: chain.Verdict{Status: chain.StatusConfirmed}}
	svc := NewTipService(tipRepo, postRepo, verifier)

	tip, gotPost, applied, err := svc.ApplyTip(t.Context(), ApplyTipInput{
		PostID:      1,
		FromWallet:  tipper,
		AmountSol:   0.5,
		TxSignature: testTxSignature(1),
	})
	require.NoError(t, err)
	assert.True(t, applied)
	require.NotNil(t, tip)
	require.NotNil(t, gotPost)

	assert.Equal(t, int64(500_000_000), tip.AmountLamports)
	assert.Equal(t, tipper, tip.FromWallet)
	assert.Equal(t, author, tip.ToWallet)
	assert.Equal(t, 1, tipRepo.applyCall)
	assert.Equal(t, 1, verifier.calls)
}

func TestApplyTipDuplicate(t *testing.T) {
	author, tipper := testWallets(t)
	post := &models.Post{ID: 1, Wallet: author}

	postRepo := newStubPostRepo(post)
	tipRepo := &stubTipRepo{applied: false}
	verifier := &stubVerifier{verdict: chain.Verdict{Status: chain.StatusConfirmed}}
	svc := NewTipService(tipRepo, postRepo, verifier)

	tip, _, applied, err := svc.ApplyTip(t.Context(), ApplyTipInput{
		PostID:      1,
		FromWallet:  tipper,
		AmountSol:   0.1,
		TxSignature: testTxSignature(2),
	})
	require.NoError(t, err)
	assert.False(t, applied)
	require.NotNil(t, tip)
}

func TestApplyTipSelfTip(t *testing.T) {
	author, _ := testWallets(t)
	post := &models.Post{ID: 1, Wallet: author}

	postRepo := newStubPostRepo(post)
	tipRepo := &stubTipRepo{}
	verifier := &stubVerifier{verdict: chain.Verdict{Status: chain.StatusConfirmed}}
	svc := NewTipService(tipRepo, postRepo, verifier)

	_, _, _, err := svc.ApplyTip(t.Context(), ApplyTipInput{
		PostID:      1,
		FromWallet:  author,
		AmountSol:   0.1,
		TxSignature: testTxSignature(3),
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeSelfTip, appCode(t, err))
	// Rejected before any chain call or ledger write.
	assert.Equal(t, 0, verifier.calls)
	assert.Equal(t, 0, tipRepo.applyCall)
}

func TestApplyTipPending(t *testing.T) {
	author, tipper := testWallets(t)
	post := &models.Post{ID: 1, Wallet: author}

	postRepo := newStubPostRepo(post)
	tipRepo := &stubTipRepo{}
	verifier := &stubVerifier{verdict: chain.Verdict{Status: chain.StatusPending}}
	svc := NewTipService(tipRepo, postRepo, verifier)

	_, _, _, err := svc.ApplyTip(t.Context(), ApplyTipInput{
		PostID:      1,
		FromWallet:  tipper,
		AmountSol:   0.1,
		TxSignature: testTxSignature(4),
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeChainPending, appCode(t, err))
	assert.Equal(t, 0, tipRepo.applyCall)
}

func TestApplyTipVerificationFailed(t *testing.T) {
	author, tipper := testWallets(t)
	post := &models.Post{ID: 1, Wallet: author}

	postRepo := newStubPostRepo(post)
	tipRepo := &stubTipRepo{}
	verifier := &stubVerifier{verdict: chain.Verdict{Status: chain.StatusFailed, Reason: "amount mismatch"}}
	svc := NewTipService(tipRepo, postRepo, verifier)

	_, _, _, err := svc.ApplyTip(t.Context(), ApplyTipInput{
		PostID:      1,
		FromWallet:  tipper,
		AmountSol:   0.1,
		TxSignature: testTxSignature(5),
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeChainFailed, appCode(t, err))
	assert.Contains(t, err.Error(), "amount mismatch")
	assert.Equal(t, 0, tipRepo.applyCall)
}

func TestApplyTipPostNotFound(t *testing.T) {
	_, tipper := testWallets(t)

	postRepo := newStubPostRepo()
	tipRepo := &stubTipRepo{}
	verifier := &stubVerifier{}
	svc := NewTipService(tipRepo, postRepo, verifier)

	_, _, _, err := svc.ApplyTip(t.Context(), ApplyTipInput{
		PostID:      99,
		FromWallet:  tipper,
		AmountSol:   0.1,
		TxSignature: testTxSignature(6),
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, appCode(t, err))
	assert.Equal(t, 0, verifier.calls)
}

func TestApplyTipValidation(t *testing.T) {
	author, tipper := testWallets(t)
	post := &models.Post{ID: 1, Wallet: author}
	postRepo := newStubPostRepo(post)

	tests := []struct {
		name  string
		input ApplyTipInput
	}{
		{"bad wallet", ApplyTipInput{PostID: 1, FromWallet: "nope", AmountSol: 0.1, TxSignature: testTxSignature(7)}},
		{"bad signature", ApplyTipInput{PostID: 1, FromWallet: tipper, AmountSol: 0.1, TxSignature: "nope"}},
		{"zero amount", ApplyTipInput{PostID: 1, FromWallet: tipper, AmountSol: 0, TxSignature: testTxSignature(8)}},
		{"negative amount", ApplyTipInput{PostID: 1, FromWallet: tipper, AmountSol: -1, TxSignature: testTxSignature(9)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tipRepo := &stubTipRepo{}
			verifier := &stubVerifier{}
			svc := NewTipService(tipRepo, postRepo, verifier)

			_, _, _, err := svc.ApplyTip(t.Context(), tt.input)
			require.Error(t, err)
			assert.Equal(t, models.CodeValidation, appCode(t, err))
			assert.Equal(t, 0, tipRepo.applyCall)
		})
	}
}

func TestSolToLamportsRounding(t *testing.T) {
	// Float noise in request bodies must not shave lamports off.
	assert.Equal(t, int64(100_000_000), solToLamports(0.1))
	assert.Equal(t, int64(500_000_000), solToLamports(0.5))
	assert.Equal(t, int64(1_000_000_000), solToLamports(1.0))
	assert.Equal(t, int64(1), solToLamports(0.000000001))
}
