// Package chain verifies claimed transfers against the Solana network.
//
// This is the ledger's trust boundary: a tip is never credited without an
// independent Confirmed verdict from here, so a claim that did not actually
// move funds can never mint reputation.
package chain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"soltip/internal/cache"
	"soltip/internal/models"
	"soltip/internal/observability"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Status is the outcome of a transfer verification.
type Status int

const (
	// StatusConfirmed means the transaction is finalized and matches the claim.
	StatusConfirmed Status = iota
	// StatusPending means the transaction exists but is not finalized yet;
	// the caller may back off and resubmit the identical claim.
	StatusPending
	// StatusFailed is terminal: absent, failed on chain, or mismatching.
	StatusFailed
)

// Verdict is a verification outcome with a human-readable reason for
// terminal failures.
type Verdict struct {
	Status Status
	Reason string
}

// Verifier confirms claimed transfers and reads live balances.
type Verifier interface {
	VerifyTransfer(ctx context.Context, signature, fromWallet, toWallet string, lamports uint64) (Verdict, error)
	Balance(ctx context.Context, wallet string) (uint64, error)
}

// rpcAPI is the slice of the Solana RPC client the verifier uses.
// Narrow on purpose so tests can stub it.
type rpcAPI interface {
	GetTransaction(ctx context.Context, txSig solana.Signature, opts *rpc.GetTransactionOpts) (*rpc.GetTransactionResult, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...solana.Signature) (*rpc.GetSignatureStatusesResult, error)
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
}

// SolanaVerifier verifies transfers via JSON-RPC at finalized commitment.
// Confirmed and Failed verdicts are cached without expiry (finality is
// immutable); Pending is never cached.
type SolanaVerifier struct {
	client      rpcAPI
	maxAttempts int
	timeout     time.Duration
}

// NewSolanaVerifier returns a verifier for the given RPC endpoint.
func NewSolanaVerifier(rpcURL string, maxAttempts int, timeout time.Duration) *SolanaVerifier {
	return &SolanaVerifier{
		client:      rpc.New(rpcURL),
		maxAttempts: maxAttempts,
		timeout:     timeout,
	}
}

// ValidateAddress returns a ValidationError unless addr is a well-formed
// base58 Solana public key.
func ValidateAddress(addr string) error {
	if _, err := solana.PublicKeyFromBase58(addr); err != nil {
		return models.NewValidationError(fmt.Sprintf("invalid wallet address %q", addr))
	}
	return nil
}

// ValidateSignature returns a ValidationError unless sig is a well-formed
// base58 transaction signature.
func ValidateSignature(sig string) error {
	if _, err := solana.SignatureFromBase58(sig); err != nil {
		return models.NewValidationError("invalid transaction signature")
	}
	return nil
}

// VerifyTransfer checks that the finalized transaction identified by
// signature moved exactly `lamports` from fromWallet to toWallet. Amounts are
// compared in lamports; no floating point is involved. Retries within the
// configured attempt budget before surfacing Pending or Failed.
func (v *SolanaVerifier) VerifyTransfer(ctx context.Context, signature, fromWallet, toWallet string, lamports uint64) (Verdict, error) {
	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return Verdict{}, models.NewValidationError("invalid transaction signature")
	}
	from, err := solana.PublicKeyFromBase58(fromWallet)
	if err != nil {
		return Verdict{}, models.NewValidationError(fmt.Sprintf("invalid wallet address %q", fromWallet))
	}
	to, err := solana.PublicKeyFromBase58(toWallet)
	if err != nil {
		return Verdict{}, models.NewValidationError(fmt.Sprintf("invalid wallet address %q", toWallet))
	}
	if lamports == 0 {
		return Verdict{}, models.NewValidationError("amount must be positive")
	}

	if verdict, ok := cachedVerdict(ctx, signature); ok {
		observability.ChainVerifications.WithLabelValues("cached").Inc()
		return verdict, nil
	}

	var (
		sawPending bool
		lastErr    error
	)
	for attempt := 0; attempt < v.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return Verdict{}, err
			}
		}

		actx, cancel := context.WithTimeout(ctx, v.timeout)
		verdict, terminal, err := v.check(actx, sig, from, to, lamports)
		cancel()

		if err != nil {
			lastErr = err
			continue
		}
		if terminal {
			storeVerdict(ctx, signature, verdict)
			observability.ChainVerifications.WithLabelValues(verdictLabel(verdict.Status)).Inc()
			return verdict, nil
		}
		if verdict.Status == StatusPending {
			sawPending = true
		}
	}

	if sawPending {
		observability.ChainVerifications.WithLabelValues("pending").Inc()
		return Verdict{Status: StatusPending}, nil
	}
	if lastErr != nil {
		observability.ChainVerifications.WithLabelValues("error").Inc()
		return Verdict{}, fmt.Errorf("chain verification unavailable: %w", lastErr)
	}

	// Never seen on chain within the retry window.
	verdict := Verdict{Status: StatusFailed, Reason: "transaction not found"}
	storeVerdict(ctx, signature, verdict)
	observability.ChainVerifications.WithLabelValues("failed").Inc()
	return verdict, nil
}

// check performs one finalized-commitment lookup. terminal is false when the
// transaction may still finalize (absent or pending).
func (v *SolanaVerifier) check(ctx context.Context, sig solana.Signature, from, to solana.PublicKey, lamports uint64) (Verdict, bool, error) {
	maxVersion := uint64(0)
	start := time.Now()
	res, err := v.client.GetTransaction(ctx, sig, &rpc.GetTransactionOpts{
		Encoding:                       solana.EncodingBase64,
		Commitment:                     rpc.CommitmentFinalized,
		MaxSupportedTransactionVersion: &maxVersion,
	})
	observability.ChainRPCLatency.WithLabelValues("getTransaction").Observe(time.Since(start).Seconds())

	if err != nil {
		if err == rpc.ErrNotFound {
			return v.checkPending(ctx, sig)
		}
		return Verdict{}, false, err
	}
	if res == nil || res.Meta == nil {
		return Verdict{Status: StatusFailed, Reason: "transaction metadata unavailable"}, true, nil
	}
	if res.Meta.Err != nil {
		return Verdict{Status: StatusFailed, Reason: "transaction failed on chain"}, true, nil
	}

	tx, err := res.Transaction.GetTransaction()
	if err != nil {
		return Verdict{Status: StatusFailed, Reason: "transaction could not be decoded"}, true, nil
	}

	keys := tx.Message.AccountKeys
	if len(keys) == 0 || !keys[0].Equals(from) {
		return Verdict{Status: StatusFailed, Reason: "sender does not match claim"}, true, nil
	}

	toIdx := -1
	for i, k := range keys {
		if k.Equals(to) {
			toIdx = i
			break
		}
	}
	if toIdx < 0 {
		return Verdict{Status: StatusFailed, Reason: "recipient does not match claim"}, true, nil
	}
	if toIdx >= len(res.Meta.PreBalances) || toIdx >= len(res.Meta.PostBalances) {
		return Verdict{Status: StatusFailed, Reason: "transaction metadata unavailable"}, true, nil
	}

	// The recipient's balance delta is the transferred amount. The sender's
	// delta also includes the fee, so it cannot be compared directly.
	delta := int64(res.Meta.PostBalances[toIdx]) - int64(res.Meta.PreBalances[toIdx])
	if delta != int64(lamports) {
		return Verdict{
			Status: StatusFailed,
			Reason: fmt.Sprintf("amount mismatch: claimed %d lamports, transferred %d", lamports, delta),
		}, true, nil
	}

	return Verdict{Status: StatusConfirmed}, true, nil
}

// checkPending distinguishes "seen but not finalized" from "never seen".
func (v *SolanaVerifier) checkPending(ctx context.Context, sig solana.Signature) (Verdict, bool, error) {
	start := time.Now()
	out, err := v.client.GetSignatureStatuses(ctx, true, sig)
	observability.ChainRPCLatency.WithLabelValues("getSignatureStatuses").Observe(time.Since(start).Seconds())
	if err != nil {
		return Verdict{}, false, err
	}
	if out != nil && len(out.Value) > 0 && out.Value[0] != nil {
		st := out.Value[0]
		if st.Err != nil {
			return Verdict{Status: StatusFailed, Reason: "transaction failed on chain"}, true, nil
		}
		if st.ConfirmationStatus != rpc.ConfirmationStatusFinalized {
			return Verdict{Status: StatusPending}, false, nil
		}
		// Finalized per status but getTransaction lagged; retry the lookup.
		return Verdict{Status: StatusPending}, false, nil
	}
	return Verdict{Status: StatusFailed, Reason: "transaction not found"}, false, nil
}

// Balance returns the wallet's live balance in lamports at finalized commitment.
func (v *SolanaVerifier) Balance(ctx context.Context, wallet string) (uint64, error) {
	pub, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return 0, models.NewValidationError(fmt.Sprintf("invalid wallet address %q", wallet))
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	start := time.Now()
	out, err := v.client.GetBalance(ctx, pub, rpc.CommitmentFinalized)
	observability.ChainRPCLatency.WithLabelValues("getBalance").Observe(time.Since(start).Seconds())
	if err != nil {
		return 0, fmt.Errorf("balance lookup failed: %w", err)
	}
	return out.Value, nil
}

func cachedVerdict(ctx context.Context, signature string) (Verdict, bool) {
	s, ok := cache.GetString(ctx, cache.VerdictKey(signature))
	if !ok {
		return Verdict{}, false
	}
	if s == "confirmed" {
		return Verdict{Status: StatusConfirmed}, true
	}
	if reason, found := strings.CutPrefix(s, "failed:"); found {
		return Verdict{Status: StatusFailed, Reason: reason}, true
	}
	return Verdict{}, false
}

func storeVerdict(ctx context.Context, signature string, v Verdict) {
	switch v.Status {
	case StatusConfirmed:
		cache.SetString(ctx, cache.VerdictKey(signature), "confirmed", 0)
	case StatusFailed:
		cache.SetString(ctx, cache.VerdictKey(signature), "failed:"+v.Reason, 0)
	}
}

func verdictLabel(s Status) string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusPending:
		return "pending"
	default:
		return "failed"
	}
}

func sleepBackoff(ctx context.Context, attempt int) error {
	d := time.Duration(250*(1<<uint(attempt-1))) * time.Millisecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
