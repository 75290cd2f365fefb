// Package service contains the application's business logic on top of the
// repositories.
package service

import (
	"soltip/internal/config"
	"soltip/internal/models"
)

// ReputationParams holds the injectable reputation weights. The score is a
// pure function of a wallet's aggregates; the persisted score column is only
// a cache of this function, never an independent source of truth.
type ReputationParams struct {
	// TipPointsPerSol is awarded per whole SOL received in tips.
	TipPointsPerSol int64
	// PostPoints is awarded per post created.
	PostPoints int64
}

// NewReputationParams reads the weights from configuration.
func NewReputationParams(cfg *config.Config) ReputationParams {
	return ReputationParams{
		TipPointsPerSol: cfg.ReputationTipPoints,
		PostPoints:      cfg.ReputationPostPoints,
	}
}

// Score computes the reputation score from lamport-denominated tips received
// and the post count, rounded down to an integer. All arithmetic is integer;
// fractional SOL contributes proportionally (0.5 SOL at 10 points/SOL is 5).
func (p ReputationParams) Score(receivedLamports int64, postCount int) int64 {
	return (p.TipPointsPerSol*receivedLamports)/models.LamportsPerSol + p.PostPoints*int64(postCount)
}
