package models

import (
	"time"

	"gorm.io/gorm"
)

// WalletStats holds the per-wallet aggregates the reputation score derives
// from. Rows are created lazily on a wallet's first post or first tip and are
// never deleted. ReputationScore is a cache of the score function over the
// row's own aggregates, refreshed inside every transaction that changes them.
type WalletStats struct {
	Wallet                    string    `gorm:"primaryKey;size:64" json:"wallet"`
	PostCount                 int       `gorm:"not null;default:0" json:"post_count"`
	TotalTipsReceivedLamports int64     `gorm:"not null;default:0" json:"-"`
	TotalTipsGivenLamports    int64     `gorm:"not null;default:0" json:"-"`
	ReputationScore           int64     `gorm:"not null;default:0;index" json:"reputation_score"`
	JoinedAt                  time.Time `json:"-"`

	// SOL views of the lamport aggregates; computed on read.
	TotalTipsReceived float64 `gorm:"-" json:"total_tips_received"`
	TotalTipsGiven    float64 `gorm:"-" json:"total_tips_given"`
	// Level is the display bracket for ReputationScore.
	Level string `gorm:"-" json:"level"`
	// JoinedAtMillis is JoinedAt in Unix milliseconds.
	JoinedAtMillis int64 `gorm:"-" json:"joined_at"`
}

// AfterFind populates the derived JSON fields.
func (w *WalletStats) AfterFind(*gorm.DB) error {
	w.FillDerived()
	return nil
}

// FillDerived recomputes the non-persisted presentation fields.
func (w *WalletStats) FillDerived() {
	w.TotalTipsReceived = LamportsToSol(w.TotalTipsReceivedLamports)
	w.TotalTipsGiven = LamportsToSol(w.TotalTipsGivenLamports)
	w.Level = ReputationLevel(w.ReputationScore)
	w.JoinedAtMillis = w.JoinedAt.UnixMilli()
}

// Reputation level names, in ascending order.
const (
	LevelNewcomer   = "Newcomer"
	LevelActive     = "Active"
	LevelRisingStar = "Rising Star"
	LevelExpert     = "Expert"
	LevelLegend     = "Legend"
)

// ReputationLevel maps a score to its display level. Boundaries are inclusive
// on the lower end.
func ReputationLevel(score int64) string {
	switch {
	case score >= 500:
		return LevelLegend
	case score >= 200:
		return LevelExpert
	case score >= 100:
		return LevelRisingStar
	case score >= 50:
		return LevelActive
	default:
		return LevelNewcomer
	}
}
