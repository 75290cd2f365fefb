// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// LamportsPerSol is the number of lamports in one SOL, the chain's smallest
// indivisible unit. All amounts are stored in lamports; SOL floats exist only
// at the JSON boundary.
const LamportsPerSol int64 = 1_000_000_000

// MaxPostContentLength is the maximum post length in characters.
const MaxPostContentLength = 280

// Post represents a short message published by a wallet. Content is immutable
// after creation; the tip aggregates are only ever incremented, and only by
// the tip ledger inside its transaction.
type Post struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	Wallet               string    `gorm:"size:64;not null;index:idx_posts_wallet_created,priority:1" json:"wallet"`
	Content              string    `gorm:"type:text;not null" json:"content"`
	TipsReceivedLamports int64     `gorm:"not null;default:0" json:"-"`
	TipCount             int       `gorm:"not null;default:0" json:"tip_count"`
	CreatedAt            time.Time `gorm:"index:idx_posts_wallet_created,priority:2" json:"created_at"`

	// TipsReceived is the SOL view of TipsReceivedLamports; computed on read.
	TipsReceived float64 `gorm:"-" json:"tips_received"`
	// Timestamp is CreatedAt in Unix milliseconds, the form the client renders.
	Timestamp int64 `gorm:"-" json:"timestamp"`
}

// AfterFind populates the derived JSON fields.
func (p *Post) AfterFind(*gorm.DB) error {
	p.FillDerived()
	return nil
}

// AfterCreate populates the derived JSON fields on freshly inserted rows.
func (p *Post) AfterCreate(*gorm.DB) error {
	p.FillDerived()
	return nil
}

// FillDerived recomputes the non-persisted presentation fields.
func (p *Post) FillDerived() {
	p.TipsReceived = LamportsToSol(p.TipsReceivedLamports)
	p.Timestamp = p.CreatedAt.UnixMilli()
}

// LamportsToSol converts an integer lamport amount to its SOL representation.
func LamportsToSol(lamports int64) float64 {
	return float64(lamports) / float64(LamportsPerSol)
}
