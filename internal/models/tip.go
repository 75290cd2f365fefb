package models

import (
	"time"

	"gorm.io/gorm"
)

// Tip is a verified on-chain transfer recorded against a post. The chain
// transaction signature is the primary key: a given signature can be applied
// at most once, which is what makes client retries safe. Rows are immutable
// once written.
type Tip struct {
	TxSignature    string    `gorm:"primaryKey;size:96" json:"tx_signature"`
	PostID         uint      `gorm:"not null;index" json:"post_id"`
	FromWallet     string    `gorm:"size:64;not null;index" json:"from_wallet"`
	ToWallet       string    `gorm:"size:64;not null;index" json:"to_wallet"`
	AmountLamports int64     `gorm:"not null" json:"amount_lamports"`
	AppliedAt      time.Time `gorm:"autoCreateTime" json:"applied_at"`

	// AmountSol is the SOL view of AmountLamports; computed on read.
	AmountSol float64 `gorm:"-" json:"amount_sol"`
	// Timestamp is AppliedAt in Unix milliseconds.
	Timestamp int64 `gorm:"-" json:"timestamp"`
}

// AfterFind populates the derived JSON fields.
func (t *Tip) AfterFind(*gorm.DB) error {
	t.FillDerived()
	return nil
}

// AfterCreate populates the derived JSON fields on freshly inserted rows.
func (t *Tip) AfterCreate(*gorm.DB) error {
	t.FillDerived()
	return nil
}

// FillDerived recomputes the non-persisted presentation fields.
func (t *Tip) FillDerived() {
	t.AmountSol = LamportsToSol(t.AmountLamports)
	t.Timestamp = t.AppliedAt.UnixMilli()
}
