// internal/domain/withdrawal.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Withdrawal wraps one journal entry. Amount plus fee is debited when the
// request is created.
type Withdrawal struct {
	ID              int64             `db:"id" json:"id"`
	UserID          int64             `db:"user_id" json:"user_id"`
	TransactionID   int64             `db:"transaction_id" json:"transaction_id"`
	Amount          decimal.Decimal   `db:"amount" json:"amount"`
	Fee             decimal.Decimal   `db:"fee" json:"fee"`
	Currency        string            `db:"currency" json:"currency"`
	Network         string            `db:"network" json:"network"`
	WalletAddress   string            `db:"wallet_address" json:"wallet_address"`
	TransactionHash *string           `db:"transaction_hash" json:"transaction_hash,omitempty"`
	Status          TransactionStatus `db:"status" json:"status"`
	ProcessedBy     *int64            `db:"processed_by" json:"processed_by,omitempty"`
	ProcessedAt     *time.Time        `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// TotalDebit is what the request removed from the balance.
func (w *Withdrawal) TotalDebit() decimal.Decimal {
	return w.Amount.Add(w.Fee)
}
