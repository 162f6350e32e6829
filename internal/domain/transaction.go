// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the type of a journal entry.
type TransactionType string

const (
	TransactionTypeDeposit         TransactionType = "deposit"
	TransactionTypeWithdrawal      TransactionType = "withdrawal"
	TransactionTypeInvestment      TransactionType = "investment"
	TransactionTypeProfit          TransactionType = "profit"
	TransactionTypeBonus           TransactionType = "bonus"
	TransactionTypeReferral        TransactionType = "referral"
	TransactionTypePrincipalReturn TransactionType = "principal_return"
	TransactionTypeRefund          TransactionType = "refund"
)

// Valid reports whether t is a known journal entry type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeInvestment,
		TransactionTypeProfit, TransactionTypeBonus, TransactionTypeReferral,
		TransactionTypePrincipalReturn, TransactionTypeRefund:
		return true
	}
	return false
}

// ReferencePrefix is the reference_id prefix used for entries of this type.
func (t TransactionType) ReferencePrefix() string {
	switch t {
	case TransactionTypeDeposit:
		return "DEP"
	case TransactionTypeWithdrawal:
		return "WD"
	case TransactionTypeInvestment:
		return "INV"
	case TransactionTypeProfit:
		return "PRF"
	case TransactionTypeBonus:
		return "BNS"
	case TransactionTypeReferral:
		return "REF"
	case TransactionTypePrincipalReturn:
		return "PRN"
	case TransactionTypeRefund:
		return "RFD"
	}
	return "TXN"
}

// TransactionStatus is shared by journal entries, deposits and withdrawals.
type TransactionStatus string

const (
	StatusPending    TransactionStatus = "pending"
	StatusProcessing TransactionStatus = "processing"
	StatusCompleted  TransactionStatus = "completed"
	StatusFailed     TransactionStatus = "failed"
	StatusCancelled  TransactionStatus = "cancelled"
	StatusExpired    TransactionStatus = "expired"
)

// Valid reports whether s is a known status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// IsOpen reports whether s still allows a transition.
func (s TransactionStatus) IsOpen() bool {
	return s == StatusPending || s == StatusProcessing
}

// IsTerminal reports whether s is a final state.
func (s TransactionStatus) IsTerminal() bool {
	return s.Valid() && !s.IsOpen()
}

// OpenStatuses are the states from which deposits and withdrawals may move.
var OpenStatuses = []TransactionStatus{StatusPending, StatusProcessing}

// Transaction is an immutable journal record of one monetary event. Only the
// status, admin note, processed time and balance effect change after insert.
type Transaction struct {
	ID            int64             `db:"id" json:"id"`
	UserID        int64             `db:"user_id" json:"user_id"`
	Type          TransactionType   `db:"type" json:"type"`
	Amount        decimal.Decimal   `db:"amount" json:"amount"`
	Fee           decimal.Decimal   `db:"fee" json:"fee"`
	NetAmount     decimal.Decimal   `db:"net_amount" json:"net_amount"`
	Currency      string            `db:"currency" json:"currency"`
	Status        TransactionStatus `db:"status" json:"status"`
	ReferenceID   string            `db:"reference_id" json:"reference_id"`
	BalanceField  BalanceField      `db:"balance_field" json:"balance_field"`
	BalanceEffect decimal.Decimal   `db:"balance_effect" json:"balance_effect"` // signed amount the paired ledger posting applied
	RelatedType   *string           `db:"related_type" json:"related_type,omitempty"`
	RelatedID     *int64            `db:"related_id" json:"related_id,omitempty"`
	Description   *string           `db:"description" json:"description,omitempty"`
	AdminNote     *string           `db:"admin_note" json:"admin_note,omitempty"`
	ProcessedAt   *time.Time        `db:"processed_at" json:"processed_at,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// NewTransaction creates a journal entry for userID. Fee and net amount are
// left zero for the journal to derive.
func NewTransaction(userID int64, txType TransactionType, amount decimal.Decimal, currency string, status TransactionStatus) *Transaction {
	now := time.Now().UTC()
	return &Transaction{
		UserID:        userID,
		Type:          txType,
		Amount:        amount,
		Fee:           decimal.Zero,
		NetAmount:     decimal.Zero,
		Currency:      currency,
		Status:        status,
		BalanceField:  FieldBalance,
		BalanceEffect: decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// WithRelated links the entry to another record.
func (t *Transaction) WithRelated(kind string, id int64) *Transaction {
	t.RelatedType = &kind
	t.RelatedID = &id
	return t
}

// WithDescription sets a human-readable description.
func (t *Transaction) WithDescription(desc string) *Transaction {
	t.Description = &desc
	return t
}

// Related record kinds.
const (
	RelatedInvestment = "investment"
	RelatedDeposit    = "deposit"
	RelatedWithdrawal = "withdrawal"
	RelatedUser       = "user"
)
