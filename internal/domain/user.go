// internal/domain/user.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceField names a spendable balance column on a user account.
type BalanceField string

const (
	FieldBalance       BalanceField = "balance"
	FieldLockedBalance BalanceField = "locked_balance"
	FieldBonusBalance  BalanceField = "bonus_balance"
)

// Valid reports whether f is a known balance column.
func (f BalanceField) Valid() bool {
	switch f {
	case FieldBalance, FieldLockedBalance, FieldBonusBalance:
		return true
	}
	return false
}

// Aggregate names a monotonic audit total on a user account.
type Aggregate string

const (
	AggregateInvested  Aggregate = "total_invested"
	AggregateWithdrawn Aggregate = "total_withdrawn"
	AggregateEarned    Aggregate = "total_earned"
)

// Valid reports whether a is a known aggregate column.
func (a Aggregate) Valid() bool {
	switch a {
	case AggregateInvested, AggregateWithdrawn, AggregateEarned:
		return true
	}
	return false
}

// User represents an account holder. Balance columns are only ever changed
// through the ledger.
type User struct {
	ID             int64           `db:"id" json:"id"`
	Username       string          `db:"username" json:"username"`
	Email          string          `db:"email" json:"email"`
	ReferralCode   string          `db:"referral_code" json:"referral_code"`
	ReferredBy     *int64          `db:"referred_by" json:"referred_by,omitempty"`
	Balance        decimal.Decimal `db:"balance" json:"balance"`
	LockedBalance  decimal.Decimal `db:"locked_balance" json:"locked_balance"`
	BonusBalance   decimal.Decimal `db:"bonus_balance" json:"bonus_balance"`
	TotalInvested  decimal.Decimal `db:"total_invested" json:"total_invested"`
	TotalWithdrawn decimal.Decimal `db:"total_withdrawn" json:"total_withdrawn"`
	TotalEarned    decimal.Decimal `db:"total_earned" json:"total_earned"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User instance with zero balances.
func NewUser(username, email, referralCode string, referredBy *int64) *User {
	now := time.Now().UTC()
	return &User{
		Username:       username,
		Email:          email,
		ReferralCode:   referralCode,
		ReferredBy:     referredBy,
		Balance:        decimal.Zero,
		LockedBalance:  decimal.Zero,
		BonusBalance:   decimal.Zero,
		TotalInvested:  decimal.Zero,
		TotalWithdrawn: decimal.Zero,
		TotalEarned:    decimal.Zero,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// FieldValue returns the current value of a balance column.
func (u *User) FieldValue(f BalanceField) decimal.Decimal {
	switch f {
	case FieldLockedBalance:
		return u.LockedBalance
	case FieldBonusBalance:
		return u.BonusBalance
	default:
		return u.Balance
	}
}
