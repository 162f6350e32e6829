// internal/domain/stats.go
package domain

import "github.com/shopspring/decimal"

// PlatformStats is the aggregate view read by admin screens.
type PlatformStats struct {
	TotalUsers         int64           `db:"total_users" json:"total_users"`
	TotalBalance       decimal.Decimal `db:"total_balance" json:"total_balance"`
	TotalInvested      decimal.Decimal `db:"total_invested" json:"total_invested"`
	TotalWithdrawn     decimal.Decimal `db:"total_withdrawn" json:"total_withdrawn"`
	TotalEarned        decimal.Decimal `db:"total_earned" json:"total_earned"`
	ActiveInvestments  int64           `db:"active_investments" json:"active_investments"`
	ActivePrincipal    decimal.Decimal `db:"active_principal" json:"active_principal"`
	PendingDeposits    int64           `db:"pending_deposits" json:"pending_deposits"`
	PendingWithdrawals int64           `db:"pending_withdrawals" json:"pending_withdrawals"`
	PendingWithdrawSum decimal.Decimal `db:"pending_withdraw_sum" json:"pending_withdraw_sum"`
}

// Reconciliation compares stored balances with the journal.
type Reconciliation struct {
	UserID         int64           `json:"user_id"`
	Balance        decimal.Decimal `json:"balance"`
	JournalBalance decimal.Decimal `json:"journal_balance"`
	BonusBalance   decimal.Decimal `json:"bonus_balance"`
	JournalBonus   decimal.Decimal `json:"journal_bonus"`
	Consistent     bool            `json:"consistent"`
}
