// internal/domain/investment.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProfitInterval is the time between two profit ticks.
const ProfitInterval = 24 * time.Hour

// SchemaStatus is the admin-controlled availability of a schema.
type SchemaStatus string

const (
	SchemaActive   SchemaStatus = "active"
	SchemaInactive SchemaStatus = "inactive"
)

// InvestmentSchema is an admin-configured contract template.
type InvestmentSchema struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	MinAmount    decimal.Decimal `db:"min_amount" json:"min_amount"`
	MaxAmount    decimal.Decimal `db:"max_amount" json:"max_amount"`
	DailyRate    decimal.Decimal `db:"daily_rate" json:"daily_rate"` // percent per day
	DurationDays int             `db:"duration_days" json:"duration_days"`
	TotalReturn  decimal.Decimal `db:"total_return" json:"total_return"` // percent over the term
	Status       SchemaStatus    `db:"status" json:"status"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updated_at"`
}

// Accepts reports whether amount lies within the schema bounds, inclusive.
func (s *InvestmentSchema) Accepts(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(s.MinAmount) && amount.LessThanOrEqual(s.MaxAmount)
}

// InvestmentStatus is the lifecycle state of an investment.
type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "active"
	InvestmentCompleted InvestmentStatus = "completed"
)

// Investment is a live or completed contract created from a schema.
type Investment struct {
	ID                int64            `db:"id" json:"id"`
	UserID            int64            `db:"user_id" json:"user_id"`
	SchemaID          int64            `db:"schema_id" json:"schema_id"`
	TransactionID     int64            `db:"transaction_id" json:"transaction_id"`
	InvestAmount      decimal.Decimal  `db:"invest_amount" json:"invest_amount"`
	DailyRate         decimal.Decimal  `db:"daily_rate" json:"daily_rate"`
	TotalProfitAmount decimal.Decimal  `db:"total_profit_amount" json:"total_profit_amount"`
	PaidProfit        decimal.Decimal  `db:"paid_profit" json:"paid_profit"`
	ProfitDaysPaid    int              `db:"profit_days_paid" json:"profit_days_paid"`
	NumberOfPeriod    int              `db:"number_of_period" json:"number_of_period"`
	LastProfitTime    *time.Time       `db:"last_profit_time" json:"last_profit_time,omitempty"`
	NextProfitTime    time.Time        `db:"next_profit_time" json:"next_profit_time"`
	Status            InvestmentStatus `db:"status" json:"status"`
	CompletedAt       *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// NewInvestment creates an active investment from a schema and net principal.
func NewInvestment(userID int64, schema *InvestmentSchema, principal decimal.Decimal, now time.Time) *Investment {
	days := decimal.NewFromInt(int64(schema.DurationDays))
	return &Investment{
		UserID:            userID,
		SchemaID:          schema.ID,
		InvestAmount:      principal,
		DailyRate:         schema.DailyRate,
		TotalProfitAmount: PercentOf(principal.Mul(days), schema.DailyRate),
		PaidProfit:        decimal.Zero,
		NumberOfPeriod:    schema.DurationDays,
		NextProfitTime:    now.Add(ProfitInterval),
		Status:            InvestmentActive,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}

// DailyProfit is the profit credited on a regular tick.
func (i *Investment) DailyProfit() decimal.Decimal {
	return PercentOf(i.InvestAmount, i.DailyRate)
}

// ProfitForNextTick returns the amount due on the next tick. The final tick
// pays whatever remains of the projected total so rounding never drifts.
func (i *Investment) ProfitForNextTick() decimal.Decimal {
	if i.IsFinalTick() {
		remaining := i.TotalProfitAmount.Sub(i.PaidProfit)
		if remaining.IsNegative() {
			return decimal.Zero
		}
		return remaining
	}
	return i.DailyProfit()
}

// IsFinalTick reports whether the next tick completes the term.
func (i *Investment) IsFinalTick() bool {
	return i.ProfitDaysPaid+1 >= i.NumberOfPeriod
}

// TermServed reports whether every profit day of the term has been paid.
func (i *Investment) TermServed() bool {
	return i.ProfitDaysPaid >= i.NumberOfPeriod
}

// IsDue reports whether a profit tick is due at now.
func (i *Investment) IsDue(now time.Time) bool {
	return i.Status == InvestmentActive && !i.NextProfitTime.After(now)
}

// Profit is the per-tick detail row, unique per (investment, day).
type Profit struct {
	ID            int64           `db:"id" json:"id"`
	InvestmentID  int64           `db:"investment_id" json:"investment_id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	TransactionID int64           `db:"transaction_id" json:"transaction_id"`
	ProfitDay     int             `db:"profit_day" json:"profit_day"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	Rate          decimal.Decimal `db:"rate" json:"rate"`
	CalculatedAt  time.Time       `db:"calculated_at" json:"calculated_at"`
}
