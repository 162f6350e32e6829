// internal/domain/money.go
package domain

import "github.com/shopspring/decimal"

// MoneyScale is the number of fractional digits kept for every stored amount,
// matching NUMERIC(20, 8) in the database.
const MoneyScale int32 = 8

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds an amount to MoneyScale digits.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// PercentOf returns pct% of amount, rounded to MoneyScale.
func PercentOf(amount, pct decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(pct).Div(hundred))
}
