// internal/service/fee.go
package service

import (
	"fmt"

	"yieldledger/internal/domain"
	"yieldledger/internal/util"

	"github.com/shopspring/decimal"
)

// FeePolicy describes how a fee is derived from a gross amount. Percent is a
// percentage; Fixed is added on top. Min and Max clamp the result when set.
// An OnTop fee is charged in addition to the amount instead of out of it.
type FeePolicy struct {
	Percent decimal.Decimal
	Fixed   decimal.Decimal
	Min     decimal.Decimal
	Max     decimal.Decimal
	OnTop   bool
}

// ComputeFee returns the fee and the net amount for a gross amount. A fee taken
// out of the amount is never larger than it. An OnTop fee keeps its floor and
// leaves the full amount as net.
func ComputeFee(amount decimal.Decimal, policy FeePolicy) (fee, net decimal.Decimal, err error) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("fee on %s: %w", amount, util.ErrInvalidInput)
	}
	if policy.Percent.IsNegative() || policy.Fixed.IsNegative() || policy.Min.IsNegative() || policy.Max.IsNegative() {
		return decimal.Zero, decimal.Zero, fmt.Errorf("negative fee policy: %w", util.ErrInvalidInput)
	}

	fee = domain.PercentOf(amount, policy.Percent).Add(policy.Fixed)
	if fee.LessThan(policy.Min) {
		fee = policy.Min
	}
	if policy.Max.IsPositive() && fee.GreaterThan(policy.Max) {
		fee = policy.Max
	}
	fee = domain.RoundMoney(fee)
	if policy.OnTop {
		return fee, amount, nil
	}
	if fee.GreaterThan(amount) {
		fee = amount
	}
	return fee, amount.Sub(fee), nil
}

// WithdrawalFeePolicy is max(rate% of amount, minimum fee), debited on top of
// the amount.
func WithdrawalFeePolicy(s domain.Settings) FeePolicy {
	return FeePolicy{Percent: s.WithdrawalFeeRate, Min: s.MinWithdrawalFee, OnTop: true}
}

// PlatformFeePolicy is the investment platform fee.
func PlatformFeePolicy(s domain.Settings) FeePolicy {
	return FeePolicy{Percent: s.PlatformFeeRate}
}

// DepositFeePolicy is the fee configured on a deposit method.
func DepositFeePolicy(m *domain.DepositMethod) FeePolicy {
	return FeePolicy{Percent: m.FeePercent, Fixed: m.FeeFixed}
}
