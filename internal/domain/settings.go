// internal/domain/settings.go
package domain

import "github.com/shopspring/decimal"

// Settings is the read-only platform configuration consumed by the core.
// All rates are percentages.
type Settings struct {
	PlatformFeeRate     decimal.Decimal `json:"platform_fee_rate"`
	ReferralBonusRate   decimal.Decimal `json:"referral_bonus_rate"`
	WithdrawalFeeRate   decimal.Decimal `json:"withdrawal_fee_rate"`
	MinWithdrawalFee    decimal.Decimal `json:"min_withdrawal_fee"`
	MinWithdrawalAmount decimal.Decimal `json:"min_withdrawal_amount"`
	MaxWithdrawalAmount decimal.Decimal `json:"max_withdrawal_amount"`
	SignupBonus         decimal.Decimal `json:"signup_bonus"`
	DefaultCurrency     string          `json:"default_currency"`
}

// Setting keys as stored in the settings table.
const (
	SettingPlatformFeeRate     = "platform_fee_rate"
	SettingReferralBonusRate   = "referral_bonus_rate"
	SettingWithdrawalFeeRate   = "withdrawal_fee_rate"
	SettingMinWithdrawalFee    = "min_withdrawal_fee"
	SettingMinWithdrawalAmount = "min_withdrawal_amount"
	SettingMaxWithdrawalAmount = "max_withdrawal_amount"
	SettingSignupBonus         = "signup_bonus"
	SettingDefaultCurrency     = "default_currency"
)

// DefaultSettings are used for any key missing from the store.
func DefaultSettings() Settings {
	return Settings{
		PlatformFeeRate:     decimal.Zero,
		ReferralBonusRate:   decimal.NewFromInt(5),
		WithdrawalFeeRate:   decimal.NewFromInt(5),
		MinWithdrawalFee:    decimal.NewFromInt(1),
		MinWithdrawalAmount: decimal.NewFromInt(10),
		MaxWithdrawalAmount: decimal.NewFromInt(100000),
		SignupBonus:         decimal.Zero,
		DefaultCurrency:     "USD",
	}
}

// Apply overrides s with the values present in raw. Unparseable numbers are
// reported by key.
func (s Settings) Apply(raw map[string]string) (Settings, []string) {
	var bad []string
	num := func(key string, dst *decimal.Decimal) {
		v, ok := raw[key]
		if !ok {
			return
		}
		d, err := decimal.NewFromString(v)
		if err != nil {
			bad = append(bad, key)
			return
		}
		*dst = d
	}
	num(SettingPlatformFeeRate, &s.PlatformFeeRate)
	num(SettingReferralBonusRate, &s.ReferralBonusRate)
	num(SettingWithdrawalFeeRate, &s.WithdrawalFeeRate)
	num(SettingMinWithdrawalFee, &s.MinWithdrawalFee)
	num(SettingMinWithdrawalAmount, &s.MinWithdrawalAmount)
	num(SettingMaxWithdrawalAmount, &s.MaxWithdrawalAmount)
	num(SettingSignupBonus, &s.SignupBonus)
	if v, ok := raw[SettingDefaultCurrency]; ok && v != "" {
		s.DefaultCurrency = v
	}
	return s, bad
}
