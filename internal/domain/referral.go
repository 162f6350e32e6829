// internal/domain/referral.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferralStatus is active until deactivated; referrals are never deleted.
type ReferralStatus string

const (
	ReferralActive   ReferralStatus = "active"
	ReferralInactive ReferralStatus = "inactive"
)

// Referral is a one-way commission edge from referrer to referred user.
type Referral struct {
	ID             int64           `db:"id" json:"id"`
	ReferrerID     int64           `db:"referrer_id" json:"referrer_id"`
	ReferredID     int64           `db:"referred_id" json:"referred_id"`
	CommissionRate decimal.Decimal `db:"commission_rate" json:"commission_rate"` // percent, captured at creation
	TotalEarned    decimal.Decimal `db:"total_earned" json:"total_earned"`
	Status         ReferralStatus  `db:"status" json:"status"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
}
