// internal/repository/referral_repo.go
package repository

import (
	"context"

	"yieldledger/internal/domain"

	"github.com/shopspring/decimal"
)

// ReferralRepository defines the interface for referral edges.
type ReferralRepository interface {
	// CreateReferral returns util.ErrDuplicateEntry if the pair already exists.
	CreateReferral(ctx context.Context, q DBExecutor, referral *domain.Referral) error
	// GetReferral returns util.ErrReferralNotFound when the pair has no edge.
	GetReferral(ctx context.Context, q DBExecutor, referrerID, referredID int64) (*domain.Referral, error)
	AddEarnings(ctx context.Context, q DBExecutor, id int64, amount decimal.Decimal) error
	ListReferralsByReferrer(ctx context.Context, q DBExecutor, referrerID int64) ([]domain.Referral, error)
}
