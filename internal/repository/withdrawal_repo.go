// internal/repository/withdrawal_repo.go
package repository

import (
	"context"

	"yieldledger/internal/domain"
)

// WithdrawalRepository defines the interface for withdrawal requests.
type WithdrawalRepository interface {
	CreateWithdrawal(ctx context.Context, q DBExecutor, withdrawal *domain.Withdrawal) error
	// GetWithdrawalByID returns util.ErrWithdrawalNotFound when no row exists.
	GetWithdrawalByID(ctx context.Context, q DBExecutor, id int64) (*domain.Withdrawal, error)
	// UpdateWithdrawalStatus applies update only from one of update.From,
	// otherwise util.ErrInvalidStateTransition.
	UpdateWithdrawalStatus(ctx context.Context, q DBExecutor, id int64, update PaymentStatusUpdate) error
	ListWithdrawalsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Withdrawal, error)
}
