// internal/repository/deposit_repo.go
package repository

import (
	"context"
	"time"

	"yieldledger/internal/domain"
)

// PaymentStatusUpdate describes a conditional status transition of a deposit
// or withdrawal.
type PaymentStatusUpdate struct {
	From        []domain.TransactionStatus
	To          domain.TransactionStatus
	ProcessedBy *int64
	Reference   *string // gateway transaction id or chain hash
	ProcessedAt time.Time
}

// DepositRepository defines the interface for deposit methods and deposits.
type DepositRepository interface {
	GetMethodByID(ctx context.Context, q DBExecutor, id int64) (*domain.DepositMethod, error)
	ListMethods(ctx context.Context, q DBExecutor, activeOnly bool) ([]domain.DepositMethod, error)

	CreateDeposit(ctx context.Context, q DBExecutor, deposit *domain.Deposit) error
	// GetDepositByID returns util.ErrDepositNotFound when no row exists.
	GetDepositByID(ctx context.Context, q DBExecutor, id int64) (*domain.Deposit, error)
	// UpdateDepositStatus applies update only from one of update.From,
	// otherwise util.ErrInvalidStateTransition.
	UpdateDepositStatus(ctx context.Context, q DBExecutor, id int64, update PaymentStatusUpdate) error
	ListExpiredPending(ctx context.Context, q DBExecutor, now time.Time, limit int) ([]domain.Deposit, error)
	ListDepositsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Deposit, error)
}
