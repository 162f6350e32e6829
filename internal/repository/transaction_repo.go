// internal/repository/transaction_repo.go
package repository

import (
	"context"
	"time"

	"yieldledger/internal/domain"

	"github.com/shopspring/decimal"
)

// StatusUpdate describes a conditional status transition of a journal entry.
type StatusUpdate struct {
	From          []domain.TransactionStatus
	To            domain.TransactionStatus
	BalanceEffect *decimal.Decimal // replaces the recorded effect when set
	AdminNote     *string
	ProcessedAt   time.Time
}

// TransactionRepository defines the interface for journal data operations.
type TransactionRepository interface {
	// CreateTransaction adds a new journal entry.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	GetTransactionByID(ctx context.Context, q DBExecutor, id int64) (*domain.Transaction, error)
	// UpdateTransactionStatus applies update only when the current status is one
	// of update.From; otherwise util.ErrInvalidStateTransition is returned.
	UpdateTransactionStatus(ctx context.Context, q DBExecutor, id int64, update StatusUpdate) error
	// GetTransactionsByUserID retrieves a page of entries and the total count.
	GetTransactionsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
	// SumBalanceEffect totals the recorded balance effects for one column.
	SumBalanceEffect(ctx context.Context, q DBExecutor, userID int64, field domain.BalanceField) (decimal.Decimal, error)
}
