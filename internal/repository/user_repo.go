// internal/repository/user_repo.go
package repository

import (
	"context"

	"yieldledger/internal/domain"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	// CreateUser adds a new user with zero balances.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID returns util.ErrUserNotFound when no row exists.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, q DBExecutor, username string) (*domain.User, error)
	GetUserByReferralCode(ctx context.Context, q DBExecutor, code string) (*domain.User, error)
	// AdjustBalance adds delta to a balance column in one conditional update
	// and returns the new value. A debit that would leave the column negative
	// affects no row and yields util.ErrInsufficientFunds.
	AdjustBalance(ctx context.Context, q DBExecutor, userID int64, field domain.BalanceField, delta decimal.Decimal) (decimal.Decimal, error)
	// IncrementAggregate adds a non-negative delta to an audit total.
	IncrementAggregate(ctx context.Context, q DBExecutor, userID int64, aggregate domain.Aggregate, delta decimal.Decimal) error
}
