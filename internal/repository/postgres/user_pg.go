// internal/repository/postgres/user_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"yieldledger/internal/domain"
	"yieldledger/internal/repository"
	"yieldledger/internal/util"

	"github.com/shopspring/decimal"
)

const userColumns = `id, username, email, referral_code, referred_by, balance, locked_balance, bonus_balance,
	total_invested, total_withdrawn, total_earned, created_at, updated_at`

// UserRepository implements repository.UserRepository for PostgreSQL.
type UserRepository struct{}

// NewUserRepository creates a new UserRepository. Methods receive their
// DBExecutor per call.
func NewUserRepository() repository.UserRepository {
	return &UserRepository{}
}

// CreateUser inserts a new user into the database using the provided DBExecutor.
func (r *UserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	query := `INSERT INTO users (username, email, referral_code, referred_by, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := q.QueryRowContext(ctx, query, user.Username, user.Email, user.ReferralCode, user.ReferredBy, user.CreatedAt, user.UpdatedAt).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create user %q: %w", user.Username, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their ID using the provided DBExecutor.
func (r *UserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.User, error) {
	return r.getOne(ctx, q, "id = $1", id)
}

// GetUserByUsername retrieves a user by their username.
func (r *UserRepository) GetUserByUsername(ctx context.Context, q repository.DBExecutor, username string) (*domain.User, error) {
	return r.getOne(ctx, q, "username = $1", username)
}

// GetUserByReferralCode retrieves a user by their referral code.
func (r *UserRepository) GetUserByReferralCode(ctx context.Context, q repository.DBExecutor, code string) (*domain.User, error) {
	return r.getOne(ctx, q, "referral_code = $1", code)
}

func (r *UserRepository) getOne(ctx context.Context, q repository.DBExecutor, where string, arg interface{}) (*domain.User, error) {
	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	if err := q.GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user where %s (%v): %w", where, arg, err)
	}
	return &user, nil
}

// AdjustBalance applies delta to one balance column with a single conditional
// update. The WHERE guard is the only protection against concurrent debits.
func (r *UserRepository) AdjustBalance(ctx context.Context, q repository.DBExecutor, userID int64, field domain.BalanceField, delta decimal.Decimal) (decimal.Decimal, error) {
	if !field.Valid() {
		return decimal.Zero, fmt.Errorf("adjust balance: unknown field %q: %w", field, util.ErrInvalidInput)
	}

	query := fmt.Sprintf(`UPDATE users SET %[1]s = %[1]s + $1, updated_at = $2
		WHERE id = $3 AND %[1]s + $1 >= 0
		RETURNING %[1]s`, field)

	var after decimal.Decimal
	err := q.GetContext(ctx, &after, query, delta, time.Now().UTC(), userID)
	if err == nil {
		return after, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, fmt.Errorf("failed to adjust %s for user %d: %w", field, userID, err)
	}

	var exists bool
	if err := q.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID); err != nil {
		return decimal.Zero, fmt.Errorf("failed to check user %d existence: %w", userID, err)
	}
	if !exists {
		return decimal.Zero, util.ErrUserNotFound
	}
	return decimal.Zero, util.ErrInsufficientFunds
}

// IncrementAggregate adds delta to one of the audit totals.
func (r *UserRepository) IncrementAggregate(ctx context.Context, q repository.DBExecutor, userID int64, aggregate domain.Aggregate, delta decimal.Decimal) error {
	if !aggregate.Valid() || delta.IsNegative() {
		return fmt.Errorf("increment %q by %s: %w", aggregate, delta, util.ErrInvalidInput)
	}

	query := fmt.Sprintf(`UPDATE users SET %[1]s = %[1]s + $1, updated_at = $2 WHERE id = $3`, aggregate)
	result, err := q.ExecContext(ctx, query, delta, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to increment %s for user %d: %w", aggregate, userID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after incrementing %s for user %d: %w", aggregate, userID, err)
	}
	if rowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}
