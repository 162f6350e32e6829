// internal/repository/postgres/withdrawal_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"yieldledger/internal/domain"
	"yieldledger/internal/repository"
	"yieldledger/internal/util"
)

const withdrawalColumns = `id, user_id, transaction_id, amount, fee, currency, network, wallet_address,
	transaction_hash, status, processed_by, processed_at, created_at, updated_at`

// WithdrawalRepository implements repository.WithdrawalRepository for PostgreSQL.
type WithdrawalRepository struct{}

// NewWithdrawalRepository creates a new WithdrawalRepository.
func NewWithdrawalRepository() repository.WithdrawalRepository {
	return &WithdrawalRepository{}
}

// CreateWithdrawal inserts a new withdrawal request.
func (r *WithdrawalRepository) CreateWithdrawal(ctx context.Context, q repository.DBExecutor, w *domain.Withdrawal) error {
	query := `INSERT INTO withdrawals (user_id, transaction_id, amount, fee, currency, network, wallet_address, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		w.UserID, w.TransactionID, w.Amount, w.Fee, w.Currency, w.Network, w.WalletAddress, w.Status, w.CreatedAt, w.UpdatedAt,
	).Scan(&w.ID)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal: %w", err)
	}
	return nil
}

// GetWithdrawalByID retrieves one withdrawal.
func (r *WithdrawalRepository) GetWithdrawalByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Withdrawal, error) {
	var w domain.Withdrawal
	err := q.GetContext(ctx, &w, `SELECT `+withdrawalColumns+` FROM withdrawals WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrWithdrawalNotFound
		}
		return nil, fmt.Errorf("failed to get withdrawal %d: %w", id, err)
	}
	return &w, nil
}

// UpdateWithdrawalStatus changes status when the current one is in update.From.
func (r *WithdrawalRepository) UpdateWithdrawalStatus(ctx context.Context, q repository.DBExecutor, id int64, update repository.PaymentStatusUpdate) error {
	query := `UPDATE withdrawals
		SET status = $1,
		    processed_by = COALESCE($2, processed_by),
		    transaction_hash = COALESCE($3, transaction_hash),
		    processed_at = $4,
		    updated_at = $4
		WHERE id = $5 AND status = ANY($6)`
	result, err := q.ExecContext(ctx, query, update.To, update.ProcessedBy, update.Reference, update.ProcessedAt, id, statusArray(update.From))
	if err != nil {
		return fmt.Errorf("failed to update withdrawal %d status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating withdrawal %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("withdrawal %d to %s: %w", id, update.To, util.ErrInvalidStateTransition)
	}
	return nil
}

// ListWithdrawalsByUserID lists a user's withdrawals, newest first.
func (r *WithdrawalRepository) ListWithdrawalsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Withdrawal, error) {
	withdrawals := []domain.Withdrawal{}
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &withdrawals, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list withdrawals for user %d: %w", userID, err)
	}
	return withdrawals, nil
}
