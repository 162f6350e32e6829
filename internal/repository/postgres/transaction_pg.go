// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"yieldledger/internal/domain"
	"yieldledger/internal/repository"
	"yieldledger/internal/util"

	"github.com/shopspring/decimal"
)

const transactionColumns = `id, user_id, type, amount, fee, net_amount, currency, status, reference_id,
	balance_field, balance_effect, related_type, related_id, description, admin_note, processed_at, created_at, updated_at`

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository() repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new journal entry using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, t *domain.Transaction) error {
	query := `INSERT INTO transactions (user_id, type, amount, fee, net_amount, currency, status, reference_id,
                balance_field, balance_effect, related_type, related_id, description, admin_note, processed_at, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17) RETURNING id`

	err := q.QueryRowContext(ctx, query,
		t.UserID,
		t.Type,
		t.Amount,
		t.Fee,
		t.NetAmount,
		t.Currency,
		t.Status,
		t.ReferenceID,
		t.BalanceField,
		t.BalanceEffect,
		t.RelatedType,
		t.RelatedID,
		t.Description,
		t.AdminNote,
		t.ProcessedAt,
		t.CreatedAt,
		t.UpdatedAt,
	).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("reference %s: %w", t.ReferenceID, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionByID retrieves one journal entry.
func (r *TransactionRepository) GetTransactionByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Transaction, error) {
	var t domain.Transaction
	err := q.GetContext(ctx, &t, `SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return &t, nil
}

// UpdateTransactionStatus changes status and processing metadata when the
// current status is one of update.From.
func (r *TransactionRepository) UpdateTransactionStatus(ctx context.Context, q repository.DBExecutor, id int64, update repository.StatusUpdate) error {
	query := `UPDATE transactions
		SET status = $1,
		    balance_effect = COALESCE($2, balance_effect),
		    admin_note = COALESCE($3, admin_note),
		    processed_at = $4,
		    updated_at = $4
		WHERE id = $5 AND status = ANY($6)`

	var effect interface{}
	if update.BalanceEffect != nil {
		effect = *update.BalanceEffect
	}
	result, err := q.ExecContext(ctx, query, update.To, effect, update.AdminNote, update.ProcessedAt, id, statusArray(update.From))
	if err != nil {
		return fmt.Errorf("failed to update transaction %d status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating transaction %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("transaction %d to %s: %w", id, update.To, util.ErrInvalidStateTransition)
	}
	return nil
}

// GetTransactionsByUserID retrieves a paginated list of entries for a user.
// It performs two queries: one for the data and one for the total count.
func (r *TransactionRepository) GetTransactionsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	transactions := []domain.Transaction{}

	query := `SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &transactions, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions for user %d: %w", userID, err)
	}

	var totalCount int64
	if err := q.GetContext(ctx, &totalCount, `SELECT COUNT(*) FROM transactions WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to get total transaction count for user %d: %w", userID, err)
	}

	return transactions, totalCount, nil
}

// SumBalanceEffect totals recorded effects on one balance column.
func (r *TransactionRepository) SumBalanceEffect(ctx context.Context, q repository.DBExecutor, userID int64, field domain.BalanceField) (decimal.Decimal, error) {
	var sum decimal.Decimal
	query := `SELECT COALESCE(SUM(balance_effect), 0) FROM transactions WHERE user_id = $1 AND balance_field = $2`
	if err := q.GetContext(ctx, &sum, query, userID, field); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum balance effect for user %d: %w", userID, err)
	}
	return sum, nil
}
