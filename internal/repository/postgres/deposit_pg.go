// internal/repository/postgres/deposit_pg.go
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
)

const methodColumns = `id, name, type, currency, network, min_amount, max_amount, fee_percent, fee_fixed, status, created_at, updated_at`

const depositColumns = `id, user_id, transaction_id, method_id, amount, fee, net_amount, currency, network, wallet_address,
	gateway_transaction_id, proof_of_payment, status, expires_at, processed_by, processed_at, created_at, updated_at`

// DepositRepository implements repository.DepositRepository for PostgreSQL.
type DepositRepository struct{}

// NewDepositRepository creates a new DepositRepository.
func NewDepositRepository() repository.DepositRepository {
	return &DepositRepository{}
}

// GetMethodByID retrieves a deposit method regardless of status.
func (r *DepositRepository) GetMethodByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.DepositMethod, error) {
	var method domain.DepositMethod
	err := q.GetContext(ctx, &method, `SELECT `+methodColumns+` FROM deposit_methods WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get deposit method %d: %w", id, err)
	}
	return &method, nil
}

// ListMethods lists deposit methods.
func (r *DepositRepository) ListMethods(ctx context.Context, q repository.DBExecutor, activeOnly bool) ([]domain.DepositMethod, error) {
	methods := []domain.DepositMethod{}
	query := `SELECT ` + methodColumns + ` FROM deposit_methods`
	args := []interface{}{}
	if activeOnly {
		query += ` WHERE status = $1`
		args = append(args, domain.SchemaActive)
	}
	query += ` ORDER BY id ASC`
	if err := q.SelectContext(ctx, &methods, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list deposit methods: %w", err)
	}
	return methods, nil
}

// CreateDeposit inserts a new deposit.
func (r *DepositRepository) CreateDeposit(ctx context.Context, q repository.DBExecutor, d *domain.Deposit) error {
	query := `INSERT INTO deposits (user_id, transaction_id, method_id, amount, fee, net_amount, currency, network,
                wallet_address, gateway_transaction_id, proof_of_payment, status, expires_at, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		d.UserID,
		d.TransactionID,
		d.MethodID,
		d.Amount,
		d.Fee,
		d.NetAmount,
		d.Currency,
		d.Network,
		d.WalletAddress,
		d.GatewayTransactionID,
		d.ProofOfPayment,
		d.Status,
		d.ExpiresAt,
		d.CreatedAt,
		d.UpdatedAt,
	).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("failed to create deposit: %w", err)
	}
	return nil
}

// GetDepositByID retrieves one deposit.
func (r *DepositRepository) GetDepositByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Deposit, error) {
	var d domain.Deposit
	err := q.GetContext(ctx, &d, `SELECT `+depositColumns+` FROM deposits WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrDepositNotFound
		}
		return nil, fmt.Errorf("failed to get deposit %d: %w", id, err)
	}
	return &d, nil
}

// UpdateDepositStatus changes status when the current one is in update.From.
func (r *DepositRepository) UpdateDepositStatus(ctx context.Context, q repository.DBExecutor, id int64, update repository.PaymentStatusUpdate) error {
	query := `UPDATE deposits
		SET status = $1,
		    processed_by = COALESCE($2, processed_by),
		    gateway_transaction_id = COALESCE($3, gateway_transaction_id),
		    processed_at = $4,
		    updated_at = $4
		WHERE id = $5 AND status = ANY($6)`
	result, err := q.ExecContext(ctx, query, update.To, update.ProcessedBy, update.Reference, update.ProcessedAt, id, statusArray(update.From))
	if err != nil {
		return fmt.Errorf("failed to update deposit %d status: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating deposit %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("deposit %d to %s: %w", id, update.To, util.ErrInvalidStateTransition)
	}
	return nil
}

// ListExpiredPending returns pending deposits whose expiry has passed.
func (r *DepositRepository) ListExpiredPending(ctx context.Context, q repository.DBExecutor, now time.Time, limit int) ([]domain.Deposit, error) {
	deposits := []domain.Deposit{}
	query := `SELECT ` + depositColumns + ` FROM deposits
		WHERE status = $1 AND expires_at IS NOT NULL AND expires_at <= $2
		ORDER BY expires_at ASC LIMIT $3`
	if err := q.SelectContext(ctx, &deposits, query, domain.StatusPending, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list expired deposits: %w", err)
	}
	return deposits, nil
}

// ListDepositsByUserID lists a user's deposits, newest first.
func (r *DepositRepository) ListDepositsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Deposit, error) {
	deposits := []domain.Deposit{}
	query := `SELECT ` + depositColumns + ` FROM deposits
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &deposits, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list deposits for user %d: %w", userID, err)
	}
	return deposits, nil
}
