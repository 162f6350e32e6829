// internal/repository/postgres/investment_pg.go
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

const schemaColumns = `id, name, min_amount, max_amount, daily_rate, duration_days, total_return, status, created_at, updated_at`

const investmentColumns = `id, user_id, schema_id, transaction_id, invest_amount, daily_rate, total_profit_amount,
	paid_profit, profit_days_paid, number_of_period, last_profit_time, next_profit_time, status, completed_at, created_at, updated_at`

// InvestmentRepository implements repository.InvestmentRepository for PostgreSQL.
type InvestmentRepository struct{}

// NewInvestmentRepository creates a new InvestmentRepository.
func NewInvestmentRepository() repository.InvestmentRepository {
	return &InvestmentRepository{}
}

// GetSchemaByID retrieves an investment schema regardless of status.
func (r *InvestmentRepository) GetSchemaByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.InvestmentSchema, error) {
	var schema domain.InvestmentSchema
	err := q.GetContext(ctx, &schema, `SELECT `+schemaColumns+` FROM investment_schemas WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get schema %d: %w", id, err)
	}
	return &schema, nil
}

// ListSchemas lists schemas ordered by minimum amount.
func (r *InvestmentRepository) ListSchemas(ctx context.Context, q repository.DBExecutor, activeOnly bool) ([]domain.InvestmentSchema, error) {
	schemas := []domain.InvestmentSchema{}
	query := `SELECT ` + schemaColumns + ` FROM investment_schemas`
	args := []interface{}{}
	if activeOnly {
		query += ` WHERE status = $1`
		args = append(args, domain.SchemaActive)
	}
	query += ` ORDER BY min_amount ASC, id ASC`
	if err := q.SelectContext(ctx, &schemas, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	return schemas, nil
}

// CreateInvestment inserts a new investment.
func (r *InvestmentRepository) CreateInvestment(ctx context.Context, q repository.DBExecutor, inv *domain.Investment) error {
	query := `INSERT INTO investments (user_id, schema_id, transaction_id, invest_amount, daily_rate, total_profit_amount,
                paid_profit, profit_days_paid, number_of_period, last_profit_time, next_profit_time, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		inv.UserID,
		inv.SchemaID,
		inv.TransactionID,
		inv.InvestAmount,
		inv.DailyRate,
		inv.TotalProfitAmount,
		inv.PaidProfit,
		inv.ProfitDaysPaid,
		inv.NumberOfPeriod,
		inv.LastProfitTime,
		inv.NextProfitTime,
		inv.Status,
		inv.CreatedAt,
		inv.UpdatedAt,
	).Scan(&inv.ID)
	if err != nil {
		return fmt.Errorf("failed to create investment: %w", err)
	}
	return nil
}

// GetInvestmentByID retrieves one investment.
func (r *InvestmentRepository) GetInvestmentByID(ctx context.Context, q repository.DBExecutor, id int64) (*domain.Investment, error) {
	var inv domain.Investment
	err := q.GetContext(ctx, &inv, `SELECT `+investmentColumns+` FROM investments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrInvestmentNotFound
		}
		return nil, fmt.Errorf("failed to get investment %d: %w", id, err)
	}
	return &inv, nil
}

// ListInvestmentsByUserID lists a user's investments, newest first.
func (r *InvestmentRepository) ListInvestmentsByUserID(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.Investment, error) {
	investments := []domain.Investment{}
	query := `SELECT ` + investmentColumns + ` FROM investments
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &investments, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list investments for user %d: %w", userID, err)
	}
	return investments, nil
}

// ListDueInvestments returns a bounded batch of due investments, oldest first.
func (r *InvestmentRepository) ListDueInvestments(ctx context.Context, q repository.DBExecutor, now time.Time, limit int) ([]domain.Investment, error) {
	investments := []domain.Investment{}
	query := `SELECT ` + investmentColumns + ` FROM investments
		WHERE status = $1 AND next_profit_time <= $2
		ORDER BY next_profit_time ASC, id ASC
		LIMIT $3`
	if err := q.SelectContext(ctx, &investments, query, domain.InvestmentActive, now, limit); err != nil {
		return nil, fmt.Errorf("failed to list due investments: %w", err)
	}
	return investments, nil
}

// AdvanceProfitSchedule records one tick. The guard on next_profit_time and
// profit_days_paid makes a concurrent sweep for the same row affect nothing.
func (r *InvestmentRepository) AdvanceProfitSchedule(ctx context.Context, q repository.DBExecutor, id int64, adv repository.ProfitAdvance) error {
	query := `UPDATE investments
		SET profit_days_paid = profit_days_paid + 1,
		    paid_profit = paid_profit + $1,
		    last_profit_time = $2,
		    next_profit_time = $3,
		    updated_at = $2
		WHERE id = $4 AND status = $5 AND next_profit_time <= $2 AND profit_days_paid = $6`
	result, err := q.ExecContext(ctx, query, adv.Profit, adv.Now, adv.Next, id, domain.InvestmentActive, adv.ExpectedDaysPaid)
	if err != nil {
		return fmt.Errorf("failed to advance investment %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after advancing investment %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("investment %d day %d: %w", id, adv.ExpectedDaysPaid+1, util.ErrConcurrencyConflict)
	}
	return nil
}

// CompleteInvestment marks an active investment completed.
func (r *InvestmentRepository) CompleteInvestment(ctx context.Context, q repository.DBExecutor, id int64, now time.Time) error {
	query := `UPDATE investments SET status = $1, completed_at = $2, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := q.ExecContext(ctx, query, domain.InvestmentCompleted, now, id, domain.InvestmentActive)
	if err != nil {
		return fmt.Errorf("failed to complete investment %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after completing investment %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("complete investment %d: %w", id, util.ErrNotActive)
	}
	return nil
}

// CreateProfit inserts a per-tick detail row.
func (r *InvestmentRepository) CreateProfit(ctx context.Context, q repository.DBExecutor, p *domain.Profit) error {
	query := `INSERT INTO profits (investment_id, user_id, transaction_id, profit_day, amount, rate, calculated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query, p.InvestmentID, p.UserID, p.TransactionID, p.ProfitDay, p.Amount, p.Rate, p.CalculatedAt).Scan(&p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("profit day %d of investment %d: %w", p.ProfitDay, p.InvestmentID, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create profit: %w", err)
	}
	return nil
}

// ListProfitsByInvestmentID returns the tick history of an investment.
func (r *InvestmentRepository) ListProfitsByInvestmentID(ctx context.Context, q repository.DBExecutor, investmentID int64) ([]domain.Profit, error) {
	profits := []domain.Profit{}
	query := `SELECT id, investment_id, user_id, transaction_id, profit_day, amount, rate, calculated_at
		FROM profits WHERE investment_id = $1 ORDER BY profit_day ASC`
	if err := q.SelectContext(ctx, &profits, query, investmentID); err != nil {
		return nil, fmt.Errorf("failed to list profits for investment %d: %w", investmentID, err)
	}
	return profits, nil
}
