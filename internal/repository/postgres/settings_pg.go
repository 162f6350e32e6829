// internal/repository/postgres/settings_pg.go
package postgres

import (
	"context"
	"fmt"

	"yieldledger/internal/domain"
	"yieldledger/internal/repository"
)

// SettingsRepository implements repository.SettingsRepository for PostgreSQL.
type SettingsRepository struct{}

// NewSettingsRepository creates a new SettingsRepository.
func NewSettingsRepository() repository.SettingsRepository {
	return &SettingsRepository{}
}

type settingRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// GetAll loads every stored key/value pair.
func (r *SettingsRepository) GetAll(ctx context.Context, q repository.DBExecutor) (map[string]string, error) {
	rows := []settingRow{}
	if err := q.SelectContext(ctx, &rows, `SELECT key, value FROM settings`); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

// StatsRepository implements repository.StatsRepository for PostgreSQL.
type StatsRepository struct{}

// NewStatsRepository creates a new StatsRepository.
func NewStatsRepository() repository.StatsRepository {
	return &StatsRepository{}
}

// PlatformStats computes the admin dashboard aggregates in one round trip.
func (r *StatsRepository) PlatformStats(ctx context.Context, q repository.DBExecutor) (*domain.PlatformStats, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM users) AS total_users,
		(SELECT COALESCE(SUM(balance), 0) FROM users) AS total_balance,
		(SELECT COALESCE(SUM(total_invested), 0) FROM users) AS total_invested,
		(SELECT COALESCE(SUM(total_withdrawn), 0) FROM users) AS total_withdrawn,
		(SELECT COALESCE(SUM(total_earned), 0) FROM users) AS total_earned,
		(SELECT COUNT(*) FROM investments WHERE status = 'active') AS active_investments,
		(SELECT COALESCE(SUM(invest_amount), 0) FROM investments WHERE status = 'active') AS active_principal,
		(SELECT COUNT(*) FROM deposits WHERE status IN ('pending', 'processing')) AS pending_deposits,
		(SELECT COUNT(*) FROM withdrawals WHERE status IN ('pending', 'processing')) AS pending_withdrawals,
		(SELECT COALESCE(SUM(amount), 0) FROM withdrawals WHERE status IN ('pending', 'processing')) AS pending_withdraw_sum`
	var stats domain.PlatformStats
	if err := q.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("failed to compute platform stats: %w", err)
	}
	return &stats, nil
}
