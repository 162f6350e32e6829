// internal/repository/postgres/referral_pg.go
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

const referralColumns = `id, referrer_id, referred_id, commission_rate, total_earned, status, created_at, updated_at`

// ReferralRepository implements repository.ReferralRepository for PostgreSQL.
type ReferralRepository struct{}

// NewReferralRepository creates a new ReferralRepository.
func NewReferralRepository() repository.ReferralRepository {
	return &ReferralRepository{}
}

// CreateReferral inserts a referral edge.
func (r *ReferralRepository) CreateReferral(ctx context.Context, q repository.DBExecutor, ref *domain.Referral) error {
	query := `INSERT INTO referrals (referrer_id, referred_id, commission_rate, total_earned, status, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		ref.ReferrerID, ref.ReferredID, ref.CommissionRate, ref.TotalEarned, ref.Status, ref.CreatedAt, ref.UpdatedAt,
	).Scan(&ref.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("referral %d->%d: %w", ref.ReferrerID, ref.ReferredID, util.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

// GetReferral retrieves the edge from referrerID to referredID.
func (r *ReferralRepository) GetReferral(ctx context.Context, q repository.DBExecutor, referrerID, referredID int64) (*domain.Referral, error) {
	var ref domain.Referral
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE referrer_id = $1 AND referred_id = $2`
	if err := q.GetContext(ctx, &ref, query, referrerID, referredID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, util.ErrReferralNotFound
		}
		return nil, fmt.Errorf("failed to get referral %d->%d: %w", referrerID, referredID, err)
	}
	return &ref, nil
}

// AddEarnings adds a paid commission to the edge's running total.
func (r *ReferralRepository) AddEarnings(ctx context.Context, q repository.DBExecutor, id int64, amount decimal.Decimal) error {
	query := `UPDATE referrals SET total_earned = total_earned + $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to add earnings to referral %d: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected after updating referral %d: %w", id, err)
	}
	if rowsAffected == 0 {
		return util.ErrReferralNotFound
	}
	return nil
}

// ListReferralsByReferrer lists the edges created by a referrer.
func (r *ReferralRepository) ListReferralsByReferrer(ctx context.Context, q repository.DBExecutor, referrerID int64) ([]domain.Referral, error) {
	referrals := []domain.Referral{}
	query := `SELECT ` + referralColumns + ` FROM referrals WHERE referrer_id = $1 ORDER BY created_at DESC`
	if err := q.SelectContext(ctx, &referrals, query, referrerID); err != nil {
		return nil, fmt.Errorf("failed to list referrals for user %d: %w", referrerID, err)
	}
	return referrals, nil
}
