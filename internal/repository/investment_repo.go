// internal/repository/investment_repo.go
package repository

import (
	"context"
	"time"

	"yieldledger/internal/domain"

	"github.com/shopspring/decimal"
)

// ProfitAdvance describes one compare-and-swap step of an investment schedule.
type ProfitAdvance struct {
	ExpectedDaysPaid int
	Profit           decimal.Decimal
	Now              time.Time
	Next             time.Time
}

// InvestmentRepository defines the interface for schemas, investments and
// per-tick profit rows.
type InvestmentRepository interface {
	GetSchemaByID(ctx context.Context, q DBExecutor, id int64) (*domain.InvestmentSchema, error)
	ListSchemas(ctx context.Context, q DBExecutor, activeOnly bool) ([]domain.InvestmentSchema, error)

	CreateInvestment(ctx context.Context, q DBExecutor, investment *domain.Investment) error
	// GetInvestmentByID returns util.ErrInvestmentNotFound when no row exists.
	GetInvestmentByID(ctx context.Context, q DBExecutor, id int64) (*domain.Investment, error)
	ListInvestmentsByUserID(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.Investment, error)
	// ListDueInvestments returns active investments whose next tick is at or
	// before now, oldest first.
	ListDueInvestments(ctx context.Context, q DBExecutor, now time.Time, limit int) ([]domain.Investment, error)
	// AdvanceProfitSchedule moves the schedule forward by one tick only if the
	// row is still active, due at adv.Now and has paid exactly
	// adv.ExpectedDaysPaid days. Otherwise util.ErrConcurrencyConflict.
	AdvanceProfitSchedule(ctx context.Context, q DBExecutor, id int64, adv ProfitAdvance) error
	// CompleteInvestment flips an active investment to completed, or returns
	// util.ErrNotActive.
	CompleteInvestment(ctx context.Context, q DBExecutor, id int64, now time.Time) error

	// CreateProfit inserts a tick row; a repeated (investment, day) yields
	// util.ErrDuplicateEntry.
	CreateProfit(ctx context.Context, q DBExecutor, profit *domain.Profit) error
	ListProfitsByInvestmentID(ctx context.Context, q DBExecutor, investmentID int64) ([]domain.Profit, error)
}
