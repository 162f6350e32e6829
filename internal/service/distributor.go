// internal/service/distributor.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"yieldledger/internal/audit"
	"yieldledger/internal/domain"
	"yieldledger/internal/metrics"
	"yieldledger/internal/repository"
	"yieldledger/internal/settings"
	"yieldledger/internal/util"
	"yieldledger/pkg/db"

	"github.com/shopspring/decimal"
)

// DefaultDistributionBatch bounds how many investments one sweep touches.
const DefaultDistributionBatch = 500

// DistributionReport summarises one sweep.
type DistributionReport struct {
	StartedAt   time.Time       `json:"started_at"`
	Duration    time.Duration   `json:"duration"`
	Scanned     int             `json:"scanned"`
	Credited    int             `json:"credited"`
	Completed   int             `json:"completed"`
	Skipped     int             `json:"skipped"`
	Failed      int             `json:"failed"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	HasMore     bool            `json:"has_more"`
}

// ProfitDistributor credits daily profit to due investments.
type ProfitDistributor interface {
	// RunDistribution credits at most one day to each due investment, oldest
	// first. Each investment is handled in its own unit of work so one failure
	// does not stop the sweep. Running it again for the same instant credits
	// nothing twice.
	RunDistribution(ctx context.Context) (DistributionReport, error)
}

type profitDistributor struct {
	uow            *db.UnitOfWork
	dbExecutor     repository.DBExecutor
	investmentRepo repository.InvestmentRepository
	investments    InvestmentService
	ledger         Ledger
	settings       settings.Provider
	sink           audit.Sink
	metrics        *metrics.Metrics
	logger         *slog.Logger
	batchSize      int
	now            func() time.Time
}

// NewProfitDistributor creates a new ProfitDistributor.
func NewProfitDistributor(
	uow *db.UnitOfWork,
	dbExecutor repository.DBExecutor,
	investmentRepo repository.InvestmentRepository,
	investments InvestmentService,
	ledger Ledger,
	settingsProvider settings.Provider,
	sink audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
	batchSize int,
) ProfitDistributor {
	if batchSize <= 0 {
		batchSize = DefaultDistributionBatch
	}
	return &profitDistributor{
		uow:            uow,
		dbExecutor:     dbExecutor,
		investmentRepo: investmentRepo,
		investments:    investments,
		ledger:         ledger,
		settings:       settingsProvider,
		sink:           sink,
		metrics:        m,
		logger:         logger.With("component", "distributor"),
		batchSize:      batchSize,
		now:            time.Now,
	}
}

type tickOutcome int

const (
	tickCredited tickOutcome = iota
	tickCompleted
	tickSkipped
)

func (d *profitDistributor) RunDistribution(ctx context.Context) (report DistributionReport, err error) {
	start := time.Now()
	now := d.now().UTC()
	report = DistributionReport{StartedAt: now, TotalProfit: decimal.Zero}
	defer func() {
		report.Duration = time.Since(start)
		if d.metrics != nil {
			d.metrics.DistributionDuration.Observe(report.Duration.Seconds())
		}
	}()

	cfg, err := d.settings.Current(ctx)
	if err != nil {
		d.observeRun("error")
		return report, dependencyError("distribution settings", err)
	}
	due, err := d.investmentRepo.ListDueInvestments(ctx, d.dbExecutor, now, d.batchSize)
	if err != nil {
		d.observeRun("error")
		return report, dependencyError("list due investments", err)
	}
	report.Scanned = len(due)
	report.HasMore = len(due) == d.batchSize

	for i := range due {
		if err := ctx.Err(); err != nil {
			d.observeRun("cancelled")
			return report, err
		}
		inv := due[i]
		profit, outcome, err := d.tick(ctx, &inv, cfg.DefaultCurrency, now)
		switch {
		case util.IsError(err, util.ErrConcurrencyConflict), util.IsError(err, util.ErrDuplicateEntry), util.IsError(err, util.ErrNotActive):
			report.Skipped++
			d.logger.InfoContext(ctx, "investment already handled by another sweep", "investment_id", inv.ID, "error", err)
		case err != nil:
			report.Failed++
			if d.metrics != nil {
				d.metrics.Errors.WithLabelValues("distributor").Inc()
			}
			d.logger.ErrorContext(ctx, "profit tick failed", "investment_id", inv.ID, "error", err)
		default:
			report.Credited++
			report.TotalProfit = report.TotalProfit.Add(profit)
			if outcome == tickCompleted {
				report.Completed++
			}
		}
	}

	d.observeRun("ok")
	d.logger.InfoContext(ctx, "profit distribution finished",
		"scanned", report.Scanned, "credited", report.Credited, "completed", report.Completed,
		"skipped", report.Skipped, "failed", report.Failed, "total_profit", report.TotalProfit.String())
	return report, nil
}

// tick credits one day of inv and completes it on its final day.
func (d *profitDistributor) tick(ctx context.Context, inv *domain.Investment, currency string, now time.Time) (decimal.Decimal, tickOutcome, error) {
	profit := inv.ProfitForNextTick()
	day := inv.ProfitDaysPaid + 1
	outcome := tickCredited

	err := d.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		err = d.investmentRepo.AdvanceProfitSchedule(ctx, q, inv.ID, repository.ProfitAdvance{
			ExpectedDaysPaid: inv.ProfitDaysPaid,
			Profit:           profit,
			Now:              now,
			Next:             now.Add(domain.ProfitInterval),
		})
		if err != nil {
			return err
		}

		if profit.IsPositive() {
			entry := domain.NewTransaction(inv.UserID, domain.TransactionTypeProfit, profit, currency, domain.StatusCompleted).
				WithRelated(domain.RelatedInvestment, inv.ID).
				WithDescription(fmt.Sprintf("Day %d profit for investment #%d", day, inv.ID))
			if err := d.ledger.Post(ctx, Posting{Actor: domain.SystemActor, Entry: entry, Field: domain.FieldBalance, Delta: profit}); err != nil {
				return err
			}
			err = d.investmentRepo.CreateProfit(ctx, q, &domain.Profit{
				InvestmentID:  inv.ID,
				UserID:        inv.UserID,
				TransactionID: entry.ID,
				ProfitDay:     day,
				Amount:        profit,
				Rate:          inv.DailyRate,
				CalculatedAt:  now,
			})
			if err != nil {
				return err
			}
			if err := d.ledger.Accumulate(ctx, inv.UserID, domain.AggregateEarned, profit); err != nil {
				return err
			}
		}

		if inv.IsFinalTick() {
			if _, err := d.investments.CompleteInvestment(ctx, domain.SystemActor, inv.ID); err != nil {
				return err
			}
			outcome = tickCompleted
		}

		event := audit.Event{
			Kind:       audit.KindProfitCredited,
			Actor:      domain.SystemActor,
			UserID:     inv.UserID,
			Delta:      profit,
			Subject:    fmt.Sprintf("investment:%d/day:%d", inv.ID, day),
			OccurredAt: now,
		}
		db.AfterCommit(ctx, func() {
			if d.metrics != nil {
				d.metrics.ProfitsCredited.Inc()
			}
			d.sink.Publish(context.WithoutCancel(ctx), event)
		})
		return nil
	})
	if err != nil {
		return decimal.Zero, tickSkipped, dependencyError("profit tick", err)
	}
	return profit, outcome, nil
}

func (d *profitDistributor) observeRun(outcome string) {
	if d.metrics != nil {
		d.metrics.DistributionRuns.WithLabelValues(outcome).Inc()
	}
}
