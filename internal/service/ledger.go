// internal/service/ledger.go
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
	"yieldledger/internal/util"
	"yieldledger/pkg/db"

	"github.com/shopspring/decimal"
)

// Posting pairs a balance mutation with the journal entry describing it.
type Posting struct {
	Actor domain.Actor
	Entry *domain.Transaction
	Field domain.BalanceField
	Delta decimal.Decimal // zero records the entry without touching a balance
}

// Ledger is the only writer of user balance columns and aggregates.
type Ledger interface {
	// Mutate adds delta to a balance column and returns the new value. A debit
	// that would go below zero fails with util.ErrInsufficientFunds.
	Mutate(ctx context.Context, actor domain.Actor, userID int64, field domain.BalanceField, delta decimal.Decimal) (decimal.Decimal, error)
	// Post applies p.Delta and appends p.Entry in one unit of work.
	Post(ctx context.Context, p Posting) error
	// Accumulate adds a non-negative delta to an audit total.
	Accumulate(ctx context.Context, userID int64, aggregate domain.Aggregate, delta decimal.Decimal) error
	// Reconcile compares stored balances against the journal.
	Reconcile(ctx context.Context, userID int64) (*domain.Reconciliation, error)
}

type ledger struct {
	uow        *db.UnitOfWork
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	txRepo     repository.TransactionRepository
	journal    Journal
	sink       audit.Sink
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewLedger creates a new Ledger.
func NewLedger(
	uow *db.UnitOfWork,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	txRepo repository.TransactionRepository,
	journal Journal,
	sink audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) Ledger {
	return &ledger{
		uow:        uow,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		txRepo:     txRepo,
		journal:    journal,
		sink:       sink,
		metrics:    m,
		logger:     logger.With("component", "ledger"),
		now:        time.Now,
	}
}

func (l *ledger) Mutate(ctx context.Context, actor domain.Actor, userID int64, field domain.BalanceField, delta decimal.Decimal) (decimal.Decimal, error) {
	if !field.Valid() {
		return decimal.Zero, fmt.Errorf("mutate field %q: %w", field, util.ErrInvalidInput)
	}
	delta = domain.RoundMoney(delta)
	if delta.IsZero() {
		return decimal.Zero, fmt.Errorf("mutate by zero: %w", util.ErrInvalidInput)
	}

	var after decimal.Decimal
	err := l.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		after, err = l.userRepo.AdjustBalance(ctx, q, userID, field, delta)
		if err != nil {
			return err
		}

		event := audit.Event{
			Kind:       audit.KindBalanceMutation,
			Actor:      actor,
			UserID:     userID,
			Field:      string(field),
			Delta:      delta,
			Before:     after.Sub(delta),
			After:      after,
			OccurredAt: l.now().UTC(),
		}
		db.AfterCommit(ctx, func() { l.sink.Publish(context.WithoutCancel(ctx), event) })
		return nil
	})
	if err != nil {
		l.count(field, err)
		if util.IsError(err, util.ErrInsufficientFunds) {
			l.logger.InfoContext(ctx, "debit rejected", "user_id", userID, "field", field, "delta", delta.String(), "actor", actor.String())
		}
		return decimal.Zero, dependencyError("ledger mutate", err)
	}
	l.count(field, nil)
	return after, nil
}

func (l *ledger) count(field domain.BalanceField, err error) {
	if l.metrics == nil {
		return
	}
	outcome := "applied"
	switch {
	case err == nil:
	case util.IsError(err, util.ErrInsufficientFunds):
		outcome = "insufficient_funds"
	default:
		outcome = "error"
	}
	l.metrics.LedgerMutations.WithLabelValues(string(field), outcome).Inc()
}

func (l *ledger) Post(ctx context.Context, p Posting) error {
	if p.Entry == nil {
		return util.ErrInvalidInput
	}
	if p.Field == "" {
		p.Field = domain.FieldBalance
	}
	p.Entry.BalanceField = p.Field
	p.Entry.BalanceEffect = domain.RoundMoney(p.Delta)

	err := l.uow.Do(ctx, func(ctx context.Context, _ db.TxController) error {
		if !p.Delta.IsZero() {
			if _, err := l.Mutate(ctx, p.Actor, p.Entry.UserID, p.Field, p.Delta); err != nil {
				return err
			}
		}
		return l.journal.Append(ctx, p.Entry)
	})
	return dependencyError("ledger post", err)
}

func (l *ledger) Accumulate(ctx context.Context, userID int64, aggregate domain.Aggregate, delta decimal.Decimal) error {
	if !aggregate.Valid() || delta.IsNegative() {
		return fmt.Errorf("accumulate %q by %s: %w", aggregate, delta, util.ErrInvalidInput)
	}
	if delta.IsZero() {
		return nil
	}
	err := l.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		return l.userRepo.IncrementAggregate(ctx, q, userID, aggregate, domain.RoundMoney(delta))
	})
	return dependencyError("ledger accumulate", err)
}

func (l *ledger) Reconcile(ctx context.Context, userID int64) (*domain.Reconciliation, error) {
	user, err := l.userRepo.GetUserByID(ctx, l.dbExecutor, userID)
	if err != nil {
		return nil, dependencyError("reconcile", err)
	}
	journalBalance, err := l.txRepo.SumBalanceEffect(ctx, l.dbExecutor, userID, domain.FieldBalance)
	if err != nil {
		return nil, dependencyError("reconcile", err)
	}
	journalBonus, err := l.txRepo.SumBalanceEffect(ctx, l.dbExecutor, userID, domain.FieldBonusBalance)
	if err != nil {
		return nil, dependencyError("reconcile", err)
	}

	rec := &domain.Reconciliation{
		UserID:         userID,
		Balance:        user.Balance,
		JournalBalance: journalBalance,
		BonusBalance:   user.BonusBalance,
		JournalBonus:   journalBonus,
	}
	rec.Consistent = rec.Balance.Equal(rec.JournalBalance) && rec.BonusBalance.Equal(rec.JournalBonus)
	if !rec.Consistent {
		l.logger.WarnContext(ctx, "ledger drift detected",
			"user_id", userID,
			"balance", user.Balance.String(), "journal_balance", journalBalance.String(),
			"bonus_balance", user.BonusBalance.String(), "journal_bonus", journalBonus.String())
	}
	return rec, nil
}
