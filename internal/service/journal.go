// internal/service/journal.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yieldledger/internal/domain"
	"yieldledger/internal/metrics"
	"yieldledger/internal/repository"
	"yieldledger/internal/util"
	"yieldledger/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxJournalAmount is the exclusive upper bound on the gross amount of a single
// entry. NUMERIC(20,8) columns stop one unit of the last place below it.
var MaxJournalAmount = decimal.New(1, 12)

// Journal records every monetary event. Entries are only ever updated in
// status and processing metadata.
type Journal interface {
	// Append validates entry, derives its net amount and reference, and
	// inserts it inside the caller's unit of work if there is one.
	Append(ctx context.Context, entry *domain.Transaction) error
	// MarkStatus moves an entry between statuses with a compare-and-swap on
	// update.From.
	MarkStatus(ctx context.Context, id int64, update repository.StatusUpdate) error
	Get(ctx context.Context, id int64) (*domain.Transaction, error)
	History(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error)
}

type journal struct {
	uow        *db.UnitOfWork
	dbExecutor repository.DBExecutor // for reads outside a unit of work
	repo       repository.TransactionRepository
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewJournal creates a new Journal.
func NewJournal(uow *db.UnitOfWork, dbExecutor repository.DBExecutor, repo repository.TransactionRepository, m *metrics.Metrics, logger *slog.Logger) Journal {
	return &journal{
		uow:        uow,
		dbExecutor: dbExecutor,
		repo:       repo,
		metrics:    m,
		logger:     logger.With("component", "journal"),
		now:        time.Now,
	}
}

func (j *journal) Append(ctx context.Context, entry *domain.Transaction) error {
	if err := j.prepare(entry); err != nil {
		return err
	}
	err := j.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		return j.repo.CreateTransaction(ctx, q, entry)
	})
	if err != nil {
		return dependencyError("journal append", err)
	}
	if j.metrics != nil {
		j.metrics.JournalEntries.WithLabelValues(string(entry.Type)).Inc()
	}
	j.logger.DebugContext(ctx, "journal entry appended",
		"id", entry.ID, "reference_id", entry.ReferenceID, "type", entry.Type, "user_id", entry.UserID)
	return nil
}

// prepare validates entry and fills in derived fields.
func (j *journal) prepare(entry *domain.Transaction) error {
	if entry == nil {
		return util.ErrInvalidInput
	}
	if !entry.Type.Valid() {
		return fmt.Errorf("journal entry type %q: %w", entry.Type, util.ErrInvalidInput)
	}
	if !entry.Status.Valid() {
		return fmt.Errorf("journal entry status %q: %w", entry.Status, util.ErrInvalidInput)
	}
	if !entry.BalanceField.Valid() {
		return fmt.Errorf("journal entry field %q: %w", entry.BalanceField, util.ErrInvalidInput)
	}
	if entry.UserID <= 0 || entry.Currency == "" {
		return fmt.Errorf("journal entry user or currency missing: %w", util.ErrInvalidInput)
	}

	entry.Amount = domain.RoundMoney(entry.Amount)
	entry.Fee = domain.RoundMoney(entry.Fee)
	if !entry.Amount.IsPositive() || entry.Amount.GreaterThanOrEqual(MaxJournalAmount) {
		return fmt.Errorf("journal amount %s: %w", entry.Amount, util.ErrInvalidInput)
	}
	if entry.Fee.IsNegative() || entry.Fee.GreaterThan(entry.Amount) {
		return fmt.Errorf("journal fee %s: %w", entry.Fee, util.ErrInvalidInput)
	}
	if entry.NetAmount.IsZero() {
		entry.NetAmount = entry.Amount.Sub(entry.Fee)
	}
	if !entry.NetAmount.Equal(entry.Amount.Sub(entry.Fee)) {
		return fmt.Errorf("journal net %s != %s - %s: %w", entry.NetAmount, entry.Amount, entry.Fee, util.ErrInvalidInput)
	}

	now := j.now().UTC()
	if entry.ReferenceID == "" {
		entry.ReferenceID = NewReference(entry.Type, now)
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now
	return nil
}

// NewReference builds "<PREFIX>-<yyyymmddHHMMSS>-<8 hex>".
func NewReference(t domain.TransactionType, at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s-%s-%s", t.ReferencePrefix(), at.UTC().Format("20060102150405"), suffix)
}

func (j *journal) MarkStatus(ctx context.Context, id int64, update repository.StatusUpdate) error {
	if !update.To.Valid() {
		return fmt.Errorf("journal status %q: %w", update.To, util.ErrInvalidInput)
	}
	if update.ProcessedAt.IsZero() {
		update.ProcessedAt = j.now().UTC()
	}
	err := j.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		return j.repo.UpdateTransactionStatus(ctx, q, id, update)
	})
	return dependencyError("journal mark status", err)
}

func (j *journal) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	entry, err := j.repo.GetTransactionByID(ctx, j.dbExecutor, id)
	if err != nil {
		return nil, dependencyError("journal get", err)
	}
	return entry, nil
}

func (j *journal) History(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	limit, offset = clampPage(limit, offset)
	entries, total, err := j.repo.GetTransactionsByUserID(ctx, j.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, 0, dependencyError("journal history", err)
	}
	return entries, total, nil
}
