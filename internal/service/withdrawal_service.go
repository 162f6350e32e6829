// internal/service/withdrawal_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
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

// WithdrawalService handles withdrawal requests. Amount plus fee is debited
// when the request is created and refunded if it fails or is cancelled.
type WithdrawalService interface {
	CreateWithdrawal(ctx context.Context, actor domain.Actor, userID int64, amount decimal.Decimal, walletAddress, currency, network string) (*domain.Withdrawal, error)
	UpdateStatus(ctx context.Context, actor domain.Actor, withdrawalID int64, status domain.TransactionStatus, txHash *string) (*domain.Withdrawal, error)
	GetWithdrawal(ctx context.Context, withdrawalID int64) (*domain.Withdrawal, error)
	ListWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]domain.Withdrawal, error)
}

type withdrawalService struct {
	uow            *db.UnitOfWork
	dbExecutor     repository.DBExecutor
	withdrawalRepo repository.WithdrawalRepository
	ledger         Ledger
	journal        Journal
	settings       settings.Provider
	sink           audit.Sink
	metrics        *metrics.Metrics
	logger         *slog.Logger
	now            func() time.Time
}

// NewWithdrawalService creates a new WithdrawalService.
func NewWithdrawalService(
	uow *db.UnitOfWork,
	dbExecutor repository.DBExecutor,
	withdrawalRepo repository.WithdrawalRepository,
	ledger Ledger,
	journal Journal,
	settingsProvider settings.Provider,
	sink audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) WithdrawalService {
	return &withdrawalService{
		uow:            uow,
		dbExecutor:     dbExecutor,
		withdrawalRepo: withdrawalRepo,
		ledger:         ledger,
		journal:        journal,
		settings:       settingsProvider,
		sink:           sink,
		metrics:        m,
		logger:         logger.With("component", "withdrawal"),
		now:            time.Now,
	}
}

func (s *withdrawalService) CreateWithdrawal(ctx context.Context, actor domain.Actor, userID int64, amount decimal.Decimal, walletAddress, currency, network string) (*domain.Withdrawal, error) {
	amount = domain.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("withdrawal amount %s: %w", amount, util.ErrInvalidInput)
	}
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, dependencyError("withdrawal settings", err)
	}
	if amount.LessThan(cfg.MinWithdrawalAmount) || amount.GreaterThan(cfg.MaxWithdrawalAmount) {
		return nil, fmt.Errorf("withdrawal %s outside [%s, %s]: %w", amount, cfg.MinWithdrawalAmount, cfg.MaxWithdrawalAmount, util.ErrAmountOutOfRange)
	}
	walletAddress = strings.TrimSpace(walletAddress)
	if currency == "" {
		currency = cfg.DefaultCurrency
	}
	if !ValidAddress(currency, network, walletAddress) {
		return nil, util.ErrInvalidAddress
	}

	fee, _, err := ComputeFee(amount, WithdrawalFeePolicy(cfg))
	if err != nil {
		return nil, err
	}
	total := amount.Add(fee)

	now := s.now().UTC()
	withdrawal := &domain.Withdrawal{
		UserID:        userID,
		Amount:        amount,
		Fee:           fee,
		Currency:      currency,
		Network:       network,
		WalletAddress: walletAddress,
		Status:        domain.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err = s.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		// The entry's gross is what leaves the balance, its net is what is paid out.
		entry := domain.NewTransaction(userID, domain.TransactionTypeWithdrawal, total, currency, domain.StatusPending).
			WithDescription(fmt.Sprintf("Withdrawal to %s", walletAddress))
		entry.Fee = fee
		entry.NetAmount = amount
		if err := s.ledger.Post(ctx, Posting{Actor: actor, Entry: entry, Field: domain.FieldBalance, Delta: total.Neg()}); err != nil {
			return err
		}
		withdrawal.TransactionID = entry.ID
		if err := s.withdrawalRepo.CreateWithdrawal(ctx, q, withdrawal); err != nil {
			return err
		}
		s.publish(ctx, actor, withdrawal, total.Neg())
		return nil
	})
	if err != nil {
		return nil, dependencyError("create withdrawal", err)
	}
	s.logger.InfoContext(ctx, "withdrawal requested",
		"withdrawal_id", withdrawal.ID, "user_id", userID, "amount", amount.String(), "fee", fee.String(), "actor", actor.String())
	return withdrawal, nil
}

func (s *withdrawalService) UpdateStatus(ctx context.Context, actor domain.Actor, withdrawalID int64, status domain.TransactionStatus, txHash *string) (*domain.Withdrawal, error) {
	switch status {
	case domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed, domain.StatusCancelled:
	default:
		return nil, fmt.Errorf("withdrawal status %q: %w", status, util.ErrInvalidInput)
	}

	var withdrawal *domain.Withdrawal
	err := s.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		withdrawal, err = s.withdrawalRepo.GetWithdrawalByID(ctx, q, withdrawalID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		from := transitionSources(status)
		// A replayed terminal status fails here, before any refund is posted.
		err = s.withdrawalRepo.UpdateWithdrawalStatus(ctx, q, withdrawalID, repository.PaymentStatusUpdate{
			From:        from,
			To:          status,
			ProcessedBy: processedBy(actor),
			Reference:   txHash,
			ProcessedAt: now,
		})
		if err != nil {
			return err
		}
		if err := s.journal.MarkStatus(ctx, withdrawal.TransactionID, repository.StatusUpdate{From: from, To: status, ProcessedAt: now}); err != nil {
			return err
		}

		effect := decimal.Zero
		switch status {
		case domain.StatusCompleted:
			if err := s.ledger.Accumulate(ctx, withdrawal.UserID, domain.AggregateWithdrawn, withdrawal.Amount); err != nil {
				return err
			}
		case domain.StatusFailed, domain.StatusCancelled:
			effect = withdrawal.TotalDebit()
			refund := domain.NewTransaction(withdrawal.UserID, domain.TransactionTypeRefund, effect, withdrawal.Currency, domain.StatusCompleted).
				WithRelated(domain.RelatedWithdrawal, withdrawalID).
				WithDescription(fmt.Sprintf("Refund of withdrawal #%d (%s)", withdrawalID, status))
			if err := s.ledger.Post(ctx, Posting{Actor: actor, Entry: refund, Field: domain.FieldBalance, Delta: effect}); err != nil {
				return err
			}
		}

		withdrawal.Status = status
		withdrawal.ProcessedAt = &now
		withdrawal.UpdatedAt = now
		if txHash != nil {
			withdrawal.TransactionHash = txHash
		}
		if by := processedBy(actor); by != nil {
			withdrawal.ProcessedBy = by
		}
		s.publish(ctx, actor, withdrawal, effect)
		return nil
	})
	if err != nil {
		return nil, dependencyError("update withdrawal status", err)
	}
	if s.metrics != nil {
		s.metrics.PaymentTransitions.WithLabelValues("withdrawal", string(status)).Inc()
	}
	s.logger.InfoContext(ctx, "withdrawal status updated", "withdrawal_id", withdrawalID, "status", status, "actor", actor.String())
	return withdrawal, nil
}

func (s *withdrawalService) publish(ctx context.Context, actor domain.Actor, w *domain.Withdrawal, effect decimal.Decimal) {
	event := audit.Event{
		Kind:       audit.KindWithdrawalStatus,
		Actor:      actor,
		UserID:     w.UserID,
		Delta:      effect,
		Subject:    fmt.Sprintf("withdrawal:%d", w.ID),
		Status:     string(w.Status),
		OccurredAt: s.now().UTC(),
	}
	db.AfterCommit(ctx, func() { s.sink.Publish(context.WithoutCancel(ctx), event) })
}

func (s *withdrawalService) GetWithdrawal(ctx context.Context, withdrawalID int64) (*domain.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.GetWithdrawalByID(ctx, s.dbExecutor, withdrawalID)
	if err != nil {
		return nil, dependencyError("get withdrawal", err)
	}
	return withdrawal, nil
}

func (s *withdrawalService) ListWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]domain.Withdrawal, error) {
	limit, offset = clampPage(limit, offset)
	withdrawals, err := s.withdrawalRepo.ListWithdrawalsByUserID(ctx, s.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, dependencyError("list withdrawals", err)
	}
	return withdrawals, nil
}
