// internal/service/investment_service.go
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

// InvestmentService opens and closes investment contracts.
type InvestmentService interface {
	CreateInvestment(ctx context.Context, actor domain.Actor, userID, schemaID int64, amount decimal.Decimal) (*domain.Investment, error)
	// CompleteInvestment returns the principal of an active investment whose
	// term has been fully paid. It joins the caller's unit of work when there
	// is one.
	CompleteInvestment(ctx context.Context, actor domain.Actor, investmentID int64) (*domain.Investment, error)
	GetInvestment(ctx context.Context, investmentID int64) (*domain.Investment, error)
	ListInvestments(ctx context.Context, userID int64, limit, offset int) ([]domain.Investment, error)
	ListProfits(ctx context.Context, investmentID int64) ([]domain.Profit, error)
	ListSchemas(ctx context.Context, activeOnly bool) ([]domain.InvestmentSchema, error)
}

type investmentService struct {
	uow            *db.UnitOfWork
	dbExecutor     repository.DBExecutor
	investmentRepo repository.InvestmentRepository
	ledger         Ledger
	referrals      ReferralService
	settings       settings.Provider
	sink           audit.Sink
	metrics        *metrics.Metrics
	logger         *slog.Logger
	now            func() time.Time
}

// NewInvestmentService creates a new InvestmentService.
func NewInvestmentService(
	uow *db.UnitOfWork,
	dbExecutor repository.DBExecutor,
	investmentRepo repository.InvestmentRepository,
	ledger Ledger,
	referrals ReferralService,
	settingsProvider settings.Provider,
	sink audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) InvestmentService {
	return &investmentService{
		uow:            uow,
		dbExecutor:     dbExecutor,
		investmentRepo: investmentRepo,
		ledger:         ledger,
		referrals:      referrals,
		settings:       settingsProvider,
		sink:           sink,
		metrics:        m,
		logger:         logger.With("component", "investment"),
		now:            time.Now,
	}
}

func (s *investmentService) CreateInvestment(ctx context.Context, actor domain.Actor, userID, schemaID int64, amount decimal.Decimal) (*domain.Investment, error) {
	amount = domain.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("investment amount %s: %w", amount, util.ErrInvalidInput)
	}

	schema, err := s.investmentRepo.GetSchemaByID(ctx, s.dbExecutor, schemaID)
	if util.IsError(err, util.ErrNotFound) {
		return nil, util.ErrSchemaUnavailable
	}
	if err != nil {
		return nil, dependencyError("create investment", err)
	}
	if schema.Status != domain.SchemaActive {
		return nil, util.ErrSchemaUnavailable
	}

	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, dependencyError("investment settings", err)
	}
	fee, net, err := ComputeFee(amount, PlatformFeePolicy(cfg))
	if err != nil {
		return nil, err
	}
	if !schema.Accepts(net) {
		return nil, fmt.Errorf("net %s outside [%s, %s]: %w", net, schema.MinAmount, schema.MaxAmount, util.ErrAmountOutOfRange)
	}

	now := s.now().UTC()
	investment := domain.NewInvestment(userID, schema, net, now)
	err = s.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}

		entry := domain.NewTransaction(userID, domain.TransactionTypeInvestment, amount, cfg.DefaultCurrency, domain.StatusCompleted).
			WithDescription(fmt.Sprintf("Investment in %s", schema.Name))
		entry.Fee = fee
		entry.NetAmount = net
		if err := s.ledger.Post(ctx, Posting{Actor: actor, Entry: entry, Field: domain.FieldBalance, Delta: amount.Neg()}); err != nil {
			return err
		}
		if err := s.ledger.Accumulate(ctx, userID, domain.AggregateInvested, amount); err != nil {
			return err
		}

		investment.TransactionID = entry.ID
		if err := s.investmentRepo.CreateInvestment(ctx, q, investment); err != nil {
			return err
		}

		event := audit.Event{
			Kind:       audit.KindInvestmentOpened,
			Actor:      actor,
			UserID:     userID,
			Delta:      amount.Neg(),
			Subject:    fmt.Sprintf("investment:%d", investment.ID),
			Status:     string(domain.InvestmentActive),
			OccurredAt: now,
		}
		db.AfterCommit(ctx, func() { s.sink.Publish(context.WithoutCancel(ctx), event) })
		return nil
	})
	if err != nil {
		return nil, dependencyError("create investment", err)
	}
	if s.metrics != nil {
		s.metrics.InvestmentsCreated.Inc()
	}
	s.logger.InfoContext(ctx, "investment created",
		"investment_id", investment.ID, "user_id", userID, "schema_id", schemaID,
		"amount", amount.String(), "fee", fee.String(), "actor", actor.String())

	// Commission is paid after the investment is durable and never undoes it.
	if _, err := s.referrals.PayCommission(ctx, actor, userID, amount, investment.ID); err != nil {
		if s.metrics != nil {
			s.metrics.Errors.WithLabelValues("referral").Inc()
		}
		s.logger.ErrorContext(ctx, "referral commission failed", "investment_id", investment.ID, "user_id", userID, "error", err)
	}
	return investment, nil
}

func (s *investmentService) CompleteInvestment(ctx context.Context, actor domain.Actor, investmentID int64) (*domain.Investment, error) {
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, dependencyError("investment settings", err)
	}

	var investment *domain.Investment
	err = s.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		investment, err = s.investmentRepo.GetInvestmentByID(ctx, q, investmentID)
		if err != nil {
			return err
		}
		if investment.Status != domain.InvestmentActive {
			return fmt.Errorf("investment %d is %s: %w", investmentID, investment.Status, util.ErrNotActive)
		}
		if !investment.TermServed() {
			return fmt.Errorf("investment %d has %d of %d profit days paid: %w",
				investmentID, investment.ProfitDaysPaid, investment.NumberOfPeriod, util.ErrInvalidStateTransition)
		}

		now := s.now().UTC()
		if err := s.investmentRepo.CompleteInvestment(ctx, q, investmentID, now); err != nil {
			return err
		}
		entry := domain.NewTransaction(investment.UserID, domain.TransactionTypePrincipalReturn, investment.InvestAmount, cfg.DefaultCurrency, domain.StatusCompleted).
			WithRelated(domain.RelatedInvestment, investmentID).
			WithDescription(fmt.Sprintf("Principal returned for investment #%d", investmentID))
		if err := s.ledger.Post(ctx, Posting{Actor: actor, Entry: entry, Field: domain.FieldBalance, Delta: investment.InvestAmount}); err != nil {
			return err
		}

		investment.Status = domain.InvestmentCompleted
		investment.CompletedAt = &now
		investment.UpdatedAt = now

		event := audit.Event{
			Kind:       audit.KindInvestmentClosed,
			Actor:      actor,
			UserID:     investment.UserID,
			Delta:      investment.InvestAmount,
			Subject:    fmt.Sprintf("investment:%d", investmentID),
			Status:     string(domain.InvestmentCompleted),
			OccurredAt: now,
		}
		db.AfterCommit(ctx, func() { s.sink.Publish(context.WithoutCancel(ctx), event) })
		return nil
	})
	if err != nil {
		return nil, dependencyError("complete investment", err)
	}
	return investment, nil
}

func (s *investmentService) GetInvestment(ctx context.Context, investmentID int64) (*domain.Investment, error) {
	investment, err := s.investmentRepo.GetInvestmentByID(ctx, s.dbExecutor, investmentID)
	if err != nil {
		return nil, dependencyError("get investment", err)
	}
	return investment, nil
}

func (s *investmentService) ListInvestments(ctx context.Context, userID int64, limit, offset int) ([]domain.Investment, error) {
	limit, offset = clampPage(limit, offset)
	investments, err := s.investmentRepo.ListInvestmentsByUserID(ctx, s.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, dependencyError("list investments", err)
	}
	return investments, nil
}

func (s *investmentService) ListProfits(ctx context.Context, investmentID int64) ([]domain.Profit, error) {
	profits, err := s.investmentRepo.ListProfitsByInvestmentID(ctx, s.dbExecutor, investmentID)
	if err != nil {
		return nil, dependencyError("list profits", err)
	}
	return profits, nil
}

func (s *investmentService) ListSchemas(ctx context.Context, activeOnly bool) ([]domain.InvestmentSchema, error) {
	schemas, err := s.investmentRepo.ListSchemas(ctx, s.dbExecutor, activeOnly)
	if err != nil {
		return nil, dependencyError("list schemas", err)
	}
	return schemas, nil
}
