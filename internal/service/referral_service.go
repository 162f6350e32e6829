// internal/service/referral_service.go
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

// ReferralService pays commissions along referral edges.
type ReferralService interface {
	// PayCommission credits the investor's referrer with its captured rate of
	// basis. A missing referrer or edge is a no-op and returns nil, nil.
	PayCommission(ctx context.Context, actor domain.Actor, investorID int64, basis decimal.Decimal, sourceID int64) (*domain.Transaction, error)
	CreateReferral(ctx context.Context, referrerID, referredID int64) (*domain.Referral, error)
	ListReferrals(ctx context.Context, referrerID int64) ([]domain.Referral, error)
}

type referralService struct {
	uow          *db.UnitOfWork
	dbExecutor   repository.DBExecutor
	userRepo     repository.UserRepository
	referralRepo repository.ReferralRepository
	ledger       Ledger
	settings     settings.Provider
	sink         audit.Sink
	metrics      *metrics.Metrics
	logger       *slog.Logger
	now          func() time.Time
}

// NewReferralService creates a new ReferralService.
func NewReferralService(
	uow *db.UnitOfWork,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	referralRepo repository.ReferralRepository,
	ledger Ledger,
	settingsProvider settings.Provider,
	sink audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
) ReferralService {
	return &referralService{
		uow:          uow,
		dbExecutor:   dbExecutor,
		userRepo:     userRepo,
		referralRepo: referralRepo,
		ledger:       ledger,
		settings:     settingsProvider,
		sink:         sink,
		metrics:      m,
		logger:       logger.With("component", "referral"),
		now:          time.Now,
	}
}

func (s *referralService) PayCommission(ctx context.Context, actor domain.Actor, investorID int64, basis decimal.Decimal, sourceID int64) (*domain.Transaction, error) {
	if !basis.IsPositive() {
		return nil, fmt.Errorf("commission basis %s: %w", basis, util.ErrInvalidInput)
	}
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, dependencyError("referral settings", err)
	}

	var entry *domain.Transaction
	err = s.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		investor, err := s.userRepo.GetUserByID(ctx, q, investorID)
		if err != nil {
			return err
		}
		if investor.ReferredBy == nil {
			s.logger.DebugContext(ctx, "investor has no referrer", "user_id", investorID)
			return nil
		}
		referral, err := s.referralRepo.GetReferral(ctx, q, *investor.ReferredBy, investorID)
		if util.IsError(err, util.ErrReferralNotFound) {
			s.logger.InfoContext(ctx, "no referral edge for referrer", "referrer_id", *investor.ReferredBy, "user_id", investorID)
			return nil
		}
		if err != nil {
			return err
		}
		if referral.Status != domain.ReferralActive {
			s.logger.InfoContext(ctx, "referral inactive, skipping commission", "referral_id", referral.ID)
			return nil
		}
		commission := domain.PercentOf(basis, referral.CommissionRate)
		if !commission.IsPositive() {
			return nil
		}

		entry = domain.NewTransaction(referral.ReferrerID, domain.TransactionTypeReferral, commission, cfg.DefaultCurrency, domain.StatusCompleted).
			WithRelated(domain.RelatedUser, investorID).
			WithDescription(fmt.Sprintf("Referral commission from investment #%d", sourceID))
		if err := s.ledger.Post(ctx, Posting{Actor: actor, Entry: entry, Field: domain.FieldBalance, Delta: commission}); err != nil {
			return err
		}
		if err := s.referralRepo.AddEarnings(ctx, q, referral.ID, commission); err != nil {
			return err
		}
		if err := s.ledger.Accumulate(ctx, referral.ReferrerID, domain.AggregateEarned, commission); err != nil {
			return err
		}

		event := audit.Event{
			Kind:       audit.KindReferralPaid,
			Actor:      actor,
			UserID:     referral.ReferrerID,
			Delta:      commission,
			Subject:    fmt.Sprintf("investment:%d", sourceID),
			OccurredAt: s.now().UTC(),
		}
		db.AfterCommit(ctx, func() { s.sink.Publish(context.WithoutCancel(ctx), event) })
		return nil
	})
	if err != nil {
		return nil, dependencyError("pay commission", err)
	}
	return entry, nil
}

func (s *referralService) CreateReferral(ctx context.Context, referrerID, referredID int64) (*domain.Referral, error) {
	if referrerID == referredID {
		return nil, util.ErrSelfReferral
	}
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, dependencyError("referral settings", err)
	}

	now := s.now().UTC()
	referral := &domain.Referral{
		ReferrerID:     referrerID,
		ReferredID:     referredID,
		CommissionRate: cfg.ReferralBonusRate,
		TotalEarned:    decimal.Zero,
		Status:         domain.ReferralActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err = s.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		_, err = s.referralRepo.GetReferral(ctx, q, referredID, referrerID)
		if err == nil {
			return util.ErrReciprocalReferral
		}
		if !util.IsError(err, util.ErrReferralNotFound) {
			return err
		}
		return s.referralRepo.CreateReferral(ctx, q, referral)
	})
	if err != nil {
		return nil, dependencyError("create referral", err)
	}
	return referral, nil
}

func (s *referralService) ListReferrals(ctx context.Context, referrerID int64) ([]domain.Referral, error) {
	referrals, err := s.referralRepo.ListReferralsByReferrer(ctx, s.dbExecutor, referrerID)
	if err != nil {
		return nil, dependencyError("list referrals", err)
	}
	return referrals, nil
}
