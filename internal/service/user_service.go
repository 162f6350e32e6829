// internal/service/user_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"yieldledger/internal/audit"
	"yieldledger/internal/domain"
	"yieldledger/internal/repository"
	"yieldledger/internal/settings"
	"yieldledger/internal/util"
	"yieldledger/pkg/db"

	"github.com/google/uuid"
)

const referralCodeLength = 8

// UserService registers account holders.
type UserService interface {
	// Register creates a user, links the referrer named by referralCode and
	// credits the configured signup bonus to bonus_balance.
	Register(ctx context.Context, actor domain.Actor, username, email, referralCode string) (*domain.User, error)
	GetUser(ctx context.Context, userID int64) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

type userService struct {
	uow        *db.UnitOfWork
	dbExecutor repository.DBExecutor
	userRepo   repository.UserRepository
	referrals  ReferralService
	ledger     Ledger
	settings   settings.Provider
	sink       audit.Sink
	logger     *slog.Logger
	now        func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(
	uow *db.UnitOfWork,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	referrals ReferralService,
	ledger Ledger,
	settingsProvider settings.Provider,
	sink audit.Sink,
	logger *slog.Logger,
) UserService {
	return &userService{
		uow:        uow,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		referrals:  referrals,
		ledger:     ledger,
		settings:   settingsProvider,
		sink:       sink,
		logger:     logger.With("component", "user"),
		now:        time.Now,
	}
}

// NewReferralCode returns a random upper-case code.
func NewReferralCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:referralCodeLength])
}

func (s *userService) Register(ctx context.Context, actor domain.Actor, username, email, referralCode string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username required: %w", util.ErrInvalidInput)
	}
	cfg, err := s.settings.Current(ctx)
	if err != nil {
		return nil, dependencyError("registration settings", err)
	}

	var referrer *domain.User
	if code := strings.TrimSpace(referralCode); code != "" {
		referrer, err = s.userRepo.GetUserByReferralCode(ctx, s.dbExecutor, strings.ToUpper(code))
		if util.IsError(err, util.ErrUserNotFound) {
			return nil, util.ErrInvalidReferral
		}
		if err != nil {
			return nil, dependencyError("register", err)
		}
	}

	var referredBy *int64
	if referrer != nil {
		id := referrer.ID
		referredBy = &id
	}
	user := domain.NewUser(username, strings.TrimSpace(email), NewReferralCode(), referredBy)
	err = s.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		if err := s.userRepo.CreateUser(ctx, q, user); err != nil {
			return err
		}
		if referrer != nil {
			if _, err := s.referrals.CreateReferral(ctx, referrer.ID, user.ID); err != nil {
				return err
			}
		}
		if cfg.SignupBonus.IsPositive() {
			entry := domain.NewTransaction(user.ID, domain.TransactionTypeBonus, cfg.SignupBonus, cfg.DefaultCurrency, domain.StatusCompleted).
				WithRelated(domain.RelatedUser, user.ID).
				WithDescription("Signup bonus")
			if err := s.ledger.Post(ctx, Posting{Actor: actor, Entry: entry, Field: domain.FieldBonusBalance, Delta: cfg.SignupBonus}); err != nil {
				return err
			}
			user.BonusBalance = cfg.SignupBonus
		}

		event := audit.Event{
			Kind:       audit.KindUserRegistered,
			Actor:      actor,
			UserID:     user.ID,
			Subject:    fmt.Sprintf("user:%d", user.ID),
			OccurredAt: s.now().UTC(),
		}
		db.AfterCommit(ctx, func() { s.sink.Publish(context.WithoutCancel(ctx), event) })
		return nil
	})
	if err != nil {
		return nil, dependencyError("register", err)
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", username, "referred_by", referredBy)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, dependencyError("get user", err)
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, s.dbExecutor, username)
	if err != nil {
		return nil, dependencyError("get user", err)
	}
	return user, nil
}
