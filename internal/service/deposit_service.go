// internal/service/deposit_service.go
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

// DefaultDepositExpiry is how long an automatic deposit stays payable.
const DefaultDepositExpiry = 60 * time.Minute

// AddressGenerator issues receiving addresses for automatic deposit methods.
type AddressGenerator interface {
	Generate(ctx context.Context, userID int64, method *domain.DepositMethod) (string, error)
}

// DepositService handles deposit requests and their status callbacks.
type DepositService interface {
	CreateDeposit(ctx context.Context, actor domain.Actor, userID, methodID int64, amount decimal.Decimal, extra domain.DepositExtra) (*domain.Deposit, error)
	// UpdateStatus moves an open deposit to status. Completion credits the net
	// amount exactly once; other outcomes have no balance effect.
	UpdateStatus(ctx context.Context, actor domain.Actor, depositID int64, status domain.TransactionStatus, gatewayTxID *string) (*domain.Deposit, error)
	// ExpireStale expires pending deposits past their deadline.
	ExpireStale(ctx context.Context) (int, error)
	GetDeposit(ctx context.Context, depositID int64) (*domain.Deposit, error)
	ListDeposits(ctx context.Context, userID int64, limit, offset int) ([]domain.Deposit, error)
	ListMethods(ctx context.Context, activeOnly bool) ([]domain.DepositMethod, error)
}

type depositService struct {
	uow         *db.UnitOfWork
	dbExecutor  repository.DBExecutor
	depositRepo repository.DepositRepository
	ledger      Ledger
	journal     Journal
	addresses   AddressGenerator // optional
	sink        audit.Sink
	metrics     *metrics.Metrics
	logger      *slog.Logger
	expiry      time.Duration
	batchSize   int
	now         func() time.Time
}

// NewDepositService creates a new DepositService. addresses may be nil.
func NewDepositService(
	uow *db.UnitOfWork,
	dbExecutor repository.DBExecutor,
	depositRepo repository.DepositRepository,
	ledger Ledger,
	journal Journal,
	addresses AddressGenerator,
	sink audit.Sink,
	m *metrics.Metrics,
	logger *slog.Logger,
	expiry time.Duration,
) DepositService {
	if expiry <= 0 {
		expiry = DefaultDepositExpiry
	}
	return &depositService{
		uow:         uow,
		dbExecutor:  dbExecutor,
		depositRepo: depositRepo,
		ledger:      ledger,
		journal:     journal,
		addresses:   addresses,
		sink:        sink,
		metrics:     m,
		logger:      logger.With("component", "deposit"),
		expiry:      expiry,
		batchSize:   DefaultDistributionBatch,
		now:         time.Now,
	}
}

func (s *depositService) CreateDeposit(ctx context.Context, actor domain.Actor, userID, methodID int64, amount decimal.Decimal, extra domain.DepositExtra) (*domain.Deposit, error) {
	amount = domain.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, fmt.Errorf("deposit amount %s: %w", amount, util.ErrInvalidInput)
	}

	method, err := s.depositRepo.GetMethodByID(ctx, s.dbExecutor, methodID)
	if util.IsError(err, util.ErrNotFound) {
		return nil, util.ErrMethodUnavailable
	}
	if err != nil {
		return nil, dependencyError("create deposit", err)
	}
	if method.Status != domain.SchemaActive {
		return nil, util.ErrMethodUnavailable
	}
	if amount.LessThan(method.MinAmount) || amount.GreaterThan(method.MaxAmount) {
		return nil, fmt.Errorf("deposit %s outside [%s, %s]: %w", amount, method.MinAmount, method.MaxAmount, util.ErrAmountOutOfRange)
	}
	fee, net, err := ComputeFee(amount, DepositFeePolicy(method))
	if err != nil {
		return nil, err
	}
	if !net.IsPositive() {
		return nil, fmt.Errorf("deposit net %s: %w", net, util.ErrAmountOutOfRange)
	}

	now := s.now().UTC()
	deposit := &domain.Deposit{
		UserID:               userID,
		MethodID:             methodID,
		Amount:               amount,
		Fee:                  fee,
		NetAmount:            net,
		Currency:             method.Currency,
		Network:              extra.Network,
		GatewayTransactionID: extra.GatewayTransactionID,
		ProofOfPayment:       extra.ProofOfPayment,
		Status:               domain.StatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if deposit.Network == nil && method.Network != "" {
		network := method.Network
		deposit.Network = &network
	}
	if method.Type == domain.DepositMethodAutomatic {
		expiresAt := now.Add(s.expiry)
		deposit.ExpiresAt = &expiresAt
		if s.addresses != nil {
			address, err := s.addresses.Generate(ctx, userID, method)
			if err != nil {
				s.logger.WarnContext(ctx, "address generation failed, continuing without address", "method_id", methodID, "error", err)
			} else {
				deposit.WalletAddress = &address
			}
		}
	}

	err = s.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		entry := domain.NewTransaction(userID, domain.TransactionTypeDeposit, amount, method.Currency, domain.StatusPending).
			WithDescription(fmt.Sprintf("Deposit via %s", method.Name))
		entry.Fee = fee
		entry.NetAmount = net
		if err := s.ledger.Post(ctx, Posting{Actor: actor, Entry: entry, Field: domain.FieldBalance}); err != nil {
			return err
		}
		deposit.TransactionID = entry.ID
		if err := s.depositRepo.CreateDeposit(ctx, q, deposit); err != nil {
			return err
		}
		s.publish(ctx, actor, deposit, decimal.Zero)
		return nil
	})
	if err != nil {
		return nil, dependencyError("create deposit", err)
	}
	s.logger.InfoContext(ctx, "deposit created", "deposit_id", deposit.ID, "user_id", userID, "amount", amount.String(), "actor", actor.String())
	return deposit, nil
}

// transitionSources lists the statuses a deposit or withdrawal may move from
// to reach to.
func transitionSources(to domain.TransactionStatus) []domain.TransactionStatus {
	if to == domain.StatusProcessing {
		return []domain.TransactionStatus{domain.StatusPending}
	}
	return domain.OpenStatuses
}

func (s *depositService) UpdateStatus(ctx context.Context, actor domain.Actor, depositID int64, status domain.TransactionStatus, gatewayTxID *string) (*domain.Deposit, error) {
	switch status {
	case domain.StatusProcessing, domain.StatusCompleted, domain.StatusFailed, domain.StatusCancelled, domain.StatusExpired:
	default:
		return nil, fmt.Errorf("deposit status %q: %w", status, util.ErrInvalidInput)
	}

	var deposit *domain.Deposit
	err := s.uow.Do(ctx, func(ctx context.Context, tx db.TxController) error {
		q, err := executor(tx)
		if err != nil {
			return err
		}
		deposit, err = s.depositRepo.GetDepositByID(ctx, q, depositID)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		from := transitionSources(status)
		err = s.depositRepo.UpdateDepositStatus(ctx, q, depositID, repository.PaymentStatusUpdate{
			From:        from,
			To:          status,
			ProcessedBy: processedBy(actor),
			Reference:   gatewayTxID,
			ProcessedAt: now,
		})
		if err != nil {
			return err
		}

		update := repository.StatusUpdate{From: from, To: status, ProcessedAt: now}
		credited := decimal.Zero
		if status == domain.StatusCompleted {
			credited = deposit.NetAmount
			if _, err := s.ledger.Mutate(ctx, actor, deposit.UserID, domain.FieldBalance, credited); err != nil {
				return err
			}
			update.BalanceEffect = &credited
		}
		if err := s.journal.MarkStatus(ctx, deposit.TransactionID, update); err != nil {
			return err
		}

		deposit.Status = status
		deposit.ProcessedAt = &now
		deposit.UpdatedAt = now
		if gatewayTxID != nil {
			deposit.GatewayTransactionID = gatewayTxID
		}
		if by := processedBy(actor); by != nil {
			deposit.ProcessedBy = by
		}
		s.publish(ctx, actor, deposit, credited)
		return nil
	})
	if err != nil {
		return nil, dependencyError("update deposit status", err)
	}
	if s.metrics != nil {
		s.metrics.PaymentTransitions.WithLabelValues("deposit", string(status)).Inc()
	}
	s.logger.InfoContext(ctx, "deposit status updated", "deposit_id", depositID, "status", status, "actor", actor.String())
	return deposit, nil
}

func (s *depositService) publish(ctx context.Context, actor domain.Actor, deposit *domain.Deposit, credited decimal.Decimal) {
	event := audit.Event{
		Kind:       audit.KindDepositStatus,
		Actor:      actor,
		UserID:     deposit.UserID,
		Delta:      credited,
		Subject:    fmt.Sprintf("deposit:%d", deposit.ID),
		Status:     string(deposit.Status),
		OccurredAt: s.now().UTC(),
	}
	db.AfterCommit(ctx, func() { s.sink.Publish(context.WithoutCancel(ctx), event) })
}

// processedBy attributes admin actions; system and user actions leave it unset.
func processedBy(actor domain.Actor) *int64 {
	if actor.Role != domain.RoleAdmin {
		return nil
	}
	id := actor.ID
	return &id
}

func (s *depositService) ExpireStale(ctx context.Context) (int, error) {
	stale, err := s.depositRepo.ListExpiredPending(ctx, s.dbExecutor, s.now().UTC(), s.batchSize)
	if err != nil {
		return 0, dependencyError("list expired deposits", err)
	}
	expired := 0
	for _, deposit := range stale {
		_, err := s.UpdateStatus(ctx, domain.SystemActor, deposit.ID, domain.StatusExpired, nil)
		switch {
		case err == nil:
			expired++
		case util.IsError(err, util.ErrInvalidStateTransition):
			s.logger.InfoContext(ctx, "deposit settled before expiry", "deposit_id", deposit.ID)
		default:
			s.logger.ErrorContext(ctx, "failed to expire deposit", "deposit_id", deposit.ID, "error", err)
		}
	}
	return expired, nil
}

func (s *depositService) GetDeposit(ctx context.Context, depositID int64) (*domain.Deposit, error) {
	deposit, err := s.depositRepo.GetDepositByID(ctx, s.dbExecutor, depositID)
	if err != nil {
		return nil, dependencyError("get deposit", err)
	}
	return deposit, nil
}

func (s *depositService) ListDeposits(ctx context.Context, userID int64, limit, offset int) ([]domain.Deposit, error) {
	limit, offset = clampPage(limit, offset)
	deposits, err := s.depositRepo.ListDepositsByUserID(ctx, s.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, dependencyError("list deposits", err)
	}
	return deposits, nil
}

func (s *depositService) ListMethods(ctx context.Context, activeOnly bool) ([]domain.DepositMethod, error) {
	methods, err := s.depositRepo.ListMethods(ctx, s.dbExecutor, activeOnly)
	if err != nil {
		return nil, dependencyError("list deposit methods", err)
	}
	return methods, nil
}
