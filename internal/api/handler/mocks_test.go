// internal/api/handler/mocks_test.go
package handler

import (
	"context"

	"yieldledger/internal/domain"
	"yieldledger/internal/repository"
	"yieldledger/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, actor domain.Actor, username, email, referralCode string) (*domain.User, error) {
	args := m.Called(ctx, actor, username, email, referralCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockJournal is a mock implementation of service.Journal.
type MockJournal struct {
	mock.Mock
}

func (m *MockJournal) Append(ctx context.Context, entry *domain.Transaction) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockJournal) MarkStatus(ctx context.Context, id int64, update repository.StatusUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *MockJournal) Get(ctx context.Context, id int64) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockJournal) History(ctx context.Context, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Transaction), args.Get(1).(int64), args.Error(2)
}

// MockReferralService is a mock implementation of service.ReferralService.
type MockReferralService struct {
	mock.Mock
}

func (m *MockReferralService) PayCommission(ctx context.Context, actor domain.Actor, investorID int64, basis decimal.Decimal, sourceID int64) (*domain.Transaction, error) {
	args := m.Called(ctx, actor, investorID, basis, sourceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockReferralService) CreateReferral(ctx context.Context, referrerID, referredID int64) (*domain.Referral, error) {
	args := m.Called(ctx, referrerID, referredID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Referral), args.Error(1)
}

func (m *MockReferralService) ListReferrals(ctx context.Context, referrerID int64) ([]domain.Referral, error) {
	args := m.Called(ctx, referrerID)
	return args.Get(0).([]domain.Referral), args.Error(1)
}

// MockInvestmentService is a mock implementation of service.InvestmentService.
type MockInvestmentService struct {
	mock.Mock
}

func (m *MockInvestmentService) CreateInvestment(ctx context.Context, actor domain.Actor, userID, schemaID int64, amount decimal.Decimal) (*domain.Investment, error) {
	args := m.Called(ctx, actor, userID, schemaID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}

func (m *MockInvestmentService) CompleteInvestment(ctx context.Context, actor domain.Actor, investmentID int64) (*domain.Investment, error) {
	args := m.Called(ctx, actor, investmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}

func (m *MockInvestmentService) GetInvestment(ctx context.Context, investmentID int64) (*domain.Investment, error) {
	args := m.Called(ctx, investmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Investment), args.Error(1)
}

func (m *MockInvestmentService) ListInvestments(ctx context.Context, userID int64, limit, offset int) ([]domain.Investment, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Investment), args.Error(1)
}

func (m *MockInvestmentService) ListProfits(ctx context.Context, investmentID int64) ([]domain.Profit, error) {
	args := m.Called(ctx, investmentID)
	return args.Get(0).([]domain.Profit), args.Error(1)
}

func (m *MockInvestmentService) ListSchemas(ctx context.Context, activeOnly bool) ([]domain.InvestmentSchema, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]domain.InvestmentSchema), args.Error(1)
}

// MockDepositService is a mock implementation of service.DepositService.
type MockDepositService struct {
	mock.Mock
}

func (m *MockDepositService) CreateDeposit(ctx context.Context, actor domain.Actor, userID, methodID int64, amount decimal.Decimal, extra domain.DepositExtra) (*domain.Deposit, error) {
	args := m.Called(ctx, actor, userID, methodID, amount, extra)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}

func (m *MockDepositService) UpdateStatus(ctx context.Context, actor domain.Actor, depositID int64, status domain.TransactionStatus, gatewayTxID *string) (*domain.Deposit, error) {
	args := m.Called(ctx, actor, depositID, status, gatewayTxID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}

func (m *MockDepositService) ExpireStale(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockDepositService) GetDeposit(ctx context.Context, depositID int64) (*domain.Deposit, error) {
	args := m.Called(ctx, depositID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Deposit), args.Error(1)
}

func (m *MockDepositService) ListDeposits(ctx context.Context, userID int64, limit, offset int) ([]domain.Deposit, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Deposit), args.Error(1)
}

func (m *MockDepositService) ListMethods(ctx context.Context, activeOnly bool) ([]domain.DepositMethod, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]domain.DepositMethod), args.Error(1)
}

// MockWithdrawalService is a mock implementation of service.WithdrawalService.
type MockWithdrawalService struct {
	mock.Mock
}

func (m *MockWithdrawalService) CreateWithdrawal(ctx context.Context, actor domain.Actor, userID int64, amount decimal.Decimal, walletAddress, currency, network string) (*domain.Withdrawal, error) {
	args := m.Called(ctx, actor, userID, amount, walletAddress, currency, network)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalService) UpdateStatus(ctx context.Context, actor domain.Actor, withdrawalID int64, status domain.TransactionStatus, txHash *string) (*domain.Withdrawal, error) {
	args := m.Called(ctx, actor, withdrawalID, status, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalService) GetWithdrawal(ctx context.Context, withdrawalID int64) (*domain.Withdrawal, error) {
	args := m.Called(ctx, withdrawalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalService) ListWithdrawals(ctx context.Context, userID int64, limit, offset int) ([]domain.Withdrawal, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Withdrawal), args.Error(1)
}

// MockProfitDistributor is a mock implementation of service.ProfitDistributor.
type MockProfitDistributor struct {
	mock.Mock
}

func (m *MockProfitDistributor) RunDistribution(ctx context.Context) (service.DistributionReport, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.DistributionReport), args.Error(1)
}

// MockStatsService is a mock implementation of service.StatsService.
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) PlatformStats(ctx context.Context) (*domain.PlatformStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlatformStats), args.Error(1)
}

func (m *MockStatsService) Reconcile(ctx context.Context, userID int64) (*domain.Reconciliation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}
