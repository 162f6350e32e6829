// internal/service/investment_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"yieldledger/internal/audit"
	"yieldledger/internal/domain"
	"yieldledger/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func starterSchema() domain.InvestmentSchema {
	return domain.InvestmentSchema{
		Name:         "Starter",
		MinAmount:    d("100"),
		MaxAmount:    d("1000"),
		DailyRate:    d("2"),
		DurationDays: 30,
		TotalReturn:  d("60"),
	}
}

func TestInvestmentService_CreateInvestment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	user := f.store.addUser("alice", d("500"))
	schema := f.store.addSchema(starterSchema())

	inv, err := f.investments.CreateInvestment(ctx, domain.UserActor(user.ID), user.ID, schema.ID, d("500"))
	require.NoError(t, err)

	assert.Equal(t, domain.InvestmentActive, inv.Status)
	assert.True(t, inv.InvestAmount.Equal(d("500")))
	assert.True(t, inv.TotalProfitAmount.Equal(d("300")))
	assert.Equal(t, 30, inv.NumberOfPeriod)
	assert.Equal(t, f.clock.Now().Add(domain.ProfitInterval), inv.NextProfitTime)
	assert.NotZero(t, inv.TransactionID)

	stored := f.store.user(user.ID)
	assert.True(t, stored.Balance.IsZero())
	assert.True(t, stored.TotalInvested.Equal(d("500")))

	entries := f.store.entries(user.ID, domain.TransactionTypeInvestment)
	require.Len(t, entries, 1)
	assert.Equal(t, inv.TransactionID, entries[0].ID)
	assert.True(t, entries[0].BalanceEffect.Equal(d("-500")))
	assert.True(t, f.conserved(user.ID))

	assert.Equal(t, []string{audit.KindBalanceMutation, audit.KindInvestmentOpened}, f.sink.kinds())
}

func TestInvestmentService_CreateInvestment_BoundsAreInclusive(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	user := f.store.addUser("alice", d("5000"))
	schema := f.store.addSchema(starterSchema())
	actor := domain.UserActor(user.ID)

	_, err := f.investments.CreateInvestment(ctx, actor, user.ID, schema.ID, d("100"))
	assert.NoError(t, err)
	_, err = f.investments.CreateInvestment(ctx, actor, user.ID, schema.ID, d("1000"))
	assert.NoError(t, err)

	_, err = f.investments.CreateInvestment(ctx, actor, user.ID, schema.ID, d("99.99999999"))
	assert.ErrorIs(t, err, util.ErrAmountOutOfRange)
	_, err = f.investments.CreateInvestment(ctx, actor, user.ID, schema.ID, d("1000.00000001"))
	assert.ErrorIs(t, err, util.ErrAmountOutOfRange)

	assert.True(t, f.store.user(user.ID).Balance.Equal(d("3900")))
}

func TestInvestmentService_CreateInvestment_Rejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	user := f.store.addUser("alice", d("50"))
	active := f.store.addSchema(starterSchema())
	inactive := starterSchema()
	inactive.Status = domain.SchemaInactive
	closed := f.store.addSchema(inactive)
	actor := domain.UserActor(user.ID)

	_, err := f.investments.CreateInvestment(ctx, actor, user.ID, closed.ID, d("100"))
	assert.ErrorIs(t, err, util.ErrSchemaUnavailable)

	_, err = f.investments.CreateInvestment(ctx, actor, user.ID, 4242, d("100"))
	assert.ErrorIs(t, err, util.ErrSchemaUnavailable)

	_, err = f.investments.CreateInvestment(ctx, actor, user.ID, active.ID, d("0"))
	assert.ErrorIs(t, err, util.ErrInvalidInput)

	_, err = f.investments.CreateInvestment(ctx, actor, user.ID, active.ID, d("100"))
	assert.ErrorIs(t, err, util.ErrInsufficientFunds)

	stored := f.store.user(user.ID)
	assert.True(t, stored.Balance.Equal(d("50")))
	assert.True(t, stored.TotalInvested.IsZero())
	assert.Empty(t, f.store.entries(user.ID, domain.TransactionTypeInvestment))
}

func TestInvestmentService_CreateInvestment_PlatformFee(t *testing.T) {
	ctx := context.Background()
	cfg := domain.DefaultSettings()
	cfg.PlatformFeeRate = d("1")
	f := newFixtureWith(cfg)
	user := f.store.addUser("alice", d("500"))
	schema := f.store.addSchema(starterSchema())

	inv, err := f.investments.CreateInvestment(ctx, domain.UserActor(user.ID), user.ID, schema.ID, d("500"))
	require.NoError(t, err)

	assert.True(t, inv.InvestAmount.Equal(d("495")))
	assert.True(t, inv.TotalProfitAmount.Equal(d("297")))
	assert.True(t, f.store.user(user.ID).Balance.IsZero())

	entry := f.store.entries(user.ID, domain.TransactionTypeInvestment)[0]
	assert.True(t, entry.Fee.Equal(d("5")))
	assert.True(t, entry.NetAmount.Equal(d("495")))
}

func TestInvestmentService_CreateInvestment_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	user := f.store.addUser("alice", d("500"))
	schema := f.store.addSchema(starterSchema())
	before := f.store.txCount()

	f.store.failOn("CreateInvestment", errors.New("insert failed"))
	_, err := f.investments.CreateInvestment(ctx, domain.UserActor(user.ID), user.ID, schema.ID, d("500"))

	require.Error(t, err)
	assert.Equal(t, util.KindDependency, util.KindOf(err))
	stored := f.store.user(user.ID)
	assert.True(t, stored.Balance.Equal(d("500")))
	assert.True(t, stored.TotalInvested.IsZero())
	assert.Equal(t, before, f.store.txCount())
	assert.Empty(t, f.sink.kinds())
}

func TestInvestmentService_ReferralCommission(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	referrer := f.store.addUser("alice", d("0"))
	investor, err := f.users.Register(ctx, domain.SystemActor, "bob", "bob@example.com", referrer.ReferralCode)
	require.NoError(t, err)
	fundUser(t, f, investor.ID, d("1000"))
	schema := f.store.addSchema(domain.InvestmentSchema{
		Name: "Gold", MinAmount: d("500"), MaxAmount: d("5000"), DailyRate: d("1.5"), DurationDays: 10,
	})

	inv, err := f.investments.CreateInvestment(ctx, domain.UserActor(investor.ID), investor.ID, schema.ID, d("1000"))
	require.NoError(t, err)

	stored := f.store.user(referrer.ID)
	assert.True(t, stored.Balance.Equal(d("50")))
	assert.True(t, stored.TotalEarned.Equal(d("50")))

	commissions := f.store.entries(referrer.ID, domain.TransactionTypeReferral)
	require.Len(t, commissions, 1)
	require.NotNil(t, commissions[0].RelatedID)
	assert.Equal(t, investor.ID, *commissions[0].RelatedID)

	referrals, err := f.referrals.ListReferrals(ctx, referrer.ID)
	require.NoError(t, err)
	require.Len(t, referrals, 1)
	assert.True(t, referrals[0].TotalEarned.Equal(d("50")))

	assert.Equal(t, domain.InvestmentActive, inv.Status)
	assert.True(t, f.conserved(referrer.ID))
	assert.True(t, f.conserved(investor.ID))
}

func TestInvestmentService_ReferralFailureDoesNotUndoInvestment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	referrer := f.store.addUser("alice", d("0"))
	investor, err := f.users.Register(ctx, domain.SystemActor, "bob", "bob@example.com", referrer.ReferralCode)
	require.NoError(t, err)
	fundUser(t, f, investor.ID, d("1000"))
	schema := f.store.addSchema(starterSchema())

	f.store.failOn("GetReferral", errors.New("replica lag"))
	inv, err := f.investments.CreateInvestment(ctx, domain.UserActor(investor.ID), investor.ID, schema.ID, d("1000"))
	require.NoError(t, err)

	assert.Equal(t, domain.InvestmentActive, f.store.investment(inv.ID).Status)
	assert.True(t, f.store.user(investor.ID).Balance.IsZero())
	assert.True(t, f.store.user(referrer.ID).Balance.IsZero())
	assert.Empty(t, f.store.entries(referrer.ID, domain.TransactionTypeReferral))
}

func TestInvestmentService_CompleteInvestment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	user := f.store.addUser("alice", d("500"))
	schema := f.store.addSchema(starterSchema())
	inv, err := f.investments.CreateInvestment(ctx, domain.UserActor(user.ID), user.ID, schema.ID, d("500"))
	require.NoError(t, err)

	// Principal stays locked until every profit day is paid.
	_, err = f.investments.CompleteInvestment(ctx, domain.AdminActor(1), inv.ID)
	assert.ErrorIs(t, err, util.ErrInvalidStateTransition)
	assert.Equal(t, domain.InvestmentActive, f.store.investment(inv.ID).Status)
	assert.True(t, f.store.user(user.ID).Balance.IsZero())
	assert.Empty(t, f.store.entries(user.ID, domain.TransactionTypePrincipalReturn))

	f.store.updateInvestment(inv.ID, func(i *domain.Investment) { i.ProfitDaysPaid = 29 })
	_, err = f.investments.CompleteInvestment(ctx, domain.AdminActor(1), inv.ID)
	assert.ErrorIs(t, err, util.ErrInvalidStateTransition)

	f.store.updateInvestment(inv.ID, func(i *domain.Investment) { i.ProfitDaysPaid = i.NumberOfPeriod })
	done, err := f.investments.CompleteInvestment(ctx, domain.AdminActor(1), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvestmentCompleted, done.Status)
	assert.NotNil(t, done.CompletedAt)
	assert.True(t, f.store.user(user.ID).Balance.Equal(d("500")))

	_, err = f.investments.CompleteInvestment(ctx, domain.AdminActor(1), inv.ID)
	assert.ErrorIs(t, err, util.ErrNotActive)
	assert.True(t, f.store.user(user.ID).Balance.Equal(d("500")))
	assert.Len(t, f.store.entries(user.ID, domain.TransactionTypePrincipalReturn), 1)
	assert.True(t, f.conserved(user.ID))

	_, err = f.investments.CompleteInvestment(ctx, domain.AdminActor(1), 4242)
	assert.ErrorIs(t, err, util.ErrInvestmentNotFound)
}

func TestInvestmentService_Listings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	user := f.store.addUser("alice", d("1000"))
	schema := f.store.addSchema(starterSchema())
	inactive := starterSchema()
	inactive.Status = domain.SchemaInactive
	f.store.addSchema(inactive)

	for i := 0; i < 3; i++ {
		_, err := f.investments.CreateInvestment(ctx, domain.UserActor(user.ID), user.ID, schema.ID, d("100"))
		require.NoError(t, err)
	}

	list, err := f.investments.ListInvestments(ctx, user.ID, 2, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	active, err := f.investments.ListSchemas(ctx, true)
	require.NoError(t, err)
	assert.Len(t, active, 1)
	all, err := f.investments.ListSchemas(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

// fundUser credits amount through a completed manual deposit.
func fundUser(t *testing.T, f *fixture, userID int64, amount decimal.Decimal) {
	t.Helper()
	ctx := context.Background()
	method := f.store.addMethod(domain.DepositMethod{
		Name: "Bank transfer", Type: domain.DepositMethodManual, Currency: "USD",
		MinAmount: d("1"), MaxAmount: d("1000000"),
	})
	dep, err := f.deposits.CreateDeposit(ctx, domain.UserActor(userID), userID, method.ID, amount, domain.DepositExtra{})
	require.NoError(t, err)
	_, err = f.deposits.UpdateStatus(ctx, domain.AdminActor(1), dep.ID, domain.StatusCompleted, nil)
	require.NoError(t, err)
}
