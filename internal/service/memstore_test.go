// internal/service/memstore_test.go
package service

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"yieldledger/internal/audit"
	"yieldledger/internal/domain"
	"yieldledger/internal/repository"
	"yieldledger/internal/settings"
	"yieldledger/internal/util"
	"yieldledger/pkg/db"

	"github.com/shopspring/decimal"
)

// noopExecutor satisfies repository.DBExecutor; the in-memory repositories
// never touch it.
type noopExecutor struct{}

func (noopExecutor) GetContext(context.Context, interface{}, string, ...interface{}) error {
	return nil
}

func (noopExecutor) SelectContext(context.Context, interface{}, string, ...interface{}) error {
	return nil
}

func (noopExecutor) ExecContext(context.Context, string, ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (noopExecutor) QueryRowContext(context.Context, string, ...interface{}) *sql.Row {
	return &sql.Row{}
}

type memData struct {
	nextID      int64
	users       map[int64]domain.User
	txs         map[int64]domain.Transaction
	schemas     map[int64]domain.InvestmentSchema
	investments map[int64]domain.Investment
	profits     map[int64]domain.Profit
	methods     map[int64]domain.DepositMethod
	deposits    map[int64]domain.Deposit
	withdrawals map[int64]domain.Withdrawal
	referrals   map[int64]domain.Referral
	settings    map[string]string
}

func newMemData() *memData {
	return &memData{
		users:       map[int64]domain.User{},
		txs:         map[int64]domain.Transaction{},
		schemas:     map[int64]domain.InvestmentSchema{},
		investments: map[int64]domain.Investment{},
		profits:     map[int64]domain.Profit{},
		methods:     map[int64]domain.DepositMethod{},
		deposits:    map[int64]domain.Deposit{},
		withdrawals: map[int64]domain.Withdrawal{},
		referrals:   map[int64]domain.Referral{},
		settings:    map[string]string{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *memData) clone() *memData {
	return &memData{
		nextID:      d.nextID,
		users:       cloneMap(d.users),
		txs:         cloneMap(d.txs),
		schemas:     cloneMap(d.schemas),
		investments: cloneMap(d.investments),
		profits:     cloneMap(d.profits),
		methods:     cloneMap(d.methods),
		deposits:    cloneMap(d.deposits),
		withdrawals: cloneMap(d.withdrawals),
		referrals:   cloneMap(d.referrals),
		settings:    cloneMap(d.settings),
	}
}

// memStore is an in-memory implementation of every repository interface.
// Units of work are serialised by txLock; a rollback restores the snapshot
// taken at begin.
type memStore struct {
	mu     sync.Mutex
	txLock sync.Mutex
	data   *memData
	fail   map[string]error
}

func newMemStore() *memStore {
	return &memStore{data: newMemData(), fail: map[string]error{}}
}

type memTx struct {
	noopExecutor
	store    *memStore
	snapshot *memData
	done     bool
}

func (t *memTx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.txLock.Unlock()
	return nil
}

func (t *memTx) Rollback() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	t.store.mu.Lock()
	t.store.data = t.snapshot
	t.store.mu.Unlock()
	t.store.txLock.Unlock()
	return nil
}

func (s *memStore) beginTx(ctx context.Context, _ db.DBTxBeginner) (db.TxController, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.txLock.Lock()
	s.mu.Lock()
	snapshot := s.data.clone()
	s.mu.Unlock()
	return &memTx{store: s, snapshot: snapshot}, nil
}

func (s *memStore) unitOfWork() *db.UnitOfWork {
	return db.NewUnitOfWork(nil, s.beginTx, db.CommitTx, db.RollbackTx)
}

func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[op] = err
}

// lock acquires the data mutex and returns the injected failure for op.
func (s *memStore) lock(op string) error {
	s.mu.Lock()
	return s.fail[op]
}

func (s *memStore) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

// --- seeding helpers ---

func (s *memStore) addUser(username string, balance decimal.Decimal) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.NewUser(username, username+"@example.com", "REF"+strings.ToUpper(username), nil)
	u.ID = s.id()
	u.Balance = balance
	s.data.users[u.ID] = *u
	if balance.IsPositive() {
		// Opening balances are journaled so the store reconciles.
		tx := domain.NewTransaction(u.ID, domain.TransactionTypeDeposit, balance, "USD", domain.StatusCompleted)
		tx.ID = s.id()
		tx.NetAmount = balance
		tx.BalanceEffect = balance
		tx.ReferenceID = NewReference(tx.Type, time.Now())
		s.data.txs[tx.ID] = *tx
	}
	return *u
}

func (s *memStore) addSchema(schema domain.InvestmentSchema) domain.InvestmentSchema {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema.ID = s.id()
	if schema.Status == "" {
		schema.Status = domain.SchemaActive
	}
	s.data.schemas[schema.ID] = schema
	return schema
}

func (s *memStore) addMethod(method domain.DepositMethod) domain.DepositMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	method.ID = s.id()
	if method.Status == "" {
		method.Status = domain.SchemaActive
	}
	s.data.methods[method.ID] = method
	return method
}

func (s *memStore) user(id int64) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.users[id]
}

func (s *memStore) investment(id int64) domain.Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.investments[id]
}

// updateInvestment edits a stored investment in place.
func (s *memStore) updateInvestment(id int64, fn func(inv *domain.Investment)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.data.investments[id]
	fn(&inv)
	s.data.investments[id] = inv
}

func (s *memStore) entries(userID int64, txType domain.TransactionType) []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for _, t := range s.data.txs {
		if t.UserID == userID && (txType == "" || t.Type == txType) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) txCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.txs)
}

// --- UserRepository ---

func (s *memStore) CreateUser(_ context.Context, _ repository.DBExecutor, user *domain.User) error {
	if err := s.lock("CreateUser"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Username == user.Username || u.ReferralCode == user.ReferralCode {
			return util.ErrDuplicateEntry
		}
	}
	user.ID = s.id()
	s.data.users[user.ID] = *user
	return nil
}

func (s *memStore) GetUserByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.User, error) {
	if err := s.lock("GetUserByID"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	u, ok := s.data.users[id]
	if !ok {
		return nil, util.ErrUserNotFound
	}
	return &u, nil
}

func (s *memStore) GetUserByUsername(_ context.Context, _ repository.DBExecutor, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (s *memStore) GetUserByReferralCode(_ context.Context, _ repository.DBExecutor, code string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.data.users {
		if u.ReferralCode == code {
			return &u, nil
		}
	}
	return nil, util.ErrUserNotFound
}

func (s *memStore) AdjustBalance(_ context.Context, _ repository.DBExecutor, userID int64, field domain.BalanceField, delta decimal.Decimal) (decimal.Decimal, error) {
	if err := s.lock("AdjustBalance"); err != nil {
		s.mu.Unlock()
		return decimal.Zero, err
	}
	defer s.mu.Unlock()
	u, ok := s.data.users[userID]
	if !ok {
		return decimal.Zero, util.ErrUserNotFound
	}
	next := u.FieldValue(field).Add(delta)
	if next.IsNegative() {
		return decimal.Zero, util.ErrInsufficientFunds
	}
	switch field {
	case domain.FieldLockedBalance:
		u.LockedBalance = next
	case domain.FieldBonusBalance:
		u.BonusBalance = next
	default:
		u.Balance = next
	}
	s.data.users[userID] = u
	return next, nil
}

func (s *memStore) IncrementAggregate(_ context.Context, _ repository.DBExecutor, userID int64, aggregate domain.Aggregate, delta decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.data.users[userID]
	if !ok {
		return util.ErrUserNotFound
	}
	switch aggregate {
	case domain.AggregateInvested:
		u.TotalInvested = u.TotalInvested.Add(delta)
	case domain.AggregateWithdrawn:
		u.TotalWithdrawn = u.TotalWithdrawn.Add(delta)
	case domain.AggregateEarned:
		u.TotalEarned = u.TotalEarned.Add(delta)
	default:
		return util.ErrInvalidInput
	}
	s.data.users[userID] = u
	return nil
}

// --- TransactionRepository ---

func (s *memStore) CreateTransaction(_ context.Context, _ repository.DBExecutor, t *domain.Transaction) error {
	if err := s.lock("CreateTransaction"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	for _, existing := range s.data.txs {
		if existing.ReferenceID == t.ReferenceID {
			return util.ErrDuplicateEntry
		}
	}
	t.ID = s.id()
	s.data.txs[t.ID] = *t
	return nil
}

func (s *memStore) GetTransactionByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.txs[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return &t, nil
}

func statusIn(status domain.TransactionStatus, from []domain.TransactionStatus) bool {
	for _, f := range from {
		if f == status {
			return true
		}
	}
	return false
}

func (s *memStore) UpdateTransactionStatus(_ context.Context, _ repository.DBExecutor, id int64, update repository.StatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.data.txs[id]
	if !ok || !statusIn(t.Status, update.From) {
		return util.ErrInvalidStateTransition
	}
	t.Status = update.To
	if update.BalanceEffect != nil {
		t.BalanceEffect = *update.BalanceEffect
	}
	if update.AdminNote != nil {
		t.AdminNote = update.AdminNote
	}
	processed := update.ProcessedAt
	t.ProcessedAt = &processed
	s.data.txs[id] = t
	return nil
}

func (s *memStore) GetTransactionsByUserID(_ context.Context, _ repository.DBExecutor, userID int64, limit, offset int) ([]domain.Transaction, int64, error) {
	all := s.entries(userID, "")
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return []domain.Transaction{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (s *memStore) SumBalanceEffect(_ context.Context, _ repository.DBExecutor, userID int64, field domain.BalanceField) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, t := range s.entries(userID, "") {
		if t.BalanceField == field {
			sum = sum.Add(t.BalanceEffect)
		}
	}
	return sum, nil
}

// --- InvestmentRepository ---

func (s *memStore) GetSchemaByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.InvestmentSchema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	schema, ok := s.data.schemas[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return &schema, nil
}

func (s *memStore) ListSchemas(_ context.Context, _ repository.DBExecutor, activeOnly bool) ([]domain.InvestmentSchema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.InvestmentSchema{}
	for _, schema := range s.data.schemas {
		if !activeOnly || schema.Status == domain.SchemaActive {
			out = append(out, schema)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) CreateInvestment(_ context.Context, _ repository.DBExecutor, inv *domain.Investment) error {
	if err := s.lock("CreateInvestment"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	inv.ID = s.id()
	s.data.investments[inv.ID] = *inv
	return nil
}

func (s *memStore) GetInvestmentByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.data.investments[id]
	if !ok {
		return nil, util.ErrInvestmentNotFound
	}
	return &inv, nil
}

func (s *memStore) ListInvestmentsByUserID(_ context.Context, _ repository.DBExecutor, userID int64, limit, offset int) ([]domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Investment{}
	for _, inv := range s.data.investments {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return []domain.Investment{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (s *memStore) ListDueInvestments(_ context.Context, _ repository.DBExecutor, now time.Time, limit int) ([]domain.Investment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Investment{}
	for _, inv := range s.data.investments {
		if inv.IsDue(now) {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NextProfitTime.Equal(out[j].NextProfitTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].NextProfitTime.Before(out[j].NextProfitTime)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) AdvanceProfitSchedule(_ context.Context, _ repository.DBExecutor, id int64, adv repository.ProfitAdvance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.data.investments[id]
	if !ok || !inv.IsDue(adv.Now) || inv.ProfitDaysPaid != adv.ExpectedDaysPaid {
		return util.ErrConcurrencyConflict
	}
	inv.ProfitDaysPaid++
	inv.PaidProfit = inv.PaidProfit.Add(adv.Profit)
	now := adv.Now
	inv.LastProfitTime = &now
	inv.NextProfitTime = adv.Next
	inv.UpdatedAt = adv.Now
	s.data.investments[id] = inv
	return nil
}

func (s *memStore) CompleteInvestment(_ context.Context, _ repository.DBExecutor, id int64, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.data.investments[id]
	if !ok || inv.Status != domain.InvestmentActive {
		return util.ErrNotActive
	}
	inv.Status = domain.InvestmentCompleted
	inv.CompletedAt = &now
	s.data.investments[id] = inv
	return nil
}

func (s *memStore) CreateProfit(_ context.Context, _ repository.DBExecutor, p *domain.Profit) error {
	if err := s.lock("CreateProfit"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	for _, existing := range s.data.profits {
		if existing.InvestmentID == p.InvestmentID && existing.ProfitDay == p.ProfitDay {
			return util.ErrDuplicateEntry
		}
	}
	p.ID = s.id()
	s.data.profits[p.ID] = *p
	return nil
}

func (s *memStore) ListProfitsByInvestmentID(_ context.Context, _ repository.DBExecutor, investmentID int64) ([]domain.Profit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Profit{}
	for _, p := range s.data.profits {
		if p.InvestmentID == investmentID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProfitDay < out[j].ProfitDay })
	return out, nil
}

// --- DepositRepository ---

func (s *memStore) GetMethodByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.DepositMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.data.methods[id]
	if !ok {
		return nil, util.ErrNotFound
	}
	return &m, nil
}

func (s *memStore) ListMethods(_ context.Context, _ repository.DBExecutor, activeOnly bool) ([]domain.DepositMethod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.DepositMethod{}
	for _, m := range s.data.methods {
		if !activeOnly || m.Status == domain.SchemaActive {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) CreateDeposit(_ context.Context, _ repository.DBExecutor, d *domain.Deposit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.id()
	s.data.deposits[d.ID] = *d
	return nil
}

func (s *memStore) GetDepositByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data.deposits[id]
	if !ok {
		return nil, util.ErrDepositNotFound
	}
	return &d, nil
}

func (s *memStore) UpdateDepositStatus(_ context.Context, _ repository.DBExecutor, id int64, update repository.PaymentStatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.data.deposits[id]
	if !ok || !statusIn(d.Status, update.From) {
		return util.ErrInvalidStateTransition
	}
	d.Status = update.To
	if update.ProcessedBy != nil {
		d.ProcessedBy = update.ProcessedBy
	}
	if update.Reference != nil {
		d.GatewayTransactionID = update.Reference
	}
	processed := update.ProcessedAt
	d.ProcessedAt = &processed
	s.data.deposits[id] = d
	return nil
}

func (s *memStore) ListExpiredPending(_ context.Context, _ repository.DBExecutor, now time.Time, limit int) ([]domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Deposit{}
	for _, d := range s.data.deposits {
		if d.Status == domain.StatusPending && d.ExpiresAt != nil && !d.ExpiresAt.After(now) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *memStore) ListDepositsByUserID(_ context.Context, _ repository.DBExecutor, userID int64, _, _ int) ([]domain.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Deposit{}
	for _, d := range s.data.deposits {
		if d.UserID == userID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memStore) deposit(id int64) domain.Deposit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.deposits[id]
}

// --- WithdrawalRepository ---

func (s *memStore) CreateWithdrawal(_ context.Context, _ repository.DBExecutor, w *domain.Withdrawal) error {
	if err := s.lock("CreateWithdrawal"); err != nil {
		s.mu.Unlock()
		return err
	}
	defer s.mu.Unlock()
	w.ID = s.id()
	s.data.withdrawals[w.ID] = *w
	return nil
}

func (s *memStore) GetWithdrawalByID(_ context.Context, _ repository.DBExecutor, id int64) (*domain.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.data.withdrawals[id]
	if !ok {
		return nil, util.ErrWithdrawalNotFound
	}
	return &w, nil
}

func (s *memStore) UpdateWithdrawalStatus(_ context.Context, _ repository.DBExecutor, id int64, update repository.PaymentStatusUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.data.withdrawals[id]
	if !ok || !statusIn(w.Status, update.From) {
		return util.ErrInvalidStateTransition
	}
	w.Status = update.To
	if update.ProcessedBy != nil {
		w.ProcessedBy = update.ProcessedBy
	}
	if update.Reference != nil {
		w.TransactionHash = update.Reference
	}
	processed := update.ProcessedAt
	w.ProcessedAt = &processed
	s.data.withdrawals[id] = w
	return nil
}

func (s *memStore) ListWithdrawalsByUserID(_ context.Context, _ repository.DBExecutor, userID int64, _, _ int) ([]domain.Withdrawal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Withdrawal{}
	for _, w := range s.data.withdrawals {
		if w.UserID == userID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *memStore) withdrawal(id int64) domain.Withdrawal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.withdrawals[id]
}

// --- ReferralRepository ---

func (s *memStore) CreateReferral(_ context.Context, _ repository.DBExecutor, r *domain.Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.referrals {
		if existing.ReferrerID == r.ReferrerID && existing.ReferredID == r.ReferredID {
			return util.ErrDuplicateEntry
		}
	}
	r.ID = s.id()
	s.data.referrals[r.ID] = *r
	return nil
}

func (s *memStore) GetReferral(_ context.Context, _ repository.DBExecutor, referrerID, referredID int64) (*domain.Referral, error) {
	if err := s.lock("GetReferral"); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	defer s.mu.Unlock()
	for _, r := range s.data.referrals {
		if r.ReferrerID == referrerID && r.ReferredID == referredID {
			return &r, nil
		}
	}
	return nil, util.ErrReferralNotFound
}

func (s *memStore) AddEarnings(_ context.Context, _ repository.DBExecutor, id int64, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.data.referrals[id]
	if !ok {
		return util.ErrReferralNotFound
	}
	r.TotalEarned = r.TotalEarned.Add(amount)
	s.data.referrals[id] = r
	return nil
}

func (s *memStore) ListReferralsByReferrer(_ context.Context, _ repository.DBExecutor, referrerID int64) ([]domain.Referral, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Referral{}
	for _, r := range s.data.referrals {
		if r.ReferrerID == referrerID {
			out = append(out, r)
		}
	}
	return out, nil
}

// --- StatsRepository ---

func (s *memStore) PlatformStats(_ context.Context, _ repository.DBExecutor) (*domain.PlatformStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &domain.PlatformStats{}
	for _, u := range s.data.users {
		stats.TotalUsers++
		stats.TotalBalance = stats.TotalBalance.Add(u.Balance)
		stats.TotalInvested = stats.TotalInvested.Add(u.TotalInvested)
		stats.TotalWithdrawn = stats.TotalWithdrawn.Add(u.TotalWithdrawn)
		stats.TotalEarned = stats.TotalEarned.Add(u.TotalEarned)
	}
	for _, inv := range s.data.investments {
		if inv.Status == domain.InvestmentActive {
			stats.ActiveInvestments++
			stats.ActivePrincipal = stats.ActivePrincipal.Add(inv.InvestAmount)
		}
	}
	for _, d := range s.data.deposits {
		if d.Status.IsOpen() {
			stats.PendingDeposits++
		}
	}
	for _, w := range s.data.withdrawals {
		if w.Status.IsOpen() {
			stats.PendingWithdrawals++
			stats.PendingWithdrawSum = stats.PendingWithdrawSum.Add(w.Amount)
		}
	}
	return stats, nil
}

// --- test fixture ---

// recordingSink keeps published audit events.
type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingSink) Publish(_ context.Context, e audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingSink) kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Kind)
	}
	return out
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	store       *memStore
	sink        *recordingSink
	clock       *fakeClock
	settings    domain.Settings
	journal     Journal
	ledger      Ledger
	referrals   ReferralService
	investments InvestmentService
	distributor ProfitDistributor
	deposits    DepositService
	withdrawals WithdrawalService
	users       UserService
	stats       StatsService
}

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func newFixture() *fixture {
	return newFixtureWith(domain.DefaultSettings())
}

func newFixtureWith(cfg domain.Settings) *fixture {
	store := newMemStore()
	uow := store.unitOfWork()
	sink := &recordingSink{}
	clock := &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	provider := settings.Static(cfg)
	var exec repository.DBExecutor = noopExecutor{}

	j := NewJournal(uow, exec, store, nil, testLogger)
	j.(*journal).now = clock.Now
	l := NewLedger(uow, exec, store, store, j, sink, nil, testLogger)
	l.(*ledger).now = clock.Now
	r := NewReferralService(uow, exec, store, store, l, provider, sink, nil, testLogger)
	r.(*referralService).now = clock.Now
	inv := NewInvestmentService(uow, exec, store, l, r, provider, sink, nil, testLogger)
	inv.(*investmentService).now = clock.Now
	dist := NewProfitDistributor(uow, exec, store, inv, l, provider, sink, nil, testLogger, 0)
	dist.(*profitDistributor).now = clock.Now
	dep := NewDepositService(uow, exec, store, l, j, nil, sink, nil, testLogger, 0)
	dep.(*depositService).now = clock.Now
	wd := NewWithdrawalService(uow, exec, store, l, j, provider, sink, nil, testLogger)
	wd.(*withdrawalService).now = clock.Now
	users := NewUserService(uow, exec, store, r, l, provider, sink, testLogger)
	users.(*userService).now = clock.Now

	return &fixture{
		store:       store,
		sink:        sink,
		clock:       clock,
		settings:    cfg,
		journal:     j,
		ledger:      l,
		referrals:   r,
		investments: inv,
		distributor: dist,
		deposits:    dep,
		withdrawals: wd,
		users:       users,
		stats:       NewStatsService(exec, store, l),
	}
}

// conserved reports whether stored balances equal the journal sums.
func (f *fixture) conserved(userID int64) bool {
	rec, err := f.ledger.Reconcile(context.Background(), userID)
	return err == nil && rec.Consistent
}
