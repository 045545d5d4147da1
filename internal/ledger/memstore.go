package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/model"
)

// MemStore is an in-memory Store used by tests and local development. A
// single mutex stands in for the database's row locks: an atomic unit holds
// it for its whole duration, and rollback restores a snapshot taken at unit
// start.
type MemStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	accounts     map[int64]*model.Account
	transactions map[int64]*model.Transaction
	accountSeq   int64
	txnSeq       int64
}

func NewMemStore() *MemStore {
	return &MemStore{
		state: &memState{
			accounts:     make(map[int64]*model.Account),
			transactions: make(map[int64]*model.Transaction),
		},
	}
}

func (m *MemStore) Atomically(ctx context.Context, fn func(Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.state.clone()
	if err := fn(&memUnit{state: m.state}); err != nil {
		m.state = snapshot
		return err
	}
	return nil
}

func (m *MemStore) CreateAccount(ctx context.Context, account *model.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createAccount(account)
}

func (m *MemStore) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.getAccount(id)
}

func (m *MemStore) ListAccountsByUser(ctx context.Context, userID int64) ([]*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.listAccountsByUser(userID)
}

func (m *MemStore) ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal) (*model.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.applyDelta(id, delta)
}

func (m *MemStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.createTransaction(txn)
}

func (m *MemStore) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.getTransaction(id)
}

func (m *MemStore) MarkReversed(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.markReversed(id)
}

func (m *MemStore) ListTransactionsByAccount(ctx context.Context, accountID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.listTransactions(func(t *model.Transaction) bool {
		return t.SourceAccountID == accountID ||
			(t.DestinationAccountID != nil && *t.DestinationAccountID == accountID)
	}, page, pageSize)
}

func (m *MemStore) ListTransactionsByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.listTransactions(func(t *model.Transaction) bool {
		return t.UserID == userID
	}, page, pageSize)
}

func (m *MemStore) ListSourceTransactionsBetween(ctx context.Context, accountID int64, from, to time.Time) ([]*model.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.listSourceBetween(accountID, from, to)
}

// memUnit is the view handed to an Atomically callback. The enclosing
// MemStore already holds the mutex, so it operates on state directly; a
// nested Atomically joins the outer unit.
type memUnit struct {
	state *memState
}

func (u *memUnit) Atomically(ctx context.Context, fn func(Store) error) error {
	return fn(u)
}

func (u *memUnit) CreateAccount(ctx context.Context, account *model.Account) error {
	return u.state.createAccount(account)
}

func (u *memUnit) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	return u.state.getAccount(id)
}

func (u *memUnit) ListAccountsByUser(ctx context.Context, userID int64) ([]*model.Account, error) {
	return u.state.listAccountsByUser(userID)
}

func (u *memUnit) ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal) (*model.Account, error) {
	return u.state.applyDelta(id, delta)
}

func (u *memUnit) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	return u.state.createTransaction(txn)
}

func (u *memUnit) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	return u.state.getTransaction(id)
}

func (u *memUnit) MarkReversed(ctx context.Context, id int64) error {
	return u.state.markReversed(id)
}

func (u *memUnit) ListTransactionsByAccount(ctx context.Context, accountID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	return u.state.listTransactions(func(t *model.Transaction) bool {
		return t.SourceAccountID == accountID ||
			(t.DestinationAccountID != nil && *t.DestinationAccountID == accountID)
	}, page, pageSize)
}

func (u *memUnit) ListTransactionsByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	return u.state.listTransactions(func(t *model.Transaction) bool {
		return t.UserID == userID
	}, page, pageSize)
}

func (u *memUnit) ListSourceTransactionsBetween(ctx context.Context, accountID int64, from, to time.Time) ([]*model.Transaction, error) {
	return u.state.listSourceBetween(accountID, from, to)
}

func (st *memState) clone() *memState {
	c := &memState{
		accounts:     make(map[int64]*model.Account, len(st.accounts)),
		transactions: make(map[int64]*model.Transaction, len(st.transactions)),
		accountSeq:   st.accountSeq,
		txnSeq:       st.txnSeq,
	}
	for id, a := range st.accounts {
		copied := *a
		c.accounts[id] = &copied
	}
	for id, t := range st.transactions {
		copied := *t
		c.transactions[id] = &copied
	}
	return c
}

func (st *memState) createAccount(account *model.Account) error {
	if account.ID == 0 {
		st.accountSeq++
		account.ID = st.accountSeq
	} else if account.ID > st.accountSeq {
		st.accountSeq = account.ID
	}
	now := time.Now()
	account.CreatedAt = now
	account.UpdatedAt = now

	copied := *account
	st.accounts[account.ID] = &copied
	return nil
}

func (st *memState) getAccount(id int64) (*model.Account, error) {
	a, ok := st.accounts[id]
	if !ok {
		return nil, Errf(KindAccountNotFound, "account %d not found", id)
	}
	copied := *a
	return &copied, nil
}

func (st *memState) listAccountsByUser(userID int64) ([]*model.Account, error) {
	var out []*model.Account
	for _, a := range st.accounts {
		if a.UserID == userID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (st *memState) applyDelta(id int64, delta decimal.Decimal) (*model.Account, error) {
	a, ok := st.accounts[id]
	if !ok {
		return nil, Errf(KindAccountNotFound, "account %d not found", id)
	}
	if a.Status != model.AccountStatusActive {
		return nil, Errf(KindAccountNotActive, "account %d is %s", id, a.Status)
	}
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return nil, Errf(KindInsufficientBalance, "account %d balance %s cannot absorb %s", id, a.Balance, delta)
	}
	a.Balance = next
	a.UpdatedAt = time.Now()

	copied := *a
	return &copied, nil
}

func (st *memState) createTransaction(txn *model.Transaction) error {
	for _, existing := range st.transactions {
		if existing.Reference == txn.Reference {
			return Errf(KindStorage, "duplicate transaction reference %s", txn.Reference)
		}
	}
	st.txnSeq++
	txn.ID = st.txnSeq
	txn.CreatedAt = time.Now()

	copied := *txn
	st.transactions[txn.ID] = &copied
	return nil
}

func (st *memState) getTransaction(id int64) (*model.Transaction, error) {
	t, ok := st.transactions[id]
	if !ok {
		return nil, Errf(KindTransactionNotFound, "transaction %d not found", id)
	}
	copied := *t
	return &copied, nil
}

func (st *memState) markReversed(id int64) error {
	t, ok := st.transactions[id]
	if !ok {
		return Errf(KindTransactionNotFound, "transaction %d not found", id)
	}
	if t.Reversed {
		return Errf(KindAlreadyReversed, "transaction %d is already reversed", id)
	}
	t.Reversed = true
	return nil
}

func (st *memState) listTransactions(match func(*model.Transaction) bool, page, pageSize int) ([]*model.Transaction, int64, error) {
	var all []*model.Transaction
	for _, t := range st.transactions {
		if match(t) {
			copied := *t
			all = append(all, &copied)
		}
	}
	// Newest first; ID breaks creation-time ties.
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID > all[j].ID
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	total := int64(len(all))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (st *memState) listSourceBetween(accountID int64, from, to time.Time) ([]*model.Transaction, error) {
	var out []*model.Transaction
	for _, t := range st.transactions {
		if t.SourceAccountID != accountID {
			continue
		}
		if t.CreatedAt.Before(from) || t.CreatedAt.After(to) {
			continue
		}
		copied := *t
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
