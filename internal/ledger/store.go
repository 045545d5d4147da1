package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/model"
)

// Store is the account ledger store: durable accounts and ledger entries
// with atomic, isolated read-modify-write access to balances.
//
// Every balance mutation for one movement must run inside a single
// Atomically call together with the ledger entry insert; ApplyDelta takes
// the row lock at mutation time, so the non-negative invariant is enforced
// when the balance changes, not only when it was last read.
type Store interface {
	// Atomically runs fn inside one atomic unit. The Store passed to fn is
	// scoped to that unit; if fn returns an error every mutation made
	// through it is rolled back.
	Atomically(ctx context.Context, fn func(Store) error) error

	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id int64) (*model.Account, error)
	ListAccountsByUser(ctx context.Context, userID int64) ([]*model.Account, error)

	// ApplyDelta adds the signed delta to the account balance and returns
	// the updated row. It fails with KindAccountNotFound,
	// KindAccountNotActive or KindInsufficientBalance — re-checked at apply
	// time, under the row lock — leaving the balance untouched.
	ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal) (*model.Account, error)

	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransaction(ctx context.Context, id int64) (*model.Transaction, error)

	// MarkReversed flips the write-once reversed flag. A transaction whose
	// flag is already set fails with KindAlreadyReversed; two concurrent
	// reversals of the same id serialize on the row and the loser gets that
	// error.
	MarkReversed(ctx context.Context, id int64) error

	ListTransactionsByAccount(ctx context.Context, accountID int64, page, pageSize int) ([]*model.Transaction, int64, error)
	ListTransactionsByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.Transaction, int64, error)

	// ListSourceTransactionsBetween returns the entries whose source is the
	// given account, created inside [from, to], ordered by creation time
	// ascending. It feeds the account statement.
	ListSourceTransactionsBetween(ctx context.Context, accountID int64, from, to time.Time) ([]*model.Transaction, error)
}

// Locker serializes hot paths across processes before the atomic unit runs.
// A nil Locker disables locking; correctness never depends on it — the row
// locks inside the atomic unit do — it only sheds duplicate submissions
// early, before they reach the database.
type Locker interface {
	// Acquire takes the lock for key on behalf of owner and returns the
	// release function. Failing to acquire is a KindConflict condition.
	Acquire(ctx context.Context, key, owner string) (release func(context.Context), err error)
}

// Notifier is told about committed movements. Implementations must not
// block and must never fail the already-committed result.
type Notifier interface {
	MovementCompleted(txn *model.Transaction)
}
