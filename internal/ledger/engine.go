package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/model"
	"github.com/NICANORKYAMBA/bank-system-sub000/pkg/idgen"
)

// Minimum movement amounts (policy constants).
var (
	MinDepositAmount    = decimal.NewFromInt(10)
	MinWithdrawalAmount = decimal.NewFromInt(100)
	MinTransferAmount   = decimal.NewFromInt(100)
)

// Engine executes one money movement (deposit, withdrawal, transfer) or one
// reversal as an all-or-nothing unit: every balance delta plus the ledger
// entry insert commit together or not at all.
type Engine struct {
	store    Store
	locker   Locker   // optional
	notifier Notifier // optional
}

// NewEngine builds a transaction engine over the given store. locker and
// notifier may be nil.
func NewEngine(store Store, locker Locker, notifier Notifier) *Engine {
	return &Engine{
		store:    store,
		locker:   locker,
		notifier: notifier,
	}
}

// MovementRequest describes one requested money movement.
type MovementRequest struct {
	Type                 string
	Amount               decimal.Decimal
	SourceAccountID      int64
	DestinationAccountID *int64
	UserID               int64 // initiating user, must own the source account
	Description          string
}

// MovementResult is the committed outcome of a movement or reversal.
// DestinationBalanceAfter is nil for non-transfer movements.
type MovementResult struct {
	Transaction             *model.Transaction `json:"transaction"`
	SourceBalanceAfter      decimal.Decimal    `json:"source_balance_after"`
	DestinationBalanceAfter *decimal.Decimal   `json:"destination_balance_after,omitempty"`
}

// CreateMovement validates and executes one movement.
//
// Validation runs against a plain read and causes no mutation. The decisive
// checks (account active, balance non-negative) run again inside the atomic
// unit at ApplyDelta time, closing the gap between validation and mutation
// under concurrent requests.
func (e *Engine) CreateMovement(ctx context.Context, req *MovementRequest) (*MovementResult, error) {
	if err := validateAmount(req.Type, req.Amount); err != nil {
		return nil, err
	}

	source, err := e.store.GetAccount(ctx, req.SourceAccountID)
	if err != nil {
		return nil, err
	}
	if source.UserID != req.UserID {
		return nil, Errf(KindOwnerMismatch, "account %d is not owned by user %d", source.ID, req.UserID)
	}
	if source.Status != model.AccountStatusActive {
		return nil, Errf(KindAccountNotActive, "source account %d is %s", source.ID, source.Status)
	}

	var dest *model.Account
	if req.Type == model.TransactionTypeTransfer {
		if req.DestinationAccountID == nil {
			return nil, Errf(KindInvalidMovement, "transfer requires a destination account")
		}
		if *req.DestinationAccountID == source.ID {
			return nil, Errf(KindSameAccountTransfer, "source and destination accounts are the same")
		}
		dest, err = e.store.GetAccount(ctx, *req.DestinationAccountID)
		if err != nil {
			return nil, err
		}
		if dest.Status != model.AccountStatusActive {
			return nil, Errf(KindAccountNotActive, "destination account %d is %s", dest.ID, dest.Status)
		}
		if dest.Currency != source.Currency {
			return nil, Errf(KindCurrencyMismatch, "cannot transfer %s to a %s account", source.Currency, dest.Currency)
		}
	}

	// Advisory pre-check; the binding check is the non-negative guard at
	// apply time.
	if req.Type != model.TransactionTypeDeposit && source.Balance.LessThan(req.Amount) {
		return nil, Errf(KindInsufficientBalance, "account %d balance %s is below %s", source.ID, source.Balance, req.Amount)
	}

	if e.locker != nil {
		release, lockErr := e.locker.Acquire(ctx, movementLockKey(source.ID), uuid.NewString())
		if lockErr != nil {
			return nil, Errf(KindConflict, "account %d is busy", source.ID)
		}
		defer release(ctx)
	}

	var result *MovementResult
	err = e.store.Atomically(ctx, func(s Store) error {
		var sourceAfter, destAfter *model.Account
		var applyErr error

		switch req.Type {
		case model.TransactionTypeDeposit:
			sourceAfter, applyErr = s.ApplyDelta(ctx, source.ID, req.Amount)
		case model.TransactionTypeWithdrawal:
			sourceAfter, applyErr = s.ApplyDelta(ctx, source.ID, req.Amount.Neg())
		case model.TransactionTypeTransfer:
			sourceAfter, destAfter, applyErr = applyPair(ctx, s,
				accountDelta{source.ID, req.Amount.Neg()},
				accountDelta{dest.ID, req.Amount},
			)
		}
		if applyErr != nil {
			return applyErr
		}

		txn := &model.Transaction{
			Reference:            idgen.GenerateReference(),
			Type:                 req.Type,
			Amount:               req.Amount,
			Balance:              sourceAfter.Balance,
			SourceAccountID:      source.ID,
			DestinationAccountID: req.DestinationAccountID,
			UserID:               req.UserID,
			Status:               model.TransactionStatusCompleted,
			Description:          req.Description,
		}
		if createErr := s.CreateTransaction(ctx, txn); createErr != nil {
			return createErr
		}

		result = &MovementResult{
			Transaction:        txn,
			SourceBalanceAfter: sourceAfter.Balance,
		}
		if destAfter != nil {
			result.DestinationBalanceAfter = &destAfter.Balance
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifyCommitted(result.Transaction)
	return result, nil
}

// ReverseMovement undoes a prior transfer: it moves the amount back from
// the original destination to the original source, flips the original
// entry's reversed flag and records a new transfer entry — all in one
// atomic unit. Only transfers are reversible; a second reversal of the same
// id fails with AlreadyReversed.
func (e *Engine) ReverseMovement(ctx context.Context, transactionID int64) (*MovementResult, error) {
	orig, err := e.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if orig.Type != model.TransactionTypeTransfer {
		return nil, Errf(KindNotReversible, "%s transactions cannot be reversed", orig.Type)
	}
	if orig.Reversed {
		return nil, Errf(KindAlreadyReversed, "transaction %d is already reversed", orig.ID)
	}

	if e.locker != nil {
		release, lockErr := e.locker.Acquire(ctx, reversalLockKey(orig.ID), uuid.NewString())
		if lockErr != nil {
			return nil, Errf(KindConflict, "transaction %d reversal in progress", orig.ID)
		}
		defer release(ctx)
	}

	// The reversal runs as a transfer from the original destination back to
	// the original source.
	revSourceID := *orig.DestinationAccountID
	revDestID := orig.SourceAccountID

	var result *MovementResult
	err = e.store.Atomically(ctx, func(s Store) error {
		// Flip first: the conditional update serializes concurrent
		// reversals of the same entry inside the unit.
		if markErr := s.MarkReversed(ctx, orig.ID); markErr != nil {
			return markErr
		}

		sourceAfter, destAfter, applyErr := applyPair(ctx, s,
			accountDelta{revSourceID, orig.Amount.Neg()},
			accountDelta{revDestID, orig.Amount},
		)
		if applyErr != nil {
			return applyErr
		}

		txn := &model.Transaction{
			Reference:            idgen.GenerateReference(),
			Type:                 model.TransactionTypeTransfer,
			Amount:               orig.Amount,
			Balance:              sourceAfter.Balance,
			SourceAccountID:      revSourceID,
			DestinationAccountID: &revDestID,
			UserID:               orig.UserID,
			Status:               model.TransactionStatusCompleted,
			Description:          fmt.Sprintf("reversal of %s", orig.Reference),
		}
		if createErr := s.CreateTransaction(ctx, txn); createErr != nil {
			return createErr
		}

		destBalance := destAfter.Balance
		result = &MovementResult{
			Transaction:             txn,
			SourceBalanceAfter:      sourceAfter.Balance,
			DestinationBalanceAfter: &destBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notifyCommitted(result.Transaction)
	return result, nil
}

// GetTransaction fetches one ledger entry by id.
func (e *Engine) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	return e.store.GetTransaction(ctx, id)
}

// ListByAccount returns entries where the account is source or destination,
// newest first.
func (e *Engine) ListByAccount(ctx context.Context, accountID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	if _, err := e.store.GetAccount(ctx, accountID); err != nil {
		return nil, 0, err
	}
	return e.store.ListTransactionsByAccount(ctx, accountID, page, pageSize)
}

// ListByUser returns entries initiated by the user, newest first.
func (e *Engine) ListByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	return e.store.ListTransactionsByUser(ctx, userID, page, pageSize)
}

// Statement is a date-ranged view over the movements initiated from one
// account, oldest first.
type Statement struct {
	AccountID      int64                `json:"account_id"`
	From           time.Time            `json:"from"`
	To             time.Time            `json:"to"`
	OpeningBalance decimal.Decimal      `json:"opening_balance"`
	ClosingBalance decimal.Decimal      `json:"closing_balance"`
	Entries        []*model.Transaction `json:"entries"`
}

// GetStatement builds the statement for [from, to]. Opening balance is the
// first entry's balance minus its amount; closing balance is the last
// entry's balance. An empty range reports the account's current balance for
// both.
func (e *Engine) GetStatement(ctx context.Context, accountID int64, from, to time.Time) (*Statement, error) {
	account, err := e.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	entries, err := e.store.ListSourceTransactionsBetween(ctx, accountID, from, to)
	if err != nil {
		return nil, err
	}

	st := &Statement{
		AccountID: accountID,
		From:      from,
		To:        to,
		Entries:   entries,
	}
	if len(entries) == 0 {
		st.OpeningBalance = account.Balance
		st.ClosingBalance = account.Balance
		return st, nil
	}
	st.OpeningBalance = entries[0].Balance.Sub(entries[0].Amount)
	st.ClosingBalance = entries[len(entries)-1].Balance
	return st, nil
}

func (e *Engine) notifyCommitted(txn *model.Transaction) {
	if e.notifier != nil {
		e.notifier.MovementCompleted(txn)
	}
}

type accountDelta struct {
	accountID int64
	delta     decimal.Decimal
}

// applyPair applies two deltas in ascending account-id order, so two
// concurrent transfers between the same pair of accounts in opposite
// directions cannot form a lock cycle. Final balances do not depend on the
// order. Returns the updated rows keyed to the first/second argument.
func applyPair(ctx context.Context, s Store, first, second accountDelta) (*model.Account, *model.Account, error) {
	ordered := []accountDelta{first, second}
	if ordered[1].accountID < ordered[0].accountID {
		ordered[0], ordered[1] = ordered[1], ordered[0]
	}

	updated := make(map[int64]*model.Account, 2)
	for _, d := range ordered {
		account, err := s.ApplyDelta(ctx, d.accountID, d.delta)
		if err != nil {
			return nil, nil, err
		}
		updated[d.accountID] = account
	}
	return updated[first.accountID], updated[second.accountID], nil
}

func validateAmount(movementType string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return Errf(KindInvalidAmount, "amount must be positive, got %s", amount)
	}

	var threshold decimal.Decimal
	switch movementType {
	case model.TransactionTypeDeposit:
		threshold = MinDepositAmount
	case model.TransactionTypeWithdrawal:
		threshold = MinWithdrawalAmount
	case model.TransactionTypeTransfer:
		threshold = MinTransferAmount
	default:
		return Errf(KindInvalidMovement, "unknown movement type %q", movementType)
	}
	if amount.LessThan(threshold) {
		return Errf(KindInvalidAmount, "minimum %s amount is %s, got %s", movementType, threshold, amount)
	}
	return nil
}

func movementLockKey(accountID int64) string {
	return fmt.Sprintf("movement:lock:account:%d", accountID)
}

func reversalLockKey(transactionID int64) string {
	return fmt.Sprintf("reversal:lock:transaction:%d", transactionID)
}
