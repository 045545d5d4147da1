package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/ledger"
	"github.com/NICANORKYAMBA/bank-system-sub000/internal/model"
)

// GormStore is the Postgres-backed ledger store. Atomic units map to
// database transactions; per-account isolation comes from the row lock the
// conditional UPDATE in ApplyDelta takes at mutation time.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ ledger.Store = (*GormStore)(nil)

func (s *GormStore) Atomically(ctx context.Context, fn func(ledger.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) CreateAccount(ctx context.Context, account *model.Account) error {
	if err := s.db.WithContext(ctx).Create(account).Error; err != nil {
		return ledger.WrapStorage(err, "create account")
	}
	return nil
}

func (s *GormStore) GetAccount(ctx context.Context, id int64) (*model.Account, error) {
	var account model.Account
	err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.Errf(ledger.KindAccountNotFound, "account %d not found", id)
		}
		return nil, ledger.WrapStorage(err, "get account %d", id)
	}
	return &account, nil
}

func (s *GormStore) ListAccountsByUser(ctx context.Context, userID int64) ([]*model.Account, error) {
	var accounts []*model.Account
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&accounts).Error
	if err != nil {
		return nil, ledger.WrapStorage(err, "list accounts for user %d", userID)
	}
	return accounts, nil
}

// ApplyDelta mutates the balance with one conditional UPDATE. The WHERE
// clause re-checks active status and the non-negative invariant at the
// moment the row lock is taken, so a stale validation-time read can never
// overdraw the account. Zero rows affected is classified by re-reading the
// row under FOR UPDATE.
func (s *GormStore) ApplyDelta(ctx context.Context, id int64, delta decimal.Decimal) (*model.Account, error) {
	result := s.db.WithContext(ctx).
		Model(&model.Account{}).
		Where("id = ? AND status = ?", id, model.AccountStatusActive).
		Where("balance + ? >= 0", delta).
		Update("balance", gorm.Expr("balance + ?", delta))
	if result.Error != nil {
		return nil, ledger.WrapStorage(result.Error, "apply delta to account %d", id)
	}

	if result.RowsAffected == 0 {
		var account model.Account
		err := s.db.WithContext(ctx).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&account, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ledger.Errf(ledger.KindAccountNotFound, "account %d not found", id)
			}
			return nil, ledger.WrapStorage(err, "classify failed delta on account %d", id)
		}
		if account.Status != model.AccountStatusActive {
			return nil, ledger.Errf(ledger.KindAccountNotActive, "account %d is %s", id, account.Status)
		}
		return nil, ledger.Errf(ledger.KindInsufficientBalance, "account %d balance %s cannot absorb %s", id, account.Balance, delta)
	}

	var account model.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, ledger.WrapStorage(err, "reload account %d", id)
	}
	return &account, nil
}

func (s *GormStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		return ledger.WrapStorage(err, "create transaction %s", txn.Reference)
	}
	return nil
}

func (s *GormStore) GetTransaction(ctx context.Context, id int64) (*model.Transaction, error) {
	var txn model.Transaction
	err := s.db.WithContext(ctx).First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.Errf(ledger.KindTransactionNotFound, "transaction %d not found", id)
		}
		return nil, ledger.WrapStorage(err, "get transaction %d", id)
	}
	return &txn, nil
}

// MarkReversed flips the write-once reversed flag with a conditional
// UPDATE; the loser of two concurrent reversals sees zero rows affected.
func (s *GormStore) MarkReversed(ctx context.Context, id int64) error {
	result := s.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("id = ? AND reversed = ?", id, false).
		Update("reversed", true)
	if result.Error != nil {
		return ledger.WrapStorage(result.Error, "mark transaction %d reversed", id)
	}

	if result.RowsAffected == 0 {
		var txn model.Transaction
		err := s.db.WithContext(ctx).First(&txn, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ledger.Errf(ledger.KindTransactionNotFound, "transaction %d not found", id)
			}
			return ledger.WrapStorage(err, "classify reversal of transaction %d", id)
		}
		return ledger.Errf(ledger.KindAlreadyReversed, "transaction %d is already reversed", id)
	}
	return nil
}

func (s *GormStore) ListTransactionsByAccount(ctx context.Context, accountID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("source_account_id = ? OR destination_account_id = ?", accountID, accountID)
	return paginate(query, page, pageSize)
}

func (s *GormStore) ListTransactionsByUser(ctx context.Context, userID int64, page, pageSize int) ([]*model.Transaction, int64, error) {
	query := s.db.WithContext(ctx).
		Model(&model.Transaction{}).
		Where("user_id = ?", userID)
	return paginate(query, page, pageSize)
}

func (s *GormStore) ListSourceTransactionsBetween(ctx context.Context, accountID int64, from, to time.Time) ([]*model.Transaction, error) {
	var txns []*model.Transaction
	err := s.db.WithContext(ctx).
		Where("source_account_id = ? AND created_at BETWEEN ? AND ?", accountID, from, to).
		Order("created_at ASC, id ASC").
		Find(&txns).Error
	if err != nil {
		return nil, ledger.WrapStorage(err, "list statement entries for account %d", accountID)
	}
	return txns, nil
}

func paginate(query *gorm.DB, page, pageSize int) ([]*model.Transaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, ledger.WrapStorage(err, "count transactions")
	}

	var txns []*model.Transaction
	err := query.
		Order("created_at DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&txns).Error
	if err != nil {
		return nil, 0, ledger.WrapStorage(err, "list transactions")
	}
	return txns, total, nil
}
