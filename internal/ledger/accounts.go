package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/model"
	"github.com/NICANORKYAMBA/bank-system-sub000/pkg/idgen"
)

// AccountService owns account lifecycle concerns that sit outside the
// transaction engine: opening accounts and serving account reads. Balance
// mutation stays with the engine.
type AccountService struct {
	store Store
}

func NewAccountService(store Store) *AccountService {
	return &AccountService{store: store}
}

// Open creates an active account with a fresh 15-digit account number.
func (s *AccountService) Open(ctx context.Context, userID int64, currency string, openingBalance decimal.Decimal) (*model.Account, error) {
	if !model.ValidCurrency(currency) {
		return nil, Errf(KindCurrencyMismatch, "unsupported currency %q", currency)
	}
	if openingBalance.IsNegative() {
		return nil, Errf(KindInvalidAmount, "opening balance cannot be negative, got %s", openingBalance)
	}

	account := &model.Account{
		Number:   idgen.GenerateAccountNumber(),
		UserID:   userID,
		Balance:  openingBalance,
		Currency: currency,
		Status:   model.AccountStatusActive,
	}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

func (s *AccountService) Get(ctx context.Context, id int64) (*model.Account, error) {
	return s.store.GetAccount(ctx, id)
}

func (s *AccountService) ListByUser(ctx context.Context, userID int64) ([]*model.Account, error) {
	return s.store.ListAccountsByUser(ctx, userID)
}
