package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/model"
)

func TestOpenAccount(t *testing.T) {
	store := NewMemStore()
	svc := NewAccountService(store)

	account, err := svc.Open(context.Background(), 7, model.CurrencyKES, decimal.NewFromInt(1000))
	require.NoError(t, err)

	assert.NotZero(t, account.ID)
	assert.Len(t, account.Number, 15)
	assert.Equal(t, model.AccountStatusActive, account.Status)
	assert.Equal(t, model.CurrencyKES, account.Currency)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(1000)))

	fetched, err := svc.Get(context.Background(), account.ID)
	require.NoError(t, err)
	assert.Equal(t, account.Number, fetched.Number)
}

func TestOpenAccountZeroBalance(t *testing.T) {
	svc := NewAccountService(NewMemStore())

	account, err := svc.Open(context.Background(), 7, model.CurrencyUSD, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, account.Balance.IsZero())
}

func TestOpenAccountRejections(t *testing.T) {
	svc := NewAccountService(NewMemStore())

	_, err := svc.Open(context.Background(), 7, "BTC", decimal.NewFromInt(100))
	assert.True(t, IsKind(err, KindCurrencyMismatch), "got %v", err)

	_, err = svc.Open(context.Background(), 7, model.CurrencyUSD, decimal.NewFromInt(-1))
	assert.True(t, IsKind(err, KindInvalidAmount), "got %v", err)
}

func TestListAccountsByUser(t *testing.T) {
	store := NewMemStore()
	svc := NewAccountService(store)

	_, err := svc.Open(context.Background(), 7, model.CurrencyUSD, decimal.Zero)
	require.NoError(t, err)
	_, err = svc.Open(context.Background(), 7, model.CurrencyEUR, decimal.Zero)
	require.NoError(t, err)
	_, err = svc.Open(context.Background(), 8, model.CurrencyUSD, decimal.Zero)
	require.NoError(t, err)

	mine, err := svc.ListByUser(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := svc.ListByUser(context.Background(), 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}
