package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NICANORKYAMBA/bank-system-sub000/internal/model"
)

func TestMemStorePagination(t *testing.T) {
	store := NewMemStore()
	account := seedAccount(t, store, 1, 0, model.CurrencyUSD, model.AccountStatusActive)

	for i := 0; i < 7; i++ {
		err := store.CreateTransaction(context.Background(), &model.Transaction{
			Reference:       fmt.Sprintf("TXN-page-%d", i),
			Type:            model.TransactionTypeDeposit,
			Amount:          decimal.NewFromInt(100),
			Balance:         decimal.NewFromInt(int64(100 * (i + 1))),
			SourceAccountID: account.ID,
			UserID:          1,
			Status:          model.TransactionStatusCompleted,
		})
		require.NoError(t, err)
	}

	first, total, err := store.ListTransactionsByAccount(context.Background(), account.ID, 1, 3)
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	require.Len(t, first, 3)

	second, _, err := store.ListTransactionsByAccount(context.Background(), account.ID, 2, 3)
	require.NoError(t, err)
	require.Len(t, second, 3)
	assert.Greater(t, first[0].ID, second[0].ID, "newest entries come first")

	third, _, err := store.ListTransactionsByAccount(context.Background(), account.ID, 3, 3)
	require.NoError(t, err)
	assert.Len(t, third, 1)

	past, _, err := store.ListTransactionsByAccount(context.Background(), account.ID, 4, 3)
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestMemStoreDuplicateReference(t *testing.T) {
	store := NewMemStore()
	account := seedAccount(t, store, 1, 0, model.CurrencyUSD, model.AccountStatusActive)

	entry := func() *model.Transaction {
		return &model.Transaction{
			Reference:       "TXN-dup",
			Type:            model.TransactionTypeDeposit,
			Amount:          decimal.NewFromInt(100),
			Balance:         decimal.NewFromInt(100),
			SourceAccountID: account.ID,
			UserID:          1,
			Status:          model.TransactionStatusCompleted,
		}
	}
	require.NoError(t, store.CreateTransaction(context.Background(), entry()))

	err := store.CreateTransaction(context.Background(), entry())
	assert.True(t, IsKind(err, KindStorage), "got %v", err)
}
