package ledger

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := Errf(KindInsufficientBalance, "balance 50 is below 100")
	wrapped := fmt.Errorf("create movement: %w", err)

	assert.Equal(t, KindInsufficientBalance, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindInsufficientBalance))
	assert.False(t, IsKind(wrapped, KindInvalidAmount))
}

func TestKindOfUntaggedError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestWrapStorageKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapStorage(cause, "update account %d", 3)

	assert.Equal(t, KindStorage, KindOf(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "update account 3")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestErrorMessageCarriesKindName(t *testing.T) {
	err := Errf(KindAlreadyReversed, "transaction 9 is already reversed")
	assert.Contains(t, err.Error(), "AlreadyReversed")
}
