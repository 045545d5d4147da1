package ledger

import (
	"errors"
	"fmt"
)

// Kind is the closed enumeration of failure kinds surfaced by the ledger
// store and the transaction engine. Callers branch on the kind, never on
// error message text.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindInvalidAmount
	KindInvalidMovement
	KindAccountNotFound
	KindAccountNotActive
	KindInsufficientBalance
	KindSameAccountTransfer
	KindOwnerMismatch
	KindCurrencyMismatch
	KindTransactionNotFound
	KindAlreadyReversed
	KindNotReversible
	KindConflict
	KindStorage
)

func (k Kind) String() string {
	switch k {
	case KindInvalidAmount:
		return "InvalidAmount"
	case KindInvalidMovement:
		return "InvalidMovement"
	case KindAccountNotFound:
		return "AccountNotFound"
	case KindAccountNotActive:
		return "AccountNotActive"
	case KindInsufficientBalance:
		return "InsufficientBalance"
	case KindSameAccountTransfer:
		return "SameAccountTransfer"
	case KindOwnerMismatch:
		return "OwnerMismatch"
	case KindCurrencyMismatch:
		return "CurrencyMismatch"
	case KindTransactionNotFound:
		return "TransactionNotFound"
	case KindAlreadyReversed:
		return "AlreadyReversed"
	case KindNotReversible:
		return "NotReversible"
	case KindConflict:
		return "Conflict"
	case KindStorage:
		return "Storage"
	}
	return "Unknown"
}

// Error is the tagged error type carried by every ledger failure.
type Error struct {
	Kind Kind
	Msg  string
	Err  error // wrapped cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errf builds a tagged ledger error.
func Errf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapStorage tags an underlying persistence failure.
func WrapStorage(err error, format string, args ...interface{}) *Error {
	return &Error{Kind: KindStorage, Msg: fmt.Sprintf(format, args...), Err: err}
}

// KindOf extracts the failure kind from err, unwrapping as needed.
// Untagged errors report KindUnknown.
func KindOf(err error) Kind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
