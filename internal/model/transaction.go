package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TransactionTypeDeposit    = "deposit"
	TransactionTypeWithdrawal = "withdrawal"
	TransactionTypeTransfer   = "transfer"
)

const (
	TransactionStatusPending   = "pending"
	TransactionStatusCompleted = "completed"
	TransactionStatusFailed    = "failed"
)

// Transaction is one ledger entry: the immutable record of a single money
// movement or reversal.
//
// Ledger entry rules:
//  1. Append-only — rows are never updated after creation, with the single
//     exception of the one-time reversed flip performed by a reversal.
//  2. Balance holds the source account's balance immediately after the entry
//     was applied. It is written once inside the same atomic unit as the
//     balance mutation and never recomputed.
//  3. DestinationAccountID is set for transfers only.
type Transaction struct {
	ID                   int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference            string          `gorm:"type:varchar(64);uniqueIndex;not null" json:"reference"`
	Type                 string          `gorm:"type:varchar(20);not null" json:"type"`
	Amount               decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"amount"`
	Balance              decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"balance"`
	SourceAccountID      int64           `gorm:"index;not null" json:"source_account_id"`
	DestinationAccountID *int64          `gorm:"index" json:"destination_account_id,omitempty"`
	UserID               int64           `gorm:"index;not null" json:"user_id"` // initiating user
	Status               string          `gorm:"type:varchar(20);not null" json:"status"`
	Reversed             bool            `gorm:"not null;default:false" json:"reversed"`
	Description          string          `gorm:"type:varchar(256)" json:"description"`
	CreatedAt            time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Transaction) TableName() string {
	return "transaction"
}
