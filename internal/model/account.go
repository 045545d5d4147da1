package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountStatusActive   = "active"
	AccountStatusInactive = "inactive"
)

const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyKES = "KES"
)

// ValidCurrency reports whether c is one of the supported currency codes.
func ValidCurrency(c string) bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyKES:
		return true
	}
	return false
}

// Account is the durable record of one ledger account. The balance column is
// mutated only through the ledger store's ApplyDelta and must never go
// negative. Status transitions are owned by account management, never by the
// transaction engine.
type Account struct {
	ID        int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Number    string          `gorm:"type:varchar(15);uniqueIndex;not null" json:"number"` // human-facing 15-digit account number
	UserID    int64           `gorm:"index;not null" json:"user_id"`                       // owning user
	Balance   decimal.Decimal `gorm:"type:numeric(20,4);not null" json:"balance"`
	Currency  string          `gorm:"type:varchar(3);not null" json:"currency"`
	Status    string          `gorm:"type:varchar(10);index;not null;default:active" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Account) TableName() string {
	return "account"
}
