package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BankAccount: Banka hesabı. Güncel bakiye hiçbir zaman saklanmaz;
// her zaman openingBalance + Σ(bankDelta) olarak türetilir.
type BankAccount struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Name          string           `gorm:"size:100;not null" json:"name"` // hesap adı (örn: "Ziraat Bankası")
	Iban          string           `gorm:"size:34" json:"iban"`
	Currency      string           `gorm:"size:3;not null;default:TRY" json:"currency"`
	OpeningBalance *decimal.Decimal `gorm:"type:decimal(18,2)" json:"opening_balance"` // boşsa 0 kabul edilir
	Description   string           `gorm:"size:255" json:"description"`
	IsActive      bool             `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}
