package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Card: Kredi kartı. RiskTry kartın güncel borç riskidir; yalnızca
// CARD_EXPENSE / CARD_PAYMENT işlemleriyle birlikte, aynı atomik birim
// içinde güncellenir ve hiçbir zaman negatife düşmez.
type Card struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"` // kart adı (örn: "İş Bankası Maximum")
	RiskTry     decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"risk_try"`
	Description string          `gorm:"size:255" json:"description"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}
