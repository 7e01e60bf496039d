package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CheckStatus string

const (
	CheckStatusKasada          CheckStatus = "KASADA"           // kasada
	CheckStatusBankadaTahsilde CheckStatus = "BANKADA_TAHSILDE" // tahsil için bankada
	CheckStatusTahsilOldu      CheckStatus = "TAHSIL_OLDU"      // tahsil edildi
	CheckStatusOdemede         CheckStatus = "ODEMEDE"          // ödeme bekliyor (keşide edilmiş)
	CheckStatusOdemeYapildi    CheckStatus = "ODEME_YAPILDI"    // ödendi
	CheckStatusKarsiliksiz     CheckStatus = "KARSILIKSIZ"      // karşılıksız
	CheckStatusIptal           CheckStatus = "IPTAL"            // iptal
)

type CheckMoveAction string

const (
	CheckMoveActionDurum      CheckMoveAction = "DURUM"       // elle durum geçişi
	CheckMoveActionOdeme      CheckMoveAction = "ODEME"       // ödeme işlemiyle geçiş
	CheckMoveActionOdemeIptal CheckMoveAction = "ODEME_IPTAL" // ödeme işlemi silindi, geri alındı
)

// Check: Çek. Durum makinesi:
// KASADA -> BANKADA_TAHSILDE -> TAHSIL_OLDU | KARSILIKSIZ
// ODEMEDE -> ODEME_YAPILDI (yalnızca CHECK_PAYMENT işlemiyle)
// her durumdan -> IPTAL
type Check struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CheckNo     string          `gorm:"size:50;not null" json:"check_no"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency    string          `gorm:"size:3;not null;default:TRY" json:"currency"`
	DueDate     time.Time       `gorm:"index" json:"due_date"` // vade
	Status      CheckStatus     `gorm:"size:20;index;not null" json:"status"`
	ContactID   *uint           `gorm:"index" json:"contact_id,omitempty"`
	Contact     *Contact        `json:"contact,omitempty"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// CheckMove: Çek durum geçişlerinin denetim kaydı. Her geçişte bir satır eklenir.
type CheckMove struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CheckID       uint            `gorm:"index;not null" json:"check_id"`
	Action        CheckMoveAction `gorm:"size:20;not null" json:"action"`
	FromStatus    CheckStatus     `gorm:"size:20;not null" json:"from_status"`
	ToStatus      CheckStatus     `gorm:"size:20;not null" json:"to_status"`
	TransactionID *uint           `gorm:"index" json:"transaction_id,omitempty"` // geçişi tetikleyen işlem
	PerformedByID uint            `gorm:"not null" json:"performed_by_id"`
	PerformedBy   string          `gorm:"size:100" json:"performed_by"`
	CreatedAt     time.Time       `json:"created_at"`
}
