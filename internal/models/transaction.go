package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TxMethod string

const (
	TxMethodCash TxMethod = "CASH" // kasa (nakit)
	TxMethodBank TxMethod = "BANK" // banka
	TxMethodCard TxMethod = "CARD" // kredi kartı
)

type TxType string

const (
	TxTypeCashIn        TxType = "CASH_IN"        // kasa giriş
	TxTypeCashOut       TxType = "CASH_OUT"       // kasa çıkış
	TxTypeBankIn        TxType = "BANK_IN"        // banka giriş
	TxTypeBankOut       TxType = "BANK_OUT"       // banka çıkış
	TxTypePosCollection TxType = "POS_COLLECTION" // pos tahsilat (net)
	TxTypePosCommission TxType = "POS_COMMISSION" // pos komisyon kesintisi
	TxTypeCardExpense   TxType = "CARD_EXPENSE"   // kart harcaması
	TxTypeCardPayment   TxType = "CARD_PAYMENT"   // kart borç ödemesi
	TxTypeCheckPayment  TxType = "CHECK_PAYMENT"  // çek ödemesi
)

type TxDirection string

const (
	TxDirectionInflow  TxDirection = "INFLOW"
	TxDirectionOutflow TxDirection = "OUTFLOW"
)

// Transaction: Kasa defterinin atomik satırı. Oluşturulduktan sonra tutarı ve
// tarihi değişmez; düzeltmeler yeni kayıt + ters kayıt ile yapılır.
type Transaction struct {
	ID        uint        `gorm:"primaryKey" json:"id"`
	TxnNo     string      `gorm:"size:30;uniqueIndex;not null" json:"txn_no"` // insan okunur fiş no
	Method    TxMethod    `gorm:"size:10;index;not null" json:"method"`
	Type      TxType      `gorm:"size:20;index;not null" json:"type"`
	Direction TxDirection `gorm:"size:10;not null" json:"direction"`

	Amount   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Currency string          `gorm:"size:3;not null;default:TRY" json:"currency"`

	TxnDate     time.Time `gorm:"index;not null" json:"txn_date"` // iş günü (gün başı, işletme saat dilimi)
	Description string    `gorm:"size:255" json:"description"`
	Note        string    `gorm:"size:255" json:"note"`

	// Kasa bakiyesi yalnızca bu iki alandan hesaplanır (method=CASH için dolu)
	Inflow  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"inflow"`
	Outflow decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"outflow"`

	// Banka bakiyesine net etki (işaretli). POS tahsilat +brüt, komisyon -komisyon yazar.
	BankDelta decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"bank_delta"`

	// Ekran/rapor gösterimi için yan kanallar (POS ve kart satırları ham
	// inflow/outflow taşımaz)
	DisplayInflow  decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"display_inflow"`
	DisplayOutflow decimal.Decimal `gorm:"type:decimal(18,2);default:0" json:"display_outflow"`

	// POS alt alanları: yalnızca POS_COLLECTION / POS_COMMISSION satırlarında dolu.
	// posBrut = posNet + posKomisyon; posEffectiveRate = posKomisyon / posBrut (4 hane)
	PosBrut          *decimal.Decimal `gorm:"type:decimal(18,2)" json:"pos_brut,omitempty"`
	PosKomisyon      *decimal.Decimal `gorm:"type:decimal(18,2)" json:"pos_komisyon,omitempty"`
	PosNet           *decimal.Decimal `gorm:"type:decimal(18,2)" json:"pos_net,omitempty"`
	PosEffectiveRate *decimal.Decimal `gorm:"type:decimal(9,4)" json:"pos_effective_rate,omitempty"`

	// En fazla bir referans dolu olur (factory sözleşmesi, şema zorlamaz)
	BankAccountID *uint        `gorm:"index" json:"bank_account_id,omitempty"`
	BankAccount   *BankAccount `json:"bank_account,omitempty"`
	CardID        *uint        `gorm:"index" json:"card_id,omitempty"`
	Card          *Card        `json:"card,omitempty"`
	ContactID     *uint        `gorm:"index" json:"contact_id,omitempty"`
	Contact       *Contact     `json:"contact,omitempty"`
	CheckID       *uint        `gorm:"index" json:"check_id,omitempty"`
	Check         *Check       `json:"check,omitempty"`

	CreatedByID    uint   `gorm:"index;not null" json:"created_by_id"`
	CreatedByName  string `gorm:"size:100" json:"created_by_name"`
	CreatedByEmail string `gorm:"size:100" json:"created_by_email"`

	// Normalize tarih, işlem anındaki iş gününden eskiyse true (bildirim tetikler,
	// bakiye matematiğini etkilemez)
	Backdated bool `gorm:"default:false" json:"backdated"`

	Meta string `gorm:"type:jsonb" json:"meta,omitempty"` // opsiyonel serbest metadata

	Tags        []Tag        `gorm:"many2many:transaction_tags" json:"tags,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
