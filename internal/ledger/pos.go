package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
)

type PosMode string

const (
	PosModeNetPlusCommission   PosMode = "net_plus_commission"   // net + komisyon verilir, brüt hesaplanır
	PosModeGrossPlusCommission PosMode = "gross_plus_commission" // brüt + komisyon verilir, net hesaplanır
)

// PosCollectionInput: POS tahsilatı için payload. Eksik bacak moda göre
// hesaplanır.
type PosCollectionInput struct {
	Mode          PosMode         `json:"mode"`
	Net           decimal.Decimal `json:"net"`
	Brut          decimal.Decimal `json:"brut"`
	Komisyon      decimal.Decimal `json:"komisyon"`
	BankAccountID uint            `json:"bank_account_id"`
	Currency      string          `json:"currency"`
	Date          *string         `json:"date"`
	Description   string          `json:"description"`
	Note          string          `json:"note"`
	Tags          []string        `json:"tags"`
	Meta          map[string]any  `json:"meta"`
}

// PosCollection tek atomik birimde iki işlem üretir: net tutar kadar
// POS_COLLECTION girişi ve komisyon kadar POS_COMMISSION çıkışı. Çift ya
// birlikte oluşur ya hiç oluşmaz. Banka etkisi: +brüt ve -komisyon, net
// etki brüt - komisyon.
func PosCollection(actor Actor, in PosCollectionInput) (*models.Transaction, *models.Transaction, error) {
	if in.Komisyon.IsNegative() {
		return nil, nil, fmt.Errorf("%w: komisyon negatif olamaz", ErrValidation)
	}

	var net, brut decimal.Decimal
	switch in.Mode {
	case PosModeNetPlusCommission:
		net = in.Net
		brut = in.Net.Add(in.Komisyon)
	case PosModeGrossPlusCommission:
		brut = in.Brut
		net = in.Brut.Sub(in.Komisyon)
	default:
		return nil, nil, fmt.Errorf("%w: mode 'net_plus_commission' veya 'gross_plus_commission' olmalı", ErrValidation)
	}

	if brut.Cmp(decimal.Zero) <= 0 {
		return nil, nil, fmt.Errorf("%w: brüt tutar 0'dan büyük olmalı", ErrValidation)
	}
	if net.IsNegative() {
		return nil, nil, fmt.Errorf("%w: net tutar negatif olamaz", ErrValidation)
	}

	rate := decimal.Zero
	if !brut.IsZero() {
		rate = in.Komisyon.Div(brut).Round(4)
	}

	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, nil, err
	}

	currency := normalizeCurrency(in.Currency)
	meta := marshalMeta(in.Meta)
	backdated := IsBackdated(date)

	base := models.Transaction{
		Method:           models.TxMethodBank,
		Currency:         currency,
		TxnDate:          date,
		Description:      in.Description,
		Note:             in.Note,
		BankAccountID:    &in.BankAccountID,
		PosBrut:          &brut,
		PosKomisyon:      &in.Komisyon,
		PosNet:           &net,
		PosEffectiveRate: &rate,
		CreatedByID:      actor.ID,
		CreatedByName:    actor.FullName,
		CreatedByEmail:   actor.Email,
		Backdated:        backdated,
		Meta:             meta,
	}

	collection := base
	collection.Type = models.TxTypePosCollection
	collection.Direction = models.TxDirectionInflow
	collection.Amount = net
	collection.BankDelta = brut
	collection.DisplayInflow = net

	commission := base
	commission.Type = models.TxTypePosCommission
	commission.Direction = models.TxDirectionOutflow
	commission.Amount = in.Komisyon
	commission.BankDelta = in.Komisyon.Neg()
	commission.DisplayOutflow = in.Komisyon

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lookupBankAccount(tx, in.BankAccountID); err != nil {
			return err
		}

		no, err := nextTxnNo(tx, date)
		if err != nil {
			return err
		}
		collection.TxnNo = no

		if err := tx.Create(&collection).Error; err != nil {
			return err
		}

		no, err = nextTxnNo(tx, date)
		if err != nil {
			return err
		}
		commission.TxnNo = no

		if err := tx.Create(&commission).Error; err != nil {
			return err
		}

		if err := applyTags(tx, &collection, in.Tags); err != nil {
			return err
		}
		if err := applyTags(tx, &commission, in.Tags); err != nil {
			return err
		}

		if err := writeCreateAudit(tx, actor, &collection); err != nil {
			return err
		}
		return writeCreateAudit(tx, actor, &commission)
	})
	if err != nil {
		return nil, nil, err
	}

	if backdated {
		notifyBackdated(actor, collection)
	}
	return &collection, &commission, nil
}
