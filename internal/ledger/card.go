package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
)

// AttachmentInput: İşleme eklenecek belge metadata'sı (dosya içeriği
// depolama katmanında).
type AttachmentInput struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// CardExpenseInput: Kart harcaması için payload. En az bir slip zorunlu.
type CardExpenseInput struct {
	CardID      uint              `json:"card_id"`
	Amount      decimal.Decimal   `json:"amount"`
	Currency    string            `json:"currency"`
	Date        *string           `json:"date"`
	Description string            `json:"description"`
	Note        string            `json:"note"`
	Attachments []AttachmentInput `json:"attachments"`
	Tags        []string          `json:"tags"`
	Meta        map[string]any    `json:"meta"`
}

// CardPaymentInput: Kart borç ödemesi. Banka hesabı verilirse ödeme bankadan
// düşer ve method BANK olur; verilmezse kasadan bağımsız bir kart hareketidir.
type CardPaymentInput struct {
	CardID        uint            `json:"card_id"`
	BankAccountID *uint           `json:"bank_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          *string         `json:"date"`
	Description   string          `json:"description"`
	Note          string          `json:"note"`
	Tags          []string        `json:"tags"`
	Meta          map[string]any  `json:"meta"`
}

// clampNonNegative kart riskini sıfırın altına düşürmez. Fazla ödeme hata
// değildir; aradaki fark alacak olarak izlenmez, yutulur.
func clampNonNegative(v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		return decimal.Zero
	}
	return v
}

// CardExpense harcama işlemini, slip kayıtlarını ve kart riskindeki artışı
// tek atomik birimde yazar. Risk güncellemesi, kayıp güncellemeyi önlemek
// için kartın aynı birim içinde okunan değeri üzerinden yapılır.
func CardExpense(actor Actor, in CardExpenseInput) (*models.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	if len(in.Attachments) == 0 {
		return nil, fmt.Errorf("%w: en az bir slip eklenmeli", ErrValidation)
	}
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	t := models.Transaction{
		Method:         models.TxMethodCard,
		Type:           models.TxTypeCardExpense,
		Direction:      models.TxDirectionOutflow,
		Amount:         in.Amount,
		Currency:       normalizeCurrency(in.Currency),
		TxnDate:        date,
		Description:    in.Description,
		Note:           in.Note,
		DisplayOutflow: in.Amount,
		CardID:         &in.CardID,
		CreatedByID:    actor.ID,
		CreatedByName:  actor.FullName,
		CreatedByEmail: actor.Email,
		Backdated:      IsBackdated(date),
		Meta:           marshalMeta(in.Meta),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		card, err := lookupCard(tx, in.CardID)
		if err != nil {
			return err
		}

		no, err := nextTxnNo(tx, date)
		if err != nil {
			return err
		}
		t.TxnNo = no

		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		for _, a := range in.Attachments {
			att := models.Attachment{
				TransactionID: t.ID,
				FileName:      a.FileName,
				FileKey:       uuid.NewString(),
				ContentType:   a.ContentType,
				Size:          a.Size,
			}
			if err := tx.Create(&att).Error; err != nil {
				return err
			}
		}

		newRisk := card.RiskTry.Add(in.Amount)
		if err := tx.Model(card).Update("risk_try", newRisk).Error; err != nil {
			return err
		}

		if err := applyTags(tx, &t, in.Tags); err != nil {
			return err
		}
		return writeCreateAudit(tx, actor, &t)
	})
	if err != nil {
		return nil, err
	}

	if t.Backdated {
		notifyBackdated(actor, t)
	}
	return &t, nil
}

// CardPayment kart borcunu öder ve riski düşürür. Risk sıfırda kilitlenir;
// borcu aşan ödeme riski negatife çevirmez.
func CardPayment(actor Actor, in CardPaymentInput) (*models.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	t := models.Transaction{
		Method:         models.TxMethodCard,
		Type:           models.TxTypeCardPayment,
		Direction:      models.TxDirectionOutflow,
		Amount:         in.Amount,
		Currency:       normalizeCurrency(in.Currency),
		TxnDate:        date,
		Description:    in.Description,
		Note:           in.Note,
		DisplayOutflow: in.Amount,
		CardID:         &in.CardID,
		CreatedByID:    actor.ID,
		CreatedByName:  actor.FullName,
		CreatedByEmail: actor.Email,
		Backdated:      IsBackdated(date),
		Meta:           marshalMeta(in.Meta),
	}

	// Bankadan fonlanan ödeme banka hesabını da hareket ettirir
	if in.BankAccountID != nil {
		t.Method = models.TxMethodBank
		t.BankAccountID = in.BankAccountID
		t.BankDelta = in.Amount.Neg()
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		card, err := lookupCard(tx, in.CardID)
		if err != nil {
			return err
		}
		if in.BankAccountID != nil {
			if _, err := lookupBankAccount(tx, *in.BankAccountID); err != nil {
				return err
			}
		}

		no, err := nextTxnNo(tx, date)
		if err != nil {
			return err
		}
		t.TxnNo = no

		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		newRisk := clampNonNegative(card.RiskTry.Sub(in.Amount))
		if err := tx.Model(card).Update("risk_try", newRisk).Error; err != nil {
			return err
		}

		if err := applyTags(tx, &t, in.Tags); err != nil {
			return err
		}
		return writeCreateAudit(tx, actor, &t)
	})
	if err != nil {
		return nil, err
	}

	if t.Backdated {
		notifyBackdated(actor, t)
	}
	return &t, nil
}
