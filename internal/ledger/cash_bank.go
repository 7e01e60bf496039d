package ledger

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
)

// CashMovementInput: Kasa giriş/çıkış işlemi için payload.
type CashMovementInput struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Date        *string         `json:"date"` // boşsa bugün
	Description string          `json:"description"`
	Note        string          `json:"note"`
	ContactID   *uint           `json:"contact_id"`
	Tags        []string        `json:"tags"`
	Meta        map[string]any  `json:"meta"`
}

// BankMovementInput: Banka giriş/çıkış işlemi için payload.
type BankMovementInput struct {
	BankAccountID uint            `json:"bank_account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Date          *string         `json:"date"`
	Description   string          `json:"description"`
	Note          string          `json:"note"`
	ContactID     *uint           `json:"contact_id"`
	Tags          []string        `json:"tags"`
	Meta          map[string]any  `json:"meta"`
}

func CashIn(actor Actor, in CashMovementInput) (*models.Transaction, error) {
	return createCashMovement(actor, in, models.TxTypeCashIn, models.TxDirectionInflow)
}

func CashOut(actor Actor, in CashMovementInput) (*models.Transaction, error) {
	return createCashMovement(actor, in, models.TxTypeCashOut, models.TxDirectionOutflow)
}

func createCashMovement(actor Actor, in CashMovementInput, txType models.TxType, dir models.TxDirection) (*models.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	t := models.Transaction{
		Method:         models.TxMethodCash,
		Type:           txType,
		Direction:      dir,
		Amount:         in.Amount,
		Currency:       normalizeCurrency(in.Currency),
		TxnDate:        date,
		Description:    in.Description,
		Note:           in.Note,
		ContactID:      in.ContactID,
		CreatedByID:    actor.ID,
		CreatedByName:  actor.FullName,
		CreatedByEmail: actor.Email,
		Backdated:      IsBackdated(date),
		Meta:           marshalMeta(in.Meta),
	}
	if dir == models.TxDirectionInflow {
		t.Inflow = in.Amount
	} else {
		t.Outflow = in.Amount
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if in.ContactID != nil {
			if _, err := lookupContact(tx, *in.ContactID); err != nil {
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

func BankIn(actor Actor, in BankMovementInput) (*models.Transaction, error) {
	return createBankMovement(actor, in, models.TxTypeBankIn, models.TxDirectionInflow)
}

func BankOut(actor Actor, in BankMovementInput) (*models.Transaction, error) {
	return createBankMovement(actor, in, models.TxTypeBankOut, models.TxDirectionOutflow)
}

func createBankMovement(actor Actor, in BankMovementInput, txType models.TxType, dir models.TxDirection) (*models.Transaction, error) {
	if err := validateAmount(in.Amount); err != nil {
		return nil, err
	}
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	bankDelta := in.Amount
	if dir == models.TxDirectionOutflow {
		bankDelta = in.Amount.Neg()
	}

	t := models.Transaction{
		Method:         models.TxMethodBank,
		Type:           txType,
		Direction:      dir,
		Amount:         in.Amount,
		Currency:       normalizeCurrency(in.Currency),
		TxnDate:        date,
		Description:    in.Description,
		Note:           in.Note,
		BankDelta:      bankDelta,
		BankAccountID:  &in.BankAccountID,
		ContactID:      in.ContactID,
		CreatedByID:    actor.ID,
		CreatedByName:  actor.FullName,
		CreatedByEmail: actor.Email,
		Backdated:      IsBackdated(date),
		Meta:           marshalMeta(in.Meta),
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := lookupBankAccount(tx, in.BankAccountID); err != nil {
			return err
		}
		if in.ContactID != nil {
			if _, err := lookupContact(tx, *in.ContactID); err != nil {
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
