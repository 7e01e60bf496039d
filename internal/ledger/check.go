package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
)

// CheckPaymentInput: Çek ödemesi. Tutar çekin kendisinden gelir.
type CheckPaymentInput struct {
	CheckID       uint           `json:"check_id"`
	BankAccountID uint           `json:"bank_account_id"`
	Date          *string        `json:"date"`
	Description   string         `json:"description"`
	Note          string         `json:"note"`
	Tags          []string       `json:"tags"`
	Meta          map[string]any `json:"meta"`
}

// RegisterCheckPayment ödeme işlemini yazar, çeki ODEME_YAPILDI durumuna
// geçirir ve işlemi referanslayan bir CheckMove(ODEME) satırı ekler — hepsi
// tek atomik birimde. Zaten ödenmiş çek için hiçbir yazma yapılmaz.
func RegisterCheckPayment(actor Actor, in CheckPaymentInput) (*models.Transaction, error) {
	date, err := NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}

	var t models.Transaction

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var check models.Check
		if err := tx.First(&check, in.CheckID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: çek bulunamadı (id=%d)", ErrNotFound, in.CheckID)
			}
			return err
		}
		if check.Status == models.CheckStatusOdemeYapildi {
			return fmt.Errorf("%w (çek no: %s)", ErrCheckAlreadyPaid, check.CheckNo)
		}
		if _, err := lookupBankAccount(tx, in.BankAccountID); err != nil {
			return err
		}

		t = models.Transaction{
			Method:         models.TxMethodBank,
			Type:           models.TxTypeCheckPayment,
			Direction:      models.TxDirectionOutflow,
			Amount:         check.Amount,
			Currency:       check.Currency,
			TxnDate:        date,
			Description:    in.Description,
			Note:           in.Note,
			BankDelta:      check.Amount.Neg(),
			BankAccountID:  &in.BankAccountID,
			CheckID:        &in.CheckID,
			CreatedByID:    actor.ID,
			CreatedByName:  actor.FullName,
			CreatedByEmail: actor.Email,
			Backdated:      IsBackdated(date),
			Meta:           marshalMeta(in.Meta),
		}

		no, err := nextTxnNo(tx, date)
		if err != nil {
			return err
		}
		t.TxnNo = no

		if err := tx.Create(&t).Error; err != nil {
			return err
		}

		fromStatus := check.Status
		if err := tx.Model(&check).Update("status", models.CheckStatusOdemeYapildi).Error; err != nil {
			return err
		}

		move := models.CheckMove{
			CheckID:       check.ID,
			Action:        models.CheckMoveActionOdeme,
			FromStatus:    fromStatus,
			ToStatus:      models.CheckStatusOdemeYapildi,
			TransactionID: &t.ID,
			PerformedByID: actor.ID,
			PerformedBy:   actor.FullName,
		}
		if err := tx.Create(&move).Error; err != nil {
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
