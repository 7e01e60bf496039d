package ledger

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kasa-backend/internal/audit"
	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
)

// DeleteTransaction işlemi kalıcı olarak siler. Aynı atomik birim içinde
// etiket bağları ve slip kayıtları kaldırılır, işlemin bağımlı aggregate'lere
// yaptığı her etki simetrik olarak geri alınır: kart riski aynı sıfır
// kilidiyle ters yönde güncellenir, çek ödemesi silinirse çek ODEMEDE
// durumuna döner. Commit'ten sonra silme bildirimi gönderilir; bildirim
// hatası silmeyi geri almaz.
func DeleteTransaction(actor Actor, id uint) error {
	var t models.Transaction

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: işlem bulunamadı (id=%d)", ErrNotFound, id)
			}
			return err
		}

		if err := tx.Model(&t).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("transaction_id = ?", t.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}

		// Kart riski: create ne yaptıysa tersi, aynı sıfır kilidiyle
		if t.CardID != nil {
			card, err := lookupCard(tx, *t.CardID)
			if err != nil {
				return err
			}

			switch t.Type {
			case models.TxTypeCardExpense:
				newRisk := clampNonNegative(card.RiskTry.Sub(t.Amount))
				if err := tx.Model(card).Update("risk_try", newRisk).Error; err != nil {
					return err
				}
			case models.TxTypeCardPayment:
				newRisk := card.RiskTry.Add(t.Amount)
				if err := tx.Model(card).Update("risk_try", newRisk).Error; err != nil {
					return err
				}
			}
		}

		// Çek ödemesi siliniyorsa çek ödeme öncesi durumuna döner
		if t.Type == models.TxTypeCheckPayment && t.CheckID != nil {
			var check models.Check
			if err := tx.First(&check, *t.CheckID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: çek bulunamadı (id=%d)", ErrNotFound, *t.CheckID)
				}
				return err
			}
			if check.Status == models.CheckStatusOdemeYapildi {
				if err := tx.Model(&check).Update("status", models.CheckStatusOdemede).Error; err != nil {
					return err
				}
				move := models.CheckMove{
					CheckID:       check.ID,
					Action:        models.CheckMoveActionOdemeIptal,
					FromStatus:    models.CheckStatusOdemeYapildi,
					ToStatus:      models.CheckStatusOdemede,
					TransactionID: &t.ID,
					PerformedByID: actor.ID,
					PerformedBy:   actor.FullName,
				}
				if err := tx.Create(&move).Error; err != nil {
					return err
				}
			}
		}

		if err := audit.WriteLog(tx, audit.LogOptions{
			UserID:      actor.ID,
			UserName:    actor.FullName,
			EntityType:  "transaction",
			EntityID:    t.ID,
			Action:      models.AuditActionDelete,
			Description: fmt.Sprintf("İşlem silindi: %s %s - %s TL", t.TxnNo, t.Type, t.Amount.StringFixed(2)),
			Before:      t,
		}); err != nil {
			return err
		}

		return tx.Unscoped().Delete(&models.Transaction{}, t.ID).Error
	})
	if err != nil {
		return err
	}

	notifyHardDelete(actor, t)
	return nil
}
