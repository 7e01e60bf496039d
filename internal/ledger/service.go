package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"kasa-backend/internal/audit"
	"kasa-backend/internal/models"
	"kasa-backend/internal/notify"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Actor: İşlemi yapan kullanıcı. Kimlik doğrulama dışarıda çözülür, buraya
// hazır gelir.
type Actor struct {
	ID       uint
	Email    string
	FullName string
}

var notifier notify.Notifier = notify.NewLogNotifier()

// SetNotifier bildirim kanalını değiştirir (main config'e göre çağırır).
func SetNotifier(n notify.Notifier) {
	if n != nil {
		notifier = n
	}
}

func validateAmount(a decimal.Decimal) error {
	if a.Cmp(decimal.Zero) <= 0 {
		return fmt.Errorf("%w: tutar 0'dan büyük olmalı", ErrValidation)
	}
	return nil
}

func normalizeCurrency(cur string) string {
	cur = strings.ToUpper(strings.TrimSpace(cur))
	if cur == "" {
		return "TRY"
	}
	return cur
}

func marshalMeta(meta map[string]any) string {
	if len(meta) == 0 {
		return ""
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(b)
}

// nextTxnNo gün bazlı, insan okunur fiş numarası üretir: F-20250901-0001.
// Sıra numarası aynı atomik birim içinde, günün en yüksek numarasından türetilir.
func nextTxnNo(tx *gorm.DB, date time.Time) (string, error) {
	prefix := fmt.Sprintf("F-%s-", date.Format("20060102"))

	var last models.Transaction
	err := tx.Unscoped().
		Where("txn_no LIKE ?", prefix+"%").
		Order("txn_no desc").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Sprintf("%s%04d", prefix, 1), nil
	}
	if err != nil {
		return "", fmt.Errorf("fiş numarası üretilemedi: %w", err)
	}

	seq, err := strconv.Atoi(strings.TrimPrefix(last.TxnNo, prefix))
	if err != nil {
		return "", fmt.Errorf("fiş numarası çözümlenemedi (%s): %w", last.TxnNo, err)
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// applyTags etiketleri isme göre upsert eder ve join tablosuna bağlar.
// Aynı etiket kümesini tekrar uygulamak idempotenttir.
func applyTags(tx *gorm.DB, t *models.Transaction, names []string) error {
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}

		var tag models.Tag
		if err := tx.Where(models.Tag{Name: name}).FirstOrCreate(&tag).Error; err != nil {
			return fmt.Errorf("etiket oluşturulamadı (%s): %w", name, err)
		}

		if err := tx.Model(t).Association("Tags").Append(&tag); err != nil {
			return fmt.Errorf("etiket bağlanamadı (%s): %w", name, err)
		}
	}
	return nil
}

func lookupContact(tx *gorm.DB, id uint) (*models.Contact, error) {
	var contact models.Contact
	if err := tx.First(&contact, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: cari bulunamadı (id=%d)", ErrNotFound, id)
		}
		return nil, err
	}
	return &contact, nil
}

func lookupBankAccount(tx *gorm.DB, id uint) (*models.BankAccount, error) {
	var account models.BankAccount
	if err := tx.First(&account, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: banka hesabı bulunamadı (id=%d)", ErrNotFound, id)
		}
		return nil, err
	}
	return &account, nil
}

func lookupCard(tx *gorm.DB, id uint) (*models.Card, error) {
	var card models.Card
	if err := tx.First(&card, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: kart bulunamadı (id=%d)", ErrNotFound, id)
		}
		return nil, err
	}
	return &card, nil
}

func writeCreateAudit(tx *gorm.DB, actor Actor, t *models.Transaction) error {
	return audit.WriteLog(tx, audit.LogOptions{
		UserID:      actor.ID,
		UserName:    actor.FullName,
		EntityType:  "transaction",
		EntityID:    t.ID,
		Action:      models.AuditActionCreate,
		Description: fmt.Sprintf("İşlem eklendi: %s %s - %s TL", t.TxnNo, t.Type, t.Amount.StringFixed(2)),
		After:       t,
	})
}

func eventFor(actor Actor, t models.Transaction) notify.Event {
	return notify.Event{
		TxnNo:       t.TxnNo,
		Amount:      t.Amount.StringFixed(2),
		Description: t.Description,
		TxnDate:     t.TxnDate.Format("2006-01-02"),
		PerformedAt: time.Now().In(businessLocation).Format(time.RFC3339),
		ActorName:   actor.FullName,
		ActorEmail:  actor.Email,
	}
}

// Bildirimler commit'ten sonra, işlemin sonucundan bağımsız olarak gönderilir.
// Gönderim hatası defter kaydını başarısız göstermez, yalnızca loglanır.
func notifyBackdated(actor Actor, t models.Transaction) {
	ev := eventFor(actor, t)
	go func() {
		if err := notifier.SendBackdatedTransaction(ev); err != nil {
			log.Printf("Geriye dönük işlem bildirimi gönderilemedi (%s): %v", ev.TxnNo, err)
		}
	}()
}

func notifyHardDelete(actor Actor, t models.Transaction) {
	ev := eventFor(actor, t)
	go func() {
		if err := notifier.SendHardDelete(ev); err != nil {
			log.Printf("Silme bildirimi gönderilemedi (%s): %v", ev.TxnNo, err)
		}
	}()
}
