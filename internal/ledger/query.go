package ledger

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"kasa-backend/internal/database"
	"kasa-backend/internal/models"
)

// DailyLedger verilen aralıktaki işlemleri ilişkili cari/banka/kart/çek ve
// etiketleriyle birlikte döner. Sınırlar boşsa bugün kullanılır. Sıralama
// (tarih, oluşturulma) sabittir; RunningBalance'ın fold'u sıraya duyarlı
// olduğu için bu sıra kronolojik tekrar oynatma sırasıdır.
func DailyLedger(fromStr, toStr *string) ([]models.Transaction, error) {
	from, err := NormalizeDate(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := NormalizeDate(toStr)
	if err != nil {
		return nil, err
	}
	if to.Before(from) {
		return nil, fmt.Errorf("%w: bitiş tarihi başlangıçtan önce olamaz", ErrValidation)
	}

	end := to.AddDate(0, 0, 1) // gün sonuna kadar (hariç)

	var txs []models.Transaction
	err = database.DB.
		Preload("BankAccount").
		Preload("Card").
		Preload("Contact").
		Preload("Check").
		Preload("Tags").
		Preload("Attachments").
		Where("txn_date >= ? AND txn_date < ?", from, end).
		Order("txn_date asc, created_at asc, id asc").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("işlemler listelenemedi: %w", err)
	}
	return txs, nil
}

// AccountBalance: Hesap + türetilmiş güncel bakiye.
type AccountBalance struct {
	Account        models.BankAccount `json:"account"`
	CurrentBalance decimal.Decimal    `json:"current_balance"`
}

// BankBalances silinmemiş her banka hesabı için
// openingBalance + Σ(bankDelta) hesaplar. Eski sistem açılış satırları
// (LegacyOpeningBalanceMarker) ve soft-delete edilmiş işlemler toplama
// girmez. Hesaplar ada göre sıralı döner.
func BankBalances() ([]AccountBalance, error) {
	var accounts []models.BankAccount
	if err := database.DB.Order("name asc").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("hesaplar listelenemedi: %w", err)
	}

	type row struct {
		BankAccountID uint            `gorm:"column:bank_account_id"`
		Total         decimal.Decimal `gorm:"column:total"`
	}
	var rows []row

	err := database.DB.Model(&models.Transaction{}).
		Select("bank_account_id, SUM(bank_delta) AS total").
		Where("bank_account_id IS NOT NULL AND description <> ?", LegacyOpeningBalanceMarker).
		Group("bank_account_id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("banka bakiyeleri hesaplanamadı: %w", err)
	}

	deltas := make(map[uint]decimal.Decimal, len(rows))
	for _, r := range rows {
		deltas[r.BankAccountID] = r.Total
	}

	balances := make([]AccountBalance, 0, len(accounts))
	for _, acc := range accounts {
		opening := decimal.Zero
		if acc.OpeningBalance != nil {
			opening = *acc.OpeningBalance
		}
		balances = append(balances, AccountBalance{
			Account:        acc,
			CurrentBalance: opening.Add(deltas[acc.ID]),
		})
	}
	return balances, nil
}

// CashBalanceBefore verilen günden önceki kasa bakiyesini döner (grafik ve
// rapor serilerinin başlangıç bakiyesi).
func CashBalanceBefore(date time.Time) (decimal.Decimal, error) {
	type row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	var r row

	err := database.DB.Model(&models.Transaction{}).
		Select("COALESCE(SUM(inflow - outflow), 0) AS total").
		Where("method = ? AND txn_date < ?", models.TxMethodCash, date).
		Scan(&r).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("kasa bakiyesi hesaplanamadı: %w", err)
	}
	return r.Total, nil
}

type MonthlySummaryItem struct {
	Method  models.TxMethod `json:"method"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
}

type MonthlySummaryResult struct {
	Year         int                  `json:"year"`
	Month        int                  `json:"month"`
	Items        []MonthlySummaryItem `json:"items"`
	TotalInflow  decimal.Decimal      `json:"total_inflow"`
	TotalOutflow decimal.Decimal      `json:"total_outflow"`
}

// MonthlySummary ay içindeki işlemlerin gösterim tutarlarını method bazında
// toplar. Gösterim çözümü tek kaynaktan (DisplayAmountsFor) geldiği için
// ekran toplamları defterle tutarlıdır.
func MonthlySummary(year, month int) (*MonthlySummaryResult, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, businessLocation)
	end := start.AddDate(0, 1, 0)

	var txs []models.Transaction
	err := database.DB.
		Where("txn_date >= ? AND txn_date < ?", start, end).
		Order("txn_date asc, created_at asc, id asc").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("aylık özet hesaplanamadı: %w", err)
	}

	perMethod := make(map[models.TxMethod]*MonthlySummaryItem)
	result := &MonthlySummaryResult{Year: year, Month: month}

	for _, t := range txs {
		da := DisplayAmountsFor(t)

		item, ok := perMethod[t.Method]
		if !ok {
			item = &MonthlySummaryItem{Method: t.Method}
			perMethod[t.Method] = item
		}
		item.Inflow = item.Inflow.Add(da.Inflow)
		item.Outflow = item.Outflow.Add(da.Outflow)

		result.TotalInflow = result.TotalInflow.Add(da.Inflow)
		result.TotalOutflow = result.TotalOutflow.Add(da.Outflow)
	}

	for _, m := range []models.TxMethod{models.TxMethodCash, models.TxMethodBank, models.TxMethodCard} {
		if item, ok := perMethod[m]; ok {
			result.Items = append(result.Items, *item)
		}
	}
	return result, nil
}
