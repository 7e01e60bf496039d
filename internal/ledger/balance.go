package ledger

import (
	"kasa-backend/internal/models"

	"github.com/shopspring/decimal"
)

// LegacyOpeningBalanceMarker: Eski sistemden taşınan açılış bakiyesi
// satırlarının açıklaması. Bu satırların etkisi hesabın açılış bakiyesine
// zaten katılmış durumda; delta toplamlarından hariç tutulmazsa bakiye iki
// kez sayılır. Tespit yalnızca IsLegacySeedRow üzerinden yapılır.
const LegacyOpeningBalanceMarker = "Açılış bakiyesi (devir)"

func IsLegacySeedRow(t models.Transaction) bool {
	return t.Description == LegacyOpeningBalanceMarker
}

type BalanceContextKind string

const (
	ContextCash      BalanceContextKind = "CASH"
	ContextBank      BalanceContextKind = "BANK"
	ContextBankTotal BalanceContextKind = "BANK_TOTAL"
)

// BalanceContext bakiyenin hangi boyutta hesaplandığını söyler: kasa, tek bir
// banka hesabı ya da tüm bankaların toplamı.
type BalanceContext struct {
	Kind          BalanceContextKind
	BankAccountID uint
}

func CashContext() BalanceContext {
	return BalanceContext{Kind: ContextCash}
}

func BankContext(accountID uint) BalanceContext {
	return BalanceContext{Kind: ContextBank, BankAccountID: accountID}
}

func BankTotalContext() BalanceContext {
	return BalanceContext{Kind: ContextBankTotal}
}

// Delta bir işlemin verilen bağlamdaki işaretli bakiye etkisini döner.
// Bağlama uymayan işlem her zaman tam olarak 0 katar; asla hata üretmez.
// Kart ve banka işlemlerinin kasa bakiyesini sessizce oynatamaması bu
// fonksiyonun garantisidir.
func Delta(t models.Transaction, ctx BalanceContext) decimal.Decimal {
	switch ctx.Kind {
	case ContextCash:
		if t.Method == models.TxMethodCash {
			return t.Inflow.Sub(t.Outflow)
		}
	case ContextBank:
		if t.BankAccountID != nil && *t.BankAccountID == ctx.BankAccountID {
			return t.BankDelta
		}
	case ContextBankTotal:
		return t.BankDelta
	}
	return decimal.Zero
}

// BalancePoint: RunningBalance'ın ürettiği, işlem bazlı bakiye anlık görüntüsü.
type BalancePoint struct {
	TransactionID uint            `json:"transaction_id"`
	Delta         decimal.Decimal `json:"delta"`
	Balance       decimal.Decimal `json:"balance"`
}

// RunningBalance kronolojik sıralı işlem dizisini soldan sağa katlayarak
// yürüyen bakiye serisi üretir. Saf bir fold'dur: farklı bir başlangıç
// bakiyesi ya da filtrelenmiş bir alt dizi ile yeniden çalıştırıldığında
// tutarlı, yeniden türetilebilir bir seri verir.
func RunningBalance(txs []models.Transaction, ctx BalanceContext, initial decimal.Decimal) []BalancePoint {
	points := make([]BalancePoint, 0, len(txs))
	balance := initial

	for _, t := range txs {
		d := Delta(t, ctx)
		balance = balance.Add(d)
		points = append(points, BalancePoint{
			TransactionID: t.ID,
			Delta:         d,
			Balance:       balance,
		})
	}

	return points
}
