package ledger

import (
	"kasa-backend/internal/models"

	"github.com/shopspring/decimal"
)

// DisplayAmounts: Ekranda/raporda gösterilen giriş-çıkış tutarları. Banka,
// POS ve kart satırları ekonomik etkilerini yan kanallarda taşıdığı için bu
// değerler ham inflow/outflow alanlarından farklı olabilir.
type DisplayAmounts struct {
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
}

// DisplayAmountsFor işlem türüne göre gösterim tutarlarını çözer. Factory'nin
// alan doldurma kurallarıyla birebir senkron tutulmalıdır; yeni bir işlem
// türü eklenirse iki taraf birlikte genişletilir, yoksa ekran toplamları ile
// defter toplamları birbirinden ayrılır.
func DisplayAmountsFor(t models.Transaction) DisplayAmounts {
	switch {
	case t.Type == models.TxTypePosCollection || t.Type == models.TxTypePosCommission:
		// POS satırlarında ham inflow/outflow sıfırdır; gösterim yan kanaldan gelir
		return DisplayAmounts{Inflow: t.DisplayInflow, Outflow: t.DisplayOutflow}

	case t.Method == models.TxMethodBank:
		if t.BankDelta.IsPositive() {
			return DisplayAmounts{Inflow: t.BankDelta}
		}
		if t.BankDelta.IsNegative() {
			return DisplayAmounts{Outflow: t.BankDelta.Neg()}
		}
		return DisplayAmounts{}

	case t.Method == models.TxMethodCard:
		// Kart satırları hiçbir zaman giriş olarak gösterilmez
		return DisplayAmounts{Outflow: t.DisplayOutflow}

	default:
		return DisplayAmounts{Inflow: t.Inflow, Outflow: t.Outflow}
	}
}
