package dashboard

import (
	"kasa-backend/internal/database"
	"kasa-backend/internal/ledger"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CashChartPoint struct {
	Date    string          `json:"date"`
	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`
	Balance decimal.Decimal `json:"balance"`
}

type CashChartResponse struct {
	From           string           `json:"from"`
	To             string           `json:"to"`
	OpeningBalance decimal.Decimal  `json:"opening_balance"`
	Points         []CashChartPoint `json:"points"`
}

// GET /api/dashboard/cash-chart?from=2025-09-01&to=2025-09-30
// Günlük kasa bakiyesi serisi. Başlangıç bakiyesi aralıktan önceki kasa
// hareketlerinden türetilir, seri oradan yürüyen bakiye olarak katlanır.
func CashChartHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var fromStr, toStr *string
		if v := c.Query("from"); v != "" {
			fromStr = &v
		}
		if v := c.Query("to"); v != "" {
			toStr = &v
		}

		from, err := ledger.NormalizeDate(fromStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "from formatı geçersiz, 'YYYY-MM-DD' olmalı")
		}
		to, err := ledger.NormalizeDate(toStr)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "to formatı geçersiz, 'YYYY-MM-DD' olmalı")
		}
		if to.Before(from) {
			return fiber.NewError(fiber.StatusBadRequest, "Bitiş tarihi başlangıçtan önce olamaz")
		}

		opening, err := ledger.CashBalanceBefore(from)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kasa bakiyesi hesaplanamadı")
		}

		end := to.AddDate(0, 0, 1)

		var txs []models.Transaction
		err = database.DB.
			Where("method = ? AND txn_date >= ? AND txn_date < ?", models.TxMethodCash, from, end).
			Order("txn_date asc, created_at asc, id asc").
			Find(&txs).Error
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "İşlemler listelenemedi")
		}

		// Gün bazında giriş/çıkış topla
		type dayTotals struct {
			inflow  decimal.Decimal
			outflow decimal.Decimal
		}
		perDay := make(map[string]dayTotals)
		for _, t := range txs {
			key := t.TxnDate.In(ledger.BusinessLocation()).Format("2006-01-02")
			d := perDay[key]
			d.inflow = d.inflow.Add(t.Inflow)
			d.outflow = d.outflow.Add(t.Outflow)
			perDay[key] = d
		}

		resp := CashChartResponse{
			From:           from.Format("2006-01-02"),
			To:             to.Format("2006-01-02"),
			OpeningBalance: opening,
			Points:         make([]CashChartPoint, 0),
		}

		balance := opening
		for day := from; day.Before(end); day = day.AddDate(0, 0, 1) {
			key := day.Format("2006-01-02")
			d := perDay[key]
			balance = balance.Add(d.inflow).Sub(d.outflow)
			resp.Points = append(resp.Points, CashChartPoint{
				Date:    key,
				Inflow:  d.inflow,
				Outflow: d.outflow,
				Balance: balance,
			})
		}

		return c.JSON(resp)
	}
}
