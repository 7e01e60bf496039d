package kasa

import (
	"errors"
	"fmt"

	"kasa-backend/internal/auth"
	"kasa-backend/internal/ledger"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// TransactionResponse: Defter satırının API görünümü. Giriş/çıkış tutarları
// ham alanlardan değil, gösterim çözücüsünden gelir.
type TransactionResponse struct {
	ID          uint               `json:"id"`
	TxnNo       string             `json:"txn_no"`
	Method      models.TxMethod    `json:"method"`
	Type        models.TxType      `json:"type"`
	Direction   models.TxDirection `json:"direction"`
	Amount      decimal.Decimal    `json:"amount"`
	Currency    string             `json:"currency"`
	Date        string             `json:"date"`
	Description string             `json:"description"`
	Note        string             `json:"note,omitempty"`

	Inflow  decimal.Decimal `json:"inflow"`
	Outflow decimal.Decimal `json:"outflow"`

	PosBrut          *decimal.Decimal `json:"pos_brut,omitempty"`
	PosKomisyon      *decimal.Decimal `json:"pos_komisyon,omitempty"`
	PosNet           *decimal.Decimal `json:"pos_net,omitempty"`
	PosEffectiveRate *decimal.Decimal `json:"pos_effective_rate,omitempty"`

	BankAccountName string `json:"bank_account_name,omitempty"`
	CardName        string `json:"card_name,omitempty"`
	ContactName     string `json:"contact_name,omitempty"`
	CheckNo         string `json:"check_no,omitempty"`

	Tags      []string `json:"tags"`
	Backdated bool     `json:"backdated"`
	CreatedBy string   `json:"created_by"`
	CreatedAt string   `json:"created_at"`
}

func toTransactionResponse(t models.Transaction) TransactionResponse {
	da := ledger.DisplayAmountsFor(t)

	resp := TransactionResponse{
		ID:               t.ID,
		TxnNo:            t.TxnNo,
		Method:           t.Method,
		Type:             t.Type,
		Direction:        t.Direction,
		Amount:           t.Amount,
		Currency:         t.Currency,
		Date:             t.TxnDate.Format("2006-01-02"),
		Description:      t.Description,
		Note:             t.Note,
		Inflow:           da.Inflow,
		Outflow:          da.Outflow,
		PosBrut:          t.PosBrut,
		PosKomisyon:      t.PosKomisyon,
		PosNet:           t.PosNet,
		PosEffectiveRate: t.PosEffectiveRate,
		Tags:             make([]string, 0, len(t.Tags)),
		Backdated:        t.Backdated,
		CreatedBy:        t.CreatedByName,
		CreatedAt:        t.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if t.BankAccount != nil {
		resp.BankAccountName = t.BankAccount.Name
	}
	if t.Card != nil {
		resp.CardName = t.Card.Name
	}
	if t.Contact != nil {
		resp.ContactName = t.Contact.Name
	}
	if t.Check != nil {
		resp.CheckNo = t.Check.CheckNo
	}
	for _, tag := range t.Tags {
		resp.Tags = append(resp.Tags, tag.Name)
	}
	return resp
}

// İş hatalarını HTTP koduna çevir
func asFiberError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrCheckAlreadyPaid):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "İşlem gerçekleştirilemedi")
	}
}

// POST /api/transactions/cash-in
func CashInHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body ledger.CashMovementInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		t, err := ledger.CashIn(actor, body)
		if err != nil {
			return asFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(*t))
	}
}

// POST /api/transactions/cash-out
func CashOutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body ledger.CashMovementInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		t, err := ledger.CashOut(actor, body)
		if err != nil {
			return asFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(*t))
	}
}

// POST /api/transactions/bank-in
func BankInHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body ledger.BankMovementInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		t, err := ledger.BankIn(actor, body)
		if err != nil {
			return asFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(*t))
	}
}

// POST /api/transactions/bank-out
func BankOutHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body ledger.BankMovementInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		t, err := ledger.BankOut(actor, body)
		if err != nil {
			return asFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(*t))
	}
}

// POST /api/transactions/pos-collection
func PosCollectionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body ledger.PosCollectionInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		collection, commission, err := ledger.PosCollection(actor, body)
		if err != nil {
			return asFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"collection": toTransactionResponse(*collection),
			"commission": toTransactionResponse(*commission),
		})
	}
}

// POST /api/transactions/card-expense
func CardExpenseHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body ledger.CardExpenseInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		t, err := ledger.CardExpense(actor, body)
		if err != nil {
			return asFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(*t))
	}
}

// POST /api/transactions/card-payment
func CardPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body ledger.CardPaymentInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		t, err := ledger.CardPayment(actor, body)
		if err != nil {
			return asFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(*t))
	}
}

// POST /api/transactions/check-payment
func CheckPaymentHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var body ledger.CheckPaymentInput
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		t, err := ledger.RegisterCheckPayment(actor, body)
		if err != nil {
			return asFiberError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(toTransactionResponse(*t))
	}
}

// DELETE /api/transactions/:id
func DeleteTransactionHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, err := auth.ActorFromContext(c)
		if err != nil {
			return err
		}

		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		if err := ledger.DeleteTransaction(actor, id); err != nil {
			return asFiberError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/transactions?from=2025-09-01&to=2025-09-30
func ListTransactionsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var from, to *string
		if v := c.Query("from"); v != "" {
			from = &v
		}
		if v := c.Query("to"); v != "" {
			to = &v
		}

		txs, err := ledger.DailyLedger(from, to)
		if err != nil {
			return asFiberError(err)
		}

		resp := make([]TransactionResponse, 0, len(txs))
		for _, t := range txs {
			resp = append(resp, toTransactionResponse(t))
		}
		return c.JSON(resp)
	}
}

// GET /api/transactions/summary/monthly?year=2025&month=9
func MonthlySummaryHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		yearStr := c.Query("year")
		monthStr := c.Query("month")
		if yearStr == "" || monthStr == "" {
			return fiber.NewError(fiber.StatusBadRequest, "year ve month zorunlu")
		}

		var year, month int
		if _, err := fmt.Sscan(yearStr, &year); err != nil || year < 2000 {
			return fiber.NewError(fiber.StatusBadRequest, "year geçersiz")
		}
		if _, err := fmt.Sscan(monthStr, &month); err != nil || month < 1 || month > 12 {
			return fiber.NewError(fiber.StatusBadRequest, "month geçersiz")
		}

		summary, err := ledger.MonthlySummary(year, month)
		if err != nil {
			return asFiberError(err)
		}
		return c.JSON(summary)
	}
}
