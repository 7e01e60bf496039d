package admin

import (
	"fmt"

	"kasa-backend/internal/audit"
	"kasa-backend/internal/auth"
	"kasa-backend/internal/database"
	"kasa-backend/internal/ledger"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateBankAccountRequest struct {
	Name           string           `json:"name"`
	Iban           string           `json:"iban"`
	Currency       string           `json:"currency"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"` // boşsa 0
	Description    string           `json:"description"`
}

type UpdateBankAccountRequest struct {
	Name           *string          `json:"name"`
	Iban           *string          `json:"iban"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	Description    *string          `json:"description"`
	IsActive       *bool            `json:"is_active"`
}

type BankAccountResponse struct {
	ID             uint             `json:"id"`
	Name           string           `json:"name"`
	Iban           string           `json:"iban"`
	Currency       string           `json:"currency"`
	OpeningBalance *decimal.Decimal `json:"opening_balance"`
	Description    string           `json:"description"`
	IsActive       bool             `json:"is_active"`
	CreatedAt      string           `json:"created_at"`
	UpdatedAt      string           `json:"updated_at"`
}

func toBankAccountResponse(acc models.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:             acc.ID,
		Name:           acc.Name,
		Iban:           acc.Iban,
		Currency:       acc.Currency,
		OpeningBalance: acc.OpeningBalance,
		Description:    acc.Description,
		IsActive:       acc.IsActive,
		CreatedAt:      acc.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:      acc.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Yardımcı: Kullanıcı bilgilerini al
func getUserInfo(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "Kullanıcı bilgisi alınamadı")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Kullanıcı bulunamadı")
	}

	return userID, user.Name, nil
}

// POST /api/admin/bank-accounts
func CreateBankAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateBankAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}
		if body.Currency == "" {
			body.Currency = "TRY"
		}

		account := models.BankAccount{
			Name:           body.Name,
			Iban:           body.Iban,
			Currency:       body.Currency,
			OpeningBalance: body.OpeningBalance,
			Description:    body.Description,
			IsActive:       true,
		}

		if err := database.DB.Create(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap oluşturulamadı")
		}

		// Audit log
		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "bank_account",
				EntityID:    account.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Banka hesabı eklendi: %s", account.Name),
				After:       account,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toBankAccountResponse(account))
	}
}

// GET /api/admin/bank-accounts
func ListBankAccountsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accounts []models.BankAccount
		if err := database.DB.Order("name asc").Find(&accounts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesaplar listelenemedi")
		}

		resp := make([]BankAccountResponse, 0, len(accounts))
		for _, acc := range accounts {
			resp = append(resp, toBankAccountResponse(acc))
		}
		return c.JSON(resp)
	}
}

// GET /api/bank-accounts/balances
// Güncel bakiye saklanmaz; açılış bakiyesi + delta toplamı olarak türetilir.
func BankBalancesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		balances, err := ledger.BankBalances()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Bakiyeler hesaplanamadı")
		}

		type item struct {
			BankAccountResponse
			CurrentBalance decimal.Decimal `json:"current_balance"`
		}
		resp := make([]item, 0, len(balances))
		for _, b := range balances {
			resp = append(resp, item{
				BankAccountResponse: toBankAccountResponse(b.Account),
				CurrentBalance:      b.CurrentBalance,
			})
		}
		return c.JSON(resp)
	}
}

// PUT /api/admin/bank-accounts/:id
func UpdateBankAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var account models.BankAccount
		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hesap bulunamadı")
		}

		var body UpdateBankAccountRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		oldAccount := account

		if body.Name != nil {
			account.Name = *body.Name
		}
		if body.Iban != nil {
			account.Iban = *body.Iban
		}
		if body.OpeningBalance != nil {
			account.OpeningBalance = body.OpeningBalance
		}
		if body.Description != nil {
			account.Description = *body.Description
		}
		if body.IsActive != nil {
			account.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap güncellenemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "bank_account",
				EntityID:    account.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Banka hesabı güncellendi: %s", account.Name),
				Before:      oldAccount,
				After:       account,
			})
		}

		return c.JSON(toBankAccountResponse(account))
	}
}

// DELETE /api/admin/bank-accounts/:id
func DeleteBankAccountHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var account models.BankAccount
		if err := database.DB.First(&account, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Hesap bulunamadı")
		}

		// İşlem kayıtları var mı kontrol et
		var count int64
		database.DB.Model(&models.Transaction{}).Where("bank_account_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu hesaba ait işlemler var, önce işlemleri silin")
		}

		if err := database.DB.Delete(&account).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hesap silinemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "bank_account",
				EntityID:    account.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Banka hesabı silindi: %s", account.Name),
				Before:      account,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
