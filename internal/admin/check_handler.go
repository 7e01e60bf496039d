package admin

import (
	"fmt"
	"time"

	"kasa-backend/internal/audit"
	"kasa-backend/internal/database"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CreateCheckRequest struct {
	CheckNo     string             `json:"check_no"`
	Amount      decimal.Decimal    `json:"amount"`
	Currency    string             `json:"currency"`
	DueDate     string             `json:"due_date"` // "2006-01-02"
	Status      models.CheckStatus `json:"status"`   // KASADA veya ODEMEDE
	ContactID   *uint              `json:"contact_id"`
	Description string             `json:"description"`
}

type UpdateCheckStatusRequest struct {
	Status models.CheckStatus `json:"status"`
}

type CheckResponse struct {
	ID          uint               `json:"id"`
	CheckNo     string             `json:"check_no"`
	Amount      decimal.Decimal    `json:"amount"`
	Currency    string             `json:"currency"`
	DueDate     string             `json:"due_date"`
	Status      models.CheckStatus `json:"status"`
	ContactID   *uint              `json:"contact_id,omitempty"`
	Description string             `json:"description"`
	CreatedAt   string             `json:"created_at"`
}

func toCheckResponse(check models.Check) CheckResponse {
	return CheckResponse{
		ID:          check.ID,
		CheckNo:     check.CheckNo,
		Amount:      check.Amount,
		Currency:    check.Currency,
		DueDate:     check.DueDate.Format("2006-01-02"),
		Status:      check.Status,
		ContactID:   check.ContactID,
		Description: check.Description,
		CreatedAt:   check.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// Elle yapılabilecek durum geçişleri. ODEMEDE -> ODEME_YAPILDI yalnızca
// çek ödeme işlemiyle gerçekleşir, buradan geçilemez.
var manualCheckTransitions = map[models.CheckStatus][]models.CheckStatus{
	models.CheckStatusKasada:          {models.CheckStatusBankadaTahsilde, models.CheckStatusIptal},
	models.CheckStatusBankadaTahsilde: {models.CheckStatusTahsilOldu, models.CheckStatusKarsiliksiz, models.CheckStatusIptal},
	models.CheckStatusOdemede:         {models.CheckStatusKarsiliksiz, models.CheckStatusIptal},
}

func timeParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func canTransition(from, to models.CheckStatus) bool {
	for _, allowed := range manualCheckTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// POST /api/admin/checks
func CreateCheckHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCheckRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.CheckNo == "" {
			return fiber.NewError(fiber.StatusBadRequest, "check_no zorunlu")
		}
		if body.Amount.Cmp(decimal.Zero) <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Tutar 0'dan büyük olmalı")
		}
		if body.Status != models.CheckStatusKasada && body.Status != models.CheckStatusOdemede {
			return fiber.NewError(fiber.StatusBadRequest, "Başlangıç durumu KASADA veya ODEMEDE olmalı")
		}
		if body.Currency == "" {
			body.Currency = "TRY"
		}

		dueDate, err := timeParseDate(body.DueDate)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "due_date formatı geçersiz, 'YYYY-MM-DD' olmalı")
		}

		if body.ContactID != nil {
			var contact models.Contact
			if err := database.DB.First(&contact, *body.ContactID).Error; err != nil {
				return fiber.NewError(fiber.StatusNotFound, "Cari bulunamadı")
			}
		}

		check := models.Check{
			CheckNo:     body.CheckNo,
			Amount:      body.Amount,
			Currency:    body.Currency,
			DueDate:     dueDate,
			Status:      body.Status,
			ContactID:   body.ContactID,
			Description: body.Description,
		}

		if err := database.DB.Create(&check).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çek oluşturulamadı")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "check",
				EntityID:    check.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Çek eklendi: %s - %s TL", check.CheckNo, check.Amount.StringFixed(2)),
				After:       check,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toCheckResponse(check))
	}
}

// GET /api/admin/checks?status=KASADA
func ListChecksHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Check{})

		if status := c.Query("status"); status != "" {
			dbq = dbq.Where("status = ?", status)
		}

		var checks []models.Check
		if err := dbq.Order("due_date asc, id asc").Find(&checks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Çekler listelenemedi")
		}

		resp := make([]CheckResponse, 0, len(checks))
		for _, check := range checks {
			resp = append(resp, toCheckResponse(check))
		}
		return c.JSON(resp)
	}
}

// GET /api/admin/checks/:id/moves
func ListCheckMovesHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var moves []models.CheckMove
		if err := database.DB.Where("check_id = ?", id).Order("created_at asc, id asc").Find(&moves).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Hareketler listelenemedi")
		}
		return c.JSON(moves)
	}
}

// POST /api/checks/:id/status
// Her elle geçişte de CheckMove satırı düşülür.
func UpdateCheckStatusHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var id uint
		if _, err := fmt.Sscan(c.Params("id"), &id); err != nil || id == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "id geçersiz")
		}

		var body UpdateCheckStatusRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		userID, userName, err := getUserInfo(c)
		if err != nil {
			return err
		}

		var check models.Check
		if err := database.DB.First(&check, id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Çek bulunamadı")
		}

		if !canTransition(check.Status, body.Status) {
			return fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("Geçersiz durum geçişi: %s -> %s", check.Status, body.Status))
		}

		fromStatus := check.Status

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&check).Update("status", body.Status).Error; err != nil {
				return err
			}
			move := models.CheckMove{
				CheckID:       check.ID,
				Action:        models.CheckMoveActionDurum,
				FromStatus:    fromStatus,
				ToStatus:      body.Status,
				PerformedByID: userID,
				PerformedBy:   userName,
			}
			return tx.Create(&move).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Durum güncellenemedi")
		}

		return c.JSON(toCheckResponse(check))
	}
}
