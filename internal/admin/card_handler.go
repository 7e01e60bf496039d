package admin

import (
	"fmt"

	"kasa-backend/internal/audit"
	"kasa-backend/internal/database"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CreateCardRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type UpdateCardRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type CardResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	RiskTry     decimal.Decimal `json:"risk_try"`
	Description string          `json:"description"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
}

func toCardResponse(card models.Card) CardResponse {
	return CardResponse{
		ID:          card.ID,
		Name:        card.Name,
		RiskTry:     card.RiskTry,
		Description: card.Description,
		IsActive:    card.IsActive,
		CreatedAt:   card.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:   card.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// POST /api/admin/cards
// Risk dışarıdan set edilmez; yalnızca kart işlemleriyle değişir.
func CreateCardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCardRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		card := models.Card{
			Name:        body.Name,
			Description: body.Description,
			IsActive:    true,
		}

		if err := database.DB.Create(&card).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kart oluşturulamadı")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "card",
				EntityID:    card.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Kart eklendi: %s", card.Name),
				After:       card,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(toCardResponse(card))
	}
}

// GET /api/admin/cards
func ListCardsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cards []models.Card
		if err := database.DB.Order("name asc").Find(&cards).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kartlar listelenemedi")
		}

		resp := make([]CardResponse, 0, len(cards))
		for _, card := range cards {
			resp = append(resp, toCardResponse(card))
		}
		return c.JSON(resp)
	}
}

// PUT /api/admin/cards/:id
func UpdateCardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var card models.Card
		if err := database.DB.First(&card, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kart bulunamadı")
		}

		var body UpdateCardRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		oldCard := card

		if body.Name != nil {
			card.Name = *body.Name
		}
		if body.Description != nil {
			card.Description = *body.Description
		}
		if body.IsActive != nil {
			card.IsActive = *body.IsActive
		}

		if err := database.DB.Save(&card).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kart güncellenemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "card",
				EntityID:    card.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Kart güncellendi: %s", card.Name),
				Before:      oldCard,
				After:       card,
			})
		}

		return c.JSON(toCardResponse(card))
	}
}

// DELETE /api/admin/cards/:id
func DeleteCardHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var card models.Card
		if err := database.DB.First(&card, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Kart bulunamadı")
		}

		var count int64
		database.DB.Model(&models.Transaction{}).Where("card_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu karta ait işlemler var, önce işlemleri silin")
		}

		if err := database.DB.Delete(&card).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kart silinemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "card",
				EntityID:    card.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Kart silindi: %s", card.Name),
				Before:      card,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
