package admin

import (
	"fmt"

	"kasa-backend/internal/audit"
	"kasa-backend/internal/database"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type CreateContactRequest struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

type UpdateContactRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Description *string `json:"description"`
}

// POST /api/admin/contacts
func CreateContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateContactRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "name zorunlu")
		}

		contact := models.Contact{
			Name:        body.Name,
			Phone:       body.Phone,
			Email:       body.Email,
			Description: body.Description,
		}

		if err := database.DB.Create(&contact).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari oluşturulamadı")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "contact",
				EntityID:    contact.ID,
				Action:      models.AuditActionCreate,
				Description: fmt.Sprintf("Cari eklendi: %s", contact.Name),
				After:       contact,
			})
		}

		return c.Status(fiber.StatusCreated).JSON(contact)
	}
}

// GET /api/admin/contacts
func ListContactsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var contacts []models.Contact
		if err := database.DB.Order("name asc").Find(&contacts).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cariler listelenemedi")
		}
		return c.JSON(contacts)
	}
}

// PUT /api/admin/contacts/:id
func UpdateContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var contact models.Contact
		if err := database.DB.First(&contact, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari bulunamadı")
		}

		var body UpdateContactRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Geçersiz istek gövdesi")
		}

		oldContact := contact

		if body.Name != nil {
			contact.Name = *body.Name
		}
		if body.Phone != nil {
			contact.Phone = *body.Phone
		}
		if body.Email != nil {
			contact.Email = *body.Email
		}
		if body.Description != nil {
			contact.Description = *body.Description
		}

		if err := database.DB.Save(&contact).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari güncellenemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "contact",
				EntityID:    contact.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Cari güncellendi: %s", contact.Name),
				Before:      oldContact,
				After:       contact,
			})
		}

		return c.JSON(contact)
	}
}

// DELETE /api/admin/contacts/:id
func DeleteContactHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var contact models.Contact
		if err := database.DB.First(&contact, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Cari bulunamadı")
		}

		var count int64
		database.DB.Model(&models.Transaction{}).Where("contact_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Bu cariye ait işlemler var, önce işlemleri silin")
		}

		if err := database.DB.Delete(&contact).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Cari silinemedi")
		}

		userID, userName, err := getUserInfo(c)
		if err == nil {
			_ = audit.WriteLog(database.DB, audit.LogOptions{
				UserID:      userID,
				UserName:    userName,
				EntityType:  "contact",
				EntityID:    contact.ID,
				Action:      models.AuditActionDelete,
				Description: fmt.Sprintf("Cari silindi: %s", contact.Name),
				Before:      contact,
			})
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
