package audit

import (
	"fmt"

	"kasa-backend/internal/database"
	"kasa-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?entity_type=transaction&limit=50&offset=0
func ListAuditLogsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := 50
		offset := 0

		if v := c.Query("limit"); v != "" {
			if _, err := fmt.Sscan(v, &limit); err != nil || limit <= 0 || limit > 500 {
				return fiber.NewError(fiber.StatusBadRequest, "limit geçersiz")
			}
		}
		if v := c.Query("offset"); v != "" {
			if _, err := fmt.Sscan(v, &offset); err != nil || offset < 0 {
				return fiber.NewError(fiber.StatusBadRequest, "offset geçersiz")
			}
		}

		dbq := database.DB.Model(&models.AuditLog{})

		if et := c.Query("entity_type"); et != "" {
			dbq = dbq.Where("entity_type = ?", et)
		}
		if ei := c.Query("entity_id"); ei != "" {
			var id uint
			if _, err := fmt.Sscan(ei, &id); err != nil || id == 0 {
				return fiber.NewError(fiber.StatusBadRequest, "entity_id geçersiz")
			}
			dbq = dbq.Where("entity_id = ?", id)
		}

		var logs []models.AuditLog
		if err := dbq.Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&logs).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Kayıtlar listelenemedi")
		}

		return c.JSON(logs)
	}
}
