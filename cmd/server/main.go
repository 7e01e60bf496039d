package main

import (
	"log"
	"strings"

	"kasa-backend/internal/admin"
	"kasa-backend/internal/audit"
	"kasa-backend/internal/auth"
	"kasa-backend/internal/config"
	"kasa-backend/internal/dashboard"
	"kasa-backend/internal/database"
	"kasa-backend/internal/kasa"
	"kasa-backend/internal/ledger"
	"kasa-backend/internal/models"
	"kasa-backend/internal/notify"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	cfg := config.Load()
	database.Init(cfg)

	if err := ledger.SetBusinessTimezone(cfg.BusinessTimezone); err != nil {
		log.Fatal(err)
	}

	if cfg.NotifyWebhookURL != "" {
		ledger.SetNotifier(notify.NewWebhookNotifier(cfg.NotifyWebhookURL))
	} else {
		ledger.SetNotifier(notify.NewLogNotifier())
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				return c.Status(e.Code).JSON(fiber.Map{
					"error": e.Message,
				})
			}
			log.Println("Unexpected error:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Beklenmeyen sunucu hatası",
			})
		},
	})

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(cfg))
	api.Post("/auth/login", auth.LoginHandler(cfg))

	// Protected
	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))

	protected.Get("/auth/me", auth.MeHandler())

	// Admin routes
	adminRoutes := protected.Group("/admin")
	adminRoutes.Use(auth.RequireRole(models.RoleAdmin))

	// Banka hesabı yönetimi
	adminRoutes.Post("/bank-accounts", admin.CreateBankAccountHandler())
	adminRoutes.Get("/bank-accounts", admin.ListBankAccountsHandler())
	adminRoutes.Put("/bank-accounts/:id", admin.UpdateBankAccountHandler())
	adminRoutes.Delete("/bank-accounts/:id", admin.DeleteBankAccountHandler())

	// Kart yönetimi
	adminRoutes.Post("/cards", admin.CreateCardHandler())
	adminRoutes.Get("/cards", admin.ListCardsHandler())
	adminRoutes.Put("/cards/:id", admin.UpdateCardHandler())
	adminRoutes.Delete("/cards/:id", admin.DeleteCardHandler())

	// Çek yönetimi
	adminRoutes.Post("/checks", admin.CreateCheckHandler())
	adminRoutes.Get("/checks", admin.ListChecksHandler())
	adminRoutes.Get("/checks/:id/moves", admin.ListCheckMovesHandler())

	// Cari yönetimi
	adminRoutes.Post("/contacts", admin.CreateContactHandler())
	adminRoutes.Get("/contacts", admin.ListContactsHandler())
	adminRoutes.Put("/contacts/:id", admin.UpdateContactHandler())
	adminRoutes.Delete("/contacts/:id", admin.DeleteContactHandler())

	// Ortak (auth gerektiren) route'lar

	// Para giriş/çıkış
	protected.Post("/transactions/cash-in", kasa.CashInHandler())
	protected.Post("/transactions/cash-out", kasa.CashOutHandler())
	protected.Post("/transactions/bank-in", kasa.BankInHandler())
	protected.Post("/transactions/bank-out", kasa.BankOutHandler())
	protected.Post("/transactions/pos-collection", kasa.PosCollectionHandler())
	protected.Post("/transactions/card-expense", kasa.CardExpenseHandler())
	protected.Post("/transactions/card-payment", kasa.CardPaymentHandler())
	protected.Post("/transactions/check-payment", kasa.CheckPaymentHandler())
	protected.Delete("/transactions/:id", kasa.DeleteTransactionHandler())
	protected.Get("/transactions", kasa.ListTransactionsHandler())
	protected.Get("/transactions/summary/monthly", kasa.MonthlySummaryHandler())

	// Bakiyeler
	protected.Get("/bank-accounts/balances", admin.BankBalancesHandler())

	// Çek durum geçişleri (elle)
	protected.Post("/checks/:id/status", admin.UpdateCheckStatusHandler())

	// Dashboard
	protected.Get("/dashboard/cash-chart", dashboard.CashChartHandler())

	// Audit logs
	protected.Get("/audit-logs", audit.ListAuditLogsHandler())

	log.Println("Server çalışıyor port:", cfg.HTTPPort)
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal(err)
	}
}
