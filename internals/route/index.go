// file: internals/route/index.go
package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"schoolku_web/internals/configs"
	billingBackend "schoolku_web/internals/features/finance/billing/backend"
	billingController "schoolku_web/internals/features/finance/billing/controller"
	billingRoute "schoolku_web/internals/features/finance/billing/routes"
	billingService "schoolku_web/internals/features/finance/billing/service"
	"schoolku_web/internals/helpers/logger"
	authMiddleware "schoolku_web/internals/middlewares/auth"
)

var startTime time.Time

// SetupRoutes memasang semua route dan menjalankan reaper sesi halaman.
// Reaper dikembalikan agar bisa dihentikan saat shutdown.
func SetupRoutes(app *fiber.App, cfg configs.AppConfig, proofs billingController.ProofStore) (*cron.Cron, error) {
	startTime = time.Now()

	BaseRoutes(app)

	backend := billingBackend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout)
	loader := billingService.NewScriptLoader(billingService.NewSnapConfig(cfg.MidtransUseProd, cfg.MidtransClientKey))
	hub := billingController.NewOverlayHub(cfg.PageSessionTTL)

	billing := billingController.NewBillingPageController(backend, loader, hub, proofs, cfg.PageSessionTTL)
	subscription := billingController.NewSubscriptionPageController(backend, loader, hub, cfg.PageSessionTTL)
	checkout := billingController.NewCheckoutOutcomeController(hub)

	// ===================== ADMIN (bearer diteruskan ke backend) =====================
	logger.L().Info("[INFO] Setting up billing admin routes...", zap.String("backend", cfg.BackendBaseURL))
	admin := app.Group("/api/a", authMiddleware.BearerMiddleware())
	billingRoute.BillingAdminRoutes(admin, billing, subscription, checkout)

	return billingController.StartReaper("@every 1m", billing, subscription, hub)
}
