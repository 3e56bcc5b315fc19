package middlewares

import (
	"github.com/gofiber/fiber/v2"

	"schoolku_web/internals/configs"
	"schoolku_web/internals/middlewares/logger"
)

// SetupMiddlewares memasang middleware global (urutan penting).
func SetupMiddlewares(app *fiber.App, cfg configs.AppConfig) {
	app.Use(RequestIDMiddleware())
	app.Use(RecoveryMiddleware())
	app.Use(logger.LoggerMiddleware())
	app.Use(CorsMiddleware(cfg.CorsAllowOrigins))
	app.Use(GlobalRateLimiter())
}
