package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"
	"go.uber.org/zap"

	"schoolku_web/internals/configs"
	database "schoolku_web/internals/databases"
	billingController "schoolku_web/internals/features/finance/billing/controller"
	helper "schoolku_web/internals/helpers"
	"schoolku_web/internals/helpers/logger"
	helperOSS "schoolku_web/internals/helpers/oss"
	middlewares "schoolku_web/internals/middlewares"
	routes "schoolku_web/internals/route"
)

func main() {
	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()

	configs.LoadEnv()
	cfg := configs.Load()

	app := fiber.New(fiber.Config{
		// 🚀 JSON super cepat
		JSONEncoder:             sonic.Marshal,
		JSONDecoder:             sonic.Unmarshal,
		DisableStartupMessage:   true,
		ProxyHeader:             fiber.HeaderXForwardedFor,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          []string{"0.0.0.0/0"},
		BodyLimit:               8 * 1024 * 1024, // bukti bayar max 5MB + overhead multipart
		ErrorHandler:            helper.FromFiberError,
	})

	// ⚙️ middleware dasar + performa
	app.Use(compress.New(compress.Config{Level: compress.LevelDefault})) // gzip
	app.Use(etag.New())                                                  // 304 caching

	// 🚦 storage limiter (Redis bila dikonfigurasi)
	middlewares.UseLimiterStorage(database.NewLimiterStorage(cfg))
	middlewares.SetupMiddlewares(app, cfg)

	// 🗂️ OSS untuk bukti bayar manual (opsional)
	var proofs billingController.ProofStore
	if svc, err := helperOSS.NewOSSServiceFromEnv("payment-proofs"); err != nil {
		logger.L().Warn("⚠️ OSS tidak aktif, upload bukti bayar dimatikan", zap.Error(err))
	} else {
		proofs = svc
	}

	// ✅ Routes + reaper sesi halaman
	reaper, err := routes.SetupRoutes(app, cfg, proofs)
	if err != nil {
		logger.L().Fatal("❌ Gagal menjalankan reaper", zap.Error(err))
	}

	// 🔒 Keep-Alive & timeout koneksi server
	app.Server().ReadTimeout = 15 * time.Second
	app.Server().WriteTimeout = 30 * time.Second
	app.Server().IdleTimeout = 90 * time.Second

	// Start server non-blocking
	go func() {
		logger.L().Info("✅ Listening", zap.String("port", cfg.Port))
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			logger.L().Fatal("server error", zap.Error(err))
		}
	}()

	// graceful shutdown + hentikan reaper
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	<-reaper.Stop().Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = app.ShutdownWithContext(ctx)
}
