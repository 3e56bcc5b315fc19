package database

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis"
	"go.uber.org/zap"

	"schoolku_web/internals/configs"
	"schoolku_web/internals/helpers/logger"
)

// NewLimiterStorage: storage bersama untuk rate limiter bila REDIS_HOST diset
// (beberapa instance web tier berbagi hitungan). Kosong → nil, limiter pakai memori.
func NewLimiterStorage(cfg configs.AppConfig) fiber.Storage {
	if cfg.RedisHost == "" {
		logger.L().Info("ℹ️ REDIS_HOST kosong, rate limiter pakai memori lokal")
		return nil
	}

	logger.L().Info("🔌 Koneksi ke Redis untuk rate limiter...",
		zap.String("host", cfg.RedisHost),
		zap.Int("port", cfg.RedisPort),
		zap.Int("db", cfg.RedisDB),
	)
	// redis.New panic kalau ping gagal, sama seperti koneksi DB saat bootstrap
	storage := redis.New(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		Database: cfg.RedisDB,
		Reset:    false,
	})
	logger.L().Info("✅ Redis siap dipakai rate limiter")
	return storage
}
