package middlewares

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	helper "schoolku_web/internals/helpers"
)

// limiterStorage nil → storage memori bawaan limiter.
var limiterStorage fiber.Storage

// UseLimiterStorage dipanggil sekali saat bootstrap, sebelum limiter dibuat.
func UseLimiterStorage(s fiber.Storage) {
	limiterStorage = s
}

func newLimiter(max int, window time.Duration, message string) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Storage:    limiterStorage,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return helper.JsonError(c, fiber.StatusTooManyRequests, message)
		},
	})
}

// Global limiter: untuk semua endpoint biasa
func GlobalRateLimiter() fiber.Handler {
	return newLimiter(100, 1*time.Minute, "❌ Terlalu banyak permintaan. Silakan coba lagi nanti.")
}

// Rate limiter untuk inisiasi pembayaran (token Snap / upgrade), lebih ketat
func PaymentRateLimiter() fiber.Handler {
	return newLimiter(20, 1*time.Minute, "❌ Terlalu banyak permintaan pembayaran. Coba beberapa saat lagi.")
}

// Rate limiter untuk upload bukti bayar
func UploadRateLimiter() fiber.Handler {
	return newLimiter(10, 5*time.Minute, "❌ Terlalu banyak upload bukti. Tunggu beberapa menit ya.")
}
