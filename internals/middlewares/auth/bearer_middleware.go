// internals/middlewares/auth/bearer_middleware.go
package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	authctx "schoolku_web/internals/helpers/auth"
	"schoolku_web/internals/helpers/logger"
)

const (
	LocSchoolID = "school_id"
	LocUserID   = "user_id"
)

// BearerMiddleware mengambil token pemanggil untuk diteruskan ke backend.
// Signature TIDAK diverifikasi di sini (backend yang memverifikasi); klaim
// hanya dibaca untuk mengikat sesi halaman ke sekolah & user.
func BearerMiddleware() fiber.Handler {
	parser := jwt.NewParser()

	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		claims := jwt.MapClaims{}
		if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
			logger.FromCtx(c.UserContext()).Warn("gagal parse token", zap.Error(err))
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token parse error")
		}
		if err := validateTokenExpiry(claims, 30*time.Second); err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized - Token expired")
		}

		schoolID := extractSchoolID(claims)
		userID := extractUserID(claims)
		c.Locals(LocSchoolID, schoolID)
		c.Locals(LocUserID, userID)

		ctx := authctx.WithBearer(c.UserContext(), tokenString)
		ctx = authctx.WithSchoolID(ctx, schoolID)
		ctx = authctx.WithUserID(ctx, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}
