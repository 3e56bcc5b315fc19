package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authctx "schoolku_web/internals/helpers/auth"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("any-secret"))
	require.NoError(t, err)
	return tok
}

func newBearerApp(seen *[3]string) *fiber.App {
	app := fiber.New()
	app.Use(BearerMiddleware())
	app.Get("/", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		*seen = [3]string{authctx.BearerFrom(ctx), authctx.SchoolIDFrom(ctx), authctx.UserIDFrom(ctx)}
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestBearerMiddleware(t *testing.T) {
	valid := signToken(t, jwt.MapClaims{
		"id":               "usr-1",
		"active_school_id": "sch-1",
		"exp":              time.Now().Add(time.Hour).Unix(),
	})

	t.Run("HeaderToken", func(t *testing.T) {
		var seen [3]string
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer  "+valid)

		resp, err := newBearerApp(&seen).Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, [3]string{valid, "sch-1", "usr-1"}, seen)
	})

	t.Run("CookieFallback", func(t *testing.T) {
		var seen [3]string
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Cookie", "access_token="+valid)

		resp, err := newBearerApp(&seen).Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		assert.Equal(t, valid, seen[0])
	})

	t.Run("Rejected", func(t *testing.T) {
		expired := signToken(t, jwt.MapClaims{"id": "usr-1", "exp": time.Now().Add(-time.Hour).Unix()})

		for name, header := range map[string]string{
			"missing": "",
			"format":  "Token " + valid,
			"garbage": "Bearer not-a-jwt",
			"expired": "Bearer " + expired,
		} {
			var seen [3]string
			req := httptest.NewRequest("GET", "/", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			resp, err := newBearerApp(&seen).Test(req)
			require.NoError(t, err, name)
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, name)
		}
	})
}

func TestExtractSchoolID(t *testing.T) {
	assert.Equal(t, "a", extractSchoolID(jwt.MapClaims{"active_school_id": "a", "school_id": "b"}))
	assert.Equal(t, "b", extractSchoolID(jwt.MapClaims{"school_id": " b "}))
	assert.Equal(t, "", extractSchoolID(jwt.MapClaims{}))
}
