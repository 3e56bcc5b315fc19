package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
	service "schoolku_web/internals/features/finance/billing/service"
	helper "schoolku_web/internals/helpers"
	helperOSS "schoolku_web/internals/helpers/oss"
)

/* ===================== State yang dikirim ke browser ===================== */

type BillingPageState struct {
	PageID     string              `json:"page_id"`
	Kind       model.BillKind      `json:"kind"`
	Copy       service.PageCopy    `json:"copy"`
	Tier       model.Tier          `json:"tier"`
	Filters    service.Filters     `json:"filters"`
	Rows       []service.BillRow   `json:"rows"`
	Pagination helper.Pagination   `json:"pagination"`
	Stats      model.BillStats     `json:"stats"`
	Dialog     *service.DialogView `json:"dialog,omitempty"`
	Upsell     bool                `json:"upsell"`
	Notices    []service.Notice    `json:"notices"`
	Scripts    []service.ScriptTag `json:"scripts"`
	Effects    []dto.Effect        `json:"effects"`
}

type UpgradePageState struct {
	PageID string `json:"page_id"`
	service.UpgradeView
	Scripts []service.ScriptTag `json:"scripts"`
	Effects []dto.Effect        `json:"effects"`
}

/* ===================== Error → response ===================== */

func messageOr(err error, fallback string) string {
	if msg := service.BackendMessage(err); msg != "" {
		return msg
	}
	return fallback
}

// respondError memetakan error service ke status HTTP; state halaman tetap
// ikut supaya browser bisa render toast & dialog terbaru.
func respondError(c *fiber.Ctx, err error, state any) error {
	var (
		ve     *service.ValidationError
		gwErr  *service.GatewayError
		apiErr *service.APIError
	)
	switch {
	case errors.As(err, &ve):
		return helper.JsonValidationError(c, ve.Fields, state)
	case errors.As(err, &gwErr):
		if gwErr.Forbidden() {
			return helper.JsonErrorWithData(c, fiber.StatusForbidden, "Pembayaran online hanya tersedia untuk paket Premium", state)
		}
		return helper.JsonErrorWithData(c, fiber.StatusBadGateway, messageOr(err, "Gagal memulai pembayaran online"), state)
	case errors.As(err, &apiErr):
		if apiErr.Status == fiber.StatusUnauthorized {
			return helper.JsonErrorWithData(c, fiber.StatusUnauthorized, "Sesi login berakhir", state)
		}
		return helper.JsonErrorWithData(c, fiber.StatusBadGateway, messageOr(err, "Backend tidak dapat memproses permintaan"), state)
	case errors.Is(err, service.ErrBillNotFound):
		return helper.JsonErrorWithData(c, fiber.StatusNotFound, err.Error(), state)
	case errors.Is(err, service.ErrBillSettled),
		errors.Is(err, service.ErrDialogBusy),
		errors.Is(err, service.ErrNoDialog):
		return helper.JsonErrorWithData(c, fiber.StatusConflict, err.Error(), state)
	case errors.Is(err, service.ErrNoPaymentMethod):
		return helper.JsonErrorWithData(c, fiber.StatusBadGateway, "Respons pembayaran tidak valid", state)
	case errors.Is(err, helperOSS.ErrUnsupportedImage):
		return helper.JsonErrorWithData(c, fiber.StatusUnsupportedMediaType, err.Error(), state)
	default:
		return helper.JsonErrorWithData(c, fiber.StatusInternalServerError, "Terjadi kesalahan", state)
	}
}
