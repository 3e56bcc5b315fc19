// file: internals/features/finance/billing/controller/checkout_outcome_controller.go
package controller

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/midtrans/midtrans-go/coreapi"
	"go.uber.org/zap"

	dto "schoolku_web/internals/features/finance/billing/dto"
	service "schoolku_web/internals/features/finance/billing/service"
	helper "schoolku_web/internals/helpers"
	authctx "schoolku_web/internals/helpers/auth"
	"schoolku_web/internals/helpers/logger"
)

// CheckoutOutcomeController menerima hasil callback window.snap.pay dari
// browser dan meneruskannya ke handler yang diparkir saat token dibuat.
type CheckoutOutcomeController struct {
	Hub       *OverlayHub
	Validator *validator.Validate
}

func NewCheckoutOutcomeController(hub *OverlayHub) *CheckoutOutcomeController {
	return &CheckoutOutcomeController{Hub: hub, Validator: validator.New()}
}

// toCheckoutResult: objek hasil Snap punya bentuk yang sama dengan
// transaction status Midtrans. Field yang tidak cocok diabaikan.
func toCheckoutResult(raw map[string]any) (service.CheckoutResult, error) {
	if len(raw) == 0 {
		return service.CheckoutResult{}, nil
	}
	b, err := sonic.Marshal(raw)
	if err != nil {
		return service.CheckoutResult{}, err
	}
	var st coreapi.TransactionStatusResponse
	if err := sonic.Unmarshal(b, &st); err != nil {
		return service.CheckoutResult{}, err
	}
	return service.CheckoutResult{
		OrderID:           st.OrderID,
		TransactionID:     st.TransactionID,
		TransactionStatus: st.TransactionStatus,
		StatusCode:        st.StatusCode,
		StatusMessage:     st.StatusMessage,
		PaymentType:       st.PaymentType,
		GrossAmount:       st.GrossAmount,
	}, nil
}

// POST /checkout/:token/outcome
func (h *CheckoutOutcomeController) Report(c *fiber.Ctx) error {
	var req dto.CheckoutOutcomeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	req.Event = strings.ToLower(strings.TrimSpace(req.Event))
	if err := h.Validator.Struct(req); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err), nil)
	}

	ctx := c.UserContext()
	token := strings.TrimSpace(c.Params("token"))
	handlers, ok := h.Hub.Take(token, authctx.OwnerFrom(ctx))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "Checkout tidak ditemukan atau sudah selesai")
	}

	result, err := toCheckoutResult(req.Result)
	if err != nil {
		// hasil tidak terbaca tetap diproses; refetch yang jadi sumber kebenaran
		logger.FromCtx(ctx).Warn("hasil snap tidak terbaca", zap.Error(err))
	}
	logger.FromCtx(ctx).Info("🔔 hasil checkout",
		zap.String("event", req.Event),
		zap.String("order_id", result.OrderID),
		zap.String("transaction_status", result.TransactionStatus),
	)

	switch req.Event {
	case "success":
		if handlers.OnSuccess != nil {
			handlers.OnSuccess(ctx, result)
		}
	case "pending":
		if handlers.OnPending != nil {
			handlers.OnPending(ctx, result)
		}
	case "error":
		if handlers.OnError != nil {
			handlers.OnError(ctx, result)
		}
	case "close":
		if handlers.OnClose != nil {
			handlers.OnClose(ctx)
		}
	}
	return helper.JsonOK(c, "ok", fiber.Map{"event": req.Event})
}
