package route

import (
	"github.com/gofiber/fiber/v2"

	billingController "schoolku_web/internals/features/finance/billing/controller"
	middlewares "schoolku_web/internals/middlewares"
)

/*
Admin routes: halaman tagihan SPP/Syahriah + upgrade langganan
Contoh mount: BillingAdminRoutes(app.Group("/api/a", bearer), billing, subscription, checkout)
Final paths:
- /api/a/billing/:kind/pages ...
- /api/a/subscription/pages ...
- /api/a/checkout/:token/outcome
*/
func BillingAdminRoutes(
	r fiber.Router,
	billing *billingController.BillingPageController,
	subscription *billingController.SubscriptionPageController,
	checkout *billingController.CheckoutOutcomeController,
) {
	payLimiter := middlewares.PaymentRateLimiter()

	// ====== Halaman tagihan (kind: spp | syahriah) ======
	pages := r.Group("/billing/:kind/pages")
	pages.Post("/", billing.CreatePage)
	pages.Get("/:id", billing.GetPage)
	pages.Post("/:id/refresh", billing.Refresh)

	pages.Post("/:id/bills/:billId/pay-online", payLimiter, billing.PayOnline)
	pages.Post("/:id/bills/:billId/manual", billing.OpenManual)
	pages.Post("/:id/manual/submit", payLimiter, billing.SubmitManual)
	pages.Post("/:id/manual/proof", middlewares.UploadRateLimiter(), billing.UploadProof)

	pages.Post("/:id/dialog/retry", payLimiter, billing.RetryOnline)
	pages.Post("/:id/dialog/close", billing.CloseDialog)
	pages.Post("/:id/upsell/dismiss", billing.DismissUpsell)
	pages.Delete("/:id/notices/:noticeId", billing.DismissNotice)

	// ====== Upgrade langganan ======
	sub := r.Group("/subscription/pages")
	sub.Post("/", subscription.CreatePage)
	sub.Get("/:id", subscription.GetPage)
	sub.Post("/:id/select", subscription.Select)
	sub.Post("/:id/submit", payLimiter, subscription.Submit)
	sub.Delete("/:id/notices/:noticeId", subscription.DismissNotice)

	// ====== Hasil overlay Snap dari browser ======
	r.Post("/checkout/:token/outcome", checkout.Report)
}
