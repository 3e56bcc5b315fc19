// file: internals/features/finance/billing/controller/subscription_page_controller.go
package controller

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	dto "schoolku_web/internals/features/finance/billing/dto"
	service "schoolku_web/internals/features/finance/billing/service"
	helper "schoolku_web/internals/helpers"
	authctx "schoolku_web/internals/helpers/auth"
	"schoolku_web/internals/helpers/logger"
)

type upgradePage struct {
	flow    *service.UpgradeFlow
	doc     *service.PageDocument
	effects *effectQueue
}

type SubscriptionPageController struct {
	Backend service.Backend
	Loader  *service.ScriptLoader
	Pages   *PageRegistry[*upgradePage]
	Hub     *OverlayHub
}

func NewSubscriptionPageController(backend service.Backend, loader *service.ScriptLoader, hub *OverlayHub, ttl time.Duration) *SubscriptionPageController {
	return &SubscriptionPageController{
		Backend: backend,
		Loader:  loader,
		Pages:   NewPageRegistry[*upgradePage](ttl),
		Hub:     hub,
	}
}

func (h *SubscriptionPageController) Sweep() int { return h.Pages.Sweep() }

func (h *SubscriptionPageController) lookup(c *fiber.Ctx) (string, *upgradePage, error) {
	id := strings.TrimSpace(c.Params("id"))
	up, ok := h.Pages.Get(id, authctx.OwnerFrom(c.UserContext()))
	if !ok {
		return "", nil, fiber.NewError(fiber.StatusNotFound, "Halaman tidak ditemukan atau sudah kedaluwarsa")
	}
	return id, up, nil
}

func (h *SubscriptionPageController) reply(c *fiber.Ctx, id string, up *upgradePage, err error, okMsg string) error {
	st := UpgradePageState{
		PageID:      id,
		UpgradeView: up.flow.View(),
		Scripts:     up.doc.Scripts(),
		Effects:     up.effects.drain(),
	}
	if err != nil {
		return respondError(c, err, st)
	}
	return helper.JsonOK(c, okMsg, st)
}

// POST /subscription/pages
func (h *SubscriptionPageController) CreatePage(c *fiber.Ctx) error {
	ctx := c.UserContext()
	owner := authctx.OwnerFrom(ctx)

	up := &upgradePage{doc: &service.PageDocument{}, effects: &effectQueue{}}
	gateway := &snapOverlay{hub: h.Hub, owner: owner, effects: up.effects}
	up.flow = service.NewUpgradeFlow(h.Backend, h.Loader, up.doc, gateway, up.effects)
	up.flow.Load(ctx)

	id := h.Pages.Put(owner, up)
	logger.FromCtx(ctx).Info("📄 halaman upgrade dibuat", zap.String("page_id", id))

	st := UpgradePageState{
		PageID:      id,
		UpgradeView: up.flow.View(),
		Scripts:     up.doc.Scripts(),
		Effects:     up.effects.drain(),
	}
	return helper.JsonCreated(c, "Halaman upgrade siap", st)
}

// GET /subscription/pages/:id
func (h *SubscriptionPageController) GetPage(c *fiber.Ctx) error {
	id, up, err := h.lookup(c)
	if err != nil {
		return err
	}
	return h.reply(c, id, up, nil, "ok")
}

// POST /subscription/pages/:id/select
func (h *SubscriptionPageController) Select(c *fiber.Ctx) error {
	id, up, err := h.lookup(c)
	if err != nil {
		return err
	}
	var req dto.UpgradeSelectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	err = up.flow.Select(req.PlanType, req.BillingCycle)
	return h.reply(c, id, up, err, "ok")
}

// POST /subscription/pages/:id/submit
func (h *SubscriptionPageController) Submit(c *fiber.Ctx) error {
	id, up, err := h.lookup(c)
	if err != nil {
		return err
	}
	err = up.flow.Submit(c.UserContext())
	return h.reply(c, id, up, err, "ok")
}

// DELETE /subscription/pages/:id/notices/:noticeId
func (h *SubscriptionPageController) DismissNotice(c *fiber.Ctx) error {
	id, up, err := h.lookup(c)
	if err != nil {
		return err
	}
	if !up.flow.DismissNotice(c.Params("noticeId")) {
		return fiber.NewError(fiber.StatusNotFound, "Notifikasi tidak ditemukan")
	}
	return h.reply(c, id, up, nil, "ok")
}
