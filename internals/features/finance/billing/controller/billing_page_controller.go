// file: internals/features/finance/billing/controller/billing_page_controller.go
package controller

import (
	"context"
	"errors"
	"mime/multipart"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
	service "schoolku_web/internals/features/finance/billing/service"
	helper "schoolku_web/internals/helpers"
	authctx "schoolku_web/internals/helpers/auth"
	"schoolku_web/internals/helpers/logger"
	helperOSS "schoolku_web/internals/helpers/oss"
)

// ProofStore menyimpan foto bukti bayar dan mengembalikan URL publik.
type ProofStore interface {
	UploadProofAsWebP(ctx context.Context, dir string, fh *multipart.FileHeader) (string, error)
}

type billingPage struct {
	page    *service.PaymentPage
	doc     *service.PageDocument
	effects *effectQueue
}

/* =======================================================================
   Controller
======================================================================= */

type BillingPageController struct {
	Backend   service.Backend
	Resolver  *service.TierResolver
	Pages     *PageRegistry[*billingPage]
	Hub       *OverlayHub
	Proofs    ProofStore // nil → upload bukti dimatikan
	Validator *validator.Validate
}

func NewBillingPageController(backend service.Backend, loader *service.ScriptLoader, hub *OverlayHub, proofs ProofStore, ttl time.Duration) *BillingPageController {
	return &BillingPageController{
		Backend:   backend,
		Resolver:  service.NewTierResolver(backend, loader),
		Pages:     NewPageRegistry[*billingPage](ttl),
		Hub:       hub,
		Proofs:    proofs,
		Validator: validator.New(),
	}
}

func (h *BillingPageController) Sweep() int { return h.Pages.Sweep() }

/* =======================================================================
   Helpers
======================================================================= */

func parseKind(c *fiber.Ctx) (model.BillKind, service.PageCopy, error) {
	kind, ok := model.ParseBillKind(c.Params("kind"))
	if !ok {
		return "", service.PageCopy{}, fiber.NewError(fiber.StatusNotFound, "Jenis tagihan tidak dikenal")
	}
	pc, _ := service.CopyFor(kind)
	return kind, pc, nil
}

func (h *BillingPageController) lookup(c *fiber.Ctx) (string, *billingPage, error) {
	kind, _, err := parseKind(c)
	if err != nil {
		return "", nil, err
	}
	id := strings.TrimSpace(c.Params("id"))
	bp, ok := h.Pages.Get(id, authctx.OwnerFrom(c.UserContext()))
	if !ok || bp.page.Kind() != kind {
		return "", nil, fiber.NewError(fiber.StatusNotFound, "Halaman tidak ditemukan atau sudah kedaluwarsa")
	}
	return id, bp, nil
}

func (h *BillingPageController) state(c *fiber.Ctx, id string, bp *billingPage) BillingPageState {
	v := bp.page.View()

	paging := helper.ResolvePaging(c, 20, 100)
	total := len(v.Rows)
	rows := helper.PageSlice(v.Rows, paging)
	pg := helper.BuildPaginationFromPage(int64(total), paging.Page, paging.PerPage)
	pg.Count = len(rows)

	return BillingPageState{
		PageID:     id,
		Kind:       v.Copy.Kind,
		Copy:       v.Copy,
		Tier:       v.Tier,
		Filters:    v.Filters,
		Rows:       rows,
		Pagination: pg,
		Stats:      v.Stats,
		Dialog:     v.Dialog,
		Upsell:     v.Upsell,
		Notices:    v.Notices,
		Scripts:    bp.doc.Scripts(),
		Effects:    bp.effects.drain(),
	}
}

func (h *BillingPageController) reply(c *fiber.Ctx, id string, bp *billingPage, err error, okMsg string) error {
	st := h.state(c, id, bp)
	if err != nil {
		return respondError(c, err, st)
	}
	return helper.JsonOK(c, okMsg, st)
}

/* =======================================================================
   Handlers
======================================================================= */

// POST /billing/:kind/pages
func (h *BillingPageController) CreatePage(c *fiber.Ctx) error {
	_, pc, err := parseKind(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()
	owner := authctx.OwnerFrom(ctx)

	bp := &billingPage{doc: &service.PageDocument{}, effects: &effectQueue{}}
	session := h.Resolver.Resolve(ctx, bp.doc)
	gateway := &snapOverlay{hub: h.Hub, owner: owner, effects: bp.effects}
	bp.page = service.NewPaymentPage(pc, session, h.Backend, gateway)
	bp.page.Load(ctx)

	id := h.Pages.Put(owner, bp)
	logger.FromCtx(ctx).Info("📄 halaman tagihan dibuat",
		zap.String("page_id", id),
		zap.String("kind", string(pc.Kind)),
		zap.String("tier", string(session.Tier)),
	)

	st := h.state(c, id, bp)
	return helper.JsonCreated(c, "Halaman "+pc.Title+" siap", st)
}

// GET /billing/:kind/pages/:id?search&status&period&page&per_page
func (h *BillingPageController) GetPage(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}

	var q dto.ListBillsQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Query tidak valid")
	}
	if err := h.Validator.Struct(q); err != nil {
		return helper.JsonValidationError(c, helper.FieldErrors(err), nil)
	}
	bp.page.SetFilters(service.Filters{Search: q.Search, Status: q.Status, Period: q.Period})

	return h.reply(c, id, bp, nil, "ok")
}

// POST /billing/:kind/pages/:id/refresh
func (h *BillingPageController) Refresh(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}
	bp.page.Refresh(c.UserContext())
	return h.reply(c, id, bp, nil, "Data diperbarui")
}

// POST /billing/:kind/pages/:id/bills/:billId/pay-online
func (h *BillingPageController) PayOnline(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}
	err = bp.page.PayOnline(c.UserContext(), c.Params("billId"))
	return h.reply(c, id, bp, err, "ok")
}

// POST /billing/:kind/pages/:id/dialog/retry
// Minta token ulang untuk dialog online yang masih terbuka (setelah gagal).
func (h *BillingPageController) RetryOnline(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}
	err = bp.page.RetryOnlinePayment(c.UserContext())
	return h.reply(c, id, bp, err, "ok")
}

// POST /billing/:kind/pages/:id/bills/:billId/manual
func (h *BillingPageController) OpenManual(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}
	err = bp.page.OpenManualPayment(c.Params("billId"))
	return h.reply(c, id, bp, err, "ok")
}

// POST /billing/:kind/pages/:id/manual/submit
func (h *BillingPageController) SubmitManual(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}
	var req dto.ManualPaymentSubmit
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json: "+err.Error())
	}
	err = bp.page.SubmitManualPayment(c.UserContext(), req.ToDraft())
	return h.reply(c, id, bp, err, "Pembayaran manual tercatat")
}

// POST /billing/:kind/pages/:id/manual/proof (multipart: proof)
func (h *BillingPageController) UploadProof(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}
	if h.Proofs == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Upload bukti belum dikonfigurasi")
	}
	if d := bp.page.View().Dialog; d == nil || d.Intent.Path != model.PaymentPathManual {
		return h.reply(c, id, bp, service.ErrNoDialog, "")
	}

	fh, err := c.FormFile("proof")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "File bukti (proof) wajib diunggah")
	}

	ctx := c.UserContext()
	dir := path.Join(authctx.SchoolIDFrom(ctx), string(bp.page.Kind()))
	proofURL, err := h.Proofs.UploadProofAsWebP(ctx, dir, fh)
	if err != nil {
		logger.FromCtx(ctx).Error("upload bukti gagal", zap.Error(err))
		st := h.state(c, id, bp)
		if errors.Is(err, helperOSS.ErrUnsupportedImage) {
			return respondError(c, err, st)
		}
		return helper.JsonErrorWithData(c, fiber.StatusBadGateway, "Gagal menyimpan bukti bayar", st)
	}

	err = bp.page.AttachProof(proofURL)
	return h.reply(c, id, bp, err, "Bukti bayar terunggah")
}

// POST /billing/:kind/pages/:id/dialog/close
func (h *BillingPageController) CloseDialog(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}
	bp.page.CloseDialog()
	return h.reply(c, id, bp, nil, "ok")
}

// POST /billing/:kind/pages/:id/upsell/dismiss
func (h *BillingPageController) DismissUpsell(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}
	bp.page.DismissUpsell()
	return h.reply(c, id, bp, nil, "ok")
}

// DELETE /billing/:kind/pages/:id/notices/:noticeId
func (h *BillingPageController) DismissNotice(c *fiber.Ctx) error {
	id, bp, err := h.lookup(c)
	if err != nil {
		return err
	}
	if !bp.page.DismissNotice(c.Params("noticeId")) {
		return fiber.NewError(fiber.StatusNotFound, "Notifikasi tidak ditemukan")
	}
	return h.reply(c, id, bp, nil, "ok")
}
