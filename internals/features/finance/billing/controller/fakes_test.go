package controller

import (
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
	service "schoolku_web/internals/features/finance/billing/service"
	helper "schoolku_web/internals/helpers"
	authctx "schoolku_web/internals/helpers/auth"
)

type stubBackend struct {
	mu sync.Mutex

	tier       string
	bills      []model.Bill
	stats      model.BillStats
	onlineResp dto.OnlinePaymentResponse
	onlineErr  error
	manualErr  error
	upgrade    dto.UpgradeResponse

	listCalls   int
	onlineCalls int
	manualCalls []dto.ManualPaymentRequest
}

func (s *stubBackend) ListBills(_ context.Context, _ model.BillKind, _ string) ([]model.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	return append([]model.Bill(nil), s.bills...), nil
}

func (s *stubBackend) GetBillStats(_ context.Context, _ model.BillKind) (model.BillStats, error) {
	return s.stats, nil
}

func (s *stubBackend) CreateOnlinePayment(_ context.Context, _ model.BillKind, _ dto.OnlinePaymentRequest) (dto.OnlinePaymentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onlineCalls++
	return s.onlineResp, s.onlineErr
}

func (s *stubBackend) RecordManualPayment(_ context.Context, _ model.BillKind, _ string, req dto.ManualPaymentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manualCalls = append(s.manualCalls, req)
	return s.manualErr
}

func (s *stubBackend) GetTenantProfile(_ context.Context) (dto.TenantProfile, error) {
	return dto.TenantProfile{SubscriptionTier: s.tier}, nil
}

func (s *stubBackend) GetSubscriptionPricing(_ context.Context) (dto.SubscriptionPricing, error) {
	return dto.SubscriptionPricing{}, &service.APIError{Op: "pricing", Status: http.StatusInternalServerError}
}

func (s *stubBackend) UpgradeSubscription(_ context.Context, _ dto.UpgradeRequest) (dto.UpgradeResponse, error) {
	return s.upgrade, nil
}

func (s *stubBackend) listCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

type stubProofs struct {
	url  string
	err  error
	dirs []string
}

func (s *stubProofs) UploadProofAsWebP(_ context.Context, dir string, _ *multipart.FileHeader) (string, error) {
	s.dirs = append(s.dirs, dir)
	return s.url, s.err
}

func sampleBills() []model.Bill {
	return []model.Bill{
		{ID: "b1", PayerName: "Ahmad Fauzi", Amount: 500000, Period: "2024-01", Status: model.BillStatusPending},
		{ID: "b2", PayerName: "Siti Aminah", Amount: 500000, Period: "2024-01", Status: model.BillStatusPaid},
		{ID: "b3", PayerName: "Budi Santoso", Amount: 450000, Period: "2024-02", Status: model.BillStatusOverdue},
	}
}

// withUser meniru BearerMiddleware tanpa JWT: header X-Test-User jadi user id.
func withUser(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ctx = authctx.WithBearer(ctx, "token-test")
	ctx = authctx.WithSchoolID(ctx, "school-1")
	ctx = authctx.WithUserID(ctx, c.Get("X-Test-User", "user-1"))
	c.SetUserContext(ctx)
	return c.Next()
}

type testEnv struct {
	app          *fiber.App
	backend      *stubBackend
	hub          *OverlayHub
	billing      *BillingPageController
	subscription *SubscriptionPageController
}

func newTestEnv(t testing.TB, backend *stubBackend, proofs ProofStore) *testEnv {
	t.Helper()

	loader := service.NewScriptLoader(service.NewSnapConfig(false, "Mid-client-test"))
	hub := NewOverlayHub(0)
	env := &testEnv{
		app:          fiber.New(fiber.Config{ErrorHandler: helper.FromFiberError}),
		backend:      backend,
		hub:          hub,
		billing:      NewBillingPageController(backend, loader, hub, proofs, 0),
		subscription: NewSubscriptionPageController(backend, loader, hub, 0),
	}
	checkout := NewCheckoutOutcomeController(hub)

	api := env.app.Group("/api/a", withUser)
	pages := api.Group("/billing/:kind/pages")
	pages.Post("/", env.billing.CreatePage)
	pages.Get("/:id", env.billing.GetPage)
	pages.Post("/:id/refresh", env.billing.Refresh)
	pages.Post("/:id/bills/:billId/pay-online", env.billing.PayOnline)
	pages.Post("/:id/bills/:billId/manual", env.billing.OpenManual)
	pages.Post("/:id/manual/submit", env.billing.SubmitManual)
	pages.Post("/:id/manual/proof", env.billing.UploadProof)
	pages.Post("/:id/dialog/retry", env.billing.RetryOnline)
	pages.Post("/:id/dialog/close", env.billing.CloseDialog)
	pages.Post("/:id/upsell/dismiss", env.billing.DismissUpsell)
	pages.Delete("/:id/notices/:noticeId", env.billing.DismissNotice)

	sub := api.Group("/subscription/pages")
	sub.Post("/", env.subscription.CreatePage)
	sub.Get("/:id", env.subscription.GetPage)
	sub.Post("/:id/select", env.subscription.Select)
	sub.Post("/:id/submit", env.subscription.Submit)

	api.Post("/checkout/:token/outcome", checkout.Report)
	return env
}

type envelope[T any] struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
	Data    T                   `json:"data"`
}

func (e *testEnv) do(t testing.TB, method, url string, body any, headers ...string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t testing.TB, raw []byte) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return env
}

func (e *testEnv) createBillingPage(t testing.TB, kind string) BillingPageState {
	t.Helper()
	status, raw := e.do(t, http.MethodPost, "/api/a/billing/"+kind+"/pages", nil)
	require.Equal(t, http.StatusCreated, status, string(raw))
	return decode[BillingPageState](t, raw).Data
}

type jsonMap = map[string]any
