package controller

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
	service "schoolku_web/internals/features/finance/billing/service"
	helperOSS "schoolku_web/internals/helpers/oss"
)

func TestCreatePage_Premium(t *testing.T) {
	env := newTestEnv(t, &stubBackend{tier: "premium", bills: sampleBills()}, nil)

	st := env.createBillingPage(t, "spp")
	assert.NotEmpty(t, st.PageID)
	assert.Equal(t, model.BillKindSPP, st.Kind)
	assert.Equal(t, model.TierPremium, st.Tier)
	assert.Len(t, st.Rows, 3)
	assert.Equal(t, 3, st.Pagination.Count)
	assert.Empty(t, st.Notices)

	require.Len(t, st.Scripts, 1)
	assert.Equal(t, "https://app.sandbox.midtrans.com/snap/snap.js", st.Scripts[0].Src)

	for _, r := range st.Rows {
		if r.IsPaid() {
			assert.Equal(t, service.OnlineHidden, r.Actions.Online)
			assert.False(t, r.Actions.Manual)
		} else {
			assert.Equal(t, service.OnlineEnabled, r.Actions.Online)
			assert.True(t, r.Actions.Manual)
		}
	}
}

func TestCreatePage_BasicHasNoScript(t *testing.T) {
	env := newTestEnv(t, &stubBackend{tier: "basic", bills: sampleBills()}, nil)

	st := env.createBillingPage(t, "syahriah")
	assert.Equal(t, model.TierBasic, st.Tier)
	assert.Equal(t, "Santri", st.Copy.PayerLabel)
	assert.Empty(t, st.Scripts)
	assert.Equal(t, service.OnlineUpsell, st.Rows[0].Actions.Online)
}

func TestCreatePage_UnknownKind(t *testing.T) {
	env := newTestEnv(t, &stubBackend{}, nil)

	status, _ := env.do(t, http.MethodPost, "/api/a/billing/infaq/pages", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetPage_FiltersAndOwnership(t *testing.T) {
	env := newTestEnv(t, &stubBackend{tier: "basic", bills: sampleBills()}, nil)
	st := env.createBillingPage(t, "spp")
	base := "/api/a/billing/spp/pages/" + st.PageID

	status, raw := env.do(t, http.MethodGet, base+"?status=overdue", nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[BillingPageState](t, raw).Data
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "b3", got.Rows[0].ID)

	status, raw = env.do(t, http.MethodGet, base+"?search=AHMAD&status=all", nil)
	require.Equal(t, http.StatusOK, status)
	got = decode[BillingPageState](t, raw).Data
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "b1", got.Rows[0].ID)

	status, raw = env.do(t, http.MethodGet, base+"?status=unpaid", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, decode[any](t, raw).Errors, "Status")

	// halaman milik user lain tidak terlihat
	status, _ = env.do(t, http.MethodGet, base, nil, "X-Test-User", "user-2")
	assert.Equal(t, http.StatusNotFound, status)

	// kind harus cocok dengan halaman
	status, _ = env.do(t, http.MethodGet, "/api/a/billing/syahriah/pages/"+st.PageID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPayOnline_BasicShowsUpsell(t *testing.T) {
	backend := &stubBackend{tier: "basic", bills: sampleBills()}
	env := newTestEnv(t, backend, nil)
	st := env.createBillingPage(t, "spp")
	base := "/api/a/billing/spp/pages/" + st.PageID

	status, raw := env.do(t, http.MethodPost, base+"/bills/b1/pay-online", nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[BillingPageState](t, raw).Data
	assert.True(t, got.Upsell)
	assert.Nil(t, got.Dialog)
	assert.Empty(t, got.Effects)
	assert.Zero(t, backend.onlineCalls)

	status, raw = env.do(t, http.MethodPost, base+"/upsell/dismiss", nil)
	require.Equal(t, http.StatusOK, status)
	assert.False(t, decode[BillingPageState](t, raw).Data.Upsell)
}

func TestPayOnline_PremiumCheckoutSuccess(t *testing.T) {
	backend := &stubBackend{
		tier:       "premium",
		bills:      sampleBills(),
		onlineResp: dto.OnlinePaymentResponse{SnapToken: "snap-tok-1"},
	}
	env := newTestEnv(t, backend, nil)
	st := env.createBillingPage(t, "spp")
	base := "/api/a/billing/spp/pages/" + st.PageID

	status, raw := env.do(t, http.MethodPost, base+"/bills/b1/pay-online", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	got := decode[BillingPageState](t, raw).Data
	require.NotNil(t, got.Dialog)
	assert.True(t, got.Dialog.OverlayOpen)
	assert.Equal(t, "b1", got.Dialog.Intent.Bill.ID)
	require.Len(t, got.Effects, 1)
	assert.Equal(t, dto.Effect{Type: dto.EffectSnapPay, Token: "snap-tok-1"}, got.Effects[0])
	assert.Equal(t, 1, env.hub.Len())

	// effect hanya dikirim sekali
	_, raw = env.do(t, http.MethodGet, base, nil)
	assert.Empty(t, decode[BillingPageState](t, raw).Data.Effects)

	loadsBefore := backend.listCount()
	status, raw = env.do(t, http.MethodPost, "/api/a/checkout/snap-tok-1/outcome", jsonMap{
		"event": "success",
		"result": jsonMap{
			"order_id":           "SPP-b1",
			"transaction_status": "settlement",
			"gross_amount":       "500000.00",
		},
	})
	require.Equal(t, http.StatusOK, status, string(raw))
	assert.Equal(t, loadsBefore+1, backend.listCount())

	_, raw = env.do(t, http.MethodGet, base, nil)
	got = decode[BillingPageState](t, raw).Data
	assert.Nil(t, got.Dialog)
	require.Len(t, got.Notices, 1)
	assert.Equal(t, service.NoticeSuccess, got.Notices[0].Level)

	// hasil overlay sekali pakai
	status, _ = env.do(t, http.MethodPost, "/api/a/checkout/snap-tok-1/outcome", jsonMap{"event": "success"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestPayOnline_Forbidden(t *testing.T) {
	backend := &stubBackend{
		tier:      "premium",
		bills:     sampleBills(),
		onlineErr: &service.APIError{Op: "online", Status: http.StatusForbidden, Message: "premium only"},
	}
	env := newTestEnv(t, backend, nil)
	st := env.createBillingPage(t, "spp")

	status, raw := env.do(t, http.MethodPost, "/api/a/billing/spp/pages/"+st.PageID+"/bills/b1/pay-online", nil)
	require.Equal(t, http.StatusForbidden, status)
	got := decode[BillingPageState](t, raw).Data
	assert.True(t, got.Upsell)
	assert.Nil(t, got.Dialog)
	assert.Empty(t, got.Notices)
}

func TestPayOnline_GatewayFailureKeepsDialog(t *testing.T) {
	backend := &stubBackend{tier: "premium", bills: sampleBills()}
	env := newTestEnv(t, backend, nil)
	st := env.createBillingPage(t, "spp")

	status, raw := env.do(t, http.MethodPost, "/api/a/billing/spp/pages/"+st.PageID+"/bills/b1/pay-online", nil)
	require.Equal(t, http.StatusBadGateway, status)
	got := decode[BillingPageState](t, raw).Data
	require.NotNil(t, got.Dialog)
	assert.False(t, got.Dialog.Busy)
	assert.NotEmpty(t, got.Dialog.Error)
	require.Len(t, got.Notices, 1)
	assert.Equal(t, service.NoticeError, got.Notices[0].Level)
}

func TestRetryOnline(t *testing.T) {
	backend := &stubBackend{tier: "premium", bills: sampleBills()}
	env := newTestEnv(t, backend, nil)
	st := env.createBillingPage(t, "spp")
	base := "/api/a/billing/spp/pages/" + st.PageID

	// tanpa dialog online tidak ada yang diulang
	status, _ := env.do(t, http.MethodPost, base+"/dialog/retry", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = env.do(t, http.MethodPost, base+"/bills/b1/pay-online", nil)
	require.Equal(t, http.StatusBadGateway, status)

	backend.mu.Lock()
	backend.onlineResp = dto.OnlinePaymentResponse{SnapToken: "snap-retry"}
	backend.mu.Unlock()

	status, raw := env.do(t, http.MethodPost, base+"/dialog/retry", nil)
	require.Equal(t, http.StatusOK, status, string(raw))
	got := decode[BillingPageState](t, raw).Data
	require.NotNil(t, got.Dialog)
	assert.True(t, got.Dialog.OverlayOpen)
	assert.Empty(t, got.Dialog.Error)
	assert.Equal(t, []dto.Effect{{Type: dto.EffectSnapPay, Token: "snap-retry"}}, got.Effects)
	assert.Equal(t, 2, backend.onlineCalls)
}

func TestPayOnline_SettledBill(t *testing.T) {
	env := newTestEnv(t, &stubBackend{tier: "premium", bills: sampleBills()}, nil)
	st := env.createBillingPage(t, "spp")

	status, _ := env.do(t, http.MethodPost, "/api/a/billing/spp/pages/"+st.PageID+"/bills/b2/pay-online", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = env.do(t, http.MethodPost, "/api/a/billing/spp/pages/"+st.PageID+"/bills/nope/pay-online", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCheckoutOutcome_CloseAndErrors(t *testing.T) {
	backend := &stubBackend{
		tier:       "premium",
		bills:      sampleBills(),
		onlineResp: dto.OnlinePaymentResponse{SnapToken: "snap-tok-2"},
	}
	env := newTestEnv(t, backend, nil)
	st := env.createBillingPage(t, "spp")
	base := "/api/a/billing/spp/pages/" + st.PageID

	status, _ := env.do(t, http.MethodPost, base+"/bills/b3/pay-online", nil)
	require.Equal(t, http.StatusOK, status)

	status, raw := env.do(t, http.MethodPost, "/api/a/checkout/snap-tok-2/outcome", jsonMap{"event": "explode"})
	assert.Equal(t, http.StatusUnprocessableEntity, status, string(raw))

	// token milik user lain
	status, _ = env.do(t, http.MethodPost, "/api/a/checkout/snap-tok-2/outcome", jsonMap{"event": "close"}, "X-Test-User", "user-2")
	assert.Equal(t, http.StatusNotFound, status)

	loadsBefore := backend.listCount()
	status, _ = env.do(t, http.MethodPost, "/api/a/checkout/snap-tok-2/outcome", jsonMap{"event": "close"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, loadsBefore, backend.listCount())

	_, raw = env.do(t, http.MethodGet, base, nil)
	got := decode[BillingPageState](t, raw).Data
	assert.Nil(t, got.Dialog)
	assert.Empty(t, got.Notices)
}

func TestManualPayment_Flow(t *testing.T) {
	backend := &stubBackend{tier: "basic", bills: sampleBills()}
	env := newTestEnv(t, backend, nil)
	st := env.createBillingPage(t, "syahriah")
	base := "/api/a/billing/syahriah/pages/" + st.PageID

	status, raw := env.do(t, http.MethodPost, base+"/bills/b3/manual", nil)
	require.Equal(t, http.StatusOK, status)
	got := decode[BillingPageState](t, raw).Data
	require.NotNil(t, got.Dialog)
	require.NotNil(t, got.Dialog.Intent.Draft)
	assert.Equal(t, model.ManualMethodCash, got.Dialog.Intent.Draft.Method)
	assert.Equal(t, int64(450000), got.Dialog.Intent.Draft.Amount)

	status, raw = env.do(t, http.MethodPost, base+"/manual/submit", jsonMap{"method": "cash", "amount": -5})
	require.Equal(t, http.StatusUnprocessableEntity, status)
	bad := decode[BillingPageState](t, raw)
	assert.Contains(t, bad.Errors, "Amount")
	require.NotNil(t, bad.Data.Dialog)
	assert.Empty(t, backend.manualCalls)

	status, raw = env.do(t, http.MethodPost, base+"/manual/submit", jsonMap{"method": "transfer", "amount": 450000, "note": "lunas"})
	require.Equal(t, http.StatusOK, status, string(raw))
	got = decode[BillingPageState](t, raw).Data
	assert.Nil(t, got.Dialog)
	require.Len(t, backend.manualCalls, 1)
	assert.Equal(t, model.ManualMethodTransfer, backend.manualCalls[0].Method)
	require.Len(t, got.Notices, 1)
	assert.Equal(t, service.NoticeSuccess, got.Notices[0].Level)

	// dismiss toast
	status, raw = env.do(t, http.MethodDelete, base+"/notices/"+got.Notices[0].ID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, decode[BillingPageState](t, raw).Data.Notices)

	status, _ = env.do(t, http.MethodDelete, base+"/notices/unknown", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestManualPayment_SubmitWithoutDialog(t *testing.T) {
	env := newTestEnv(t, &stubBackend{bills: sampleBills()}, nil)
	st := env.createBillingPage(t, "spp")

	status, _ := env.do(t, http.MethodPost, "/api/a/billing/spp/pages/"+st.PageID+"/manual/submit", jsonMap{"method": "cash", "amount": 1000})
	assert.Equal(t, http.StatusConflict, status)
}

func TestCloseDialog(t *testing.T) {
	env := newTestEnv(t, &stubBackend{bills: sampleBills()}, nil)
	st := env.createBillingPage(t, "spp")
	base := "/api/a/billing/spp/pages/" + st.PageID

	_, _ = env.do(t, http.MethodPost, base+"/bills/b1/manual", nil)
	status, raw := env.do(t, http.MethodPost, base+"/dialog/close", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, decode[BillingPageState](t, raw).Data.Dialog)
}

func uploadRequest(t *testing.T, url string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("proof", "bukti.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("not really a png"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestUploadProof(t *testing.T) {
	t.Run("NotConfigured", func(t *testing.T) {
		env := newTestEnv(t, &stubBackend{bills: sampleBills()}, nil)
		st := env.createBillingPage(t, "spp")
		resp, err := env.app.Test(uploadRequest(t, "/api/a/billing/spp/pages/"+st.PageID+"/manual/proof"), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("NeedsManualDialog", func(t *testing.T) {
		env := newTestEnv(t, &stubBackend{bills: sampleBills()}, &stubProofs{url: "https://cdn.test/p.webp"})
		st := env.createBillingPage(t, "spp")
		resp, err := env.app.Test(uploadRequest(t, "/api/a/billing/spp/pages/"+st.PageID+"/manual/proof"), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("AttachesURL", func(t *testing.T) {
		proofs := &stubProofs{url: "https://cdn.test/school-1/spp/p.webp"}
		env := newTestEnv(t, &stubBackend{bills: sampleBills()}, proofs)
		st := env.createBillingPage(t, "spp")
		base := "/api/a/billing/spp/pages/" + st.PageID
		_, _ = env.do(t, http.MethodPost, base+"/bills/b1/manual", nil)

		resp, err := env.app.Test(uploadRequest(t, base+"/manual/proof"), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, []string{"school-1/spp"}, proofs.dirs)

		_, raw := env.do(t, http.MethodGet, base, nil)
		got := decode[BillingPageState](t, raw).Data
		require.NotNil(t, got.Dialog)
		assert.Equal(t, "https://cdn.test/school-1/spp/p.webp", got.Dialog.Intent.Draft.ProofURL)
	})

	t.Run("UnsupportedImage", func(t *testing.T) {
		proofs := &stubProofs{err: helperOSS.ErrUnsupportedImage}
		env := newTestEnv(t, &stubBackend{bills: sampleBills()}, proofs)
		st := env.createBillingPage(t, "spp")
		base := "/api/a/billing/spp/pages/" + st.PageID
		_, _ = env.do(t, http.MethodPost, base+"/bills/b1/manual", nil)

		resp, err := env.app.Test(uploadRequest(t, base+"/manual/proof"), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("StorageDown", func(t *testing.T) {
		proofs := &stubProofs{err: errors.New("oss down")}
		env := newTestEnv(t, &stubBackend{bills: sampleBills()}, proofs)
		st := env.createBillingPage(t, "spp")
		base := "/api/a/billing/spp/pages/" + st.PageID
		_, _ = env.do(t, http.MethodPost, base+"/bills/b1/manual", nil)

		resp, err := env.app.Test(uploadRequest(t, base+"/manual/proof"), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	})
}

func TestPagination(t *testing.T) {
	bills := make([]model.Bill, 0, 25)
	for i := 0; i < 25; i++ {
		bills = append(bills, model.Bill{ID: string(rune('a' + i)), PayerName: "Santri", Amount: 1000, Status: model.BillStatusPending})
	}
	env := newTestEnv(t, &stubBackend{bills: bills}, nil)
	st := env.createBillingPage(t, "syahriah")
	assert.Len(t, st.Rows, 20)
	assert.True(t, st.Pagination.HasNext)

	_, raw := env.do(t, http.MethodGet, "/api/a/billing/syahriah/pages/"+st.PageID+"?page=2", nil)
	got := decode[BillingPageState](t, raw).Data
	assert.Len(t, got.Rows, 5)
	assert.Equal(t, int64(25), got.Pagination.Total)
	assert.False(t, got.Pagination.HasNext)
}
