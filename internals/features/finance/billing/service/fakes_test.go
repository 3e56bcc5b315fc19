package service

import (
	"context"
	"sync"
	"testing"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
)

type manualCall struct {
	Kind   model.BillKind
	BillID string
	Req    dto.ManualPaymentRequest
}

type fakeBackend struct {
	mu sync.Mutex

	bills    []model.Bill
	stats    model.BillStats
	listErr  error
	statsErr error

	onlineResp dto.OnlinePaymentResponse
	onlineErr  error
	manualErr  error

	profile    dto.TenantProfile
	profileErr error
	pricing    dto.SubscriptionPricing
	pricingErr error
	upgrade    dto.UpgradeResponse
	upgradeErr error

	listCalls    int
	statsCalls   int
	onlineCalls  []dto.OnlinePaymentRequest
	manualCalls  []manualCall
	upgradeCalls []dto.UpgradeRequest
	profileCalls int
}

func (f *fakeBackend) ListBills(_ context.Context, _ model.BillKind, _ string) ([]model.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]model.Bill(nil), f.bills...), nil
}

func (f *fakeBackend) GetBillStats(_ context.Context, _ model.BillKind) (model.BillStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statsCalls++
	return f.stats, f.statsErr
}

func (f *fakeBackend) CreateOnlinePayment(_ context.Context, _ model.BillKind, req dto.OnlinePaymentRequest) (dto.OnlinePaymentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onlineCalls = append(f.onlineCalls, req)
	return f.onlineResp, f.onlineErr
}

func (f *fakeBackend) RecordManualPayment(_ context.Context, kind model.BillKind, billID string, req dto.ManualPaymentRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manualCalls = append(f.manualCalls, manualCall{Kind: kind, BillID: billID, Req: req})
	return f.manualErr
}

func (f *fakeBackend) GetTenantProfile(_ context.Context) (dto.TenantProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	return f.profile, f.profileErr
}

func (f *fakeBackend) GetSubscriptionPricing(_ context.Context) (dto.SubscriptionPricing, error) {
	return f.pricing, f.pricingErr
}

func (f *fakeBackend) UpgradeSubscription(_ context.Context, req dto.UpgradeRequest) (dto.UpgradeResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upgradeCalls = append(f.upgradeCalls, req)
	return f.upgrade, f.upgradeErr
}

func (f *fakeBackend) counts() (list, stats int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.statsCalls
}

type payCall struct {
	Token    string
	Handlers CheckoutHandlers
}

type fakeGateway struct {
	calls []payCall
	err   error
}

func (g *fakeGateway) Pay(token string, h CheckoutHandlers) error {
	if g.err != nil {
		return g.err
	}
	g.calls = append(g.calls, payCall{Token: token, Handlers: h})
	return nil
}

func (g *fakeGateway) last() payCall { return g.calls[len(g.calls)-1] }

type fakeNavigator struct{ urls []string }

func (n *fakeNavigator) Navigate(url string) { n.urls = append(n.urls, url) }

func sampleBills() []model.Bill {
	return []model.Bill{
		{ID: "b1", PayerID: "s1", PayerName: "Ahmad Fauzi", Amount: 500_000, Period: "2024-01", DueDate: "2024-01-10", Status: model.BillStatusPending},
		{ID: "b2", PayerID: "s2", PayerName: "Siti Aminah", Amount: 500_000, Period: "2024-01", DueDate: "2024-01-10", Status: model.BillStatusPaid},
		{ID: "b3", PayerID: "s3", PayerName: "Budi Santoso", Amount: 450_000, Period: "2024-02", DueDate: "2024-02-10", Status: model.BillStatusOverdue},
		{ID: "b4", PayerID: "s4", PayerName: "ahmad rizki", Amount: 500_000, Period: "2024-02", DueDate: "2024-02-10", Status: model.BillStatusPending},
	}
}

func newLoadedPage(t testing.TB, tier model.Tier, be *fakeBackend, gw *fakeGateway) *PaymentPage {
	t.Helper()
	p := NewPaymentPage(SPPCopy, Session{Tier: tier}, be, gw)
	p.Load(context.Background())
	return p
}
