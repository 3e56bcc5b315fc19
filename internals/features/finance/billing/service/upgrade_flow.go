package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
	"schoolku_web/internals/helpers/logger"
)

const (
	PricingRemote = "remote"
	PricingStatic = "static"
)

// Navigator: pindah halaman penuh (dipakai saat backend kirim payment_url).
type Navigator interface {
	Navigate(url string)
}

type UpgradeView struct {
	CurrentTier   model.Tier          `json:"current_tier"`
	SelectedTier  model.Tier          `json:"selected_tier"`
	BillingCycle  model.BillingCycle  `json:"billing_cycle"`
	Price         int64               `json:"price"`
	PricingSource string              `json:"pricing_source"`
	Plans         []model.PricingPlan `json:"plans"`
	Busy          bool                `json:"busy"`
	Completed     bool                `json:"completed"`
	RedirectURL   string              `json:"redirect_url,omitempty"`
	Error         string              `json:"error,omitempty"`
	Notices       []Notice            `json:"notices"`
}

// UpgradeFlow: halaman pilih paket & bayar langganan.
type UpgradeFlow struct {
	mu sync.Mutex

	backend   Backend
	resolver  *TierResolver
	loader    *ScriptLoader
	doc       Document
	bridge    *PaymentBridge
	navigator Navigator

	current     model.Tier
	selected    model.Tier
	cycle       model.BillingCycle
	remote      []model.PricingPlan
	source      string
	busy        bool
	completed   bool
	redirectURL string
	err         string
	notices     noticeList
}

func NewUpgradeFlow(backend Backend, loader *ScriptLoader, doc Document, gateway CheckoutGateway, navigator Navigator) *UpgradeFlow {
	return &UpgradeFlow{
		backend:   backend,
		resolver:  NewTierResolver(backend, loader),
		loader:    loader,
		doc:       doc,
		bridge:    NewPaymentBridge(backend, gateway),
		navigator: navigator,
		current:   model.TierBasic,
		selected:  model.TierPremium,
		cycle:     model.BillingCycleMonthly,
		source:    PricingStatic,
	}
}

// Load: tier sekarang (gagal → basic), snap.js selalu dipasang, harga remote
// atau tabel statis.
func (f *UpgradeFlow) Load(ctx context.Context) {
	tier := f.resolver.Fetch(ctx)
	if f.loader != nil && f.doc != nil {
		f.loader.Ensure(f.doc)
	}

	var plans []model.PricingPlan
	source := PricingStatic
	pricing, err := f.backend.GetSubscriptionPricing(ctx)
	switch {
	case err != nil:
		logger.FromCtx(ctx).Warn("harga langganan pakai tabel statis", zap.Error(err))
	case len(pricing.Plans) == 0:
		logger.FromCtx(ctx).Warn("harga langganan kosong, pakai tabel statis")
	default:
		plans, source = pricing.Plans, PricingRemote
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = tier
	f.remote = plans
	f.source = source
}

// Select mengganti paket/siklus. Ditolak saat pembayaran sedang berjalan.
func (f *UpgradeFlow) Select(tier model.Tier, cycle model.BillingCycle) error {
	req := dto.UpgradeRequest{PlanType: tier, BillingCycle: cycle}
	if err := validateStruct(req); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return ErrDialogBusy
	}
	f.selected, f.cycle = tier, cycle
	f.err = ""
	return nil
}

func (f *UpgradeFlow) priceLocked(tier model.Tier, cycle model.BillingCycle) int64 {
	if price, ok := model.LookupPrice(f.remote, tier, cycle); ok {
		return price
	}
	price, _ := model.LookupPrice(model.StaticPricing, tier, cycle)
	return price
}

// Price: harga pilihan saat ini (remote, kombinasi hilang jatuh ke statis).
func (f *UpgradeFlow) Price() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.priceLocked(f.selected, f.cycle)
}

func (f *UpgradeFlow) View() UpgradeView {
	f.mu.Lock()
	defer f.mu.Unlock()

	plans := make([]model.PricingPlan, 0, len(model.StaticPricing))
	for _, sp := range model.StaticPricing {
		plans = append(plans, model.PricingPlan{
			PlanType:     sp.PlanType,
			BillingCycle: sp.BillingCycle,
			Price:        f.priceLocked(sp.PlanType, sp.BillingCycle),
		})
	}
	return UpgradeView{
		CurrentTier:   f.current,
		SelectedTier:  f.selected,
		BillingCycle:  f.cycle,
		Price:         f.priceLocked(f.selected, f.cycle),
		PricingSource: f.source,
		Plans:         plans,
		Busy:          f.busy,
		Completed:     f.completed,
		RedirectURL:   f.redirectURL,
		Error:         f.err,
		Notices:       f.notices.snapshot(),
	}
}

// Submit memulai pembayaran langganan: token → overlay Snap,
// payment_url → redirect penuh.
func (f *UpgradeFlow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return ErrDialogBusy
	}
	f.busy = true
	f.err = ""
	f.redirectURL = ""
	req := dto.UpgradeRequest{PlanType: f.selected, BillingCycle: f.cycle}
	f.mu.Unlock()

	resp, err := f.backend.UpgradeSubscription(ctx, req)
	if err != nil {
		msg := BackendMessage(err)
		if msg == "" {
			msg = "Gagal memproses upgrade langganan"
		}
		return f.fail(ctx, msg, err)
	}

	token := strings.TrimSpace(resp.SnapToken)
	paymentURL := strings.TrimSpace(resp.PaymentURL)
	switch {
	case token != "":
		if err := f.bridge.OpenCheckout(token, f.checkoutHandlers()); err != nil {
			return f.fail(ctx, "Gagal membuka pembayaran", err)
		}
		return nil
	case paymentURL != "":
		// redirect penuh: tidak ada callback overlay yang akan melepas busy
		f.mu.Lock()
		f.busy = false
		f.redirectURL = paymentURL
		f.mu.Unlock()
		if f.navigator != nil {
			f.navigator.Navigate(paymentURL)
		}
		return nil
	default:
		return f.fail(ctx, "Respons pembayaran tidak valid", ErrNoPaymentMethod)
	}
}

func (f *UpgradeFlow) fail(ctx context.Context, msg string, err error) error {
	logger.FromCtx(ctx).Error("upgrade langganan gagal", zap.Error(err))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	f.err = msg
	f.notices.push(NoticeError, msg)
	return err
}

func (f *UpgradeFlow) checkoutHandlers() CheckoutHandlers {
	return CheckoutHandlers{
		OnSuccess: func(ctx context.Context, r CheckoutResult) {
			logger.FromCtx(ctx).Info("✅ upgrade langganan sukses", zap.String("order_id", r.OrderID))
			tier := f.resolver.Fetch(ctx)

			f.mu.Lock()
			defer f.mu.Unlock()
			f.busy = false
			f.completed = true
			f.current = tier
			f.notices.push(NoticeSuccess, "Langganan berhasil diperbarui")
		},
		OnPending: func(ctx context.Context, r CheckoutResult) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.busy = false
			f.notices.push(NoticeInfo, "Menunggu pembayaran langganan diselesaikan")
		},
		OnError: func(ctx context.Context, r CheckoutResult) {
			logger.FromCtx(ctx).Warn("pembayaran langganan gagal", zap.String("status_message", r.StatusMessage))
			f.mu.Lock()
			defer f.mu.Unlock()
			f.busy = false
			f.err = "Pembayaran langganan gagal"
			f.notices.push(NoticeError, f.err)
		},
		OnClose: func(ctx context.Context) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.busy = false
		},
	}
}

func (f *UpgradeFlow) DismissNotice(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.notices.dismiss(id)
}
