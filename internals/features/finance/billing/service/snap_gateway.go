package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	midtrans "github.com/midtrans/midtrans-go"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
)

/* =========================================================
   Snap script config (dibaca sekali saat bootstrap)
========================================================= */

type SnapConfig struct {
	Environment midtrans.EnvironmentType
	BaseURL     string
	ClientKey   string
}

// NewSnapConfig: useProduction=true untuk Production, false untuk Sandbox.
func NewSnapConfig(useProduction bool, clientKey string) SnapConfig {
	env := midtrans.Sandbox
	if useProduction {
		env = midtrans.Production
	}
	return SnapConfig{
		Environment: env,
		BaseURL:     env.SnapURL(),
		ClientKey:   strings.TrimSpace(clientKey),
	}
}

func (c SnapConfig) ScriptURL() string { return strings.TrimRight(c.BaseURL, "/") + "/snap/snap.js" }

func (c SnapConfig) Host() string {
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return ""
	}
	return u.Host
}

/* =========================================================
   Document & script loader
========================================================= */

type ScriptTag struct {
	Src   string            `json:"src"`
	Attrs map[string]string `json:"attrs,omitempty"`
}

// Document: daftar <script> halaman yang akan disisipkan browser.
type Document interface {
	Scripts() []ScriptTag
	AppendScript(tag ScriptTag)
}

type PageDocument struct {
	mu      sync.Mutex
	scripts []ScriptTag
}

func (d *PageDocument) Scripts() []ScriptTag {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]ScriptTag(nil), d.scripts...)
}

func (d *PageDocument) AppendScript(tag ScriptTag) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scripts = append(d.scripts, tag)
}

type ScriptLoader struct {
	mu  sync.Mutex
	cfg SnapConfig
}

func NewScriptLoader(cfg SnapConfig) *ScriptLoader { return &ScriptLoader{cfg: cfg} }

func (l *ScriptLoader) Config() SnapConfig { return l.cfg }

// Ensure menambahkan snap.js sekali. Kalau sudah ada script dengan host yang
// sama, tidak ditambah lagi (window.snap ganda bikin overlay kacau).
func (l *ScriptLoader) Ensure(doc Document) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	host := l.cfg.Host()
	for _, s := range doc.Scripts() {
		u, err := url.Parse(s.Src)
		if err == nil && strings.EqualFold(u.Host, host) {
			return false
		}
	}
	doc.AppendScript(ScriptTag{
		Src:   l.cfg.ScriptURL(),
		Attrs: map[string]string{"data-client-key": l.cfg.ClientKey},
	})
	return true
}

/* =========================================================
   Checkout gateway (overlay) & bridge
========================================================= */

// CheckoutResult: ringkasan objek hasil dari callback Snap.
type CheckoutResult struct {
	OrderID           string `json:"order_id,omitempty"`
	TransactionID     string `json:"transaction_id,omitempty"`
	TransactionStatus string `json:"transaction_status,omitempty"`
	StatusCode        string `json:"status_code,omitempty"`
	StatusMessage     string `json:"status_message,omitempty"`
	PaymentType       string `json:"payment_type,omitempty"`
	GrossAmount       string `json:"gross_amount,omitempty"`
}

type CheckoutHandlers struct {
	OnSuccess func(ctx context.Context, r CheckoutResult)
	OnPending func(ctx context.Context, r CheckoutResult)
	OnError   func(ctx context.Context, r CheckoutResult)
	OnClose   func(ctx context.Context)
}

// CheckoutGateway: kemampuan eksternal setara window.snap.pay(token, handlers).
type CheckoutGateway interface {
	Pay(token string, handlers CheckoutHandlers) error
}

type PaymentBridge struct {
	backend Backend
	gateway CheckoutGateway
}

func NewPaymentBridge(backend Backend, gateway CheckoutGateway) *PaymentBridge {
	return &PaymentBridge{backend: backend, gateway: gateway}
}

// RequestCheckoutToken meminta token Snap untuk satu tagihan.
// Gating tier dilakukan pemanggil; 403 dari backend tetap dibawa di GatewayError.
func (b *PaymentBridge) RequestCheckoutToken(ctx context.Context, kind model.BillKind, bill model.Bill) (string, error) {
	resp, err := b.backend.CreateOnlinePayment(ctx, kind, dto.OnlinePaymentRequest{
		BillID:    bill.ID,
		Amount:    bill.Amount,
		PayerName: bill.PayerName,
	})
	if err != nil {
		return "", &GatewayError{Status: StatusOf(err), Message: BackendMessage(err), Err: err}
	}
	token := strings.TrimSpace(resp.SnapToken)
	if token == "" {
		return "", &GatewayError{Err: errors.New("snap_token kosong")}
	}
	return token, nil
}

func (b *PaymentBridge) OpenCheckout(token string, handlers CheckoutHandlers) error {
	if b.gateway == nil {
		return &GatewayError{Err: errors.New("checkout gateway belum dipasang")}
	}
	if err := b.gateway.Pay(token, handlers); err != nil {
		return &GatewayError{Err: err}
	}
	return nil
}
