package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	model "schoolku_web/internals/features/finance/billing/model"
	"schoolku_web/internals/helpers/logger"
)

/* =========================================================
   View (snapshot untuk browser)
========================================================= */

type BillRow struct {
	model.Bill
	Actions RowActions `json:"actions"`
}

type DialogView struct {
	Intent      model.PendingPaymentIntent `json:"intent"`
	Busy        bool                       `json:"busy"`
	OverlayOpen bool                       `json:"overlay_open"`
	Error       string                     `json:"error,omitempty"`
	FieldErrors map[string][]string        `json:"field_errors,omitempty"`
}

type PageView struct {
	Copy    PageCopy        `json:"copy"`
	Tier    model.Tier      `json:"tier"`
	Filters Filters         `json:"filters"`
	Rows    []BillRow       `json:"rows"`
	Stats   model.BillStats `json:"stats"`
	Dialog  *DialogView     `json:"dialog,omitempty"`
	Upsell  bool            `json:"upsell"`
	Notices []Notice        `json:"notices"`
}

/* =========================================================
   PaymentPage
========================================================= */

type dialogState struct {
	intent      model.PendingPaymentIntent
	busy        bool
	overlayOpen bool
	err         string
	fieldErrors map[string][]string
}

// PaymentPage: state satu halaman tagihan (SPP / Syahriah) milik satu tab.
// Mutex tidak dipegang selama panggilan backend / gateway.
type PaymentPage struct {
	mu sync.Mutex

	copy     PageCopy
	session  Session
	backend  Backend
	bridge   *PaymentBridge
	recorder *ManualRecorder

	bills   []model.Bill
	stats   model.BillStats
	filters Filters
	dialog  *dialogState
	upsell  bool
	notices noticeList
}

func NewPaymentPage(copy PageCopy, session Session, backend Backend, gateway CheckoutGateway) *PaymentPage {
	return &PaymentPage{
		copy:     copy,
		session:  session,
		backend:  backend,
		bridge:   NewPaymentBridge(backend, gateway),
		recorder: NewManualRecorder(backend),
		filters:  DefaultFilters(),
	}
}

func (p *PaymentPage) Kind() model.BillKind { return p.copy.Kind }

func (p *PaymentPage) Tier() model.Tier { return p.session.Tier }

// Load memuat tagihan + statistik. Gagal → daftar kosong, statistik nol, toast error.
func (p *PaymentPage) Load(ctx context.Context) { p.refetch(ctx) }

func (p *PaymentPage) Refresh(ctx context.Context) { p.refetch(ctx) }

func (p *PaymentPage) refetch(ctx context.Context) {
	log := logger.FromCtx(ctx).With(zap.String("kind", string(p.copy.Kind)))

	failed := false
	bills, err := p.backend.ListBills(ctx, p.copy.Kind, "")
	if err != nil {
		log.Warn("gagal memuat tagihan", zap.Error(err))
		bills, failed = nil, true
	}
	stats, err := p.backend.GetBillStats(ctx, p.copy.Kind)
	if err != nil {
		log.Warn("gagal memuat statistik tagihan", zap.Error(err))
		stats, failed = model.BillStats{}, true
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.bills = bills
	p.stats = stats
	if failed {
		p.notices.push(NoticeError, p.copy.LoadFailed)
	}
}

func (p *PaymentPage) SetFilters(f Filters) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filters = f.normalized()
}

func (p *PaymentPage) View() PageView {
	p.mu.Lock()
	defer p.mu.Unlock()

	visible := FilterBills(p.bills, p.filters)
	rows := make([]BillRow, 0, len(visible))
	for _, b := range visible {
		rows = append(rows, BillRow{Bill: b, Actions: ActionsFor(b, p.session.Tier)})
	}

	v := PageView{
		Copy:    p.copy,
		Tier:    p.session.Tier,
		Filters: p.filters,
		Rows:    rows,
		Stats:   p.stats,
		Upsell:  p.upsell,
		Notices: p.notices.snapshot(),
	}
	if d := p.dialog; d != nil {
		intent := d.intent
		if d.intent.Draft != nil {
			draft := *d.intent.Draft
			intent.Draft = &draft
		}
		v.Dialog = &DialogView{
			Intent:      intent,
			Busy:        d.busy,
			OverlayOpen: d.overlayOpen,
			Error:       d.err,
			FieldErrors: d.fieldErrors,
		}
	}
	return v
}

func (p *PaymentPage) findPayableLocked(billID string) (model.Bill, error) {
	id := strings.TrimSpace(billID)
	for _, b := range p.bills {
		if b.ID != id {
			continue
		}
		if b.IsPaid() {
			return model.Bill{}, ErrBillSettled
		}
		return b, nil
	}
	return model.Bill{}, ErrBillNotFound
}

func (p *PaymentPage) currentLocked(intentID string) *dialogState {
	if p.dialog != nil && p.dialog.intent.ID == intentID {
		return p.dialog
	}
	return nil
}

func (p *PaymentPage) openDialogLocked(bill model.Bill, path model.PaymentPath, draft *model.ManualPaymentDraft) error {
	if p.dialog != nil && p.dialog.busy {
		return ErrDialogBusy
	}
	p.dialog = &dialogState{
		intent: model.PendingPaymentIntent{
			ID:    uuid.NewString(),
			Bill:  bill,
			Path:  path,
			Draft: draft,
		},
	}
	return nil
}

/* =========================================================
   Online (Snap)
========================================================= */

// PayOnline: basic → prompt upgrade tanpa memanggil backend.
// Premium → minta token lalu buka overlay. Kalau backend menjawab 403, prompt
// upgrade tetap ditampilkan dan *GatewayError (Forbidden) dikembalikan.
func (p *PaymentPage) PayOnline(ctx context.Context, billID string) error {
	p.mu.Lock()
	bill, err := p.findPayableLocked(billID)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	if !p.session.Tier.IsPremium() {
		p.upsell = true
		p.mu.Unlock()
		return nil
	}
	if err := p.openDialogLocked(bill, model.PaymentPathOnline, nil); err != nil {
		p.mu.Unlock()
		return err
	}
	p.mu.Unlock()

	return p.startOnline(ctx)
}

// RetryOnlinePayment mengulang permintaan token untuk dialog yang masih terbuka.
func (p *PaymentPage) RetryOnlinePayment(ctx context.Context) error {
	return p.startOnline(ctx)
}

func (p *PaymentPage) startOnline(ctx context.Context) error {
	p.mu.Lock()
	d := p.dialog
	if d == nil || d.intent.Path != model.PaymentPathOnline {
		p.mu.Unlock()
		return ErrNoDialog
	}
	if d.busy {
		p.mu.Unlock()
		return ErrDialogBusy
	}
	d.busy = true
	d.err = ""
	intentID, bill := d.intent.ID, d.intent.Bill
	p.mu.Unlock()

	token, err := p.bridge.RequestCheckoutToken(ctx, p.copy.Kind, bill)
	if err != nil {
		return p.failOnline(ctx, intentID, err)
	}

	p.mu.Lock()
	d = p.currentLocked(intentID)
	if d == nil {
		// dialog sudah ditutup selama menunggu token
		p.mu.Unlock()
		return nil
	}
	d.overlayOpen = true
	p.mu.Unlock()

	if err := p.bridge.OpenCheckout(token, p.checkoutHandlers(intentID)); err != nil {
		return p.failOnline(ctx, intentID, err)
	}
	logger.FromCtx(ctx).Info("💳 overlay snap dibuka",
		zap.String("kind", string(p.copy.Kind)),
		zap.String("bill_id", bill.ID),
	)
	return nil
}

func (p *PaymentPage) failOnline(ctx context.Context, intentID string, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Forbidden() {
		// backend bilang bukan premium: anggap basic untuk aksi ini
		logger.FromCtx(ctx).Warn("backend menolak pembayaran online (403)", zap.Error(err))
		if p.currentLocked(intentID) != nil {
			p.dialog = nil
		}
		p.upsell = true
		return err
	}

	logger.FromCtx(ctx).Error("gagal memulai pembayaran online", zap.Error(err))
	if d := p.currentLocked(intentID); d != nil {
		d.busy = false
		d.overlayOpen = false
		d.err = p.copy.OnlineFailed
	}
	p.notices.push(NoticeError, p.copy.OnlineFailed)
	return err
}

// checkoutHandlers mengikat callback overlay ke intent tertentu. Callback
// untuk intent yang sudah diganti tidak menyentuh dialog baru.
func (p *PaymentPage) checkoutHandlers(intentID string) CheckoutHandlers {
	return CheckoutHandlers{
		OnSuccess: func(ctx context.Context, r CheckoutResult) {
			p.mu.Lock()
			if p.currentLocked(intentID) != nil {
				p.dialog = nil
			}
			p.notices.push(NoticeSuccess, p.copy.OnlineSuccess)
			p.mu.Unlock()

			logger.FromCtx(ctx).Info("✅ pembayaran online sukses",
				zap.String("order_id", r.OrderID),
				zap.String("status", r.TransactionStatus),
			)
			p.refetch(ctx)
		},
		OnPending: func(ctx context.Context, r CheckoutResult) {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.currentLocked(intentID) != nil {
				p.dialog = nil
			}
			p.notices.push(NoticeInfo, p.copy.OnlinePending)
		},
		OnError: func(ctx context.Context, r CheckoutResult) {
			logger.FromCtx(ctx).Warn("pembayaran online gagal",
				zap.String("order_id", r.OrderID),
				zap.String("status_code", r.StatusCode),
				zap.String("status_message", r.StatusMessage),
			)
			p.mu.Lock()
			defer p.mu.Unlock()
			if d := p.currentLocked(intentID); d != nil {
				d.busy = false
				d.overlayOpen = false
				d.err = p.copy.OnlineError
			}
			p.notices.push(NoticeError, p.copy.OnlineError)
		},
		OnClose: func(ctx context.Context) {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.currentLocked(intentID) != nil {
				p.dialog = nil
			}
		},
	}
}

/* =========================================================
   Manual
========================================================= */

func (p *PaymentPage) OpenManualPayment(billID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	bill, err := p.findPayableLocked(billID)
	if err != nil {
		return err
	}
	draft := DefaultDraft(bill)
	return p.openDialogLocked(bill, model.PaymentPathManual, &draft)
}

// AttachProof menyimpan URL bukti (hasil upload) ke draft dialog manual.
func (p *PaymentPage) AttachProof(proofURL string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.dialog
	if d == nil || d.intent.Path != model.PaymentPathManual || d.intent.Draft == nil {
		return ErrNoDialog
	}
	if d.busy {
		return ErrDialogBusy
	}
	d.intent.Draft.ProofURL = strings.TrimSpace(proofURL)
	return nil
}

// SubmitManualPayment: satu submit per dialog dalam satu waktu.
func (p *PaymentPage) SubmitManualPayment(ctx context.Context, draft model.ManualPaymentDraft) error {
	p.mu.Lock()
	d := p.dialog
	if d == nil || d.intent.Path != model.PaymentPathManual {
		p.mu.Unlock()
		return ErrNoDialog
	}
	if d.busy {
		p.mu.Unlock()
		return ErrDialogBusy
	}
	stored := draft
	d.intent.Draft = &stored

	if err := p.recorder.Validate(draft); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			d.fieldErrors = ve.Fields
		}
		d.err = p.copy.ValidationFailed
		p.mu.Unlock()
		return err
	}
	d.busy = true
	d.err = ""
	d.fieldErrors = nil
	intentID, billID := d.intent.ID, d.intent.Bill.ID
	p.mu.Unlock()

	if err := p.recorder.Record(ctx, p.copy.Kind, billID, draft); err != nil {
		msg := BackendMessage(err)
		if msg == "" {
			msg = p.copy.ManualFailed
		}
		p.mu.Lock()
		if d := p.currentLocked(intentID); d != nil {
			d.busy = false
			d.err = msg
		}
		p.notices.push(NoticeError, msg)
		p.mu.Unlock()
		return err
	}

	p.mu.Lock()
	if p.currentLocked(intentID) != nil {
		p.dialog = nil
	}
	p.mu.Unlock()

	p.refetch(ctx)

	p.mu.Lock()
	p.notices.push(NoticeSuccess, p.copy.ManualSuccess)
	p.mu.Unlock()
	return nil
}

/* =========================================================
   Dialog & notices
========================================================= */

// CloseDialog setara onClose overlay: dialog tutup, tanpa refetch.
func (p *PaymentPage) CloseDialog() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dialog = nil
}

func (p *PaymentPage) DismissUpsell() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.upsell = false
}

func (p *PaymentPage) DismissNotice(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.notices.dismiss(id)
}
