package controller

import (
	"strings"
	"sync"
	"time"

	dto "schoolku_web/internals/features/finance/billing/dto"
	service "schoolku_web/internals/features/finance/billing/service"
)

/* =========================================================
   Effect queue (dikirim ke browser bersama state)
========================================================= */

type effectQueue struct {
	mu    sync.Mutex
	items []dto.Effect
}

func (q *effectQueue) push(e dto.Effect) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, e)
}

// drain: tiap effect dieksekusi browser tepat sekali.
func (q *effectQueue) drain() []dto.Effect {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []dto.Effect{}
	}
	return out
}

// Navigate: redirect penuh (payment_url upgrade).
func (q *effectQueue) Navigate(url string) {
	q.push(dto.Effect{Type: dto.EffectNavigate, URL: url})
}

/* =========================================================
   Overlay hub: callback Snap diparkir sampai browser lapor hasil
========================================================= */

type parkedCheckout struct {
	owner    string
	handlers service.CheckoutHandlers
	expires  time.Time
}

type OverlayHub struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]parkedCheckout
	now   func() time.Time
}

func NewOverlayHub(ttl time.Duration) *OverlayHub {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &OverlayHub{ttl: ttl, items: make(map[string]parkedCheckout), now: time.Now}
}

func (h *OverlayHub) Park(token, owner string, handlers service.CheckoutHandlers) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.items[token] = parkedCheckout{owner: owner, handlers: handlers, expires: h.now().Add(h.ttl)}
}

// Take mengambil handler sekali pakai. Token milik orang lain dianggap tidak ada.
func (h *OverlayHub) Take(token, owner string) (service.CheckoutHandlers, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.items[token]
	if !ok || p.owner != owner {
		return service.CheckoutHandlers{}, false
	}
	delete(h.items, token)
	if h.now().After(p.expires) {
		return service.CheckoutHandlers{}, false
	}
	return p.handlers, true
}

func (h *OverlayHub) Sweep() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	n := 0
	for tok, p := range h.items {
		if now.After(p.expires) {
			delete(h.items, tok)
			n++
		}
	}
	return n
}

func (h *OverlayHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.items)
}

// snapOverlay: CheckoutGateway versi web tier. Pay tidak membuka apa pun di
// server; ia memarkir handler lalu meminta browser memanggil window.snap.pay.
type snapOverlay struct {
	hub     *OverlayHub
	owner   string
	effects *effectQueue
}

func (o *snapOverlay) Pay(token string, handlers service.CheckoutHandlers) error {
	token = strings.TrimSpace(token)
	o.hub.Park(token, o.owner, handlers)
	o.effects.push(dto.Effect{Type: dto.EffectSnapPay, Token: token})
	return nil
}
