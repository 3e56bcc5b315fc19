package dto

import (
	model "schoolku_web/internals/features/finance/billing/model"
)

/* ================== WEB TIER REQUESTS ================== */

// ListBillsQuery: filter tampilan tabel (tidak memengaruhi kartu statistik).
type ListBillsQuery struct {
	Search string `query:"search" validate:"omitempty,max=100"`
	Status string `query:"status" validate:"omitempty,oneof=all pending paid overdue"`
	Period string `query:"period" validate:"omitempty,max=20"`
}

type ManualPaymentSubmit struct {
	Method   model.ManualMethod `json:"method"`
	Amount   int64              `json:"amount"`
	Note     string             `json:"note"`
	ProofURL string             `json:"proof_url"`
}

func (r ManualPaymentSubmit) ToDraft() model.ManualPaymentDraft {
	return model.ManualPaymentDraft{
		Method:   r.Method,
		Amount:   r.Amount,
		Note:     r.Note,
		ProofURL: r.ProofURL,
	}
}

type UpgradeSelectRequest struct {
	PlanType     model.Tier         `json:"plan_type"     validate:"required,oneof=basic premium"`
	BillingCycle model.BillingCycle `json:"billing_cycle" validate:"required,oneof=monthly annual"`
}

// CheckoutOutcomeRequest dikirim browser setelah callback window.snap.pay.
type CheckoutOutcomeRequest struct {
	Event  string         `json:"event"  validate:"required,oneof=success pending error close"`
	Result map[string]any `json:"result"`
}

/* ================== WEB TIER RESPONSES ================== */

// Effect: instruksi yang dijalankan browser (buka overlay / pindah halaman).
type Effect struct {
	Type  string `json:"type"` // "snap.pay" | "navigate"
	Token string `json:"token,omitempty"`
	URL   string `json:"url,omitempty"`
}

const (
	EffectSnapPay  = "snap.pay"
	EffectNavigate = "navigate"
)
