package dto

import (
	model "schoolku_web/internals/features/finance/billing/model"
)

/* ================== BACKEND REQUESTS ================== */

type OnlinePaymentRequest struct {
	BillID    string `json:"bill_id"`
	Amount    int64  `json:"amount"`
	PayerName string `json:"payer_name"`
}

type ManualPaymentRequest struct {
	Method   model.ManualMethod `json:"method"`
	Amount   int64              `json:"amount"`
	Note     string             `json:"note"`
	ProofURL string             `json:"proof_url"`
}

func NewManualPaymentRequest(d model.ManualPaymentDraft) ManualPaymentRequest {
	return ManualPaymentRequest{
		Method:   d.Method,
		Amount:   d.Amount,
		Note:     d.Note,
		ProofURL: d.ProofURL,
	}
}

type UpgradeRequest struct {
	PlanType     model.Tier         `json:"plan_type"     validate:"required,oneof=basic premium"`
	BillingCycle model.BillingCycle `json:"billing_cycle" validate:"required,oneof=monthly annual"`
}

/* ================== BACKEND RESPONSES ================== */

type OnlinePaymentResponse struct {
	SnapToken string `json:"snap_token,omitempty"`
}

type TenantProfile struct {
	SubscriptionTier string `json:"subscription_tier"`
}

type SubscriptionPricing struct {
	Plans []model.PricingPlan `json:"plans"`
}

type UpgradeResponse struct {
	SnapToken  string `json:"snap_token,omitempty"`
	PaymentURL string `json:"payment_url,omitempty"`
}
