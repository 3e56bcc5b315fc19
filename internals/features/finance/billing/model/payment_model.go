package model

type PaymentPath string

const (
	PaymentPathOnline PaymentPath = "online"
	PaymentPathManual PaymentPath = "manual"
)

type ManualMethod string

const (
	ManualMethodCash     ManualMethod = "cash"
	ManualMethodTransfer ManualMethod = "transfer"
	ManualMethodDebit    ManualMethod = "debit"
	ManualMethodOther    ManualMethod = "other"
)

// ManualPaymentDraft: isian form pembayaran manual (pelunasan di luar gateway).
// Amount boleh beda dari tagihan; rekonsiliasi urusan backend.
type ManualPaymentDraft struct {
	Method   ManualMethod `json:"method"    validate:"required,oneof=cash transfer debit other"`
	Amount   int64        `json:"amount"    validate:"gte=0"`
	Note     string       `json:"note"      validate:"max=500"`
	ProofURL string       `json:"proof_url" validate:"omitempty,url,max=2048"`
}

// PendingPaymentIntent hidup selama dialog bayar terbuka.
type PendingPaymentIntent struct {
	ID    string              `json:"id"`
	Bill  Bill                `json:"bill"`
	Path  PaymentPath         `json:"path"`
	Draft *ManualPaymentDraft `json:"draft,omitempty"`
}
