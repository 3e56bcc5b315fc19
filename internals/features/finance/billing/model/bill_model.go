package model

import (
	"strings"
	"time"
)

/* ===================== Enums (string) ===================== */

type BillStatus string

const (
	BillStatusPending BillStatus = "pending"
	BillStatusPaid    BillStatus = "paid"
	BillStatusOverdue BillStatus = "overdue"
)

func (s BillStatus) Valid() bool {
	switch s {
	case BillStatusPending, BillStatusPaid, BillStatusOverdue:
		return true
	default:
		return false
	}
}

// BillKind: jenis tagihan bulanan. Sekolah pakai SPP, pesantren pakai Syahriah.
type BillKind string

const (
	BillKindSPP      BillKind = "spp"
	BillKindSyahriah BillKind = "syahriah"
)

func ParseBillKind(s string) (BillKind, bool) {
	switch BillKind(strings.ToLower(strings.TrimSpace(s))) {
	case BillKindSPP:
		return BillKindSPP, true
	case BillKindSyahriah:
		return BillKindSyahriah, true
	default:
		return "", false
	}
}

/* ===================== Model ===================== */

// Bill: satu tagihan per pembayar per periode. Dimiliki backend, di sini read-only.
type Bill struct {
	ID        string     `json:"id"`
	PayerID   string     `json:"payer_id"`
	PayerName string     `json:"payer_name"`
	Amount    int64      `json:"amount"` // Rupiah utuh
	Period    string     `json:"period"` // label, mis. "2024-01"
	DueDate   string     `json:"due_date"`
	Status    BillStatus `json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	ProofURL  *string    `json:"proof_url,omitempty"`
}

func (b Bill) IsPaid() bool { return b.Status == BillStatusPaid }

// BillStats: kartu ringkasan, dihitung backend (bukan dari hasil filter).
type BillStats struct {
	TotalBills   int   `json:"total_bills"`
	PaidCount    int   `json:"paid_count"`
	PendingCount int   `json:"pending_count"`
	OverdueCount int   `json:"overdue_count"`
	TotalPaid    int64 `json:"total_paid"`
	TotalPending int64 `json:"total_pending"`
}
