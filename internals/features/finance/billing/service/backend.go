package service

import (
	"context"
	"errors"
	"fmt"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
)

// Backend adalah kontrak REST backend lembaga yang dipakai inti pembayaran.
// Backend pemilik data; web tier hanya membaca & memicu pembayaran.
type Backend interface {
	ListBills(ctx context.Context, kind model.BillKind, period string) ([]model.Bill, error)
	GetBillStats(ctx context.Context, kind model.BillKind) (model.BillStats, error)
	CreateOnlinePayment(ctx context.Context, kind model.BillKind, req dto.OnlinePaymentRequest) (dto.OnlinePaymentResponse, error)
	RecordManualPayment(ctx context.Context, kind model.BillKind, billID string, req dto.ManualPaymentRequest) error

	GetTenantProfile(ctx context.Context) (dto.TenantProfile, error)
	GetSubscriptionPricing(ctx context.Context) (dto.SubscriptionPricing, error)
	UpgradeSubscription(ctx context.Context, req dto.UpgradeRequest) (dto.UpgradeResponse, error)
}

// APIError: respons non-2xx atau kegagalan transport dari backend.
// Status 0 berarti request tidak sampai / respons tidak terbaca.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	switch {
	case e.Status == 0 && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
}

func (e *APIError) Unwrap() error { return e.Err }

// StatusOf mengambil HTTP status dari error backend/gateway (0 kalau tidak ada).
func StatusOf(err error) int {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Status
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// BackendMessage mengambil pesan dari backend bila ada.
func BackendMessage(err error) string {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Message != "" {
		return gwErr.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}
