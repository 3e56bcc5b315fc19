package service

import (
	"context"

	"go.uber.org/zap"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
	"schoolku_web/internals/helpers/logger"
)

// ManualRecorder mencatat pelunasan di luar gateway (tunai, transfer, dst).
// Tidak bergantung tier.
type ManualRecorder struct {
	backend Backend
}

func NewManualRecorder(backend Backend) *ManualRecorder {
	return &ManualRecorder{backend: backend}
}

// DefaultDraft: metode cash, nominal = tagihan.
func DefaultDraft(b model.Bill) model.ManualPaymentDraft {
	return model.ManualPaymentDraft{
		Method: model.ManualMethodCash,
		Amount: b.Amount,
	}
}

func (r *ManualRecorder) Validate(d model.ManualPaymentDraft) error {
	return validateStruct(d)
}

func (r *ManualRecorder) Record(ctx context.Context, kind model.BillKind, billID string, d model.ManualPaymentDraft) error {
	if err := r.Validate(d); err != nil {
		return err
	}
	if err := r.backend.RecordManualPayment(ctx, kind, billID, dto.NewManualPaymentRequest(d)); err != nil {
		logger.FromCtx(ctx).Error("gagal catat pembayaran manual",
			zap.String("kind", string(kind)),
			zap.String("bill_id", billID),
			zap.Error(err),
		)
		return err
	}
	logger.FromCtx(ctx).Info("✅ pembayaran manual tercatat",
		zap.String("kind", string(kind)),
		zap.String("bill_id", billID),
		zap.String("method", string(d.Method)),
		zap.Int64("amount", d.Amount),
	)
	return nil
}
