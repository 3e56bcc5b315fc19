package service

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	helper "schoolku_web/internals/helpers"
)

var (
	ErrBillNotFound    = errors.New("tagihan tidak ditemukan")
	ErrBillSettled     = errors.New("tagihan sudah lunas")
	ErrDialogBusy      = errors.New("pembayaran sedang diproses")
	ErrNoDialog        = errors.New("dialog pembayaran tidak terbuka")
	ErrNoPaymentMethod = errors.New("backend tidak mengirim token maupun payment url")
)

var validate = validator.New()

// ValidationError: input ditolak sebelum dikirim ke backend.
type ValidationError struct {
	Fields map[string][]string
	Err    error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("validasi gagal: %v", e.Err) }

func (e *ValidationError) Unwrap() error { return e.Err }

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fields := helper.FieldErrors(err)
	if fields == nil {
		fields = map[string][]string{}
	}
	return &ValidationError{Fields: fields, Err: err}
}

// GatewayError: gagal mendapatkan token checkout / membuka overlay.
type GatewayError struct {
	Status  int
	Message string
	Err     error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("checkout gateway: status %d: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("checkout gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Forbidden: backend menolak karena tenant bukan premium.
func (e *GatewayError) Forbidden() bool { return e.Status == http.StatusForbidden }
