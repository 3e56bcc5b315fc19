package backend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	dto "schoolku_web/internals/features/finance/billing/dto"
	model "schoolku_web/internals/features/finance/billing/model"
	service "schoolku_web/internals/features/finance/billing/service"
	authctx "schoolku_web/internals/helpers/auth"
	"schoolku_web/internals/helpers/logger"
)

// Client memanggil REST backend lembaga. Token pemanggil diteruskan apa adanya.
type Client struct {
	baseURL string
	timeout time.Duration
}

var _ service.Backend = (*Client)(nil)

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), timeout: timeout}
}

// envelope: bentuk respons backend {success, message, data}
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (c *Client) timeoutFor(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < c.timeout {
			return left
		}
	}
	return c.timeout
}

func call[T any](ctx context.Context, c *Client, op, method, path string, query url.Values, body any) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, &service.APIError{Op: op, Err: err}
	}

	uri := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)

	a.JSONEncoder(sonic.Marshal)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if tok := authctx.BearerFrom(ctx); tok != "" {
		a.Set(fiber.HeaderAuthorization, "Bearer "+tok)
	}
	if rid := logger.RequestIDFrom(ctx); rid != "" {
		a.Set(fiber.HeaderXRequestID, rid)
	}
	if body != nil {
		a.JSON(body)
	}
	a.Timeout(c.timeoutFor(ctx))

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return zero, &service.APIError{Op: op, Err: err}
	}

	start := time.Now()
	code, raw, errs := a.Bytes()
	log := logger.FromCtx(ctx).With(
		zap.String("op", op),
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", code),
		zap.Duration("latency", time.Since(start)),
	)
	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.Error("backend request gagal", zap.Error(err))
		return zero, &service.APIError{Op: op, Err: err}
	}

	var env envelope[T]
	var decErr error
	if len(raw) > 0 {
		decErr = sonic.Unmarshal(raw, &env)
	}

	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		msg := ""
		if decErr == nil {
			msg = strings.TrimSpace(env.Message)
		}
		log.Warn("backend non-2xx", zap.String("message", msg))
		return zero, &service.APIError{Op: op, Status: code, Message: msg}
	}
	if decErr != nil {
		log.Error("respons backend tidak valid", zap.Error(decErr))
		return zero, &service.APIError{Op: op, Status: code, Err: fmt.Errorf("decode: %w", decErr)}
	}
	return env.Data, nil
}

func billsPath(kind model.BillKind, rest ...string) string {
	parts := append([]string{url.PathEscape(string(kind)), "bills"}, rest...)
	return strings.Join(parts, "/")
}

/* =========================================================
   Tagihan
========================================================= */

func (c *Client) ListBills(ctx context.Context, kind model.BillKind, period string) ([]model.Bill, error) {
	q := url.Values{}
	if p := strings.TrimSpace(period); p != "" && p != service.FilterAll {
		q.Set("period", p)
	}
	bills, err := call[[]model.Bill](ctx, c, "list bills", fiber.MethodGet, billsPath(kind), q, nil)
	if err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []model.Bill{}
	}
	return bills, nil
}

func (c *Client) GetBillStats(ctx context.Context, kind model.BillKind) (model.BillStats, error) {
	return call[model.BillStats](ctx, c, "bill stats", fiber.MethodGet, billsPath(kind, "stats"), nil, nil)
}

func (c *Client) CreateOnlinePayment(ctx context.Context, kind model.BillKind, req dto.OnlinePaymentRequest) (dto.OnlinePaymentResponse, error) {
	path := billsPath(kind, url.PathEscape(req.BillID), "online-payment")
	return call[dto.OnlinePaymentResponse](ctx, c, "create online payment", fiber.MethodPost, path, nil, req)
}

func (c *Client) RecordManualPayment(ctx context.Context, kind model.BillKind, billID string, req dto.ManualPaymentRequest) error {
	path := billsPath(kind, url.PathEscape(billID), "manual-payment")
	_, err := call[any](ctx, c, "record manual payment", fiber.MethodPost, path, nil, req)
	return err
}

/* =========================================================
   Tenant & langganan
========================================================= */

func (c *Client) GetTenantProfile(ctx context.Context) (dto.TenantProfile, error) {
	return call[dto.TenantProfile](ctx, c, "tenant profile", fiber.MethodGet, "tenant/profile", nil, nil)
}

func (c *Client) GetSubscriptionPricing(ctx context.Context) (dto.SubscriptionPricing, error) {
	return call[dto.SubscriptionPricing](ctx, c, "subscription pricing", fiber.MethodGet, "subscription/pricing", nil, nil)
}

func (c *Client) UpgradeSubscription(ctx context.Context, req dto.UpgradeRequest) (dto.UpgradeResponse, error) {
	return call[dto.UpgradeResponse](ctx, c, "upgrade subscription", fiber.MethodPost, "subscription/upgrade", nil, req)
}
