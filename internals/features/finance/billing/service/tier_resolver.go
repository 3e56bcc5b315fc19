package service

import (
	"context"

	"go.uber.org/zap"

	model "schoolku_web/internals/features/finance/billing/model"
	"schoolku_web/internals/helpers/logger"
)

// Session: konteks per halaman yang dioper eksplisit ke komponen billing.
type Session struct {
	Tier model.Tier
}

type TierResolver struct {
	backend Backend
	loader  *ScriptLoader
}

func NewTierResolver(backend Backend, loader *ScriptLoader) *TierResolver {
	return &TierResolver{backend: backend, loader: loader}
}

// Fetch membaca tier tanpa efek samping. Gagal apa pun → basic.
func (r *TierResolver) Fetch(ctx context.Context) model.Tier {
	profile, err := r.backend.GetTenantProfile(ctx)
	if err != nil {
		logger.FromCtx(ctx).Warn("tier fallback ke basic", zap.Error(err))
		return model.TierBasic
	}
	return model.ParseTier(profile.SubscriptionTier)
}

// Resolve = Fetch + preload snap.js ke doc bila premium.
func (r *TierResolver) Resolve(ctx context.Context, doc Document) Session {
	tier := r.Fetch(ctx)
	if tier.IsPremium() && r.loader != nil && doc != nil {
		r.loader.Ensure(doc)
	}
	return Session{Tier: tier}
}
