package service

import (
	model "schoolku_web/internals/features/finance/billing/model"
)

type OnlineAction string

const (
	OnlineHidden  OnlineAction = "hidden"
	OnlineEnabled OnlineAction = "enabled"
	OnlineUpsell  OnlineAction = "upsell" // tampil, tapi klik membuka prompt upgrade
)

type RowActions struct {
	Online OnlineAction `json:"online"`
	Manual bool         `json:"manual"`
}

// ActionsFor: tagihan lunas tidak punya aksi bayar sama sekali.
func ActionsFor(b model.Bill, tier model.Tier) RowActions {
	if b.IsPaid() {
		return RowActions{Online: OnlineHidden, Manual: false}
	}
	if tier.IsPremium() {
		return RowActions{Online: OnlineEnabled, Manual: true}
	}
	return RowActions{Online: OnlineUpsell, Manual: true}
}
