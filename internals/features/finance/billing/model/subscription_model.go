package model

import "strings"

type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// ParseTier hanya mengenali "premium" secara eksplisit; selain itu basic.
func ParseTier(s string) Tier {
	if strings.EqualFold(strings.TrimSpace(s), string(TierPremium)) {
		return TierPremium
	}
	return TierBasic
}

func (t Tier) IsPremium() bool { return t == TierPremium }

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleAnnual  BillingCycle = "annual"
)

type PricingPlan struct {
	PlanType     Tier         `json:"plan_type"`
	BillingCycle BillingCycle `json:"billing_cycle"`
	Price        int64        `json:"price"`
}

// StaticPricing: tabel harga cadangan saat /subscription/pricing gagal.
var StaticPricing = []PricingPlan{
	{PlanType: TierBasic, BillingCycle: BillingCycleMonthly, Price: 99_000},
	{PlanType: TierBasic, BillingCycle: BillingCycleAnnual, Price: 990_000},
	{PlanType: TierPremium, BillingCycle: BillingCycleMonthly, Price: 249_000},
	{PlanType: TierPremium, BillingCycle: BillingCycleAnnual, Price: 2_490_000},
}

// LookupPrice mencari harga (tier, cycle) pada tabel.
func LookupPrice(plans []PricingPlan, tier Tier, cycle BillingCycle) (int64, bool) {
	for _, p := range plans {
		if p.PlanType == tier && p.BillingCycle == cycle {
			return p.Price, true
		}
	}
	return 0, false
}
