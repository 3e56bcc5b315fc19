package service

import (
	"strings"

	model "schoolku_web/internals/features/finance/billing/model"
)

// FilterAll: nilai sentinel "semua" untuk status & periode.
const FilterAll = "all"

type Filters struct {
	Search string `json:"search"`
	Status string `json:"status"`
	Period string `json:"period"`
}

func DefaultFilters() Filters {
	return Filters{Status: FilterAll, Period: FilterAll}
}

func (f Filters) normalized() Filters {
	f.Status = strings.ToLower(strings.TrimSpace(f.Status))
	f.Period = strings.TrimSpace(f.Period)
	if f.Status == "" {
		f.Status = FilterAll
	}
	if f.Period == "" {
		f.Period = FilterAll
	}
	return f
}

// FilterBills menerapkan search (substring nama pembayar apa adanya, hanya
// case-insensitive), status, dan
// periode sekaligus (AND). Fungsi murni; urutan input dipertahankan.
func FilterBills(bills []model.Bill, f Filters) []model.Bill {
	f = f.normalized()
	needle := strings.ToLower(f.Search)

	out := make([]model.Bill, 0, len(bills))
	for _, b := range bills {
		if needle != "" && !strings.Contains(strings.ToLower(b.PayerName), needle) {
			continue
		}
		if f.Status != FilterAll && string(b.Status) != f.Status {
			continue
		}
		if f.Period != FilterAll && b.Period != f.Period {
			continue
		}
		out = append(out, b)
	}
	return out
}
