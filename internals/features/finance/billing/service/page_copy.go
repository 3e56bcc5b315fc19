package service

import (
	model "schoolku_web/internals/features/finance/billing/model"
)

// PageCopy: teks halaman per jenis tagihan. Logika halaman sama persis.
type PageCopy struct {
	Kind       model.BillKind `json:"kind"`
	Title      string         `json:"title"`
	PayerLabel string         `json:"payer_label"`

	PayOnlineLabel string `json:"pay_online_label"`
	ManualLabel    string `json:"manual_label"`
	UpsellTitle    string `json:"upsell_title"`
	UpsellBody     string `json:"upsell_body"`

	LoadFailed       string `json:"-"`
	OnlineFailed     string `json:"-"`
	OnlineSuccess    string `json:"-"`
	OnlinePending    string `json:"-"`
	OnlineError      string `json:"-"`
	ManualSuccess    string `json:"-"`
	ManualFailed     string `json:"-"`
	ValidationFailed string `json:"-"`
}

func baseCopy(kind model.BillKind, title, payer string) PageCopy {
	return PageCopy{
		Kind:           kind,
		Title:          title,
		PayerLabel:     payer,
		PayOnlineLabel: "Bayar Online",
		ManualLabel:    "Manual",
		UpsellTitle:    "Fitur Premium",
		UpsellBody:     "Pembayaran online hanya tersedia untuk paket Premium. Upgrade sekarang untuk menerima pembayaran via Midtrans.",

		LoadFailed:       "Gagal memuat data " + title,
		OnlineFailed:     "Gagal memulai pembayaran online, silakan coba lagi",
		OnlineSuccess:    "Pembayaran " + title + " berhasil",
		OnlinePending:    "Menunggu pembayaran diselesaikan",
		OnlineError:      "Pembayaran gagal diproses",
		ManualSuccess:    "Pembayaran manual berhasil dicatat",
		ManualFailed:     "Gagal mencatat pembayaran manual",
		ValidationFailed: "Periksa kembali isian pembayaran",
	}
}

var (
	SPPCopy      = baseCopy(model.BillKindSPP, "SPP", "Siswa")
	SyahriahCopy = baseCopy(model.BillKindSyahriah, "Syahriah", "Santri")
)

func CopyFor(kind model.BillKind) (PageCopy, bool) {
	switch kind {
	case model.BillKindSPP:
		return SPPCopy, true
	case model.BillKindSyahriah:
		return SyahriahCopy, true
	default:
		return PageCopy{}, false
	}
}
