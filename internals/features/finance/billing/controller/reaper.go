package controller

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"schoolku_web/internals/helpers/logger"
)

type Sweeper interface {
	Sweep() int
}

type SweeperFunc func() int

func (f SweeperFunc) Sweep() int { return f() }

// SweepAll menjalankan semua sweeper sekali, mengembalikan total yang dibuang.
func SweepAll(sweepers ...Sweeper) int {
	n := 0
	for _, s := range sweepers {
		n += s.Sweep()
	}
	return n
}

// StartReaper menjadwalkan pembersihan sesi halaman & checkout kedaluwarsa.
// Jadwal memakai sintaks robfig/cron, mis. "@every 1m".
func StartReaper(schedule string, sweepers ...Sweeper) (*cron.Cron, error) {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if n := SweepAll(sweepers...); n > 0 {
			logger.L().Info("🧹 sesi kedaluwarsa dibersihkan", zap.Int("count", n))
		}
	}); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
