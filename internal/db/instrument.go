package db

import (
	"time"

	"gorm.io/gorm"

	"low-altitude/uavops/internal/metrics"
)

const startedAtKey = "uavops:started_at"

// Instrument counts and times every GORM statement by operation.
func Instrument(gdb *gorm.DB, m *metrics.MetricsRegistry) error {
	if m == nil {
		return nil
	}

	before := func(tx *gorm.DB) {
		tx.InstanceSet(startedAtKey, time.Now())
	}
	after := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) {
			m.DBQueriesTotal.WithLabelValues(op).Inc()
			if v, ok := tx.InstanceGet(startedAtKey); ok {
				if started, ok := v.(time.Time); ok {
					m.DBQueryDuration.WithLabelValues(op).Observe(time.Since(started).Seconds())
				}
			}
		}
	}

	cb := gdb.Callback()
	steps := []struct {
		op  string
		reg func(name string, fn func(*gorm.DB)) error
		end func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, s := range steps {
		if err := s.reg("uavops:before_"+s.op, before); err != nil {
			return err
		}
		if err := s.end("uavops:after_"+s.op, after(s.op)); err != nil {
			return err
		}
	}
	return nil
}
