package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	CheckPermission = "permission"
	CheckWarehouse  = "warehouse"
	CheckEffective  = "effective"

	ResultAllowed = "allowed"
	ResultDenied  = "denied"
	ResultError   = "error"
)

type accessMetrics struct {
	checks    *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

var (
	accessMetricsOnce sync.Once
	accessMetricsInst *accessMetrics
)

func global() *accessMetrics {
	accessMetricsOnce.Do(func() {
		accessMetricsInst = &accessMetrics{
			checks: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "parcelhub",
				Subsystem: "access",
				Name:      "checks_total",
				Help:      "Access checks served, labeled by check kind and result",
			}, []string{"check", "result"}),
			durations: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "parcelhub",
				Subsystem: "access",
				Name:      "resolve_duration_seconds",
				Help:      "Time spent resolving effective permissions",
				Buckets:   prometheus.DefBuckets,
			}, []string{"check"}),
		}
	})
	return accessMetricsInst
}

// Result maps a check outcome to its label.
func Result(allowed bool, err error) string {
	switch {
	case err != nil:
		return ResultError
	case allowed:
		return ResultAllowed
	default:
		return ResultDenied
	}
}

// ObserveCheck records one access check started at start.
func ObserveCheck(check string, start time.Time, allowed bool, err error) {
	m := global()
	m.checks.WithLabelValues(check, Result(allowed, err)).Inc()
	m.durations.WithLabelValues(check).Observe(time.Since(start).Seconds())
}

// ChecksCounter exposes the counter for tests.
func ChecksCounter(check, result string) prometheus.Counter {
	return global().checks.WithLabelValues(check, result)
}
