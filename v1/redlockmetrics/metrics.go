// Package redlockmetrics exposes Prometheus counters and a histogram for a
// redlock.Manager's operations. Wire a *Recorder into a Manager via
// redlock.WithMetrics.
package redlockmetrics

import "github.com/prometheus/client_golang/prometheus"

// Recorder records outcomes of Acquire/Extend/Release calls.
type Recorder struct {
	AcquireTotal    *prometheus.CounterVec
	ExtendTotal     *prometheus.CounterVec
	ReleaseTotal    *prometheus.CounterVec
	RoundsHistogram *prometheus.HistogramVec
}

// NewRecorder builds a Recorder with the redlock_* metric family names.
func NewRecorder() *Recorder {
	return &Recorder{
		AcquireTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redlock_acquire_total",
			Help: "Total number of Acquire calls, by resource and outcome",
		}, []string{"resource", "outcome"}),
		ExtendTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redlock_extend_total",
			Help: "Total number of Extend calls, by resource and outcome",
		}, []string{"resource", "outcome"}),
		ReleaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "redlock_release_total",
			Help: "Total number of Release calls, by resource and outcome",
		}, []string{"resource", "outcome"}),
		RoundsHistogram: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "redlock_rounds",
			Help:    "Number of broadcast rounds used by a successful Acquire or Extend",
			Buckets: prometheus.LinearBuckets(1, 1, 6),
		}, []string{"op"}),
	}
}

// Register registers every metric in r on reg.
func (r *Recorder) Register(reg prometheus.Registerer) {
	reg.MustRegister(r.AcquireTotal, r.ExtendTotal, r.ReleaseTotal, r.RoundsHistogram)
}

func outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}

// ObserveAcquire records one Acquire outcome.
func (r *Recorder) ObserveAcquire(resource string, ok bool, attempts int) {
	r.AcquireTotal.WithLabelValues(resource, outcome(ok)).Inc()
	if ok {
		r.RoundsHistogram.WithLabelValues("acquire").Observe(float64(attempts))
	}
}

// ObserveExtend records one Extend outcome.
func (r *Recorder) ObserveExtend(resource string, ok bool, attempts int) {
	r.ExtendTotal.WithLabelValues(resource, outcome(ok)).Inc()
	if ok {
		r.RoundsHistogram.WithLabelValues("extend").Observe(float64(attempts))
	}
}

// ObserveRelease records one Release outcome.
func (r *Recorder) ObserveRelease(resource string, ok bool) {
	r.ReleaseTotal.WithLabelValues(resource, outcome(ok)).Inc()
}
