package redlockmetrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c interface {
	Write(*dto.Metric) error
}) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestObserveAcquireIncrementsCounterAndHistogram(t *testing.T) {
	r := NewRecorder()

	r.ObserveAcquire("k", true, 2)
	r.ObserveAcquire("k", false, 3)

	if got := counterValue(t, r.AcquireTotal.WithLabelValues("k", "success")); got != 1 {
		t.Fatalf("success counter = %v, want 1", got)
	}
	if got := counterValue(t, r.AcquireTotal.WithLabelValues("k", "failure")); got != 1 {
		t.Fatalf("failure counter = %v, want 1", got)
	}

	var h dto.Metric
	if err := r.RoundsHistogram.WithLabelValues("acquire").(prometheus.Metric).Write(&h); err != nil {
		t.Fatalf("write histogram: %v", err)
	}
	if got := h.GetHistogram().GetSampleCount(); got != 1 {
		t.Fatalf("acquire rounds sample count = %v, want 1", got)
	}
	if got := h.GetHistogram().GetSampleSum(); got != 2 {
		t.Fatalf("acquire rounds sample sum = %v, want 2", got)
	}
}

func TestObserveReleaseIncrementsCounter(t *testing.T) {
	r := NewRecorder()
	r.ObserveRelease("k", true)
	if got := counterValue(t, r.ReleaseTotal.WithLabelValues("k", "success")); got != 1 {
		t.Fatalf("release success counter = %v, want 1", got)
	}
}

func TestRegisterDoesNotPanic(t *testing.T) {
	r := NewRecorder()
	reg := prometheus.NewRegistry()
	r.Register(reg)
}
