package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorObservers(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveAuth("standard", "accept")
	c.ObserveAuth("standard", "accept")
	c.ObserveAuth("quick", "reject")
	c.ObserveEnrollment("accept")
	c.SetContinuousConfidence(0.84)
	c.SetEnrolled(true)

	if got := testutil.ToFloat64(c.authAttempts.WithLabelValues("standard", "accept")); got != 2 {
		t.Fatalf("standard accepts: %v", got)
	}
	if got := testutil.ToFloat64(c.authAttempts.WithLabelValues("quick", "reject")); got != 1 {
		t.Fatalf("quick rejects: %v", got)
	}
	if got := testutil.ToFloat64(c.continuousConfidence); got != 0.84 {
		t.Fatalf("continuous confidence: %v", got)
	}
	if got := testutil.ToFloat64(c.enrolled); got != 1 {
		t.Fatalf("enrolled gauge: %v", got)
	}
	c.SetEnrolled(false)
	if got := testutil.ToFloat64(c.enrolled); got != 0 {
		t.Fatalf("enrolled gauge after delete: %v", got)
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveAuth("standard", "accept")
	c.ObserveEnrollment("reject")
	c.SetContinuousConfidence(0.5)
	c.SetEnrolled(true)
}
