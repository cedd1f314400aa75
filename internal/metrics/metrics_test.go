package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordQueryMetricsClassifiesOutcome(t *testing.T) {
	DNSLookupTotal.Reset()

	RecordQueryMetrics("udp://8.8.8.8:53", 0.012, "NOERROR", "A")
	RecordQueryMetrics("udp://8.8.8.8:53", 0.5, "SERVFAIL", "A")

	if got := testutil.ToFloat64(DNSLookupTotal.WithLabelValues("udp://8.8.8.8:53", "A", "success")); got != 1 {
		t.Errorf("success count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(DNSLookupTotal.WithLabelValues("udp://8.8.8.8:53", "A", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestRecordCheckIncrementsByStatus(t *testing.T) {
	CheckTotal.Reset()

	RecordCheck("NS", "ok", 0.05)
	RecordCheck("NS", "ok", 0.06)
	RecordCheck("NS", "warning", 0.02)

	if got := testutil.ToFloat64(CheckTotal.WithLabelValues("NS", "ok")); got != 2 {
		t.Errorf("ok count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(CheckTotal.WithLabelValues("NS", "warning")); got != 1 {
		t.Errorf("warning count = %v, want 1", got)
	}
}
