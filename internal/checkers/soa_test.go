package checkers

import (
	"testing"

	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func TestRangeSubCheck(t *testing.T) {
	cases := []struct {
		value uint32
		want  report.Status
	}{
		{3600, report.StatusPass},
		{86400, report.StatusPass},
		{100, report.StatusWarning},
		{200000, report.StatusWarning},
	}
	for _, c := range cases {
		got := rangeSubCheck("soa_refresh", "REFRESH", c.value, 3600, 86400)
		if got.Status != c.want {
			t.Errorf("rangeSubCheck(%d).Status = %v, want %v", c.value, got.Status, c.want)
		}
	}
}
