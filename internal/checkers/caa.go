package checkers

import (
	"context"
	"fmt"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&caaChecker{})
}

type caaChecker struct{}

func (c *caaChecker) Name() string { return "caa" }

func (c *caaChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeCAA)
	if err != nil {
		return report.CheckResult{Status: report.StatusError, Messages: []string{fmt.Sprintf("CAA check failed: %v", err)}}
	}

	if len(rrs) == 0 {
		return report.CheckResult{
			Status:   report.StatusWarning,
			Messages: []string{"No CAA records found. Consider adding CAA records for enhanced SSL security."},
		}
	}

	records := make([]report.GenericRecord, 0, len(rrs))
	for _, rr := range rrs {
		if caa, ok := rr.(*dns.CAA); ok {
			records = append(records, report.GenericRecord{
				Type:  "CAA",
				Value: fmt.Sprintf("%d %s %q", caa.Flag, caa.Tag, caa.Value),
			})
		}
	}

	return report.CheckResult{
		Status:   report.StatusPass,
		Messages: []string{"CAA records found and configured"},
		Records:  records,
	}
}
