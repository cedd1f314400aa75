package checkers

import (
	"context"
	"fmt"

	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&axfrChecker{})
}

type axfrChecker struct{}

func (c *axfrChecker) Name() string { return "axfr" }

// Run re-runs the NS checker as a prerequisite and attempts a zone
// transfer against every one of the domain's nameserver IPs. Any
// nameserver that allows it is a misconfiguration: zone transfers should
// be restricted to known secondaries.
func (c *axfrChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	nsResult := engine.RunNS(ctx, deps)
	records, _ := nsResult.Records.([]report.NsRecord)

	if nsResult.Status == report.StatusError && len(records) == 0 {
		return report.CheckResult{Status: report.StatusError, Messages: []string{"Cannot check AXFR: NS record check failed"}}
	}

	var subChecks []report.SubCheck
	vulnerable := false

	for _, r := range records {
		for _, addr := range r.Addresses {
			if addr.Kind != report.IPv4 {
				continue
			}
			rrs, err := deps.Resolver.AttemptAXFR(ctx, addr.Address, deps.Domain)
			if err == nil && len(rrs) > 0 {
				vulnerable = true
				subChecks = append(subChecks, report.SubCheck{
					Name: "axfr_" + r.Host, Status: report.StatusError,
					Message: fmt.Sprintf("Zone transfer allowed from %s (%s)", r.Host, addr.Address),
				})
			} else {
				subChecks = append(subChecks, report.SubCheck{
					Name: "axfr_" + r.Host, Status: report.StatusPass,
					Message: fmt.Sprintf("Zone transfer refused by %s (%s)", r.Host, addr.Address),
				})
			}
		}
	}

	status := report.StatusPass
	messages := []string{"Zone transfers are properly restricted on all nameservers."}
	if vulnerable {
		status = report.StatusError
		messages = []string{"Zone transfer vulnerability detected! This allows unauthorized access to DNS records."}
	}

	return report.CheckResult{
		Status:    status,
		Messages:  messages,
		SubChecks: subChecks,
		Extra:     map[string]any{"open": vulnerable},
	}
}
