package checkers

import (
	"context"
	"fmt"

	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&glueChecker{})
}

type glueChecker struct{}

func (c *glueChecker) Name() string { return "glue" }

// Run re-runs the NS checker as a prerequisite and inspects the same
// nameserver/glue records for in-bailiwick nameservers lacking glue.
func (c *glueChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	nsResult := engine.RunNS(ctx, deps)
	records, _ := nsResult.Records.([]report.NsRecord)

	if nsResult.Status == report.StatusError && len(records) == 0 {
		return report.CheckResult{Status: report.StatusError, Messages: []string{"Cannot check glue records: NS record check failed"}}
	}

	var subChecks []report.SubCheck
	for _, r := range records {
		needsGlue := isBailiwick(r.Host, deps.Domain)
		hasGlue := len(r.Addresses) > 0

		switch {
		case needsGlue && !hasGlue:
			subChecks = append(subChecks, report.SubCheck{
				Name: "glue_" + r.Host, Status: report.StatusError,
				Message: fmt.Sprintf("Nameserver %s needs glue records but none found", r.Host),
			})
		case needsGlue:
			subChecks = append(subChecks, report.SubCheck{
				Name: "glue_" + r.Host, Status: report.StatusPass,
				Message: fmt.Sprintf("Nameserver %s has glue records", r.Host),
			})
		default:
			subChecks = append(subChecks, report.SubCheck{
				Name: "glue_" + r.Host, Status: report.StatusPass,
				Message: fmt.Sprintf("Nameserver %s is out-of-bailiwick; glue not required", r.Host),
			})
		}
	}

	return report.CheckResult{
		Status:    rollUp(subChecks),
		SubChecks: subChecks,
		Records:   records,
	}
}
