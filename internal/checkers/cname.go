package checkers

import (
	"context"
	"fmt"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&cnameChecker{})
}

type cnameChecker struct{}

func (c *cnameChecker) Name() string { return "cname" }

// cnameSubdomains are the conventional hostnames worth probing for a
// CNAME even when nothing else points us at them.
var cnameSubdomains = []string{"www", "mail", "ftp", "blog", "shop"}

func (c *cnameChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	var subChecks []report.SubCheck
	records := map[string]report.CnameRecord{}

	for _, sub := range cnameSubdomains {
		hostname := sub + "." + deps.Domain
		record, status, message := checkCnameForHost(ctx, deps, hostname)
		records[sub] = record
		subChecks = append(subChecks, report.SubCheck{Name: "cname_" + sub, Status: status, Message: message})
	}

	if rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeCNAME); err == nil && len(rrs) > 0 {
		subChecks = append(subChecks, report.SubCheck{
			Name: "cname_apex", Status: report.StatusError,
			Message: "CNAME record found at zone apex (not allowed)",
		})
	} else {
		subChecks = append(subChecks, report.SubCheck{
			Name: "cname_apex", Status: report.StatusPass,
			Message: "No CNAME record at zone apex",
		})
	}

	return report.CheckResult{
		Status:    rollUp(subChecks),
		SubChecks: subChecks,
		Records:   records,
	}
}

func checkCnameForHost(ctx context.Context, deps *engine.Deps, hostname string) (report.CnameRecord, report.Status, string) {
	rrs, err := deps.Resolver.Resolve(ctx, hostname, dns.TypeCNAME)
	if err != nil || len(rrs) == 0 {
		return report.CnameRecord{Host: hostname}, report.StatusInfo, fmt.Sprintf("No CNAME record for %s", hostname)
	}

	cname, ok := rrs[0].(*dns.CNAME)
	if !ok {
		return report.CnameRecord{Host: hostname}, report.StatusInfo, fmt.Sprintf("No CNAME record for %s", hostname)
	}
	target := trimDot(cname.Target)

	resolves := false
	if aRRs, err := deps.Resolver.Resolve(ctx, target, dns.TypeA); err == nil && len(aRRs) > 0 {
		resolves = true
	} else if aaaaRRs, err := deps.Resolver.Resolve(ctx, target, dns.TypeAAAA); err == nil && len(aaaaRRs) > 0 {
		resolves = true
	}

	record := report.CnameRecord{Host: hostname, Target: target}
	if resolves {
		return record, report.StatusPass, fmt.Sprintf("%s -> %s resolves", hostname, target)
	}
	return record, report.StatusWarning, fmt.Sprintf("CNAME target %s does not resolve", target)
}
