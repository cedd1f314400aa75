package checkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&dmarcChecker{})
}

type dmarcChecker struct{}

func (c *dmarcChecker) Name() string { return "dmarc" }

func (c *dmarcChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	dmarcDomain := "_dmarc." + deps.Domain
	rrs, err := deps.Resolver.Resolve(ctx, dmarcDomain, dns.TypeTXT)
	if err != nil || len(rrs) == 0 {
		return report.CheckResult{
			Status:   report.StatusWarning,
			Messages: []string{"No DMARC record found. Consider implementing DMARC for better email security."},
		}
	}

	var record string
	for _, rr := range rrs {
		if txt, ok := rr.(*dns.TXT); ok {
			value := strings.Join(txt.Txt, "")
			if strings.HasPrefix(value, "v=DMARC1") {
				record = value
				break
			}
		}
	}

	if record == "" {
		return report.CheckResult{
			Status:   report.StatusWarning,
			Messages: []string{"No DMARC record found. Consider implementing DMARC for better email security."},
		}
	}

	tags := parseTagValueRecord(record)
	policy := tags["p"]
	if policy == "" {
		policy = "none"
	}

	var subChecks []report.SubCheck
	switch policy {
	case "none":
		subChecks = append(subChecks, report.SubCheck{
			Name: "dmarc_policy", Status: report.StatusWarning,
			Message: "DMARC policy is set to 'none'. Consider using 'quarantine' or 'reject' for better security.",
		})
	case "quarantine", "reject":
		subChecks = append(subChecks, report.SubCheck{
			Name: "dmarc_policy", Status: report.StatusPass,
			Message: fmt.Sprintf("DMARC policy is '%s'", policy),
		})
	default:
		subChecks = append(subChecks, report.SubCheck{
			Name: "dmarc_policy", Status: report.StatusError,
			Message: fmt.Sprintf("Invalid DMARC policy: %s", policy),
		})
	}

	if _, ok := tags["rua"]; !ok {
		subChecks = append(subChecks, report.SubCheck{
			Name: "dmarc_reporting", Status: report.StatusWarning,
			Message: "No aggregate reporting address (rua) configured.",
		})
	} else {
		subChecks = append(subChecks, report.SubCheck{
			Name: "dmarc_reporting", Status: report.StatusPass,
			Message: "Aggregate reporting address configured",
		})
	}

	return report.CheckResult{
		Status:    rollUp(subChecks),
		SubChecks: subChecks,
		Record:    record,
		Extra:     map[string]any{"parsed": tags},
	}
}

// parseTagValueRecord parses a semicolon-separated tag=value record, the
// format DMARC and DKIM TXT records both use.
func parseTagValueRecord(record string) map[string]string {
	tags := map[string]string{}
	for _, part := range strings.Split(record, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		tags[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return tags
}
