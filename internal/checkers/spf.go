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
	engine.Register(&spfChecker{})
}

type spfChecker struct{}

func (c *spfChecker) Name() string { return "spf" }

// spfDNSLookupMechanisms are the SPF mechanisms that cost a DNS lookup
// against the 10-lookup budget RFC 7208 section 4.6.4 imposes.
var spfDNSLookupMechanisms = []string{"include:", "a:", "mx:", "exists:", "redirect="}

func (c *spfChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeTXT)
	if err != nil {
		return report.CheckResult{Status: report.StatusError, Messages: []string{fmt.Sprintf("Failed to query SPF record: %v", err)}}
	}

	var spfRecords []string
	for _, rr := range rrs {
		if txt, ok := rr.(*dns.TXT); ok {
			value := strings.Join(txt.Txt, "")
			if strings.HasPrefix(value, "v=spf1") {
				spfRecords = append(spfRecords, value)
			}
		}
	}

	if len(spfRecords) == 0 {
		return report.CheckResult{Status: report.StatusInfo, Messages: []string{"No SPF record found"}}
	}

	var subChecks []report.SubCheck

	if len(spfRecords) > 1 {
		subChecks = append(subChecks, report.SubCheck{Name: "spf_count", Status: report.StatusWarning, Message: "Multiple SPF records found (only one allowed)"})
	} else {
		subChecks = append(subChecks, report.SubCheck{Name: "spf_count", Status: report.StatusPass, Message: "Exactly one SPF record found"})
	}

	record := spfRecords[0]

	if validSPFSyntax(record) {
		subChecks = append(subChecks, report.SubCheck{Name: "spf_syntax", Status: report.StatusPass, Message: "SPF record ends with a valid all mechanism"})
	} else {
		subChecks = append(subChecks, report.SubCheck{Name: "spf_syntax", Status: report.StatusWarning, Message: "Invalid SPF syntax"})
	}

	lookupCount := countSPFDNSLookups(record)
	if lookupCount > 10 {
		subChecks = append(subChecks, report.SubCheck{Name: "spf_dns_lookups", Status: report.StatusWarning, Message: fmt.Sprintf("Too many DNS lookups in SPF (%d/10)", lookupCount)})
	} else {
		subChecks = append(subChecks, report.SubCheck{Name: "spf_dns_lookups", Status: report.StatusPass, Message: fmt.Sprintf("SPF DNS lookup count is %d/10", lookupCount)})
	}

	if strings.Contains(strings.ToLower(record), "ptr") {
		subChecks = append(subChecks, report.SubCheck{Name: "spf_deprecated_mechanism", Status: report.StatusWarning, Message: "SPF contains deprecated 'ptr' mechanism"})
	} else {
		subChecks = append(subChecks, report.SubCheck{Name: "spf_deprecated_mechanism", Status: report.StatusPass, Message: "No deprecated mechanisms found"})
	}

	return report.CheckResult{
		Status:    rollUp(subChecks),
		SubChecks: subChecks,
		Record:    record,
		Extra:     map[string]any{"dns_lookups": lookupCount},
	}
}

func validSPFSyntax(record string) bool {
	if !strings.HasPrefix(record, "v=spf1") {
		return false
	}
	parts := strings.Fields(record)
	if len(parts) == 0 {
		return false
	}
	last := parts[len(parts)-1]
	switch last {
	case "~all", "-all", "+all", "?all":
		return true
	default:
		return false
	}
}

func countSPFDNSLookups(record string) int {
	lower := strings.ToLower(record)
	count := 0
	for _, mech := range spfDNSLookupMechanisms {
		count += strings.Count(lower, mech)
	}
	for _, part := range strings.Fields(lower) {
		if part == "a" || part == "mx" {
			count++
		}
	}
	return count
}
