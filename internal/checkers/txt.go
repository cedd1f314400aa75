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
	engine.Register(&txtChecker{})
}

type txtChecker struct{}

func (c *txtChecker) Name() string { return "txt" }

// verificationMarkers are substrings that flag a TXT record as a
// third-party domain-ownership verification token rather than a
// protocol record.
var verificationMarkers = []string{"verification", "verify", "google", "facebook", "microsoft"}

func (c *txtChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeTXT)
	if err != nil {
		return report.CheckResult{Status: report.StatusError, Messages: []string{fmt.Sprintf("Failed to query TXT records: %v", err)}}
	}

	var values []string
	for _, rr := range rrs {
		if txt, ok := rr.(*dns.TXT); ok {
			values = append(values, strings.Join(txt.Txt, ""))
		}
	}

	if len(values) == 0 {
		return report.CheckResult{Status: report.StatusInfo, Messages: []string{"No TXT records found"}}
	}

	categories := categorizeTXT(values)

	records := make([]report.TxtRecord, 0, len(values))
	for _, v := range values {
		records = append(records, report.TxtRecord{Value: v, Category: categoryOf(v)})
	}

	return report.CheckResult{
		Status: report.StatusPass,
		SubChecks: []report.SubCheck{
			{Name: "txt_count", Status: report.StatusPass, Message: fmt.Sprintf("Found %d TXT record(s)", len(values))},
		},
		Records: records,
		Extra: map[string]any{
			"categories": categories,
			"count":      len(values),
		},
	}
}

func categoryOf(record string) string {
	lower := strings.ToLower(record)
	switch {
	case strings.HasPrefix(lower, "v=spf1"):
		return "spf"
	case strings.HasPrefix(lower, "v=dmarc1"):
		return "dmarc"
	case strings.Contains(lower, "dkim"):
		return "dkim"
	default:
		for _, marker := range verificationMarkers {
			if strings.Contains(lower, marker) {
				return "verification"
			}
		}
		return "other"
	}
}

func categorizeTXT(values []string) map[string][]string {
	categories := map[string][]string{"spf": {}, "dmarc": {}, "dkim": {}, "verification": {}, "other": {}}
	for _, v := range values {
		cat := categoryOf(v)
		categories[cat] = append(categories[cat], v)
	}
	return categories
}
