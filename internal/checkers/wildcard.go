package checkers

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&wildcardChecker{})
}

type wildcardChecker struct{}

func (c *wildcardChecker) Name() string { return "wildcard" }

// Run queries a handful of labels nobody would have deliberately
// published a record for; any answer indicates the zone has a wildcard
// record (`*.domain`) rather than that those specific names exist.
func (c *wildcardChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	testSubdomains := []string{
		fmt.Sprintf("randomtest%d.%s", rand.IntN(900000)+100000, deps.Domain),
		fmt.Sprintf("nonexistent-subdomain-%d.%s", rand.IntN(900000)+100000, deps.Domain),
		"test-wildcard." + deps.Domain,
	}

	var tests []map[string]any
	found := false

	for _, sub := range testSubdomains {
		if rrs, err := deps.Resolver.Resolve(ctx, sub, dns.TypeA); err == nil && len(rrs) > 0 {
			tests = append(tests, map[string]any{"subdomain": sub, "type": "A", "has_record": true})
			found = true
		} else {
			tests = append(tests, map[string]any{"subdomain": sub, "type": "A", "has_record": false})
		}

		if rrs, err := deps.Resolver.Resolve(ctx, sub, dns.TypeAAAA); err == nil && len(rrs) > 0 {
			tests = append(tests, map[string]any{"subdomain": sub, "type": "AAAA", "has_record": true})
			found = true
		} else {
			tests = append(tests, map[string]any{"subdomain": sub, "type": "AAAA", "has_record": false})
		}
	}

	status := report.StatusPass
	message := "No wildcard DNS records detected."
	if found {
		status = report.StatusWarning
		message = "Wildcard DNS records detected. This means any subdomain will resolve."
	}

	return report.CheckResult{
		Status:   status,
		Messages: []string{message},
		Records:  tests,
		Extra:    map[string]any{"has_wildcard": found},
	}
}
