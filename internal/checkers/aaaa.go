package checkers

import (
	"context"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&aaaaChecker{})
}

type aaaaChecker struct{}

func (c *aaaaChecker) Name() string { return "aaaa" }

// Run mirrors aChecker but for IPv6: a missing AAAA record is expected
// (IPv6 is optional) and resolves to info rather than warning.
func (c *aaaaChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	return runAddressCheck(ctx, deps, dns.TypeAAAA, report.IPv6)
}
