package checkers

import (
	"context"
	"fmt"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&aChecker{})
}

type aChecker struct{}

func (c *aChecker) Name() string { return "a" }

// Run queries A records for D and www.D. A record for the root is
// expected; a private/loopback/reserved address is flagged but never
// demotes the result below warning.
func (c *aChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	return runAddressCheck(ctx, deps, dns.TypeA, report.IPv4)
}

func runAddressCheck(ctx context.Context, deps *engine.Deps, qtype uint16, kind report.IPKind) report.CheckResult {
	rootAddrs, rootErr := resolveAddrs(ctx, deps, deps.Domain, qtype, kind)
	wwwAddrs, _ := resolveAddrs(ctx, deps, "www."+deps.Domain, qtype, kind)

	var subChecks []report.SubCheck
	missingStatus := report.StatusWarning
	if kind == report.IPv6 {
		missingStatus = report.StatusInfo
	}

	if rootErr != nil || len(rootAddrs) == 0 {
		subChecks = append(subChecks, report.SubCheck{
			Name: "root_address", Status: missingStatus,
			Message: fmt.Sprintf("No %s record found at the zone apex", kind),
		})
	} else {
		subChecks = append(subChecks, report.SubCheck{
			Name: "root_address", Status: report.StatusPass,
			Message: fmt.Sprintf("Found %d %s record(s) at the zone apex", len(rootAddrs), kind),
		})
	}

	for _, addr := range append(append([]report.IPAddr{}, rootAddrs...), wwwAddrs...) {
		if isPrivateAddr(addr.Address) {
			subChecks = append(subChecks, report.SubCheck{
				Name: "private_address", Status: report.StatusWarning,
				Message: fmt.Sprintf("%s resolves to a private/reserved address: %s", kind, addr.Address),
			})
		}
	}

	return report.CheckResult{
		Status:    rollUp(subChecks),
		SubChecks: subChecks,
		Extra: map[string]any{
			"root_addresses": rootAddrs,
			"www_addresses":  wwwAddrs,
		},
	}
}

func resolveAddrs(ctx context.Context, deps *engine.Deps, name string, qtype uint16, kind report.IPKind) ([]report.IPAddr, error) {
	rrs, err := deps.Resolver.Resolve(ctx, name, qtype)
	if err != nil {
		return nil, err
	}
	var addrs []report.IPAddr
	for _, rr := range rrs {
		switch v := rr.(type) {
		case *dns.A:
			if kind == report.IPv4 {
				addrs = append(addrs, report.IPAddr{Address: v.A.String(), Kind: kind})
			}
		case *dns.AAAA:
			if kind == report.IPv6 {
				addrs = append(addrs, report.IPAddr{Address: v.AAAA.String(), Kind: kind})
			}
		}
	}
	return addrs, nil
}
