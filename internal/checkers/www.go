package checkers

import (
	"context"
	"fmt"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&wwwChecker{})
}

type wwwChecker struct{}

func (c *wwwChecker) Name() string { return "www" }

func (c *wwwChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	wwwDomain := "www." + deps.Domain

	chain, finalTarget, cnameResolves := followCnameChain(ctx, deps, wwwDomain)

	var ips []report.IPAddr
	if rrs, err := deps.Resolver.Resolve(ctx, finalTarget, dns.TypeA); err == nil {
		for _, rr := range rrs {
			if a, ok := rr.(*dns.A); ok {
				ips = append(ips, report.IPAddr{Address: a.A.String(), Kind: report.IPv4})
			}
		}
	}

	var subChecks []report.SubCheck

	cnameStatus := report.StatusInfo
	cnameMessage := fmt.Sprintf("No CNAME record found for %s", wwwDomain)
	if len(chain) > 0 {
		if cnameResolves {
			cnameStatus = report.StatusPass
			cnameMessage = fmt.Sprintf("%s has a CNAME chain ending in an A record", wwwDomain)
		} else {
			cnameStatus = report.StatusWarning
			cnameMessage = fmt.Sprintf("CNAME record exists for %s but final target %s has no A records", wwwDomain, finalTarget)
		}
	}
	subChecks = append(subChecks, report.SubCheck{Name: "www_cname", Status: cnameStatus, Message: cnameMessage})

	subChecks = append(subChecks, report.SubCheck{
		Name: "www_a_record", Status: report.StatusInfo,
		Message: fmt.Sprintf("Your %s A record resolves to %d address(es) via %s", wwwDomain, len(ips), finalTarget),
	})

	subChecks = append(subChecks, checkWwwIPsPublic(ips))

	status := rollUp(subChecks)
	if len(chain) == 0 && len(ips) == 0 {
		status = report.StatusError
	}

	return report.CheckResult{
		Status:    status,
		SubChecks: subChecks,
		Extra:     map[string]any{"cname_chain": chain, "final_target": finalTarget, "addresses": ips},
	}
}

func followCnameChain(ctx context.Context, deps *engine.Deps, start string) ([]map[string]string, string, bool) {
	var chain []map[string]string
	seen := map[string]bool{start: true}
	current := start

	for depth := 0; depth < 10; depth++ {
		rrs, err := deps.Resolver.Resolve(ctx, current, dns.TypeCNAME)
		if err != nil || len(rrs) == 0 {
			break
		}
		cname, ok := rrs[0].(*dns.CNAME)
		if !ok {
			break
		}
		target := trimDot(cname.Target)
		chain = append(chain, map[string]string{"from": current, "to": target})
		if seen[target] {
			break
		}
		seen[target] = true
		current = target
	}

	resolves := false
	if rrs, err := deps.Resolver.Resolve(ctx, current, dns.TypeA); err == nil && len(rrs) > 0 {
		resolves = true
	}
	return chain, current, resolves
}

func checkWwwIPsPublic(ips []report.IPAddr) report.SubCheck {
	if len(ips) == 0 {
		return report.SubCheck{Name: "www_ip_public", Status: report.StatusError, Message: "No IPs found for WWW subdomain"}
	}

	var public, private []string
	for _, ip := range ips {
		if isPrivateAddr(ip.Address) {
			private = append(private, ip.Address)
		} else {
			public = append(public, ip.Address)
		}
	}

	switch {
	case len(private) == 0:
		return report.SubCheck{Name: "www_ip_public", Status: report.StatusPass, Message: "All WWW IPs appear to be public"}
	case len(public) > 0:
		return report.SubCheck{Name: "www_ip_public", Status: report.StatusWarning, Message: fmt.Sprintf("Some WWW IPs are private/reserved: %v", private)}
	default:
		return report.SubCheck{Name: "www_ip_public", Status: report.StatusError, Message: fmt.Sprintf("All WWW IPs are private/reserved: %v", private)}
	}
}
