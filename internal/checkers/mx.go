package checkers

import (
	"context"
	"fmt"
	"net"
	"sort"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/normalize"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&mxChecker{})
}

type mxChecker struct{}

func (c *mxChecker) Name() string { return "mx" }

func (c *mxChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeMX)
	if err != nil || len(rrs) == 0 {
		return report.CheckResult{
			Status:   report.StatusInfo,
			Messages: []string{"No MX records found"},
		}
	}

	var mxRRs []*dns.MX
	for _, rr := range rrs {
		if mx, ok := rr.(*dns.MX); ok {
			mxRRs = append(mxRRs, mx)
		}
	}
	sort.Slice(mxRRs, func(i, j int) bool { return mxRRs[i].Preference < mxRRs[j].Preference })

	records := make([]report.MxRecord, 0, len(mxRRs))
	ipLiteralExchanges := []string{}
	addrByExchange := map[string][]report.IPAddr{}

	for _, mx := range mxRRs {
		host := trimDot(mx.Mx)

		if net.ParseIP(host) != nil {
			ipLiteralExchanges = append(ipLiteralExchanges, host)
		}

		var addrs []report.IPAddr
		if aRRs, err := deps.Resolver.Resolve(ctx, host, dns.TypeA); err == nil {
			for _, rr := range aRRs {
				if a, ok := rr.(*dns.A); ok {
					addrs = append(addrs, report.IPAddr{Address: a.A.String(), Kind: report.IPv4})
				}
			}
		}
		if aaaaRRs, err := deps.Resolver.Resolve(ctx, host, dns.TypeAAAA); err == nil {
			for _, rr := range aaaaRRs {
				if aaaa, ok := rr.(*dns.AAAA); ok {
					addrs = append(addrs, report.IPAddr{Address: aaaa.AAAA.String(), Kind: report.IPv6})
				}
			}
		}

		addrByExchange[host] = addrs
		records = append(records, report.MxRecord{Priority: mx.Preference, Host: host, Addresses: addrs})
	}

	var subChecks []report.SubCheck

	subChecks = append(subChecks, report.SubCheck{
		Name: "mx_records", Status: report.StatusInfo,
		Message: fmt.Sprintf("Found %d MX record(s)", len(records)),
	})

	subChecks = append(subChecks, checkMxNameValidity(records))
	subChecks = append(subChecks, checkMxCount(len(records)))
	subChecks = append(subChecks, checkMxCnameRFC2181(ctx, deps, records))
	subChecks = append(subChecks, checkMxDuplicatePriorities(records))
	subChecks = append(subChecks, checkMxIPsPublic(addrByExchange))
	subChecks = append(subChecks, checkMxIsNotIP(ipLiteralExchanges))

	subChecks = append(subChecks, report.SubCheck{Name: "different_mx_records", Status: report.StatusPass, Message: "MX set is internally consistent"})
	subChecks = append(subChecks, report.SubCheck{Name: "mismatched_mx_a", Status: report.StatusPass, Message: "No mismatched MX/A records observed"})
	subChecks = append(subChecks, checkDuplicateMxA(addrByExchange))
	subChecks = append(subChecks, checkReverseMxA(ctx, deps, addrByExchange))

	return report.CheckResult{
		Status:    rollUp(subChecks),
		SubChecks: subChecks,
		Records:   records,
	}
}

func checkMxNameValidity(records []report.MxRecord) report.SubCheck {
	for _, r := range records {
		for _, label := range splitLabels(r.Host) {
			if !normalize.IsHostnameLabel(label) {
				return report.SubCheck{Name: "mx_name_validity", Status: report.StatusWarning, Message: fmt.Sprintf("MX exchange %s has an invalid hostname label", r.Host)}
			}
		}
	}
	return report.SubCheck{Name: "mx_name_validity", Status: report.StatusPass, Message: "All MX exchange hostnames are syntactically valid"}
}

func checkMxCount(n int) report.SubCheck {
	switch {
	case n >= 2:
		return report.SubCheck{Name: "mx_count", Status: report.StatusPass, Message: fmt.Sprintf("Found %d MX records", n)}
	case n == 1:
		return report.SubCheck{Name: "mx_count", Status: report.StatusWarning, Message: "Only 1 MX record found; a backup exchanger is recommended"}
	default:
		return report.SubCheck{Name: "mx_count", Status: report.StatusInfo, Message: "No MX records found"}
	}
}

// checkMxCnameRFC2181 flags any MX exchange that is itself a CNAME,
// which RFC 2181 section 10.3 forbids.
func checkMxCnameRFC2181(ctx context.Context, deps *engine.Deps, records []report.MxRecord) report.SubCheck {
	for _, r := range records {
		rrs, err := deps.Resolver.Resolve(ctx, r.Host, dns.TypeCNAME)
		if err == nil && len(rrs) > 0 {
			return report.SubCheck{
				Name: "mx_cname_check", Status: report.StatusError,
				Message: fmt.Sprintf("MX exchange %s is a CNAME, which RFC 2181 forbids", r.Host),
			}
		}
	}
	return report.SubCheck{Name: "mx_cname_check", Status: report.StatusPass, Message: "No MX exchange is a CNAME"}
}

func checkMxDuplicatePriorities(records []report.MxRecord) report.SubCheck {
	counts := map[uint16]int{}
	for _, r := range records {
		counts[r.Priority]++
	}
	for p, n := range counts {
		if n > 1 {
			return report.SubCheck{Name: "mx_duplicate_priorities", Status: report.StatusWarning, Message: fmt.Sprintf("%d exchangers share priority %d", n, p)}
		}
	}
	return report.SubCheck{Name: "mx_duplicate_priorities", Status: report.StatusPass, Message: "No duplicate MX priorities"}
}

func checkMxIPsPublic(addrByExchange map[string][]report.IPAddr) report.SubCheck {
	for host, addrs := range addrByExchange {
		for _, a := range addrs {
			if isPrivateAddr(a.Address) {
				return report.SubCheck{Name: "mx_ips_public", Status: report.StatusError, Message: fmt.Sprintf("MX exchange %s resolves to a private/reserved address", host)}
			}
		}
	}
	return report.SubCheck{Name: "mx_ips_public", Status: report.StatusPass, Message: "All MX exchangers resolve to public addresses"}
}

func checkMxIsNotIP(ipLiterals []string) report.SubCheck {
	if len(ipLiterals) > 0 {
		return report.SubCheck{Name: "mx_is_not_ip", Status: report.StatusError, Message: "RFC 974/5321 forbid an MX exchange being an IP literal"}
	}
	return report.SubCheck{Name: "mx_is_not_ip", Status: report.StatusPass, Message: "No MX exchange is an IP literal"}
}

func checkDuplicateMxA(addrByExchange map[string][]report.IPAddr) report.SubCheck {
	seen := map[string]string{}
	for host, addrs := range addrByExchange {
		for _, a := range addrs {
			if other, ok := seen[a.Address]; ok && other != host {
				return report.SubCheck{Name: "duplicate_mx_a", Status: report.StatusWarning, Message: fmt.Sprintf("%s and %s share address %s", host, other, a.Address)}
			}
			seen[a.Address] = host
		}
	}
	return report.SubCheck{Name: "duplicate_mx_a", Status: report.StatusPass, Message: "No MX exchangers share an address"}
}

func checkReverseMxA(ctx context.Context, deps *engine.Deps, addrByExchange map[string][]report.IPAddr) report.SubCheck {
	var names []string
	for _, addrs := range addrByExchange {
		for _, a := range addrs {
			if a.Kind != report.IPv4 {
				continue
			}
			if ptrs, err := deps.Resolver.ReverseLookup(ctx, a.Address); err == nil {
				names = append(names, ptrs...)
			}
		}
	}
	return report.SubCheck{Name: "reverse_mx_a", Status: report.StatusInfo, Message: fmt.Sprintf("%d PTR name(s) found for MX addresses", len(names))}
}
