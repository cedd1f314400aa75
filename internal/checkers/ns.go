package checkers

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/go-ping/ping"
	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/normalize"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
	"github.com/sudo-tiz/dnshealth-go/internal/resolver"
)

func init() {
	engine.Register(&nsChecker{})
}

type nsChecker struct{}

func (c *nsChecker) Name() string { return "ns" }

// Run mirrors the original's NS check: compare the TLD parent's
// delegation against the domain's own recursively-resolved NS set, then
// run a battery of intoDNS-style diagnostics (open recursion, DNS class,
// responsiveness, subnet diversity, glue presence, hostname syntax,
// reachability, and count) in the declared sub-check order.
func (c *nsChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	delegation, delegationErr := probeParentDelegation(ctx, deps)

	domainRRs, domainErr := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeNS)
	var domainHosts []string
	domainTTL := map[string]uint32{}
	for _, rr := range domainRRs {
		if ns, ok := rr.(*dns.NS); ok {
			host := trimDot(ns.Ns)
			domainHosts = append(domainHosts, host)
			domainTTL[host] = ns.Hdr.Ttl
		}
	}
	domainHosts = dedupeStrings(domainHosts)

	var subChecks []report.SubCheck

	// parent_delegation
	if delegationErr != nil {
		subChecks = append(subChecks, report.SubCheck{
			Name: "parent_delegation", Status: report.StatusError,
			Message: fmt.Sprintf("Failed to get parent delegation: %v", delegationErr),
		})
	} else {
		subChecks = append(subChecks, report.SubCheck{
			Name: "parent_delegation", Status: report.StatusPass,
			Message: fmt.Sprintf("Found %d NS records from TLD delegation via %s", len(delegation.Hosts), delegation.ServerUsed),
		})
	}

	// domain_nameservers
	if domainErr != nil || len(domainHosts) == 0 {
		subChecks = append(subChecks, report.SubCheck{
			Name: "domain_nameservers", Status: report.StatusError,
			Message: "Failed to get domain NS records",
		})
	} else {
		subChecks = append(subChecks, report.SubCheck{
			Name: "domain_nameservers", Status: report.StatusPass,
			Message: fmt.Sprintf("Found %d NS records from domain query", len(domainHosts)),
		})
	}

	// comparison (+ missing_at_domain / missing_at_parent)
	var parentHosts []string
	if delegation != nil {
		parentHosts = delegation.Hosts
	}
	match := sameSet(parentHosts, domainHosts)
	comparisons := map[string]any{
		"match":        match,
		"parent_count": len(parentHosts),
		"domain_count": len(domainHosts),
	}
	if match && delegation != nil && len(domainHosts) > 0 {
		subChecks = append(subChecks, report.SubCheck{
			Name: "comparison", Status: report.StatusPass,
			Message: "Parent delegation and domain NS records match",
		})
	} else {
		subChecks = append(subChecks, report.SubCheck{
			Name: "comparison", Status: report.StatusError,
			Message: "Parent delegation and domain NS records differ",
		})
		onlyParent := subtract(parentHosts, domainHosts)
		onlyDomain := subtract(domainHosts, parentHosts)
		if len(onlyParent) > 0 {
			subChecks = append(subChecks, report.SubCheck{
				Name: "missing_at_domain", Status: report.StatusError,
				Message: "Missing nameservers reported by your nameservers",
			})
		}
		if len(onlyDomain) > 0 {
			subChecks = append(subChecks, report.SubCheck{
				Name: "missing_at_parent", Status: report.StatusError,
				Message: "Missing nameservers reported by parent",
			})
		}
	}

	// Build the union of NS records with glue, source-tagged.
	records := buildNsRecords(delegation, domainHosts, domainTTL, deps, ctx)

	nsIPs := collectIPs(records)

	// recursive_queries: RD=0 query for google.com A directly at up to 3 NS IPs.
	subChecks = append(subChecks, checkRecursiveQueries(ctx, deps, nsIPs))

	// same_class: every returned RR's class is IN.
	subChecks = append(subChecks, checkSameClass(domainRRs))

	// dns_servers_responded: SOA query directly at up to 10 NS IPs.
	subChecks = append(subChecks, checkNSResponses(ctx, deps, nsIPs))

	// different_subnets: /24 diversity among NS A records.
	subChecks = append(subChecks, checkDifferentSubnets(nsIPs))

	// glue_for_ns_records: in-bailiwick NS without glue is an issue.
	subChecks = append(subChecks, checkGlueForNS(records, deps.Domain))

	// name_of_nameservers_valid
	subChecks = append(subChecks, checkNameserverHostnames(domainHosts))

	// is_ping_nameservers_work
	subChecks = append(subChecks, checkNameserverPing(nsIPs))

	// multiple_nameservers
	subChecks = append(subChecks, checkMultipleNameservers(domainHosts))

	status := rollUp(subChecks)
	if delegationErr != nil || domainErr != nil || len(domainHosts) == 0 {
		status = report.StatusError
	}

	return report.CheckResult{
		Status:    status,
		SubChecks: subChecks,
		Records:   records,
		Extra:     map[string]any{"comparisons": comparisons},
	}
}

func trimDot(s string) string {
	if len(s) > 0 && s[len(s)-1] == '.' {
		return s[:len(s)-1]
	}
	return s
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, s := range a {
		set[s] = true
	}
	for _, s := range b {
		if !set[s] {
			return false
		}
	}
	return true
}

func subtract(a, b []string) []string {
	set := make(map[string]bool, len(b))
	for _, s := range b {
		set[s] = true
	}
	var out []string
	for _, s := range a {
		if !set[s] {
			out = append(out, s)
		}
	}
	return out
}

func buildNsRecords(delegation *delegationResult, domainHosts []string, domainTTL map[string]uint32, deps *engine.Deps, ctx context.Context) []report.NsRecord {
	var records []report.NsRecord
	seen := map[string]bool{}

	if delegation != nil {
		for _, host := range delegation.Hosts {
			records = append(records, report.NsRecord{
				Host: host, Addresses: delegation.Glue[host],
				TTL: delegation.TTL, Source: report.SourceParent,
			})
			seen[host] = true
		}
	}
	for _, host := range domainHosts {
		if seen[host] {
			continue
		}
		glue := resolveGlue(ctx, deps, []string{host})
		records = append(records, report.NsRecord{
			Host: host, Addresses: glue[host],
			TTL: domainTTL[host], Source: report.SourceDomain,
		})
		seen[host] = true
	}
	return records
}

func collectIPs(records []report.NsRecord) []string {
	var ips []string
	for _, r := range records {
		for _, a := range r.Addresses {
			if a.Kind == report.IPv4 {
				ips = append(ips, a.Address)
			}
		}
	}
	return dedupeStrings(ips)
}

func checkRecursiveQueries(ctx context.Context, deps *engine.Deps, nsIPs []string) report.SubCheck {
	probe := nsIPs
	if len(probe) > 3 {
		probe = probe[:3]
	}
	for _, ip := range probe {
		msg, err := deps.Resolver.ResolveAt(ctx, ip, "google.com.", dns.TypeA)
		if err == nil && msg != nil && len(msg.Answer) > 0 {
			return report.SubCheck{
				Name: "recursive_queries", Status: report.StatusWarning,
				Message: fmt.Sprintf("Nameserver %s answers recursive queries for unrelated domains (open resolver)", ip),
			}
		}
	}
	return report.SubCheck{Name: "recursive_queries", Status: report.StatusPass, Message: "No open recursion detected"}
}

func checkSameClass(rrs []dns.RR) report.SubCheck {
	for _, rr := range rrs {
		if rr.Header().Class != dns.ClassINET {
			return report.SubCheck{Name: "same_class", Status: report.StatusError, Message: "Found NS record outside the IN class"}
		}
	}
	return report.SubCheck{Name: "same_class", Status: report.StatusPass, Message: "All NS records are class IN"}
}

func checkNSResponses(ctx context.Context, deps *engine.Deps, nsIPs []string) report.SubCheck {
	probe := nsIPs
	if len(probe) > 10 {
		probe = probe[:10]
	}
	responded := 0
	for _, ip := range probe {
		if _, err := deps.Resolver.ResolveAt(ctx, ip, deps.Domain, dns.TypeSOA); err == nil {
			responded++
		}
	}
	if len(probe) == 0 {
		return report.SubCheck{Name: "dns_servers_responded", Status: report.StatusError, Message: "No nameserver IPs available to query"}
	}
	if responded == 0 {
		return report.SubCheck{Name: "dns_servers_responded", Status: report.StatusError, Message: "None of your nameservers responded"}
	}
	if responded < len(probe) {
		return report.SubCheck{Name: "dns_servers_responded", Status: report.StatusError, Message: fmt.Sprintf("%d/%d nameservers responded", responded, len(probe))}
	}
	return report.SubCheck{Name: "dns_servers_responded", Status: report.StatusPass, Message: "All queried nameservers responded"}
}

func checkDifferentSubnets(nsIPs []string) report.SubCheck {
	subnets := map[string]bool{}
	for _, ip := range nsIPs {
		if parsed := net.ParseIP(ip); parsed != nil && parsed.To4() != nil {
			subnets[slash24(parsed)] = true
		}
	}
	if len(subnets) >= 2 {
		return report.SubCheck{Name: "different_subnets", Status: report.StatusPass, Message: fmt.Sprintf("Nameservers span %d distinct /24 subnets", len(subnets))}
	}
	return report.SubCheck{Name: "different_subnets", Status: report.StatusWarning, Message: "Nameservers do not span multiple /24 subnets"}
}

func checkGlueForNS(records []report.NsRecord, domain string) report.SubCheck {
	for _, r := range records {
		if isBailiwick(r.Host, domain) && len(r.Addresses) == 0 {
			return report.SubCheck{Name: "glue_for_ns_records", Status: report.StatusError, Message: fmt.Sprintf("In-bailiwick nameserver %s is missing glue records", r.Host)}
		}
	}
	return report.SubCheck{Name: "glue_for_ns_records", Status: report.StatusPass, Message: "All in-bailiwick nameservers have glue records"}
}

func checkNameserverHostnames(hosts []string) report.SubCheck {
	for _, h := range hosts {
		for _, label := range splitLabels(h) {
			if !normalize.IsHostnameLabel(label) {
				return report.SubCheck{Name: "name_of_nameservers_valid", Status: report.StatusWarning, Message: fmt.Sprintf("Nameserver hostname %s contains an invalid label", h)}
			}
		}
	}
	return report.SubCheck{Name: "name_of_nameservers_valid", Status: report.StatusPass, Message: "All nameserver hostnames are syntactically valid"}
}

func splitLabels(host string) []string {
	var labels []string
	start := 0
	for i := 0; i <= len(host); i++ {
		if i == len(host) || host[i] == '.' {
			if i > start {
				labels = append(labels, host[start:i])
			}
			start = i + 1
		}
	}
	return labels
}

// checkNameserverPing sends one ICMP echo per distinct NS IP with a 2s
// timeout. Firewalled-off ICMP is common and expected, so total failure
// only warns rather than errors.
func checkNameserverPing(nsIPs []string) report.SubCheck {
	if len(nsIPs) == 0 {
		return report.SubCheck{Name: "is_ping_nameservers_work", Status: report.StatusWarning, Message: "No nameserver IPs to ping"}
	}

	results := resolver.FanOut(nsIPs, len(nsIPs), func(ip string) bool {
		return pingOnce(ip, 2*time.Second)
	})

	for _, ok := range results {
		if ok {
			return report.SubCheck{Name: "is_ping_nameservers_work", Status: report.StatusPass, Message: "At least one nameserver replied to ICMP echo"}
		}
	}
	return report.SubCheck{Name: "is_ping_nameservers_work", Status: report.StatusWarning, Message: "No nameserver replied to ICMP echo (may be firewalled)"}
}

func pingOnce(ip string, timeout time.Duration) bool {
	pinger, err := ping.NewPinger(ip)
	if err != nil {
		return false
	}
	pinger.Count = 1
	pinger.Timeout = timeout
	pinger.SetPrivileged(false)
	if err := pinger.Run(); err != nil {
		return false
	}
	return pinger.Statistics().PacketsRecv > 0
}

func checkMultipleNameservers(hosts []string) report.SubCheck {
	switch n := len(hosts); {
	case n >= 2:
		return report.SubCheck{
			Name: "multiple_nameservers", Status: report.StatusPass,
			Message: fmt.Sprintf("Found %d nameservers. RFC 2182 section 5 recommends at least 3, no more than 7.", n),
		}
	case n == 1:
		return report.SubCheck{Name: "multiple_nameservers", Status: report.StatusError, Message: "Only 1 nameserver found; at least 2 are required"}
	default:
		return report.SubCheck{Name: "multiple_nameservers", Status: report.StatusError, Message: "No nameservers found"}
	}
}
