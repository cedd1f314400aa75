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
	engine.Register(&domainStatusChecker{})
}

type domainStatusChecker struct{}

func (c *domainStatusChecker) Name() string { return "domain_status" }

// suspiciousIPPrefixes are address prefixes historically associated with
// parking/suspension pages or with being obviously wrong for a public
// domain (loopback, null route, documentation ranges, private ranges).
var suspiciousIPPrefixes = []string{
	"127.0.0.1", "0.0.0.0",
	"192.0.2.", "198.51.100.", "203.0.113.",
	"10.", "172.16.", "192.168.",
	"69.46.86.", "69.46.84.", "98.124.",
}

var parkingNSPatterns = []string{"parkingcrew", "sedoparking", "domainparking", "parking.com", "suspended", "expired"}
var parkingTXTPatterns = []string{"parked", "suspended", "expired", "parking"}

// Run composes several DNS-only signals (no WHOIS) to guess whether a
// domain is expired, suspended, or parked: NS/SOA responsiveness,
// authoritative-flag presence, suspicious addresses, and known
// parking-service fingerprints.
func (c *domainStatusChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	var criticalIssues, warnings []string
	detail := map[string]any{}

	nsStatus, nsDetail := checkNsResolutionStatus(ctx, deps)
	detail["ns_resolution"] = nsDetail
	if nsStatus == report.StatusError {
		criticalIssues = append(criticalIssues, "Domain NS records not resolving - domain may be suspended/expired")
	}

	authStatus, authDetail := checkAuthoritativeResponse(ctx, deps)
	detail["authoritative_response"] = authDetail
	if authStatus == report.StatusError {
		criticalIssues = append(criticalIssues, "No authoritative DNS response - domain configuration issue")
	} else if authStatus == report.StatusWarning {
		warnings = append(warnings, "DNS responses not authoritative - possible configuration issue")
	}

	patternIssues, patternDetail := checkSuspiciousPatterns(ctx, deps)
	detail["suspicious_patterns"] = patternDetail
	warnings = append(warnings, patternIssues...)

	parkingIssues := checkDomainParking(ctx, deps)
	detail["parking_detection"] = parkingIssues
	if len(parkingIssues) > 0 {
		warnings = append(warnings, "Domain appears to be parked or suspended")
	}

	errIssues := checkDNSErrorPatterns(ctx, deps)
	detail["error_responses"] = errIssues
	warnings = append(warnings, errIssues...)

	var status report.Status
	var message string
	switch {
	case len(criticalIssues) > 0:
		status = report.StatusError
		message = fmt.Sprintf("DOMAIN ISSUE DETECTED: %s", criticalIssues[0])
	case len(warnings) > 0:
		status = report.StatusWarning
		message = fmt.Sprintf("POTENTIAL ISSUES: %s", strings.Join(firstN(warnings, 2), ", "))
	default:
		status = report.StatusPass
		message = "Domain appears to be properly configured and active"
	}

	return report.CheckResult{
		Status:   status,
		Messages: []string{message},
		Extra: map[string]any{
			"detailed_checks": detail,
			"critical_issues": criticalIssues,
			"warnings":        warnings,
		},
	}
}

func firstN(ss []string, n int) []string {
	if len(ss) <= n {
		return ss
	}
	return ss[:n]
}

func checkNsResolutionStatus(ctx context.Context, deps *engine.Deps) (report.Status, map[string]any) {
	rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeNS)
	if err != nil || len(rrs) == 0 {
		return report.StatusError, map[string]any{"message": "No NS records found - domain may be expired/suspended"}
	}

	var working, failed []string
	for _, rr := range rrs {
		ns, ok := rr.(*dns.NS)
		if !ok {
			continue
		}
		host := trimDot(ns.Ns)
		aRRs, aErr := deps.Resolver.Resolve(ctx, host, dns.TypeA)
		if aErr != nil || len(aRRs) == 0 {
			failed = append(failed, host)
			continue
		}
		a, ok := aRRs[0].(*dns.A)
		if !ok {
			failed = append(failed, host)
			continue
		}
		if _, err := deps.Resolver.ResolveAt(ctx, a.A.String(), deps.Domain, dns.TypeSOA); err != nil {
			failed = append(failed, host)
			continue
		}
		working = append(working, host)
	}

	switch {
	case len(working) == 0:
		return report.StatusError, map[string]any{"message": "No nameservers responding - domain likely suspended/expired", "failed_ns": failed}
	case len(failed) > 0:
		return report.StatusWarning, map[string]any{"message": fmt.Sprintf("%d nameservers not responding", len(failed)), "working_ns": working, "failed_ns": failed}
	default:
		return report.StatusPass, map[string]any{"message": fmt.Sprintf("All %d nameservers responding", len(working)), "working_ns": working}
	}
}

func checkAuthoritativeResponse(ctx context.Context, deps *engine.Deps) (report.Status, map[string]any) {
	if _, ip, ok := deps.TLDs.PickAuthority(deps.TLD); ok {
		if nsRRs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeNS); err == nil {
			for _, rr := range nsRRs {
				ns, ok := rr.(*dns.NS)
				if !ok {
					continue
				}
				host := trimDot(ns.Ns)
				aRRs, aErr := deps.Resolver.Resolve(ctx, host, dns.TypeA)
				if aErr != nil || len(aRRs) == 0 {
					continue
				}
				a, ok := aRRs[0].(*dns.A)
				if !ok {
					continue
				}
				msg, err := deps.Resolver.ResolveAt(ctx, a.A.String(), deps.Domain, dns.TypeSOA)
				if err != nil || len(msg.Answer) == 0 || !msg.Authoritative {
					continue
				}
				return report.StatusPass, map[string]any{"authoritative": true}
			}
		}
		_ = ip
	}
	return report.StatusWarning, map[string]any{"authoritative": false, "message": "DNS responses not authoritative - possible configuration issue"}
}

func checkSuspiciousPatterns(ctx context.Context, deps *engine.Deps) ([]string, map[string]any) {
	var issues []string
	detail := map[string]any{}

	var aIPs []string
	if rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeA); err == nil {
		for _, rr := range rrs {
			if a, ok := rr.(*dns.A); ok {
				aIPs = append(aIPs, a.A.String())
			}
		}
	}
	detail["a_records"] = aIPs
	for _, ip := range aIPs {
		for _, prefix := range suspiciousIPPrefixes {
			if strings.HasPrefix(ip, prefix) {
				issues = append(issues, fmt.Sprintf("A record points to suspicious IP: %s", ip))
			}
		}
	}

	if rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeMX); err == nil {
		for _, rr := range rrs {
			if mx, ok := rr.(*dns.MX); ok {
				host := strings.ToLower(trimDot(mx.Mx))
				if strings.Contains(host, "parking") || strings.Contains(host, "suspended") {
					issues = append(issues, fmt.Sprintf("Suspicious MX record: %s", host))
				}
			}
		}
	}

	return issues, detail
}

func checkDomainParking(ctx context.Context, deps *engine.Deps) []string {
	var indicators []string

	if rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeTXT); err == nil {
		for _, rr := range rrs {
			txt, ok := rr.(*dns.TXT)
			if !ok {
				continue
			}
			content := strings.ToLower(strings.Join(txt.Txt, ""))
			for _, pattern := range parkingTXTPatterns {
				if strings.Contains(content, pattern) {
					indicators = append(indicators, fmt.Sprintf("Parking indicator in TXT: %s", content))
					break
				}
			}
		}
	}

	if rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeNS); err == nil {
		for _, rr := range rrs {
			ns, ok := rr.(*dns.NS)
			if !ok {
				continue
			}
			host := strings.ToLower(trimDot(ns.Ns))
			for _, pattern := range parkingNSPatterns {
				if strings.Contains(host, pattern) {
					indicators = append(indicators, fmt.Sprintf("Parking NS detected: %s", host))
				}
			}
		}
	}

	return indicators
}

func checkDNSErrorPatterns(ctx context.Context, deps *engine.Deps) []string {
	var issues []string

	recordTests := []struct {
		qtype uint16
		name  string
		msg   string
	}{
		{dns.TypeA, "A", "No A records - domain may not be configured"},
		{dns.TypeNS, "NS", "No NS records - critical domain configuration issue"},
		{dns.TypeSOA, "SOA", "No SOA record - domain authority issue"},
	}

	for _, rt := range recordTests {
		rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, rt.qtype)
		if err != nil {
			issues = append(issues, fmt.Sprintf("Query error for %s - %v", rt.name, err))
			continue
		}
		if len(rrs) == 0 {
			issues = append(issues, fmt.Sprintf("No %s records - %s", rt.name, rt.msg))
		}
	}

	return issues
}
