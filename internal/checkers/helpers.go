// Package checkers implements the individual DNS health checks: one file
// per check, each registering itself with the engine via an init().
package checkers

import (
	"net"
	"strings"

	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

// statusRank orders severity for rollUp: info and pass are equally
// unremarkable (a missing-record "info" sub-check never by itself
// demotes an otherwise-passing check), warning is advisory, error is the
// most severe.
var statusRank = map[report.Status]int{
	report.StatusInfo:    0,
	report.StatusPass:    0,
	report.StatusWarning: 1,
	report.StatusError:   2,
}

// worseOf returns whichever of a, b is the more severe status.
func worseOf(a, b report.Status) report.Status {
	if statusRank[b] > statusRank[a] {
		return b
	}
	return a
}

// rollUp folds a slice of sub-check statuses into one overall status:
// error if any sub-check errored, else warning if any warned, else info
// if every sub-check is info, else pass.
func rollUp(subChecks []report.SubCheck) report.Status {
	status := report.StatusPass
	allInfo := len(subChecks) > 0
	for _, sc := range subChecks {
		status = worseOf(status, sc.Status)
		if sc.Status != report.StatusInfo {
			allInfo = false
		}
	}
	if allInfo {
		return report.StatusInfo
	}
	return status
}

// dedupeStrings returns ss with duplicates removed, preserving first
// occurrence order.
func dedupeStrings(ss []string) []string {
	seen := make(map[string]bool, len(ss))
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// isBailiwick reports whether host is equal to or a subdomain of domain.
func isBailiwick(host, domain string) bool {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	domain = strings.TrimSuffix(strings.ToLower(domain), ".")
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// classifyIP reports whether ip is a private/reserved address, for the
// "is this record leaking an internal address" family of sub-checks.
func classifyIP(ip net.IP) bool {
	if ip == nil {
		return false
	}
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}

// isPrivateAddr parses addr and reports whether it's private/reserved.
func isPrivateAddr(addr string) bool {
	return classifyIP(net.ParseIP(addr))
}

// slash24 masks an IPv4 address to its /24 network for the NS
// different-subnets diversity check.
func slash24(ip net.IP) string {
	v4 := ip.To4()
	if v4 == nil {
		return ip.String()
	}
	mask := net.CIDRMask(24, 32)
	return v4.Mask(mask).String()
}
