package checkers

import (
	"context"
	"fmt"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&soaChecker{})
}

type soaChecker struct{}

func (c *soaChecker) Name() string { return "soa" }

func (c *soaChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeSOA)
	if err != nil || len(rrs) != 1 {
		return report.CheckResult{
			Status: report.StatusError,
			Messages: []string{
				fmt.Sprintf("Expected 1 SOA record, found %d", len(rrs)),
			},
		}
	}

	soa, ok := rrs[0].(*dns.SOA)
	if !ok {
		return report.CheckResult{Status: report.StatusError, Messages: []string{"SOA answer was not a SOA record"}}
	}

	record := report.SoaRecord{
		PrimaryNS:  trimDot(soa.Ns),
		AdminEmail: trimDot(soa.Mbox),
		Serial:     soa.Serial,
		Refresh:    soa.Refresh,
		Retry:      soa.Retry,
		Expire:     soa.Expire,
		MinimumTTL: soa.Minttl,
	}

	subChecks := []report.SubCheck{
		checkSoaSerialConsistency(ctx, deps, soa.Serial),
		rangeSubCheck("soa_refresh", "REFRESH", soa.Refresh, 3600, 86400),
		rangeSubCheck("soa_retry", "RETRY", soa.Retry, 1800, 7200),
		rangeSubCheck("soa_expire", "EXPIRE", soa.Expire, 604800, 2419200),
		rangeSubCheck("soa_minimum", "MINIMUM", soa.Minttl, 300, 86400),
	}

	return report.CheckResult{
		Status:    rollUp(subChecks),
		SubChecks: subChecks,
		Record:    record,
	}
}

// rangeSubCheck implements the original's repeated in-range/too-low/
// too-high pattern: values within [min, max] pass, outside warns.
func rangeSubCheck(name, label string, value uint32, min, max uint32) report.SubCheck {
	switch {
	case value >= min && value <= max:
		return report.SubCheck{
			Name: name, Status: report.StatusPass,
			Message: fmt.Sprintf("Your SOA %s interval is: %d. That is OK.", label, value),
		}
	case value < min:
		return report.SubCheck{
			Name: name, Status: report.StatusWarning,
			Message: fmt.Sprintf("Your SOA %s interval is: %d. This is too low (recommended: %d-%d).", label, value, min, max),
		}
	default:
		return report.SubCheck{
			Name: name, Status: report.StatusWarning,
			Message: fmt.Sprintf("Your SOA %s interval is: %d. This is higher than recommended.", label, value),
		}
	}
}

// checkSoaSerialConsistency queries SOA directly at up to 5 of the
// domain's nameservers and requires they all report the same serial.
func checkSoaSerialConsistency(ctx context.Context, deps *engine.Deps, expected uint32) report.SubCheck {
	nsRRs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeNS)
	if err != nil {
		return report.SubCheck{Name: "soa_serial_consistency", Status: report.StatusInfo, Message: "Could not check SOA serial consistency"}
	}

	var hosts []string
	for _, rr := range nsRRs {
		if ns, ok := rr.(*dns.NS); ok {
			hosts = append(hosts, trimDot(ns.Ns))
		}
	}
	if len(hosts) > 5 {
		hosts = hosts[:5]
	}

	serials := map[uint32]bool{}
	checked := 0
	for _, host := range hosts {
		aRRs, err := deps.Resolver.Resolve(ctx, host, dns.TypeA)
		if err != nil || len(aRRs) == 0 {
			continue
		}
		a, ok := aRRs[0].(*dns.A)
		if !ok {
			continue
		}
		msg, err := deps.Resolver.ResolveAt(ctx, a.A.String(), deps.Domain, dns.TypeSOA)
		if err != nil || len(msg.Answer) == 0 {
			continue
		}
		checked++
		if soa, ok := msg.Answer[0].(*dns.SOA); ok {
			serials[soa.Serial] = true
		}
	}

	switch {
	case checked == 0:
		return report.SubCheck{Name: "soa_serial_consistency", Status: report.StatusInfo, Message: "Could not check SOA serial consistency"}
	case len(serials) == 1:
		return report.SubCheck{Name: "soa_serial_consistency", Status: report.StatusPass, Message: fmt.Sprintf("All nameservers agree the SOA serial is %d", expected)}
	default:
		return report.SubCheck{Name: "soa_serial_consistency", Status: report.StatusError, Message: "SOA serial number mismatch across nameservers"}
	}
}
