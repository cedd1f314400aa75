package checkers

import (
	"context"
	"fmt"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&dnssecChecker{})
}

type dnssecChecker struct{}

func (c *dnssecChecker) Name() string { return "dnssec" }

// Run never validates any DNSSEC signature: it only checks for the
// presence of a delegated DS record at the parent, and DNSKEY/RRSIG
// records at the zone apex.
func (c *dnssecChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	var subChecks []report.SubCheck
	records := []report.GenericRecord{}

	hasDS := false
	if _, ip, ok := deps.TLDs.PickAuthority(deps.TLD); ok {
		if msg, err := deps.Resolver.ResolveAt(ctx, ip, deps.Domain, dns.TypeDS); err == nil {
			for _, rr := range msg.Answer {
				if ds, ok := rr.(*dns.DS); ok {
					hasDS = true
					records = append(records, report.GenericRecord{Type: "DS", Value: ds.String()})
				}
			}
		}
	}
	if hasDS {
		subChecks = append(subChecks, report.SubCheck{Name: "dnssec_ds", Status: report.StatusPass, Message: "DS records found at parent zone"})
	} else {
		subChecks = append(subChecks, report.SubCheck{Name: "dnssec_ds", Status: report.StatusInfo, Message: "No DS records found at parent zone"})
	}

	hasDNSKEY := false
	if rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeDNSKEY); err == nil {
		for _, rr := range rrs {
			if dk, ok := rr.(*dns.DNSKEY); ok {
				hasDNSKEY = true
				records = append(records, report.GenericRecord{Type: "DNSKEY", Value: dk.String()})
			}
		}
	}
	if hasDNSKEY {
		subChecks = append(subChecks, report.SubCheck{Name: "dnssec_dnskey", Status: report.StatusPass, Message: "DNSKEY records found"})
	} else {
		subChecks = append(subChecks, report.SubCheck{Name: "dnssec_dnskey", Status: report.StatusInfo, Message: "No DNSKEY records found"})
	}

	rrsigCount := 0
	if rrs, err := deps.Resolver.Resolve(ctx, deps.Domain, dns.TypeRRSIG); err == nil {
		rrsigCount = len(rrs)
	}
	if rrsigCount > 0 {
		subChecks = append(subChecks, report.SubCheck{Name: "dnssec_rrsig", Status: report.StatusInfo, Message: fmt.Sprintf("Found %d RRSIG records", rrsigCount)})
	} else {
		subChecks = append(subChecks, report.SubCheck{Name: "dnssec_rrsig", Status: report.StatusInfo, Message: "No RRSIG records found"})
	}

	status := report.StatusPass
	message := "DNSSEC appears to be configured"
	if !hasDS && !hasDNSKEY {
		status = report.StatusWarning
		message = "DNSSEC is not configured for this domain"
	}

	return report.CheckResult{
		Status:   status,
		Messages: []string{message},
		SubChecks: append([]report.SubCheck{
			{Name: "dnssec_overall", Status: status, Message: message},
		}, subChecks...),
		Records: records,
	}
}
