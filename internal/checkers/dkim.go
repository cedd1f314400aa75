package checkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
	"github.com/sudo-tiz/dnshealth-go/internal/resolver"
)

func init() {
	engine.Register(&dkimChecker{})
}

type dkimChecker struct{}

func (c *dkimChecker) Name() string { return "dkim" }

// dkimCommonSelectors is the probe list of well-known DKIM selector
// names; a domain that signs mail almost always publishes its key under
// one of these rather than an arbitrary one we'd have to be told.
var dkimCommonSelectors = []string{
	"default", "selector1", "selector2", "google", "k1", "s1", "s2",
	"dkim", "mail", "email", "smtp", "mx", "key1", "key2",
}

type dkimFound struct {
	Selector string
	Record   string
	Parsed   map[string]string
}

func (c *dkimChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	results := resolver.FanOut(dkimCommonSelectors, deps.MaxConcurrency, func(selector string) *dkimFound {
		dkimDomain := selector + "._domainkey." + deps.Domain
		rrs, err := deps.Resolver.Resolve(ctx, dkimDomain, dns.TypeTXT)
		if err != nil || len(rrs) == 0 {
			return nil
		}
		txt, ok := rrs[0].(*dns.TXT)
		if !ok {
			return nil
		}
		value := strings.Join(txt.Txt, "")
		if !strings.Contains(value, "k=") && !strings.Contains(value, "p=") {
			return nil
		}
		return &dkimFound{Selector: selector, Record: value, Parsed: parseTagValueRecord(value)}
	})

	var found []dkimFound
	for _, r := range results {
		if r != nil {
			found = append(found, *r)
		}
	}

	if len(found) == 0 {
		return report.CheckResult{
			Status:   report.StatusWarning,
			Messages: []string{"No well-known DKIM selector found. Consider implementing DKIM for better email authentication."},
		}
	}

	var subChecks []report.SubCheck
	for _, dk := range found {
		if dk.Parsed["p"] == "" {
			subChecks = append(subChecks, report.SubCheck{
				Name: "dkim_" + dk.Selector, Status: report.StatusWarning,
				Message: fmt.Sprintf("DKIM selector '%s' is missing public key (p=)", dk.Selector),
			})
			continue
		}
		if k, ok := dk.Parsed["k"]; ok && k != "rsa" && k != "ed25519" {
			subChecks = append(subChecks, report.SubCheck{
				Name: "dkim_" + dk.Selector, Status: report.StatusWarning,
				Message: fmt.Sprintf("DKIM selector '%s' uses unsupported key type: %s", dk.Selector, k),
			})
			continue
		}
		subChecks = append(subChecks, report.SubCheck{
			Name: "dkim_" + dk.Selector, Status: report.StatusPass,
			Message: fmt.Sprintf("DKIM selector '%s' is valid", dk.Selector),
		})
	}

	return report.CheckResult{
		Status:    rollUp(subChecks),
		SubChecks: subChecks,
		Records:   found,
	}
}
