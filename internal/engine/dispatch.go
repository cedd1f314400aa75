package engine

import (
	"context"

	"github.com/sudo-tiz/dnshealth-go/internal/report"
	"github.com/sudo-tiz/dnshealth-go/internal/resolver"
	"github.com/sudo-tiz/dnshealth-go/internal/tldregistry"
)

// Deps bundles everything a Checker needs: the resolved/normalized
// domain under test, its TLD, and the shared resolver facade and TLD
// registry. Checkers never construct their own resolver or registry;
// everything they need to reach the network comes through Deps.
type Deps struct {
	Domain   string
	TLD      string
	Resolver *resolver.Facade
	TLDs     *tldregistry.Registry

	// MaxConcurrency bounds per-checker internal fan-out (e.g. resolving
	// glue addresses for N nameservers).
	MaxConcurrency int
}

// Checker is one named DNS health check. Name must be one of the
// canonical declared-order check names; Run performs whatever queries
// the check needs and returns its resolved CheckResult. Run must never
// panic - the engine recovers panics defensively, but a well-behaved
// Checker reports failures as an error-status CheckResult instead.
type Checker interface {
	Name() string
	Run(ctx context.Context, deps *Deps) report.CheckResult
}

// AllCheckNames is the canonical declared order every report's checks
// appear in when all checks are requested. Requesting a subset preserves
// this relative order rather than the order the caller listed them in.
var AllCheckNames = []string{
	"ns",
	"soa",
	"a",
	"aaaa",
	"mx",
	"spf",
	"txt",
	"cname",
	"ptr",
	"caa",
	"dmarc",
	"dkim",
	"glue",
	"dnssec",
	"axfr",
	"wildcard",
	"www",
	"domain_status",
}

// registry maps a check name to its Checker implementation. Populated by
// each checker's init() via Register.
var registry = map[string]Checker{}

// Register adds c to the engine's checker registry under c.Name(). Each
// checkers/*.go file calls this from its own init().
func Register(c Checker) {
	registry[c.Name()] = c
}

// filterRequested returns the subset of AllCheckNames present in
// requested, preserving AllCheckNames' declared order. An empty or nil
// requested list means "run everything".
func filterRequested(requested []string) []string {
	if len(requested) == 0 {
		return AllCheckNames
	}

	want := make(map[string]bool, len(requested))
	for _, name := range requested {
		want[name] = true
	}

	var out []string
	for _, name := range AllCheckNames {
		if want[name] {
			out = append(out, name)
		}
	}
	return out
}

// runNamed looks up and runs the checker registered under name,
// returning an error-status CheckResult if the checker isn't known.
// Used both for ordinary dispatch and by checkers that need to re-run a
// prerequisite (GLUE/AXFR re-running NS, PTR re-running MX) the same way
// the original implementation calls its sibling _check_* methods directly
// rather than sharing a cached result.
func runNamed(ctx context.Context, name string, deps *Deps) report.CheckResult {
	c, ok := registry[name]
	if !ok {
		return report.CheckResult{
			Status: report.StatusError,
			Error:  "unknown check: " + name,
		}
	}
	return c.Run(ctx, deps)
}

// RunNS re-runs the NS checker as a prerequisite for GLUE and AXFR.
func RunNS(ctx context.Context, deps *Deps) report.CheckResult {
	return runNamed(ctx, "ns", deps)
}

// RunMX re-runs the MX checker as a prerequisite for PTR (reverse
// lookups of the domain's mail exchangers' addresses).
func RunMX(ctx context.Context, deps *Deps) report.CheckResult {
	return runNamed(ctx, "mx", deps)
}
