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

// delegationResult is what the parent-delegation probe returns: the NS
// hostnames the TLD's authority section delegates to, resolved glue
// addresses, and which TLD server answered.
type delegationResult struct {
	Hosts      []string
	Glue       map[string][]report.IPAddr
	ServerUsed string
	ServerIP   string
	TTL        uint32
}

// probeParentDelegation asks a TLD authority server for domain's NS
// delegation by reading the Authority section of a non-recursive NS
// query (a TLD server is never authoritative for domain itself, so the
// delegation lives in Ns, not Answer). On failure against the first
// chosen authority it retries once against a different registry entry
// for the same TLD (the same server again only when the TLD has a single
// IPv4-capable entry).
func probeParentDelegation(ctx context.Context, deps *engine.Deps) (*delegationResult, error) {
	var lastErr error
	var triedIP string
	for attempt := 0; attempt < 2; attempt++ {
		host, ip, ok := deps.TLDs.PickAuthority(deps.TLD)
		if !ok {
			return nil, fmt.Errorf("TLD %s not found in registry", deps.TLD)
		}
		if ip == triedIP {
			if entry, found := deps.TLDs.Get(deps.TLD); found {
				for _, ns := range entry.Nameservers {
					if ns.IPv4 != "" && ns.IPv4 != triedIP {
						host, ip = ns.Hostname, ns.IPv4
						break
					}
				}
			}
		}
		triedIP = ip

		msg, err := deps.Resolver.ResolveAt(ctx, ip, deps.Domain, dns.TypeNS)
		if err != nil {
			lastErr = err
			continue
		}

		var hosts []string
		var ttl uint32
		for _, rr := range msg.Ns {
			ns, ok := rr.(*dns.NS)
			if !ok {
				continue
			}
			hosts = append(hosts, strings.TrimSuffix(strings.ToLower(ns.Ns), "."))
			ttl = ns.Hdr.Ttl
		}

		if len(hosts) == 0 {
			lastErr = fmt.Errorf("no NS records in authority section from %s", host)
			continue
		}

		glue := resolveGlue(ctx, deps, dedupeStrings(hosts))

		return &delegationResult{
			Hosts:      dedupeStrings(hosts),
			Glue:       glue,
			ServerUsed: host,
			ServerIP:   ip,
			TTL:        ttl,
		}, nil
	}

	return nil, fmt.Errorf("parent delegation probe failed: %w", lastErr)
}

// resolveGlue resolves A/AAAA for each of hosts via the recursive
// facade, bounded by the engine's configured per-checker concurrency.
func resolveGlue(ctx context.Context, deps *engine.Deps, hosts []string) map[string][]report.IPAddr {
	results := make(map[string][]report.IPAddr, len(hosts))
	type pair struct {
		host string
		ips  []report.IPAddr
	}

	out := resolver.FanOut(hosts, deps.MaxConcurrency, func(host string) pair {
		var addrs []report.IPAddr
		if rrs, err := deps.Resolver.Resolve(ctx, host, dns.TypeA); err == nil {
			for _, rr := range rrs {
				if a, ok := rr.(*dns.A); ok {
					addrs = append(addrs, report.IPAddr{Address: a.A.String(), Kind: report.IPv4})
				}
			}
		}
		if rrs, err := deps.Resolver.Resolve(ctx, host, dns.TypeAAAA); err == nil {
			for _, rr := range rrs {
				if aaaa, ok := rr.(*dns.AAAA); ok {
					addrs = append(addrs, report.IPAddr{Address: aaaa.AAAA.String(), Kind: report.IPv6})
				}
			}
		}
		return pair{host: host, ips: addrs}
	})

	for _, p := range out {
		results[p.host] = p.ips
	}
	return results
}
