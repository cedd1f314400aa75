// Package resolver performs DNS queries using AdGuard dnsproxy for
// multi-protocol support (Do53/DoT/DoH/DoQ), plus the directed queries,
// reverse lookups, and zone-transfer probes the analysis engine needs
// beyond simple recursive resolution.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/AdguardTeam/dnsproxy/upstream"
	"github.com/miekg/dns"
)

const (
	// DefaultTimeout bounds a single query/transfer attempt.
	DefaultTimeout = 5 * time.Second
	// RetryDelay is the brief pause between retries of a failed query.
	RetryDelay = 100 * time.Millisecond
)

// RCodeMapping renders the handful of RCODEs the checkers branch on into
// their textual form; anything else falls back to UNKNOWN(n).
var RCodeMapping = map[int]string{
	dns.RcodeSuccess:        "NOERROR",
	dns.RcodeFormatError:    "FORMERR",
	dns.RcodeServerFailure:  "SERVFAIL",
	dns.RcodeNameError:      "NXDOMAIN",
	dns.RcodeNotImplemented: "NOTIMP",
	dns.RcodeRefused:        "REFUSED",
}

// RcodeString renders an RCODE int using RCodeMapping, falling back to
// UNKNOWN(n) for codes the checkers don't need to distinguish.
func RcodeString(rcode int) string {
	if s, ok := RCodeMapping[rcode]; ok {
		return s
	}
	return fmt.Sprintf("UNKNOWN(%d)", rcode)
}

// Facade is the single entry point every checker uses to talk to DNS: a
// recursive resolver for ordinary lookups, and directed/reverse/transfer
// primitives for the checks that need to address a specific server.
type Facade struct {
	// Recursive is the upstream target (scheme://host[:port]) used for
	// Resolve. Defaults to a public resolver when empty.
	Recursive   string
	TLSInsecure bool
	Timeout     time.Duration
	Retries     int
}

// NewFacade returns a Facade configured to resolve via recursive using
// the given per-query timeout and retry count.
func NewFacade(recursive string, timeout time.Duration, retries int) *Facade {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if retries <= 0 {
		retries = 1
	}
	return &Facade{Recursive: recursive, Timeout: timeout, Retries: retries}
}

// Resolve performs a recursive query for name/qtype against the
// facade's configured recursive resolver and returns the answer section.
func (f *Facade) Resolve(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	msg, err := f.exchange(ctx, f.Recursive, name, qtype, true)
	if err != nil {
		return nil, err
	}
	if msg.Rcode != dns.RcodeSuccess {
		return nil, &LookupError{Name: name, QType: dns.TypeToString[qtype], RCode: RcodeString(msg.Rcode)}
	}
	return msg.Answer, nil
}

// ResolveAt performs a non-recursive (directed) query against a specific
// server IP, returning the full message so callers can inspect the
// Authority and Additional sections (delegation, glue) as well as
// Answer. Used by the parent-delegation probe and any checker that must
// ask an authoritative server directly rather than a recursive resolver.
func (f *Facade) ResolveAt(ctx context.Context, serverIP, name string, qtype uint16) (*dns.Msg, error) {
	target := fmt.Sprintf("udp://%s:53", serverIP)
	return f.exchange(ctx, target, name, qtype, false)
}

func (f *Facade) exchange(ctx context.Context, target, name string, qtype uint16, recursionDesired bool) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = recursionDesired

	var lastErr error
	for attempt := 0; attempt <= f.Retries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		default:
		}

		resp, _, err := f.performQuery(ctx, msg, target)
		if err == nil && resp != nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
		}
		if attempt < f.Retries {
			time.Sleep(RetryDelay)
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrQueryFailed, lastErr)
}

// performQuery delegates DNS query execution to AdGuard upstream library,
// which handles per-scheme transport (Do53/DoT/DoH/DoQ) and context
// cancellation via a background goroutine.
func (f *Facade) performQuery(ctx context.Context, msg *dns.Msg, target string) (*dns.Msg, time.Duration, error) {
	start := time.Now()

	opts := &upstream.Options{Timeout: f.Timeout}
	if f.TLSInsecure {
		// #nosec G402 - user-controlled for testing encrypted protocols
		slog.Warn("TLS certificate verification is DISABLED - USE ONLY FOR TESTING", "target", target)
		opts.InsecureSkipVerify = true
	}

	up, err := upstream.AddressToUpstream(target, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("create upstream: %w", err)
	}
	defer func() { _ = up.Close() }()

	type result struct {
		resp *dns.Msg
		err  error
	}
	resultCh := make(chan result, 1)

	go func() {
		resp, err := up.Exchange(msg)
		resultCh <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, 0, fmt.Errorf("query cancelled: %w", ctx.Err())
	case res := <-resultCh:
		if res.err != nil {
			return nil, 0, fmt.Errorf("DNS query failed: %w", res.err)
		}
		return res.resp, time.Since(start), nil
	}
}

// ReverseLookup resolves ip's PTR records via the facade's recursive
// resolver, returning the hostnames with their trailing dot stripped.
func (f *Facade) ReverseLookup(ctx context.Context, ip string) ([]string, error) {
	arpa, err := reverseName(ip)
	if err != nil {
		return nil, err
	}

	rrs, err := f.Resolve(ctx, arpa, dns.TypePTR)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rrs))
	for _, rr := range rrs {
		if ptr, ok := rr.(*dns.PTR); ok {
			names = append(names, strings.TrimSuffix(ptr.Ptr, "."))
		}
	}
	return names, nil
}

func reverseName(ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}
	name, err := dns.ReverseAddr(parsed.String())
	if err != nil {
		return "", fmt.Errorf("build reverse name: %w", err)
	}
	return name, nil
}

// AttemptAXFR attempts a full zone transfer of zone from serverIP. A
// successful, non-empty transfer is the vulnerability the AXFR checker
// reports: any authoritative server that honors it is leaking the whole
// zone to unauthenticated callers.
func (f *Facade) AttemptAXFR(ctx context.Context, serverIP, zone string) ([]dns.RR, error) {
	msg := new(dns.Msg)
	msg.SetAxfr(dns.Fqdn(zone))

	transfer := &dns.Transfer{
		DialTimeout: f.Timeout,
		ReadTimeout: f.Timeout,
	}

	envelopes, err := transfer.In(msg, net.JoinHostPort(serverIP, "53"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransferRefused, err)
	}

	var rrs []dns.RR
	for {
		select {
		case <-ctx.Done():
			return rrs, ctx.Err()
		case env, ok := <-envelopes:
			if !ok {
				return rrs, nil
			}
			if env.Error != nil {
				return rrs, fmt.Errorf("%w: %v", ErrTransferRefused, env.Error)
			}
			rrs = append(rrs, env.RR...)
		}
	}
}
