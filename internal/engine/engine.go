// Package engine orchestrates the DNS health checkers: it validates the
// request, picks the declared-order subset of checks to run, runs each
// one under a shared per-report deadline with panic containment, and
// assembles the results into a report.Report.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sudo-tiz/dnshealth-go/internal/metrics"
	"github.com/sudo-tiz/dnshealth-go/internal/normalize"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
	"github.com/sudo-tiz/dnshealth-go/internal/resolver"
	"github.com/sudo-tiz/dnshealth-go/internal/tldregistry"
)

const (
	// DefaultReportDeadline bounds an Analyze call that runs every check,
	// matching the original's 30s dns.resolver.Resolver lifetime multiplied
	// out across ~18 checks with headroom for slow authoritative servers.
	// A call that names a subset of checks is held to at most 60s.
	DefaultReportDeadline = 120 * time.Second
	// DefaultCheckDeadline bounds a single checker's Run call so one
	// unresponsive nameserver can't stall the whole report.
	DefaultCheckDeadline = 30 * time.Second
	// defaultCheckerConcurrency caps a checker's own internal fan-out
	// (e.g. resolving glue addresses for several nameservers at once).
	defaultCheckerConcurrency = 8
)

// Engine ties a resolver facade and TLD registry to the checker registry
// and runs full or partial analyses against them.
type Engine struct {
	resolver       *resolver.Facade
	tlds           *tldregistry.Registry
	reportDeadline time.Duration
	checkDeadline  time.Duration
	concurrency    int
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithReportDeadline overrides DefaultReportDeadline.
func WithReportDeadline(d time.Duration) Option {
	return func(e *Engine) { e.reportDeadline = d }
}

// WithCheckDeadline overrides DefaultCheckDeadline.
func WithCheckDeadline(d time.Duration) Option {
	return func(e *Engine) { e.checkDeadline = d }
}

// New builds an Engine against the given resolver facade and TLD
// registry, which every checker shares for the lifetime of the process.
func New(f *resolver.Facade, r *tldregistry.Registry, opts ...Option) *Engine {
	e := &Engine{
		resolver:       f,
		tlds:           r,
		reportDeadline: DefaultReportDeadline,
		checkDeadline:  DefaultCheckDeadline,
		concurrency:    defaultCheckerConcurrency,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze validates domain, resolves the requested subset of checks
// against AllCheckNames' declared order, and runs each one in turn
// (checkers fan out internally, but checks themselves run sequentially
// so that a later check observing an earlier one's side effects, e.g.
// rate-limit backoff, sees a consistent order). A panic or error from an
// individual checker is contained to that checker's CheckResult; it
// never aborts the rest of the report.
func (e *Engine) Analyze(ctx context.Context, domain string, requested []string) (*report.Report, error) {
	normalized, err := normalize.Domain(domain)
	if err != nil {
		return nil, &InputError{Reason: err.Error()}
	}

	tld := normalize.TLD(normalized)
	names := filterRequested(requested)
	for _, name := range requested {
		found := false
		for _, n := range AllCheckNames {
			if n == name {
				found = true
				break
			}
		}
		if !found {
			return nil, &InputError{Reason: fmt.Sprintf("unknown check: %s", name)}
		}
	}

	deadline := e.reportDeadline
	if len(requested) > 0 && deadline > 60*time.Second {
		deadline = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	start := time.Now()
	rep := report.NewReport(normalized, tld)
	rep.Timestamp = start

	deps := &Deps{
		Domain:         normalized,
		TLD:            tld,
		Resolver:       e.resolver,
		TLDs:           e.tlds,
		MaxConcurrency: e.concurrency,
	}

	var deadlineHit bool
	for _, name := range names {
		if ctx.Err() != nil {
			deadlineHit = true
			break
		}
		res := e.runOne(ctx, name, deps)
		if ctx.Err() != nil {
			res.Messages = append(res.Messages, "report deadline exceeded")
			deadlineHit = true
		}
		rep.Checks.Set(name, res)
	}

	rep.DurationMs = float64(time.Since(start).Microseconds()) / 1000.0
	rep.ComputeSummary()
	rep.Status = report.StatusCompleted
	metrics.AnalyzeDuration.Observe(time.Since(start).Seconds())

	if deadlineHit {
		return rep, &DeadlineExceededError{Elapsed: time.Since(start).String()}
	}
	return rep, nil
}

// runOne runs a single named checker under its own sub-deadline,
// recovering from panics and recording its duration/status to metrics.
func (e *Engine) runOne(ctx context.Context, name string, deps *Deps) (result report.CheckResult) {
	checkCtx, cancel := context.WithTimeout(ctx, e.checkDeadline)
	defer cancel()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("checker panicked", "check", name, "panic", r)
			msg := fmt.Sprintf("internal error: %v", r)
			result = report.CheckResult{
				Status:   report.StatusError,
				Messages: []string{msg},
				Error:    msg,
			}
		}
		result.DurationMs = float64(time.Since(start).Microseconds()) / 1000.0
		metrics.RecordCheck(name, string(result.Status), time.Since(start).Seconds())
	}()

	result = runNamed(checkCtx, name, deps)
	return result
}
