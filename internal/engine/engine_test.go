package engine

import (
	"context"
	"testing"
	"time"

	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

type stubChecker struct {
	name   string
	status report.Status
	delay  time.Duration
	panics bool
}

func (s *stubChecker) Name() string { return s.name }

func (s *stubChecker) Run(ctx context.Context, deps *Deps) report.CheckResult {
	if s.panics {
		panic("boom")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	return report.CheckResult{Status: s.status}
}

func withStub(t *testing.T, c Checker) {
	t.Helper()
	prev, had := registry[c.Name()]
	Register(c)
	t.Cleanup(func() {
		if had {
			registry[c.Name()] = prev
		} else {
			delete(registry, c.Name())
		}
	})
}

func TestAnalyzeRejectsInvalidDomain(t *testing.T) {
	e := New(nil, nil)
	_, err := e.Analyze(context.Background(), "", nil)
	if err == nil {
		t.Fatal("expected InputError for empty domain")
	}
	if _, ok := err.(*InputError); !ok {
		t.Errorf("expected *InputError, got %T", err)
	}
}

func TestAnalyzeRejectsUnknownCheck(t *testing.T) {
	e := New(nil, nil)
	_, err := e.Analyze(context.Background(), "example.com", []string{"not_a_real_check"})
	if _, ok := err.(*InputError); !ok {
		t.Fatalf("expected *InputError, got %v (%T)", err, err)
	}
}

func TestAnalyzeRunsRequestedChecksInDeclaredOrder(t *testing.T) {
	withStub(t, &stubChecker{name: "ns", status: report.StatusPass})
	withStub(t, &stubChecker{name: "mx", status: report.StatusWarning})

	e := New(nil, nil)
	rep, err := e.Analyze(context.Background(), "example.com", []string{"mx", "ns"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	names := rep.Checks.Names()
	if len(names) != 2 || names[0] != "ns" || names[1] != "mx" {
		t.Fatalf("expected declared order [ns mx], got %v", names)
	}
	if rep.Summary.Total != 2 || rep.Summary.Passed != 1 || rep.Summary.Warnings != 1 {
		t.Errorf("unexpected summary: %+v", rep.Summary)
	}
}

func TestAnalyzeContainsCheckerPanic(t *testing.T) {
	withStub(t, &stubChecker{name: "ns", panics: true})

	e := New(nil, nil)
	rep, err := e.Analyze(context.Background(), "example.com", []string{"ns"})
	if err != nil {
		t.Fatalf("a panicking checker should not abort the whole report: %v", err)
	}

	res, ok := rep.Checks.Get("ns")
	if !ok {
		t.Fatal("expected ns result to be present despite panic")
	}
	if res.Status != report.StatusError {
		t.Errorf("expected panicking checker to resolve to error status, got %s", res.Status)
	}
}

func TestAnalyzeEnforcesPerCheckDeadline(t *testing.T) {
	withStub(t, &stubChecker{name: "ns", status: report.StatusPass, delay: 500 * time.Millisecond})

	e := New(nil, nil, WithCheckDeadline(10*time.Millisecond))
	start := time.Now()
	rep, err := e.Analyze(context.Background(), "example.com", []string{"ns"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 400*time.Millisecond {
		t.Errorf("expected per-check deadline to cut the stub short, took %v", time.Since(start))
	}
	if _, ok := rep.Checks.Get("ns"); !ok {
		t.Fatal("expected ns result to be present")
	}
}
