package checkers

import (
	"net"
	"testing"

	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func TestWorseOf(t *testing.T) {
	if worseOf(report.StatusPass, report.StatusWarning) != report.StatusWarning {
		t.Fatal("warning should outrank pass")
	}
	if worseOf(report.StatusError, report.StatusWarning) != report.StatusError {
		t.Fatal("error should outrank warning")
	}
	if worseOf(report.StatusInfo, report.StatusPass) != report.StatusPass {
		t.Fatal("info and pass should be equally unremarkable")
	}
}

func TestRollUp(t *testing.T) {
	subChecks := []report.SubCheck{
		{Status: report.StatusPass},
		{Status: report.StatusInfo},
	}
	if rollUp(subChecks) != report.StatusPass {
		t.Fatalf("expected pass when only pass/info sub-checks present")
	}

	subChecks = append(subChecks, report.SubCheck{Status: report.StatusWarning})
	if rollUp(subChecks) != report.StatusWarning {
		t.Fatalf("expected warning to roll up once present")
	}

	subChecks = append(subChecks, report.SubCheck{Status: report.StatusError})
	if rollUp(subChecks) != report.StatusError {
		t.Fatalf("expected error to take precedence over warning")
	}
}

func TestDedupeStrings(t *testing.T) {
	got := dedupeStrings([]string{"a", "b", "a", "c", "b"})
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("dedupeStrings() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dedupeStrings() = %v, want %v", got, want)
		}
	}
}

func TestIsBailiwick(t *testing.T) {
	if !isBailiwick("ns1.example.com", "example.com") {
		t.Fatal("expected subdomain to be in bailiwick")
	}
	if !isBailiwick("example.com", "example.com") {
		t.Fatal("expected exact match to be in bailiwick")
	}
	if isBailiwick("ns1.otherdomain.com", "example.com") {
		t.Fatal("expected unrelated host to be out of bailiwick")
	}
}

func TestClassifyIP(t *testing.T) {
	if !classifyIP(net.ParseIP("10.0.0.1")) {
		t.Fatal("expected 10.0.0.0/8 to be classified private")
	}
	if !classifyIP(net.ParseIP("127.0.0.1")) {
		t.Fatal("expected loopback to be classified private")
	}
	if classifyIP(net.ParseIP("203.0.113.5")) {
		t.Fatal("expected public documentation address to not be classified private")
	}
}

func TestSlash24(t *testing.T) {
	ip := net.ParseIP("192.0.2.57")
	if got := slash24(ip); got != "192.0.2.0" {
		t.Fatalf("slash24() = %q, want 192.0.2.0", got)
	}
}
