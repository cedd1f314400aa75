package checkers

import (
	"testing"

	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func TestSameSet(t *testing.T) {
	if !sameSet([]string{"a", "b"}, []string{"b", "a"}) {
		t.Fatal("expected sameSet to ignore order")
	}
	if sameSet([]string{"a"}, []string{"a", "b"}) {
		t.Fatal("expected sameSet to detect length mismatch")
	}
	if sameSet([]string{"a", "b"}, []string{"a", "c"}) {
		t.Fatal("expected sameSet to detect differing elements")
	}
}

func TestSubtract(t *testing.T) {
	got := subtract([]string{"a", "b", "c"}, []string{"b"})
	want := []string{"a", "c"}
	if len(got) != len(want) {
		t.Fatalf("subtract() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("subtract() = %v, want %v", got, want)
		}
	}
}

func TestTrimDot(t *testing.T) {
	if trimDot("ns1.example.com.") != "ns1.example.com" {
		t.Fatalf("trimDot failed to strip trailing dot")
	}
	if trimDot("ns1.example.com") != "ns1.example.com" {
		t.Fatalf("trimDot should be a no-op without a trailing dot")
	}
}

func TestSplitLabels(t *testing.T) {
	got := splitLabels("ns1.example.com")
	want := []string{"ns1", "example", "com"}
	if len(got) != len(want) {
		t.Fatalf("splitLabels() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitLabels() = %v, want %v", got, want)
		}
	}
}

func TestCheckNameserverHostnames(t *testing.T) {
	if got := checkNameserverHostnames([]string{"ns1.example.com"}); got.Status != report.StatusPass {
		t.Fatalf("expected pass for valid hostname, got %v", got.Status)
	}
	if got := checkNameserverHostnames([]string{"ns_1.example.com"}); got.Status != report.StatusWarning {
		t.Fatalf("expected warning for underscore label, got %v", got.Status)
	}
}

func TestCheckMultipleNameservers(t *testing.T) {
	cases := []struct {
		hosts []string
		want  report.Status
	}{
		{nil, report.StatusError},
		{[]string{"ns1"}, report.StatusError},
		{[]string{"ns1", "ns2"}, report.StatusPass},
	}
	for _, c := range cases {
		got := checkMultipleNameservers(c.hosts)
		if got.Status != c.want {
			t.Errorf("checkMultipleNameservers(%v).Status = %v, want %v", c.hosts, got.Status, c.want)
		}
	}
}

func TestCheckDifferentSubnets(t *testing.T) {
	if got := checkDifferentSubnets([]string{"192.0.2.1", "192.0.2.2"}); got.Status != report.StatusWarning {
		t.Fatalf("expected warning when all NS share one /24, got %v", got.Status)
	}
	if got := checkDifferentSubnets([]string{"192.0.2.1", "198.51.100.1"}); got.Status != report.StatusPass {
		t.Fatalf("expected pass when NS span distinct /24s, got %v", got.Status)
	}
}

func TestCheckGlueForNS(t *testing.T) {
	records := []report.NsRecord{
		{Host: "ns1.example.com", Addresses: nil},
	}
	if got := checkGlueForNS(records, "example.com"); got.Status != report.StatusError {
		t.Fatalf("expected error for missing in-bailiwick glue, got %v", got.Status)
	}

	records = []report.NsRecord{
		{Host: "ns1.otherprovider.com", Addresses: nil},
	}
	if got := checkGlueForNS(records, "example.com"); got.Status != report.StatusPass {
		t.Fatalf("expected pass for out-of-bailiwick nameserver without glue, got %v", got.Status)
	}
}

func TestCollectIPs(t *testing.T) {
	records := []report.NsRecord{
		{Host: "ns1.example.com", Addresses: []report.IPAddr{
			{Address: "192.0.2.1", Kind: report.IPv4},
			{Address: "2001:db8::1", Kind: report.IPv6},
		}},
	}
	got := collectIPs(records)
	if len(got) != 1 || got[0] != "192.0.2.1" {
		t.Fatalf("collectIPs() = %v, want only the IPv4 address", got)
	}
}
