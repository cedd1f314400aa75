package checkers

import (
	"testing"

	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func TestCheckMxCount(t *testing.T) {
	cases := []struct {
		n    int
		want report.Status
	}{
		{0, report.StatusInfo},
		{1, report.StatusWarning},
		{2, report.StatusPass},
		{5, report.StatusPass},
	}
	for _, c := range cases {
		got := checkMxCount(c.n)
		if got.Status != c.want {
			t.Errorf("checkMxCount(%d).Status = %v, want %v", c.n, got.Status, c.want)
		}
	}
}

func TestCheckMxDuplicatePriorities(t *testing.T) {
	records := []report.MxRecord{
		{Priority: 10, Host: "mx1.example.com"},
		{Priority: 10, Host: "mx2.example.com"},
		{Priority: 20, Host: "mx3.example.com"},
	}
	got := checkMxDuplicatePriorities(records)
	if got.Status != report.StatusWarning {
		t.Fatalf("expected warning for duplicate priorities, got %v", got.Status)
	}

	unique := []report.MxRecord{
		{Priority: 10, Host: "mx1.example.com"},
		{Priority: 20, Host: "mx2.example.com"},
	}
	got = checkMxDuplicatePriorities(unique)
	if got.Status != report.StatusPass {
		t.Fatalf("expected pass for unique priorities, got %v", got.Status)
	}
}

func TestCheckMxIsNotIP(t *testing.T) {
	if got := checkMxIsNotIP(nil); got.Status != report.StatusPass {
		t.Fatalf("expected pass with no IP literals, got %v", got.Status)
	}
	if got := checkMxIsNotIP([]string{"203.0.113.5"}); got.Status != report.StatusError {
		t.Fatalf("expected error with an IP-literal exchange, got %v", got.Status)
	}
}

func TestCheckMxIPsPublic(t *testing.T) {
	addrByExchange := map[string][]report.IPAddr{
		"mx1.example.com": {{Address: "203.0.113.5", Kind: report.IPv4}},
	}
	if got := checkMxIPsPublic(addrByExchange); got.Status != report.StatusPass {
		t.Fatalf("expected pass for public address, got %v", got.Status)
	}

	addrByExchange["mx2.example.com"] = []report.IPAddr{{Address: "10.0.0.5", Kind: report.IPv4}}
	if got := checkMxIPsPublic(addrByExchange); got.Status != report.StatusError {
		t.Fatalf("expected error for private address, got %v", got.Status)
	}
}

func TestCheckDuplicateMxA(t *testing.T) {
	addrByExchange := map[string][]report.IPAddr{
		"mx1.example.com": {{Address: "203.0.113.5", Kind: report.IPv4}},
		"mx2.example.com": {{Address: "203.0.113.5", Kind: report.IPv4}},
	}
	got := checkDuplicateMxA(addrByExchange)
	if got.Status != report.StatusWarning {
		t.Fatalf("expected warning for shared address, got %v", got.Status)
	}

	distinct := map[string][]report.IPAddr{
		"mx1.example.com": {{Address: "203.0.113.5", Kind: report.IPv4}},
		"mx2.example.com": {{Address: "203.0.113.6", Kind: report.IPv4}},
	}
	got = checkDuplicateMxA(distinct)
	if got.Status != report.StatusPass {
		t.Fatalf("expected pass for distinct addresses, got %v", got.Status)
	}
}

func TestCheckMxNameValidity(t *testing.T) {
	valid := []report.MxRecord{{Host: "mx1.example.com"}}
	if got := checkMxNameValidity(valid); got.Status != report.StatusPass {
		t.Fatalf("expected pass for valid hostname, got %v", got.Status)
	}

	invalid := []report.MxRecord{{Host: "_bad_.example.com"}}
	if got := checkMxNameValidity(invalid); got.Status != report.StatusWarning {
		t.Fatalf("expected warning for invalid label, got %v", got.Status)
	}
}
