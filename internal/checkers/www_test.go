package checkers

import (
	"testing"

	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func TestCheckWwwIPsPublic(t *testing.T) {
	if got := checkWwwIPsPublic(nil); got.Status != report.StatusError {
		t.Fatalf("expected error for no IPs, got %v", got.Status)
	}

	allPublic := []report.IPAddr{{Address: "203.0.113.5", Kind: report.IPv4}}
	if got := checkWwwIPsPublic(allPublic); got.Status != report.StatusPass {
		t.Fatalf("expected pass for all-public IPs, got %v", got.Status)
	}

	mixed := []report.IPAddr{
		{Address: "203.0.113.5", Kind: report.IPv4},
		{Address: "10.0.0.1", Kind: report.IPv4},
	}
	if got := checkWwwIPsPublic(mixed); got.Status != report.StatusWarning {
		t.Fatalf("expected warning for mixed public/private IPs, got %v", got.Status)
	}

	allPrivate := []report.IPAddr{{Address: "10.0.0.1", Kind: report.IPv4}}
	if got := checkWwwIPsPublic(allPrivate); got.Status != report.StatusError {
		t.Fatalf("expected error for all-private IPs, got %v", got.Status)
	}
}
