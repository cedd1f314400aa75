package checkers

import (
	"context"
	"testing"
	"time"

	"github.com/miekg/dns"
	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
	"github.com/sudo-tiz/dnshealth-go/internal/resolver"
)

func TestRunAddressCheckGoogleHasA(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deps := &engine.Deps{
		Domain:   "google.com",
		Resolver: resolver.NewFacade("udp://9.9.9.9:53", 5*time.Second, 2),
	}

	result := runAddressCheck(ctx, deps, dns.TypeA, report.IPv4)
	if result.Status != report.StatusPass {
		t.Errorf("expected pass for google.com A, got %v (%+v)", result.Status, result.SubChecks)
	}
}

func TestRunAddressCheckMissingAAAAIsInfoNotWarning(t *testing.T) {
	subChecks := []report.SubCheck{
		{Name: "root_address", Status: report.StatusInfo, Message: "No AAAA record found at the zone apex"},
	}
	if rollUp(subChecks) != report.StatusInfo {
		t.Fatalf("expected a missing AAAA record to roll up to info, not warning")
	}
}
