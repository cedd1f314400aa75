package checkers

import (
	"context"
	"testing"
	"time"

	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/resolver"
	"github.com/sudo-tiz/dnshealth-go/internal/tldregistry"
)

func TestProbeParentDelegationUnknownTLD(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	reg, err := tldregistry.Load("/nonexistent/path/tlds.json")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	deps := &engine.Deps{
		Domain:         "example.com",
		TLD:            "nosuchtld",
		Resolver:       resolver.NewFacade("udp://9.9.9.9:53", 5*time.Second, 2),
		TLDs:           reg,
		MaxConcurrency: 4,
	}

	if _, err := probeParentDelegation(ctx, deps); err == nil {
		t.Fatal("expected an error for a TLD absent from the registry")
	}
}
