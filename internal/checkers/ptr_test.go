package checkers

import (
	"context"
	"testing"
	"time"

	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/resolver"
)

func TestCheckPTRForIPGooglePublicDNS(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deps := &engine.Deps{
		Resolver: resolver.NewFacade("udp://9.9.9.9:53", 5*time.Second, 2),
	}

	names, _, err := checkPTRForIP(ctx, deps, "8.8.8.8", "dns.google")
	if err != nil {
		t.Fatalf("checkPTRForIP: %v", err)
	}
	if len(names) == 0 {
		t.Fatal("expected at least one PTR name for 8.8.8.8")
	}
}
