package checkers

import (
	"testing"

	"github.com/sudo-tiz/dnshealth-go/internal/engine"
)

func TestAAAACheckerName(t *testing.T) {
	c := &aaaaChecker{}
	if c.Name() != "aaaa" {
		t.Fatalf("Name() = %q, want aaaa", c.Name())
	}
	var _ engine.Checker = c
}
