package checkers

import "testing"

func TestDNSSECCheckerName(t *testing.T) {
	if (&dnssecChecker{}).Name() != "dnssec" {
		t.Fatal("expected dnssec checker name to be 'dnssec'")
	}
}
