package checkers

import "testing"

func TestWildcardCheckerName(t *testing.T) {
	if (&wildcardChecker{}).Name() != "wildcard" {
		t.Fatal("expected wildcard checker name to be 'wildcard'")
	}
}
