package checkers

import "testing"

func TestFirstN(t *testing.T) {
	got := firstN([]string{"a", "b", "c"}, 2)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("firstN() = %v, want [a b]", got)
	}

	got = firstN([]string{"a"}, 2)
	if len(got) != 1 {
		t.Fatalf("firstN() should not pad short slices, got %v", got)
	}
}

func TestDomainStatusCheckerName(t *testing.T) {
	if (&domainStatusChecker{}).Name() != "domain_status" {
		t.Fatal("expected domain_status checker name to be 'domain_status'")
	}
}
