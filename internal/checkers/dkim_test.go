package checkers

import "testing"

func TestDkimCommonSelectorsIsStable(t *testing.T) {
	want := []string{
		"default", "selector1", "selector2", "google", "k1", "s1", "s2",
		"dkim", "mail", "email", "smtp", "mx", "key1", "key2",
	}
	if len(dkimCommonSelectors) != len(want) {
		t.Fatalf("dkimCommonSelectors has %d entries, want %d", len(dkimCommonSelectors), len(want))
	}
	for i := range want {
		if dkimCommonSelectors[i] != want[i] {
			t.Fatalf("dkimCommonSelectors[%d] = %q, want %q", i, dkimCommonSelectors[i], want[i])
		}
	}
}
