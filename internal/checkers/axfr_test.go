package checkers

import "testing"

func TestAXFRCheckerName(t *testing.T) {
	if (&axfrChecker{}).Name() != "axfr" {
		t.Fatal("expected axfr checker name to be 'axfr'")
	}
}
