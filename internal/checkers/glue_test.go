package checkers

import "testing"

func TestGlueCheckerName(t *testing.T) {
	if (&glueChecker{}).Name() != "glue" {
		t.Fatal("expected glue checker name to be 'glue'")
	}
}
