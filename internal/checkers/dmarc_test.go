package checkers

import "testing"

func TestParseTagValueRecord(t *testing.T) {
	got := parseTagValueRecord("v=DMARC1; p=reject; rua=mailto:dmarc@example.com; pct=100")
	if got["p"] != "reject" {
		t.Errorf("p = %q, want reject", got["p"])
	}
	if got["rua"] != "mailto:dmarc@example.com" {
		t.Errorf("rua = %q, want mailto:dmarc@example.com", got["rua"])
	}
	if got["pct"] != "100" {
		t.Errorf("pct = %q, want 100", got["pct"])
	}
}

func TestParseTagValueRecordEmpty(t *testing.T) {
	got := parseTagValueRecord("")
	if len(got) != 0 {
		t.Errorf("expected empty map for empty record, got %v", got)
	}
}
