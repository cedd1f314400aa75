package checkers

import "testing"

func TestCnameSubdomainsListIsStable(t *testing.T) {
	want := []string{"www", "mail", "ftp", "blog", "shop"}
	if len(cnameSubdomains) != len(want) {
		t.Fatalf("cnameSubdomains = %v, want %v", cnameSubdomains, want)
	}
	for i := range want {
		if cnameSubdomains[i] != want[i] {
			t.Fatalf("cnameSubdomains[%d] = %q, want %q", i, cnameSubdomains[i], want[i])
		}
	}
}
