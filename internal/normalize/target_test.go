package normalize

import (
	"net"
	"testing"
)

func TestTarget(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"udp://8.8.8.8", "udp://8.8.8.8:53", false},
		{"udp://8.8.8.8:53", "udp://8.8.8.8:53", false},
		{"tls://dns.quad9.net", "tls://dns.quad9.net:853", false},
		{"https://dns.quad9.net/dns-query", "https://dns.quad9.net:443", false},
		{"udp://not-an-ip", "", true},
		{"ftp://1.2.3.4", "", true},
		{"not-a-url", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Target(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Target(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestIPToReverseDNS(t *testing.T) {
	got, err := IPToReverseDNS("8.8.8.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "8.8.8.8.in-addr.arpa" {
		t.Errorf("got %q", got)
	}

	if _, err := IPToReverseDNS("not-an-ip"); err == nil {
		t.Error("expected error for invalid IP")
	}
}

func TestIsPrivateOrReserved(t *testing.T) {
	priv := []string{"10.0.0.1", "192.168.1.1", "127.0.0.1", "169.254.0.1", "192.0.2.1"}
	for _, ip := range priv {
		if !IsPrivateOrReserved(mustParseIP(t, ip)) {
			t.Errorf("%s should be classified private/reserved", ip)
		}
	}

	if IsPrivateOrReserved(mustParseIP(t, "8.8.8.8")) {
		t.Error("8.8.8.8 should not be classified private")
	}
}

func mustParseIP(t *testing.T, s string) net.IP {
	t.Helper()
	parsed := net.ParseIP(s)
	if parsed == nil {
		t.Fatalf("could not parse %s", s)
	}
	return parsed
}
