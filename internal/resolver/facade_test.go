package resolver

import (
	"errors"
	"testing"

	"github.com/miekg/dns"
)

func TestRcodeString(t *testing.T) {
	tests := []struct {
		rcode int
		want  string
	}{
		{dns.RcodeSuccess, "NOERROR"},
		{dns.RcodeNameError, "NXDOMAIN"},
		{dns.RcodeServerFailure, "SERVFAIL"},
		{999, "UNKNOWN(999)"},
	}

	for _, tt := range tests {
		if got := RcodeString(tt.rcode); got != tt.want {
			t.Errorf("RcodeString(%d) = %q, want %q", tt.rcode, got, tt.want)
		}
	}
}

func TestReverseNameIPv4(t *testing.T) {
	got, err := reverseName("8.8.8.8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "8.8.8.8.in-addr.arpa."
	if got != want {
		t.Errorf("reverseName = %q, want %q", got, want)
	}
}

func TestReverseNameInvalid(t *testing.T) {
	if _, err := reverseName("not-an-ip"); err == nil {
		t.Error("expected error for invalid IP")
	}
}

func TestIsNXDOMAIN(t *testing.T) {
	err := &LookupError{Name: "example.com", QType: "A", RCode: "NXDOMAIN"}
	if !IsNXDOMAIN(err) {
		t.Error("expected NXDOMAIN LookupError to be classified as such")
	}

	other := &LookupError{Name: "example.com", QType: "A", RCode: "SERVFAIL"}
	if IsNXDOMAIN(other) {
		t.Error("SERVFAIL should not be classified as NXDOMAIN")
	}

	if IsNXDOMAIN(errors.New("plain error")) {
		t.Error("a plain error should never be classified as NXDOMAIN")
	}
}

func TestNewFacadeDefaults(t *testing.T) {
	f := NewFacade("udp://8.8.8.8:53", 0, 0)
	if f.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want default %v", f.Timeout, DefaultTimeout)
	}
	if f.Retries != 1 {
		t.Errorf("Retries = %d, want 1", f.Retries)
	}
}
