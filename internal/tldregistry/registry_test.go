package tldregistry

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func writeSnapshot(t *testing.T, dir string, data map[string]Entry) string {
	t.Helper()
	path := filepath.Join(dir, "tlds.json")
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsEmptyRegistry(t *testing.T) {
	reg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d entries", reg.Len())
	}
	if _, _, ok := reg.PickAuthority("com"); ok {
		t.Error("expected PickAuthority to fail against an empty registry")
	}
}

func TestLoadAndGet(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, map[string]Entry{
		"COM": {Nameservers: []Nameserver{
			{Hostname: "a.gtld-servers.net", IPv4: "192.5.6.30"},
			{Hostname: "b.gtld-servers.net", IPv4: "192.33.14.30"},
		}},
	})

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := reg.Get("xyz"); ok {
		t.Error("unknown TLD should not be found")
	}

	entry, ok := reg.Get("com")
	if !ok {
		t.Fatal("expected TLD 'com' to be found (snapshot key is case-normalized)")
	}
	if len(entry.Nameservers) != 2 {
		t.Errorf("expected 2 nameservers, got %d", len(entry.Nameservers))
	}
}

func TestPickAuthorityPrefersIPv4Capable(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshot(t, dir, map[string]Entry{
		"net": {Nameservers: []Nameserver{
			{Hostname: "no-v4.example", IPv6: "2001:db8::1"},
			{Hostname: "has-v4.example", IPv4: "203.0.113.5"},
		}},
	})

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	host, ip, ok := reg.PickAuthority("net")
	if !ok {
		t.Fatal("expected an authority to be found")
	}
	if host != "has-v4.example" || ip != "203.0.113.5" {
		t.Errorf("expected the only IPv4-capable nameserver to be chosen, got host=%q ip=%q", host, ip)
	}
}

func TestPickAuthorityUnknownTLD(t *testing.T) {
	reg := &Registry{entries: map[string]Entry{}}
	if _, _, ok := reg.PickAuthority("zz"); ok {
		t.Error("expected unknown TLD to fail")
	}
}
