// Package tldregistry loads the authoritative nameserver list for every
// top-level domain from a static JSON snapshot and hands out one server
// at a time for the parent-delegation probe.
package tldregistry

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
)

// Nameserver is one TLD authority, with whichever addresses the snapshot
// recorded for it (a TLD root server usually has both).
type Nameserver struct {
	Hostname string `json:"hostname"`
	IPv4     string `json:"ipv4,omitempty"`
	IPv6     string `json:"ipv6,omitempty"`
}

// Entry is the per-TLD record as stored in the snapshot file.
type Entry struct {
	Nameservers []Nameserver `json:"nserver"`
}

// Registry is an in-memory, read-only view of the TLD snapshot keyed by
// lower-cased TLD label (without the leading dot).
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// Load reads the TLD snapshot at path and returns a ready Registry. A
// missing file is not an error: callers degrade to "TLD not found"
// responses for every lookup rather than failing startup, matching the
// warn-and-continue behavior of the checker this registry backs.
func Load(path string) (*Registry, error) {
	// #nosec G304 -- path comes from operator-controlled configuration, not end-user input
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{entries: map[string]Entry{}}, nil
		}
		return nil, fmt.Errorf("read TLD snapshot: %w", err)
	}

	var raw map[string]Entry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse TLD snapshot: %w", err)
	}

	entries := make(map[string]Entry, len(raw))
	for tld, entry := range raw {
		entries[strings.ToLower(tld)] = entry
	}

	return &Registry{entries: entries}, nil
}

// Get returns the raw entry for tld (lower-cased, no leading dot), and
// whether it was found in the snapshot.
func (r *Registry) Get(tld string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[strings.ToLower(tld)]
	return entry, ok
}

// Len reports how many TLDs the snapshot covers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// PickAuthority returns one randomly chosen nameserver's hostname and
// IPv4 address for tld, for use as the directed query target in the
// parent-delegation probe. ok is false when the TLD is unknown, has no
// nameservers recorded, or none of its nameservers carry an IPv4
// address (the probe is UDP/IPv4 only, matching the original's
// dns.query.udp(query, tld_ns_ip) call).
func (r *Registry) PickAuthority(tld string) (hostname, ip string, ok bool) {
	entry, found := r.Get(tld)
	if !found || len(entry.Nameservers) == 0 {
		return "", "", false
	}

	candidates := make([]Nameserver, 0, len(entry.Nameservers))
	for _, ns := range entry.Nameservers {
		if ns.IPv4 != "" {
			candidates = append(candidates, ns)
		}
	}
	if len(candidates) == 0 {
		return "", "", false
	}

	chosen := candidates[rand.IntN(len(candidates))]
	return chosen.Hostname, chosen.IPv4, true
}
