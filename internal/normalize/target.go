package normalize

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// Scheme constants for supported DNS transport protocols.
const (
	SchemeUDP   = "udp"
	SchemeTCP   = "tcp"
	SchemeTLS   = "tls"
	SchemeHTTPS = "https"
	SchemeQUIC  = "quic"
)

// ProtocolConfig describes a DNS transport scheme's defaults.
type ProtocolConfig struct {
	Scheme       string
	DisplayName  string
	DefaultPort  int
	UsesHostname bool
}

// ProtocolConfigs is the single source of truth mapping a URL scheme to its
// transport defaults. DoT/DoH/DoQ can carry a hostname (needed for TLS SNI and
// certificate verification); Do53 UDP/TCP are addressed by IP only.
var ProtocolConfigs = map[string]ProtocolConfig{
	SchemeUDP:   {Scheme: SchemeUDP, DisplayName: "Do53", DefaultPort: 53, UsesHostname: false},
	SchemeTCP:   {Scheme: SchemeTCP, DisplayName: "Do53", DefaultPort: 53, UsesHostname: false},
	SchemeTLS:   {Scheme: SchemeTLS, DisplayName: "DoT", DefaultPort: 853, UsesHostname: true},
	SchemeHTTPS: {Scheme: SchemeHTTPS, DisplayName: "DoH", DefaultPort: 443, UsesHostname: true},
	SchemeQUIC:  {Scheme: SchemeQUIC, DisplayName: "DoQ", DefaultPort: 853, UsesHostname: true},
}

// Target validates and canonicalizes a DNS server target of the form
// scheme://host[:port], filling in the scheme's default port when omitted.
func Target(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("malformed target: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("target must be scheme://host[:port]")
	}

	cfg, ok := ProtocolConfigs[strings.ToLower(u.Scheme)]
	if !ok {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("target missing host")
	}

	port := u.Port()
	if port == "" {
		port = strconv.Itoa(cfg.DefaultPort)
	}

	if !cfg.UsesHostname && net.ParseIP(host) == nil {
		return "", fmt.Errorf("%s requires an IP address, got %q", cfg.DisplayName, host)
	}

	hostPort := host
	if strings.Contains(host, ":") {
		hostPort = "[" + host + "]"
	}

	return fmt.Sprintf("%s://%s:%s", cfg.Scheme, hostPort, port), nil
}

// IsValidIP reports whether s parses as an IPv4 or IPv6 address.
func IsValidIP(s string) bool {
	return net.ParseIP(s) != nil
}

// IPToReverseDNS converts an IP address to its in-addr.arpa / ip6.arpa PTR
// query name.
func IPToReverseDNS(ip string) (string, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return "", fmt.Errorf("invalid IP address: %s", ip)
	}

	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.%d.in-addr.arpa", v4[3], v4[2], v4[1], v4[0]), nil
	}

	v6 := parsed.To16()
	var nibbles []string
	for i := len(v6) - 1; i >= 0; i-- {
		nibbles = append(nibbles, fmt.Sprintf("%x", v6[i]&0x0f), fmt.Sprintf("%x", v6[i]>>4))
	}
	return strings.Join(nibbles, ".") + ".ip6.arpa", nil
}

// IsPrivateOrReserved reports whether ip is a private, loopback, link-local,
// or documentation-range address, i.e. one that should never appear in
// public DNS.
func IsPrivateOrReserved(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
		return true
	}

	for _, cidr := range documentationRanges {
		_, block, err := net.ParseCIDR(cidr)
		if err == nil && block.Contains(ip) {
			return true
		}
	}
	return false
}

var documentationRanges = []string{
	"192.0.2.0/24",    // TEST-NET-1
	"198.51.100.0/24", // TEST-NET-2
	"203.0.113.0/24",  // TEST-NET-3
	"2001:db8::/32",   // IPv6 documentation range
}
