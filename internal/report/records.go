// Package report defines the data model produced by the analysis engine:
// per-record-type structs, the ordered check map, and the top-level report
// envelope that the API, CLI, and worker layers all serialize to JSON.
package report

// IPKind distinguishes address families carried in an IPAddr.
type IPKind string

const (
	IPv4 IPKind = "A"
	IPv6 IPKind = "AAAA"
)

// IPAddr is an address paired with its family, used anywhere a checker
// resolves a hostname to one or more addresses (NS glue, MX targets, A/AAAA).
type IPAddr struct {
	Address string `json:"address" example:"93.184.216.34"`
	Kind    IPKind `json:"kind" example:"A"`
}

// RecordSource marks where an NsRecord was observed: the TLD parent's
// delegation (authority section of a non-recursive query) or the
// domain's own recursively-resolved NS set.
type RecordSource string

const (
	SourceParent RecordSource = "parent"
	SourceDomain RecordSource = "domain"
)

// NsRecord is a single authoritative nameserver, with its resolved glue
// addresses when available. A hostname present in both the parent
// delegation and the domain's own NS set is recorded once, with
// Source = SourceParent.
type NsRecord struct {
	Host      string       `json:"host" example:"ns1.example.com."`
	Addresses []IPAddr     `json:"addresses,omitempty"`
	TTL       uint32       `json:"ttl,omitempty" example:"3600"`
	Source    RecordSource `json:"source" example:"parent"`
}

// SoaRecord is the zone's start-of-authority record.
type SoaRecord struct {
	PrimaryNS  string `json:"primary_ns" example:"ns1.example.com."`
	AdminEmail string `json:"admin_email" example:"hostmaster.example.com."`
	Serial     uint32 `json:"serial" example:"2024010100"`
	Refresh    uint32 `json:"refresh" example:"7200"`
	Retry      uint32 `json:"retry" example:"3600"`
	Expire     uint32 `json:"expire" example:"1209600"`
	MinimumTTL uint32 `json:"minimum_ttl" example:"3600"`
}

// MxRecord is a mail exchanger target with its resolved addresses.
type MxRecord struct {
	Priority  uint16   `json:"priority" example:"10"`
	Host      string   `json:"host" example:"mail.example.com."`
	Addresses []IPAddr `json:"addresses,omitempty"`
}

// TxtRecord is a raw TXT string along with the category the checker assigned
// it (spf, dmarc, dkim, verification, other).
type TxtRecord struct {
	Value    string `json:"value" example:"v=spf1 include:_spf.example.com ~all"`
	Category string `json:"category" example:"spf"`
}

// CnameRecord is an alias and the canonical name it points to.
type CnameRecord struct {
	Host   string `json:"host" example:"www.example.com."`
	Target string `json:"target" example:"example.com."`
}

// PtrRecord is a reverse-DNS result for one of the domain's forward IPs.
type PtrRecord struct {
	Address string   `json:"address" example:"93.184.216.34"`
	Names   []string `json:"names,omitempty"`
}

// GenericRecord covers record types with no dedicated struct (CAA, DNSKEY,
// DS, RRSIG presence markers).
type GenericRecord struct {
	Type  string `json:"type" example:"CAA"`
	Value string `json:"value" example:"0 issue \"letsencrypt.org\""`
}
