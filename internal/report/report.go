package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Status is the four-value verdict every check and sub-check resolves
// to. A missing record is ordinarily "info" (no assertion violated, just
// nothing to report); an advisory condition is "warning"; an RFC or
// protocol violation is "error"; everything else is "pass".
type Status string

const (
	StatusPass    Status = "pass"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusInfo    Status = "info"
)

// SubCheck is one named assertion within a CheckResult, e.g. the NS
// checker's "multiple_nameservers" or "name_of_nameservers_valid".
type SubCheck struct {
	Name    string `json:"name" example:"multiple_nameservers"`
	Status  Status `json:"status" example:"pass"`
	Message string `json:"message" example:"Found 4 nameservers, minimum of 2 required"`
}

// CheckResult is the outcome of a single checker (NS, SOA, MX, ...): an
// overall status, the ordered sub-checks that produced it, free-form
// human issues, the checker's main diagnostic payload (a list under
// Records, a single value under Record, or neither), and an Extra bag
// for whatever additional checker-specific fields don't fit those two
// (comparisons, parsed tag values, detection flags). Extra is merged
// into the marshaled object at the top level rather than nested under
// an "extra" key, so e.g. the NS checker's comparisons payload appears
// as a top-level "comparisons" field.
type CheckResult struct {
	Status     Status         `json:"status" example:"pass"`
	Records    any            `json:"records,omitempty"`
	Record     any            `json:"record,omitempty"`
	SubChecks  []SubCheck     `json:"checks,omitempty"`
	Messages   []string       `json:"issues,omitempty"`
	Extra      map[string]any `json:"-"`
	DurationMs float64        `json:"duration_ms,omitempty" example:"42.7"`
	Error      string         `json:"error,omitempty"`
}

// checkResultKnownKeys are the JSON keys CheckResult's own fields
// occupy; anything else found while unmarshaling is folded into Extra.
var checkResultKnownKeys = map[string]bool{
	"status": true, "records": true, "record": true, "checks": true,
	"issues": true, "duration_ms": true, "error": true,
}

// MarshalJSON writes CheckResult's declared fields, then merges Extra's
// entries in at the top level instead of nesting them under "extra".
func (c CheckResult) MarshalJSON() ([]byte, error) {
	type alias CheckResult
	base, err := json.Marshal(alias(c))
	if err != nil {
		return nil, err
	}
	if len(c.Extra) == 0 {
		return base, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range c.Extra {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal extra field %q: %w", k, err)
		}
		merged[k] = raw
	}
	return json.Marshal(merged)
}

// UnmarshalJSON reads CheckResult's declared fields, then collects any
// unrecognized top-level keys into Extra, the inverse of MarshalJSON's
// merge.
func (c *CheckResult) UnmarshalJSON(data []byte) error {
	type alias CheckResult
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = CheckResult(a)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	extra := make(map[string]any)
	for k, v := range raw {
		if checkResultKnownKeys[k] {
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("decode extra field %q: %w", k, err)
		}
		extra[k] = val
	}
	if len(extra) > 0 {
		c.Extra = extra
	} else {
		c.Extra = nil
	}
	return nil
}

// Summary partitions the top-level checks by their resolved Status;
// Passed + Warnings + Errors + Info always equals the number of checks
// that actually ran (skipped/not-requested checks are excluded from the
// denominator).
type Summary struct {
	Total    int `json:"total" example:"16"`
	Passed   int `json:"passed" example:"12"`
	Warnings int `json:"warnings" example:"3"`
	Errors   int `json:"errors" example:"1"`
	Info     int `json:"info" example:"0"`
}

// entry is one (name, result) pair inside a CheckMap, kept in insertion
// order so the JSON "checks" object reflects declared run order rather
// than Go's randomized map iteration order.
type entry struct {
	name   string
	result CheckResult
}

// CheckMap is an insertion-ordered map of checker name to CheckResult.
// It marshals as a plain JSON object but preserves the order checks were
// added in, which callers (and any golden-file comparisons) depend on.
type CheckMap struct {
	entries []entry
	index   map[string]int
}

// NewCheckMap returns an empty, ready-to-use CheckMap.
func NewCheckMap() *CheckMap {
	return &CheckMap{index: make(map[string]int)}
}

// Set inserts or replaces the result for name, preserving name's original
// position if it was already present.
func (m *CheckMap) Set(name string, result CheckResult) {
	if i, ok := m.index[name]; ok {
		m.entries[i].result = result
		return
	}
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, entry{name: name, result: result})
}

// Get returns the result stored under name, if any.
func (m *CheckMap) Get(name string) (CheckResult, bool) {
	i, ok := m.index[name]
	if !ok {
		return CheckResult{}, false
	}
	return m.entries[i].result, true
}

// Names returns the checker names in insertion order.
func (m *CheckMap) Names() []string {
	names := make([]string, len(m.entries))
	for i, e := range m.entries {
		names[i] = e.name
	}
	return names
}

// Len reports the number of checks stored.
func (m *CheckMap) Len() int {
	return len(m.entries)
}

// MarshalJSON writes the map as a JSON object whose keys appear in the
// order they were Set, not in the sorted/random order encoding/json would
// otherwise produce for a Go map.
func (m *CheckMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.result)
		if err != nil {
			return nil, fmt.Errorf("marshal check %q: %w", e.name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object back into a CheckMap. Go's
// encoding/json preserves source key order when decoding into a
// json.Decoder token stream, so we use that rather than a plain map to
// keep round-tripping order-stable.
func (m *CheckMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object for CheckMap")
	}

	m.entries = nil
	m.index = make(map[string]int)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected string key in CheckMap")
		}
		var result CheckResult
		if err := dec.Decode(&result); err != nil {
			return fmt.Errorf("decode check %q: %w", key, err)
		}
		m.Set(key, result)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// StatusCompleted is the literal value Report.Status takes once the
// orchestrator has returned, whether every check ran to completion or
// the report deadline cut some of them short.
const StatusCompleted = "completed"

// Report is the top-level result of analyzing a single domain.
type Report struct {
	Domain     string    `json:"domain" example:"example.com"`
	TLD        string    `json:"tld" example:"com"`
	Timestamp  time.Time `json:"timestamp"`
	Status     string    `json:"status" example:"completed"`
	DurationMs float64   `json:"duration_ms" example:"845.2"`
	Checks     *CheckMap `json:"checks"`
	Summary    Summary   `json:"summary"`
}

// NewReport returns a Report with an initialized, empty CheckMap.
func NewReport(domain, tld string) *Report {
	return &Report{
		Domain: domain,
		TLD:    tld,
		Checks: NewCheckMap(),
	}
}

// ComputeSummary recomputes Summary from the current contents of Checks.
func (r *Report) ComputeSummary() {
	var s Summary
	for _, name := range r.Checks.Names() {
		res, _ := r.Checks.Get(name)
		s.Total++
		switch res.Status {
		case StatusPass:
			s.Passed++
		case StatusWarning:
			s.Warnings++
		case StatusError:
			s.Errors++
		case StatusInfo:
			s.Info++
		}
	}
	r.Summary = s
}
