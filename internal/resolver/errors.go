package resolver

import "errors"

// Sentinel errors wrapped by Facade's query paths, so callers can tell
// them apart with errors.Is.
var (
	ErrContextCancelled = errors.New("dns query context cancelled")
	ErrQueryFailed      = errors.New("dns query failed")
	ErrTransferRefused  = errors.New("zone transfer refused or failed")
)

// LookupError reports a completed query that came back with a
// non-success RCODE (NXDOMAIN, SERVFAIL, REFUSED, ...), distinct from a
// transport failure: the server answered, it just didn't answer with
// data.
type LookupError struct {
	Name  string
	QType string
	RCode string
}

func (e *LookupError) Error() string {
	return e.Name + " " + e.QType + ": " + e.RCode
}

// IsNXDOMAIN reports whether err is a LookupError carrying NXDOMAIN,
// which several checkers treat as a distinct, often-benign outcome
// rather than a generic failure.
func IsNXDOMAIN(err error) bool {
	var le *LookupError
	if errors.As(err, &le) {
		return le.RCode == "NXDOMAIN"
	}
	return false
}
