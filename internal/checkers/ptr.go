package checkers

import (
	"context"
	"fmt"
	"strings"

	"github.com/sudo-tiz/dnshealth-go/internal/engine"
	"github.com/sudo-tiz/dnshealth-go/internal/report"
)

func init() {
	engine.Register(&ptrChecker{})
}

type ptrChecker struct{}

func (c *ptrChecker) Name() string { return "ptr" }

// Run re-runs the MX checker (it does not share a cached MX result) and
// verifies reverse DNS for each mail exchanger's IPv4 address matches
// the exchanger's own hostname.
func (c *ptrChecker) Run(ctx context.Context, deps *engine.Deps) report.CheckResult {
	mxResult := engine.RunMX(ctx, deps)

	records, _ := mxResult.Records.([]report.MxRecord)
	if len(records) == 0 {
		return report.CheckResult{Status: report.StatusInfo, Messages: []string{"No MX records to check PTR for"}}
	}

	var entries []map[string]any
	failed := 0

	for _, mx := range records {
		for _, addr := range mx.Addresses {
			if addr.Kind != report.IPv4 {
				continue
			}
			ptrNames, matches, err := checkPTRForIP(ctx, deps, addr.Address, mx.Host)
			entry := map[string]any{
				"ip":          addr.Address,
				"mx_host":     mx.Host,
				"ptr_names":   ptrNames,
				"matches_mx":  matches,
			}
			if err != nil {
				entry["status"] = report.StatusError
				entry["issue"] = fmt.Sprintf("No PTR record for %s: %v", addr.Address, err)
				failed++
			} else if matches {
				entry["status"] = report.StatusPass
			} else {
				entry["status"] = report.StatusWarning
				entry["issue"] = fmt.Sprintf("PTR %v does not match MX host %s", ptrNames, mx.Host)
			}
			entries = append(entries, entry)
		}
	}

	status := report.StatusPass
	var messages []string
	if failed > 0 {
		status = report.StatusWarning
		messages = append(messages, fmt.Sprintf("%d MX servers missing PTR records", failed))
	}

	return report.CheckResult{
		Status:   status,
		Messages: messages,
		Records:  entries,
	}
}

func checkPTRForIP(ctx context.Context, deps *engine.Deps, ip, mxHost string) ([]string, bool, error) {
	names, err := deps.Resolver.ReverseLookup(ctx, ip)
	if err != nil || len(names) == 0 {
		if err == nil {
			err = fmt.Errorf("no PTR records returned")
		}
		return nil, false, err
	}

	for _, name := range names {
		if strings.EqualFold(trimDot(name), mxHost) {
			return names, true, nil
		}
	}
	return names, false, nil
}
