package engine

import "fmt"

// InputError indicates the request itself was invalid (malformed domain,
// unknown check name) and should short-circuit before any DNS traffic.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string { return "invalid input: " + e.Reason }

// ConfigError indicates the engine's own configuration is unusable
// (missing TLD snapshot, misconfigured resolver) rather than anything
// about the request.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "engine misconfigured: " + e.Reason }

// DeadlineExceededError indicates the whole-report deadline elapsed
// before every requested check could run; Report still contains
// whatever checks completed.
type DeadlineExceededError struct {
	Elapsed string
}

func (e *DeadlineExceededError) Error() string {
	return fmt.Sprintf("analysis deadline exceeded after %s", e.Elapsed)
}
