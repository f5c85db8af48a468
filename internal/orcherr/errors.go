// Package orcherr defines the closed set of structured error kinds
// surfaced by the orchestration pipeline. Each kind is a
// distinct type so callers can classify failures with errors.As
// instead of string matching, in the same sentinel-error style as
// csdb's ErrUnknownPartner.
package orcherr

import "fmt"

// InvalidIntent is raised when the planner rejects an intent's shape or
// references unknown devices. Never retried; surfaced before any apply.
type InvalidIntent struct {
	Reason          string
	MissingDevices  []string
}

func (e *InvalidIntent) Error() string {
	if len(e.MissingDevices) > 0 {
		return fmt.Sprintf("invalid intent: %s (missing devices: %v)", e.Reason, e.MissingDevices)
	}
	return fmt.Sprintf("invalid intent: %s", e.Reason)
}

// TopologyInvalid describes fabric-validator errors. The validators
// themselves report through fabric.Result and the engine blocks
// execution from that result; nothing in this module returns this type.
type TopologyInvalid struct {
	Errors []string
}

func (e *TopologyInvalid) Error() string {
	return fmt.Sprintf("topology invalid: %d error(s), first: %s", len(e.Errors), firstOrEmpty(e.Errors))
}

// ExecutionFailed describes a transport failure on one device. The
// executors in this module return plain wrapped errors rather than this
// type; the engine reports such failures in a critical alert and does
// not retry within run_once.
type ExecutionFailed struct {
	Device string
	Err    error
}

func (e *ExecutionFailed) Error() string {
	return fmt.Sprintf("execution failed on device %s: %v", e.Device, e.Err)
}

func (e *ExecutionFailed) Unwrap() error {
	return e.Err
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}
