// Package verifier evaluates observed state against a plan's
// verification spec.
package verifier

import (
	"fmt"
	"reflect"

	"github.com/summit/cfo/internal/domain"
)

// CheckResult is one ordered per-check outcome.
type CheckResult struct {
	OK       bool   `json:"ok"`
	Device   string `json:"device"`
	Path     string `json:"path"`
	Reason   string `json:"reason,omitempty"`
	Expected any    `json:"expected,omitempty"`
	Observed any    `json:"observed,omitempty"`
}

// Result is the verifier's output.
type Result struct {
	OK       bool          `json:"ok"`
	Failures []string      `json:"failures"`
	Evidence []CheckResult `json:"evidence"`
}

// Evaluate implements evaluate(spec, observed) -> {ok, failures,
// evidence}. Only CheckPathEquals is supported; any
// other check type fails with an "unsupported" reason and evaluation
// continues.
func Evaluate(spec domain.VerificationSpec, observed domain.ObservedState) Result {
	result := Result{OK: true}

	for _, check := range spec.Checks {
		if check.Type != domain.CheckPathEquals {
			msg := fmt.Sprintf("unsupported check type %q for device %s path %s", check.Type, check.Device, check.Path)
			result.OK = false
			result.Failures = append(result.Failures, msg)
			result.Evidence = append(result.Evidence, CheckResult{
				OK: false, Device: check.Device, Path: check.Path, Reason: "unsupported",
			})
			continue
		}

		value, present := observed.Get(check.Device, check.Path)
		if !present {
			msg := fmt.Sprintf("missing observed path for device %s: %s", check.Device, check.Path)
			result.OK = false
			result.Failures = append(result.Failures, msg)
			result.Evidence = append(result.Evidence, CheckResult{
				OK: false, Device: check.Device, Path: check.Path, Reason: "missing", Expected: check.Expected,
			})
			continue
		}

		if !reflect.DeepEqual(value, check.Expected) {
			msg := fmt.Sprintf("value mismatch device %s path %s expected %v observed %v", check.Device, check.Path, check.Expected, value)
			result.OK = false
			result.Failures = append(result.Failures, msg)
			result.Evidence = append(result.Evidence, CheckResult{
				OK: false, Device: check.Device, Path: check.Path, Reason: "mismatch", Expected: check.Expected, Observed: value,
			})
			continue
		}

		result.Evidence = append(result.Evidence, CheckResult{
			OK: true, Device: check.Device, Path: check.Path, Expected: check.Expected, Observed: value,
		})
	}

	return result
}
