// Package executor applies change plans transactionally, capturing a
// pre-change snapshot before writing.
package executor

import (
	"context"

	"github.com/summit/cfo/internal/domain"
)

// Executor is the narrow contract every transport must satisfy: apply
// a plan, returning the post-apply observed state and the pre-change
// snapshot of every (device, path) the plan touched.
type Executor interface {
	Apply(ctx context.Context, plan domain.ChangePlan) (domain.ObservedState, domain.DeviceSnapshot, error)
}
