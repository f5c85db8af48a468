package executor

import (
	"context"
	"fmt"

	"github.com/summit/cfo/internal/domain"
)

// DeviceClient is the narrow per-device transport contract a gNMI-style
// client must satisfy: read a set of paths, and push a
// set of updates. The concrete OpenConfig gNMI wire implementation is
// out of scope for this module; callers supply a
// ClientFactory backed by whatever transport they have.
type DeviceClient interface {
	Get(ctx context.Context, paths []string) (map[string]any, error)
	SetUpdate(ctx context.Context, updates map[string]any) error
}

// ClientFactory resolves a DeviceClient for a named device.
type ClientFactory interface {
	ClientFor(device string) (DeviceClient, error)
}

// GNMIExecutor applies plans via a per-device client factory: get, then
// set_update, then get again.
type GNMIExecutor struct {
	factory        ClientFactory
	readAfterWrite bool
}

// NewGNMIExecutor builds a GNMIExecutor. Pass readAfterWrite=true for
// normal operation; false selects the documented unsafe mode where
// observed := desired.
func NewGNMIExecutor(factory ClientFactory, readAfterWrite bool) *GNMIExecutor {
	return &GNMIExecutor{factory: factory, readAfterWrite: readAfterWrite}
}

// Apply implements the Executor contract.
func (g *GNMIExecutor) Apply(ctx context.Context, plan domain.ChangePlan) (domain.ObservedState, domain.DeviceSnapshot, error) {
	pre := domain.DeviceSnapshot{}
	observed := domain.ObservedState{}

	byDevice := map[string][]string{}
	for _, action := range plan.Actions {
		byDevice[action.Device] = append(byDevice[action.Device], action.OrderedPaths()...)
	}

	for _, action := range plan.Actions {
		client, err := g.factory.ClientFor(action.Device)
		if err != nil {
			return observed, pre, fmt.Errorf("gnmi executor: resolve client for %s: %w", action.Device, err)
		}

		paths := byDevice[action.Device]
		before, err := client.Get(ctx, paths)
		if err != nil {
			return observed, pre, fmt.Errorf("gnmi executor: pre-read %s: %w", action.Device, err)
		}
		for _, path := range paths {
			if _, captured := pre[action.Device][path]; captured {
				// An earlier action on this device already captured the
				// value from before its write; keep that one.
				continue
			}
			if v, ok := before[path]; ok {
				pre.Set(action.Device, path, domain.Some(v))
			} else {
				pre.Set(action.Device, path, domain.None())
			}
		}

		if err := client.SetUpdate(ctx, action.ModelPaths); err != nil {
			return observed, pre, fmt.Errorf("gnmi executor: set_update %s: %w", action.Device, err)
		}

		if !g.readAfterWrite {
			for _, path := range action.OrderedPaths() {
				observed.Set(action.Device, path, action.ModelPaths[path])
			}
			continue
		}

		after, err := client.Get(ctx, paths)
		if err != nil {
			return observed, pre, fmt.Errorf("gnmi executor: post-read %s: %w", action.Device, err)
		}
		for path, v := range after {
			observed.Set(action.Device, path, v)
		}
	}

	return observed, pre, nil
}
