package executor

import (
	"context"
	"sync"

	"github.com/summit/cfo/internal/domain"
)

// MemoryExecutor is the in-memory/test/simulation executor. It
// maintains device -> path -> value state and supports an injectable
// mismatch map used to force verification-failure scenarios.
type MemoryExecutor struct {
	mu             sync.Mutex
	state          map[string]map[string]any
	mismatch       map[string]map[string]any
	readAfterWrite bool
}

// NewMemoryExecutor builds an executor with the given initial state.
// Pass readAfterWrite=true for normal operation; false selects the
// documented unsafe mode where observed := desired.
func NewMemoryExecutor(initial map[string]map[string]any, readAfterWrite bool) *MemoryExecutor {
	state := map[string]map[string]any{}
	for device, paths := range initial {
		state[device] = map[string]any{}
		for path, v := range paths {
			state[device][path] = v
		}
	}
	return &MemoryExecutor{state: state, readAfterWrite: readAfterWrite}
}

// SetMismatch installs a device -> path -> value override map. Any
// (device, path) present here is returned by the post-write read
// instead of the value actually written, simulating drift or a failed
// write for verifier tests.
func (m *MemoryExecutor) SetMismatch(mismatch map[string]map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mismatch = mismatch
}

// Apply implements the Executor contract.
func (m *MemoryExecutor) Apply(_ context.Context, plan domain.ChangePlan) (domain.ObservedState, domain.DeviceSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pre := domain.DeviceSnapshot{}
	for _, action := range plan.Actions {
		for _, path := range action.OrderedPaths() {
			if prior, ok := m.readPath(action.Device, path); ok {
				pre.Set(action.Device, path, domain.Some(prior))
			} else {
				pre.Set(action.Device, path, domain.None())
			}
		}
	}

	for _, action := range plan.Actions {
		for _, path := range action.OrderedPaths() {
			m.writePath(action.Device, path, action.ModelPaths[path])
		}
	}

	observed := domain.ObservedState{}
	for _, action := range plan.Actions {
		for _, path := range action.OrderedPaths() {
			if !m.readAfterWrite {
				observed.Set(action.Device, path, action.ModelPaths[path])
				continue
			}
			if v, ok := m.mismatched(action.Device, path); ok {
				observed.Set(action.Device, path, v)
				continue
			}
			if v, ok := m.readPath(action.Device, path); ok {
				observed.Set(action.Device, path, v)
			}
		}
	}

	return observed, pre, nil
}

// State returns a copy of the executor's current device/path state, for
// assertions in tests.
func (m *MemoryExecutor) State() map[string]map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]map[string]any, len(m.state))
	for device, paths := range m.state {
		out[device] = make(map[string]any, len(paths))
		for path, v := range paths {
			out[device][path] = v
		}
	}
	return out
}

func (m *MemoryExecutor) readPath(device, path string) (any, bool) {
	paths, ok := m.state[device]
	if !ok {
		return nil, false
	}
	v, ok := paths[path]
	return v, ok
}

func (m *MemoryExecutor) writePath(device, path string, v any) {
	paths, ok := m.state[device]
	if !ok {
		paths = map[string]any{}
		m.state[device] = paths
	}
	paths[path] = v
}

func (m *MemoryExecutor) mismatched(device, path string) (any, bool) {
	paths, ok := m.mismatch[device]
	if !ok {
		return nil, false
	}
	v, ok := paths[path]
	return v, ok
}
