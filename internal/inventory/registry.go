// Package inventory is an in-memory keyed device registry built fresh
// for each run cycle and treated as immutable for its duration.
package inventory

import (
	"fmt"
	"sort"

	"github.com/summit/cfo/internal/domain"
)

// Registry is a name-keyed lookup of devices.
type Registry struct {
	devices map[string]domain.Device
	order   []string
}

// New builds a Registry from a device list, rejecting duplicate names.
func New(devices []domain.Device) (*Registry, error) {
	r := &Registry{devices: make(map[string]domain.Device, len(devices))}
	for _, d := range devices {
		if _, exists := r.devices[d.Name]; exists {
			return nil, fmt.Errorf("inventory: duplicate device name %q", d.Name)
		}
		r.devices[d.Name] = d
		r.order = append(r.order, d.Name)
	}
	return r, nil
}

// Get looks up a device by name.
func (r *Registry) Get(name string) (domain.Device, bool) {
	d, ok := r.devices[name]
	return d, ok
}

// Has reports whether name is a managed device.
func (r *Registry) Has(name string) bool {
	_, ok := r.devices[name]
	return ok
}

// All returns every device in registry-insertion order.
func (r *Registry) All() []domain.Device {
	out := make([]domain.Device, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.devices[name])
	}
	return out
}

// Names returns the sorted list of managed device names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.devices))
	for name := range r.devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of managed devices.
func (r *Registry) Len() int {
	return len(r.devices)
}
