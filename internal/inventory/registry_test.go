package inventory_test

import (
	"testing"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/inventory"
)

func TestNewRejectsDuplicateNames(t *testing.T) {
	devices := []domain.Device{
		{Name: "leaf1", Role: domain.RoleLeaf},
		{Name: "leaf1", Role: domain.RoleLeaf},
	}
	if _, err := inventory.New(devices); err == nil {
		t.Fatalf("expected error for duplicate device name")
	}
}

func TestRegistryLookups(t *testing.T) {
	devices := []domain.Device{
		{Name: "spine2", Role: domain.RoleSpine},
		{Name: "leaf1", Role: domain.RoleLeaf},
	}
	reg, err := inventory.New(devices)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reg.Len() != 2 {
		t.Fatalf("expected 2 devices, got %d", reg.Len())
	}
	if !reg.Has("leaf1") {
		t.Fatalf("expected leaf1 to be present")
	}
	if reg.Has("leaf2") {
		t.Fatalf("did not expect leaf2 to be present")
	}

	if got, want := reg.Names(), []string{"leaf1", "spine2"}; !equalStrings(got, want) {
		t.Fatalf("expected sorted names %v, got %v", want, got)
	}

	all := reg.All()
	if len(all) != 2 || all[0].Name != "spine2" || all[1].Name != "leaf1" {
		t.Fatalf("expected All() to preserve insertion order, got %v", all)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
