package domain_test

import (
	"testing"

	"github.com/summit/cfo/internal/domain"
)

func TestOptionalValuePresence(t *testing.T) {
	present := domain.Some("leaf1")
	if !present.Present {
		t.Fatalf("expected Some to be present")
	}
	if present.Value != "leaf1" {
		t.Fatalf("expected value leaf1, got %v", present.Value)
	}

	absent := domain.None()
	if absent.Present {
		t.Fatalf("expected None to be absent")
	}
	if absent.Value != nil {
		t.Fatalf("expected nil value for None, got %v", absent.Value)
	}
}

func TestOptionalValueDistinguishesNullFromAbsent(t *testing.T) {
	explicitNull := domain.Some(nil)
	if !explicitNull.Present {
		t.Fatalf("an explicit JSON null must still be marked present")
	}
	absent := domain.None()
	if absent.Present {
		t.Fatalf("absence must not be marked present")
	}
}

func TestDeviceSnapshotGetSet(t *testing.T) {
	snap := domain.DeviceSnapshot{}
	snap.Set("leaf1", "/a", domain.Some("x"))

	got := snap.Get("leaf1", "/a")
	if !got.Present || got.Value != "x" {
		t.Fatalf("expected to find set value, got %+v", got)
	}

	if snap.Get("leaf1", "/missing").Present {
		t.Fatalf("expected missing path to be absent")
	}
	if snap.Get("leaf2", "/a").Present {
		t.Fatalf("expected missing device to be absent")
	}
}

func TestObservedStateGetSet(t *testing.T) {
	observed := domain.ObservedState{}
	observed.Set("leaf1", "/a", "value")

	got, ok := observed.Get("leaf1", "/a")
	if !ok || got != "value" {
		t.Fatalf("expected to find set value, got %v ok=%v", got, ok)
	}
	if _, ok := observed.Get("leaf1", "/b"); ok {
		t.Fatalf("expected unset path to be absent")
	}
}
