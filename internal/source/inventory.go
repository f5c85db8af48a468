// Package source loads inventory and intent files from disk, validating
// each against its embedded JSON Schema before decoding into domain
// types. This is the local-file reference implementation of the
// inventory and intent sources; a future source could fetch the same
// shapes over HTTP or from a CMDB without touching the engine.
package source

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/summit/cfo/internal/domain"
	"github.com/summit/cfo/internal/inventory"
)

type inventoryFile struct {
	Devices []deviceRecord `json:"devices"`
}

type deviceRecord struct {
	Name     string         `json:"name"`
	Role     string         `json:"role"`
	Identity identityRecord `json:"identity"`
	Endpoints endpointsRecord `json:"endpoints"`
	Location locationRecord `json:"location"`
	Links    []linkRecord   `json:"links"`
}

type identityRecord struct {
	Vendor    string `json:"vendor"`
	Model     string `json:"model"`
	OSName    string `json:"os_name"`
	OSVersion string `json:"os_version"`
	Serial    string `json:"serial"`
}

type endpointsRecord struct {
	MgmtHost string `json:"mgmt_host"`
	GNMIHost string `json:"gnmi_host"`
	GNMIPort int    `json:"gnmi_port"`
}

type locationRecord struct {
	Pod   string `json:"pod"`
	Rack  string `json:"rack"`
	Plane string `json:"plane"`
}

type linkRecord struct {
	LocalInterface string `json:"local_intf"`
	PeerDevice     string `json:"peer_device"`
	PeerInterface  string `json:"peer_intf"`
	Kind           string `json:"kind"`
}

// LoadInventory reads, schema-validates, and decodes the inventory file
// at path into a populated registry.
func LoadInventory(path string) (*inventory.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read inventory file: %w", err)
	}

	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse inventory JSON: %w", err)
	}
	if err := inventorySchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("inventory file failed schema validation: %w", err)
	}

	var file inventoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode inventory file: %w", err)
	}

	devices := make([]domain.Device, 0, len(file.Devices))
	for _, rec := range file.Devices {
		dev, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("device %q: %w", rec.Name, err)
		}
		devices = append(devices, dev)
	}

	reg, err := inventory.New(devices)
	if err != nil {
		return nil, fmt.Errorf("build inventory registry: %w", err)
	}
	return reg, nil
}

func (r deviceRecord) toDomain() (domain.Device, error) {
	role := domain.Role(r.Role)
	if !role.Valid() {
		return domain.Device{}, fmt.Errorf("unknown role %q", r.Role)
	}

	links := make([]domain.Link, 0, len(r.Links))
	for i, l := range r.Links {
		kind := domain.LinkKind(l.Kind)
		if !kind.Valid() {
			return domain.Device{}, fmt.Errorf("link %d: unknown kind %q", i, l.Kind)
		}
		links = append(links, domain.Link{
			LocalInterface: l.LocalInterface,
			PeerDevice:     l.PeerDevice,
			PeerInterface:  l.PeerInterface,
			Kind:           kind,
		})
	}

	return domain.Device{
		Name: r.Name,
		Role: role,
		Identity: domain.Identity{
			Vendor:    r.Identity.Vendor,
			Model:     r.Identity.Model,
			OSName:    r.Identity.OSName,
			OSVersion: r.Identity.OSVersion,
			Serial:    r.Identity.Serial,
		},
		Endpoints: domain.Endpoints{
			ManagementHost: r.Endpoints.MgmtHost,
			GNMIHost:       r.Endpoints.GNMIHost,
			GNMIPort:       r.Endpoints.GNMIPort,
		},
		Location: domain.Location{
			Pod:   r.Location.Pod,
			Rack:  r.Location.Rack,
			Plane: r.Location.Plane,
		},
		Links: links,
	}, nil
}
