package domain

import "time"

// MosaicStatus is the lifecycle state of a managed mosaic dataset.
type MosaicStatus string

// Managed mosaic states.
const (
	StatusPending  MosaicStatus = "pending"
	StatusBuilding MosaicStatus = "building"
	StatusReady    MosaicStatus = "ready"
	StatusSyncing  MosaicStatus = "syncing"
	StatusFailed   MosaicStatus = "failed"
)

// ManagedMosaic is a mosaic dataset under workflow management.
type ManagedMosaic struct {
	Name       string       `json:"name"`
	Path       string       `json:"path"`
	Status     MosaicStatus `json:"status"`
	Items      int          `json:"items"`
	LastBuild  time.Time    `json:"last_build,omitempty"`
	LastSync   time.Time    `json:"last_sync,omitempty"`
	LastError  string       `json:"last_error,omitempty"`
	BuildCount int          `json:"build_count"`
}

// IsReady reports whether the mosaic can serve requests.
func (m *ManagedMosaic) IsReady() bool {
	return m.Status == StatusReady
}
