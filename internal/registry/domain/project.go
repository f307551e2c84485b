package domain

import "time"

// ProjectType enumerates the supported blue-carbon ecosystem types.
type ProjectType string

const (
	ProjectTypeMangrove ProjectType = "mangrove"
	ProjectTypeSeagrass ProjectType = "seagrass"
	ProjectTypeCoral    ProjectType = "coral"
	ProjectTypeCoastal  ProjectType = "coastal"
)

// ProjectStatus enumerates the project lifecycle states.
type ProjectStatus string

const (
	ProjectStatusPlanning  ProjectStatus = "planning"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusSuspended ProjectStatus = "suspended"
)

// Location is a point with an optional polygon fence. Geofence coordinates
// are ordered [lng, lat] pairs, GeoJSON style.
type Location struct {
	Lat      float64     `json:"lat"`
	Lng      float64     `json:"lng"`
	Geofence [][]float64 `json:"geofence,omitempty"`
}

// ProjectMetrics holds the restoration counters reported for a project.
type ProjectMetrics struct {
	TreesPlanted    int        `json:"treesPlanted"`
	CarbonTons      float64    `json:"carbonTons"`
	AreaRestored    float64    `json:"areaRestored"`
	Photos          []string   `json:"photos"`
	LastMeasurement *time.Time `json:"lastMeasurement,omitempty"`
}

// Project is a restoration project tracked by the registry.
// Verified starts false and flips true only through the permission-gated
// verify operation.
type Project struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Location    Location       `json:"location"`
	Type        ProjectType    `json:"type"`
	Status      ProjectStatus  `json:"status"`
	Metrics     ProjectMetrics `json:"metrics"`
	CreatedBy   string         `json:"createdBy"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Verified    bool           `json:"verified"`
}
