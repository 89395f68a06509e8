package domain

import "time"

// LoaderVersion describes one installable loader version
type LoaderVersion struct {
	Version     string `json:"version"`
	Stable      bool   `json:"stable"`
	Recommended bool   `json:"recommended"`
}

// CachedVersion is a loader version as served by the metadata cache
type CachedVersion struct {
	Ecosystem   LoaderVariant
	Version     string
	Stable      bool
	BuildNumber *int   // Nil when the ecosystem does not publish build numbers
	MavenCoords string // Maven coordinate or artifact URL, ecosystem-specific
	CachedAt    time.Time
}

// InstalledLoader records a completed loader installation in a game directory
type InstalledLoader struct {
	GameDir       string        `json:"game_dir"`
	VersionID     string        `json:"version_id"`
	Variant       LoaderVariant `json:"variant"`
	BaseVersion   string        `json:"base_version"`
	LoaderVersion string        `json:"loader_version"`
	InstalledAt   time.Time     `json:"installed_at"`
}

// ProgressFunc receives coarse install milestones
type ProgressFunc func(message string, current, total int)

// Report calls p if it is set
func (p ProgressFunc) Report(message string, current, total int) {
	if p != nil {
		p(message, current, total)
	}
}
