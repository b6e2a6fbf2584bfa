// Package cache stores rendered artifacts between runs.
//
// Three backends implement [Cache]:
//
//   - [FileCache] for the CLI, one JSON file per entry under a directory.
//   - [RedisCache] for the HTTP server when several instances share work.
//   - [NullCache] when caching is disabled.
//
// Keys come from a [Keyer]. They hash the source drawing together with every
// option that changes the output, so two requests that would render the
// same image share an entry.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with per-entry expiration. Implementations are safe
// for concurrent use.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data. A ttl of zero keeps the entry until deleted.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	// TTLArtifact applies to rendered images and exported documents.
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer builds cache keys.
type Keyer interface {
	// ArtifactKey identifies an artifact rendered from a source drawing
	// whose content hashes to sourceHash.
	ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts lists everything besides the source that changes an
// artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`

	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Columns     int     `json:"columns"`
	Rotation    float64 `json:"rotation"`
	DotsPerUnit float64 `json:"dots_per_unit"`

	DrawContainer          bool `json:"draw_container"`
	ShowOriginalOnlyIfFits bool `json:"show_original_only_if_fits"`

	ExcludeKinds  []string `json:"exclude_kinds,omitempty"`
	ExcludeLayers []string `json:"exclude_layers,omitempty"`

	// ShapesHash covers the procedural shapes drawn with the source.
	ShapesHash string `json:"shapes_hash,omitempty"`

	FontPath string  `json:"font_path,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
}

// DefaultKeyer produces "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey hashes the source hash with opts.
func (DefaultKeyer) ArtifactKey(sourceHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", sourceHash, opts)
}
