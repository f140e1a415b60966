// Package cache provides the caching layer used by the outline pipeline and
// the family stores.
//
// A [Cache] is a plain byte store with per-entry TTL. Three backends exist:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for multi-instance API servers
//   - [NullCache]: never stores anything
//
// Keys are produced by a [Keyer] so that every layer agrees on the key
// format. Keys hash the options that influence a result, so changing the
// depth cap or the locale never serves a stale outline.
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	if err != nil {
//	    return err
//	}
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.OutlineKey(familyHash, cache.OutlineKeyOpts{MaxDepth: 8})
//	if data, ok, _ := c.Get(ctx, key); ok {
//	    // use data
//	}
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value stored under key. A miss is reported with
	// ok == false and a nil error.
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)

	// Set stores data under key. A ttl <= 0 means the entry does not expire.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the backend's resources.
	Close() error
}

// Default TTLs per entry kind.
const (
	// TTLFamily bounds how long a loaded family snapshot is reused.
	TTLFamily = 10 * time.Minute

	// TTLOutline is the lifetime of computed outline results. Outlines are a
	// pure function of their key, so the TTL only bounds disk use.
	TTLOutline = 7 * 24 * time.Hour

	// TTLArtifact is the lifetime of rendered exports.
	TTLArtifact = 7 * 24 * time.Hour
)

// Keyer generates cache keys.
type Keyer interface {
	// FamilyKey identifies a family as loaded from a store.
	FamilyKey(source, familyID string) string

	// OutlineKey identifies an outline computed from a family's content.
	OutlineKey(familyHash string, opts OutlineKeyOpts) string

	// ArtifactKey identifies a rendered export of an outline.
	ArtifactKey(outlineHash string, opts ArtifactKeyOpts) string
}

// OutlineKeyOpts are the build options that change an outline.
type OutlineKeyOpts struct {
	MaxDepth        int    `json:"max_depth"`
	GenerationLabel string `json:"generation_label"`
	Locale          string `json:"locale"`
	Policy          string `json:"policy"`
	Seed            uint64 `json:"seed"`
}

// ArtifactKeyOpts are the render options that change an export.
type ArtifactKeyOpts struct {
	Format    string  `json:"format"`
	Plain     bool    `json:"plain,omitempty"`
	Detailed  bool    `json:"detailed,omitempty"`
	Title     string  `json:"title,omitempty"`
	Direction string  `json:"direction,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces "kind:sha256(...)" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// FamilyKey generates a key for a stored family. The source names the store
// so that two stores never share entries.
func (DefaultKeyer) FamilyKey(source, familyID string) string {
	return "family:" + source + ":" + familyID
}

// OutlineKey generates a key for an outline result.
func (DefaultKeyer) OutlineKey(familyHash string, opts OutlineKeyOpts) string {
	return hashKey("outline", familyHash, opts)
}

// ArtifactKey generates a key for a rendered export.
func (DefaultKeyer) ArtifactKey(outlineHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", outlineHash, opts)
}

var _ Keyer = DefaultKeyer{}
