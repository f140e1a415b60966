package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The API server uses one per deployment so that several kintree instances
// can share a Redis database.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "prod:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// FamilyKey generates a prefixed key for a stored family.
func (k *ScopedKeyer) FamilyKey(source, familyID string) string {
	return k.prefix + k.inner.FamilyKey(source, familyID)
}

// OutlineKey generates a prefixed key for an outline result.
func (k *ScopedKeyer) OutlineKey(familyHash string, opts OutlineKeyOpts) string {
	return k.prefix + k.inner.OutlineKey(familyHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(outlineHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(outlineHash, opts)
}
