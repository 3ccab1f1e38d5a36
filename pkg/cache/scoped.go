package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, so
// that several projects or tenants can share one cache backend without
// key collisions.
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

// ProfileKey generates a prefixed key for a cached repository profile.
func (k *ScopedKeyer) ProfileKey(root string, opts ProfileKeyOpts) string {
	return k.prefix + k.inner.ProfileKey(root, opts)
}

// RenderKey generates a prefixed key for a rendered artifact.
func (k *ScopedKeyer) RenderKey(profileHash, format string) string {
	return k.prefix + k.inner.RenderKey(profileHash, format)
}
