package cache

// ScopedKeyer wraps a Keyer with a prefix so several projects can share
// one cache backend without key collisions. The generate runner scopes
// keys by project title when a shared redis backend is configured.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to every key.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// PageKey generates a prefixed page key.
func (k *ScopedKeyer) PageKey(snapshotHash string, opts PageKeyOpts) string {
	return k.prefix + k.inner.PageKey(snapshotHash, opts)
}

// SnapshotKey generates a prefixed snapshot key.
func (k *ScopedKeyer) SnapshotKey(snapshotHash string) string {
	return k.prefix + k.inner.SnapshotKey(snapshotHash)
}
