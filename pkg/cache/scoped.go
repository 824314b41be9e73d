package cache

// ScopedKeyer prefixes every key of an inner Keyer, so several graphview
// instances can share one Redis without seeing each other's entries:
//
//	k := cache.NewScopedKeyer(nil, "graphview:staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer means
// DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(graphHash, opts)
}

func (k *ScopedKeyer) FrameKey(graphHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(graphHash, opts)
}
