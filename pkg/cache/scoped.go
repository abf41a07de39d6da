package cache

// ScopedKeyer wraps a Keyer with a prefix, so that several deployments or
// tenants can share one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "robdd:v1:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner keyer falls back
// to DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) DiagramKey(tableHash string, opts DiagramKeyOpts) string {
	return k.prefix + k.inner.DiagramKey(tableHash, opts)
}

func (k *ScopedKeyer) CombineKey(leftHash, rightHash string, opts CombineKeyOpts) string {
	return k.prefix + k.inner.CombineKey(leftHash, rightHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(diagramHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(diagramHash, opts)
}

func (k *ScopedKeyer) ExperimentKey(opts ExperimentKeyOpts) string {
	return k.prefix + k.inner.ExperimentKey(opts)
}
