package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that several
// consoles can share one Redis database:
//
//	keyer := cache.NewScopedKeyer(nil, "console:prod:")
type ScopedKeyer struct {
	Inner  Keyer
	Prefix string
}

// NewScopedKeyer returns a ScopedKeyer over inner, or over DefaultKeyer
// when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{Inner: inner, Prefix: prefix}
}

func (k ScopedKeyer) CollectionsKey(source string) string {
	return k.Prefix + k.Inner.CollectionsKey(source)
}

func (k ScopedKeyer) LayoutKey(collectionsHash string, opts LayoutKeyOpts) string {
	return k.Prefix + k.Inner.LayoutKey(collectionsHash, opts)
}

func (k ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.Prefix + k.Inner.ArtifactKey(layoutHash, opts)
}
