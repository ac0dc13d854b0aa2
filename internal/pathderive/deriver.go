package pathderive

// CategoryResolver picks the category segment for a slash-separated path
// relative to the source root.
type CategoryResolver interface {
	Category(relativePath string) string
}

// FixedCategory replaces the first path segment with a configured value.
type FixedCategory string

// Category implements CategoryResolver.
func (f FixedCategory) Category(string) string { return string(f) }

// PathCategory takes the category from the first path segment.
type PathCategory struct{}

// Category implements CategoryResolver.
func (PathCategory) Category(relativePath string) string {
	return DeriveCategory(relativePath, "")
}

// Deriver computes destination keys for files under one source root.
type Deriver struct {
	sourceRoot string
	resolver   CategoryResolver
}

// NewDeriver selects FixedCategory when fixedCategory is non-empty and
// PathCategory otherwise.
func NewDeriver(sourceRoot, fixedCategory string) *Deriver {
	var resolver CategoryResolver = PathCategory{}
	if fixedCategory != "" {
		resolver = FixedCategory(fixedCategory)
	}
	return &Deriver{sourceRoot: sourceRoot, resolver: resolver}
}

// SourceRoot returns the root keys are computed against.
func (d *Deriver) SourceRoot() string { return d.sourceRoot }

// Key derives the destination key for absolutePath.
func (d *Deriver) Key(absolutePath string) (Key, error) {
	rel, err := relativeTo(absolutePath, d.sourceRoot)
	if err != nil {
		return Key{}, err
	}
	return keyFor(rel, d.resolver.Category(rel))
}
