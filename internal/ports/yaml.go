package ports

// YAMLPort is the decoding capability the resolver needs for rosparam and
// yaml-typed param values.  Passed in at construction time; the core never
// reaches for a decoder on its own.
type YAMLPort interface {
	// Decode parses a single YAML document.  Mappings decode to
	// map[string]any, sequences to []any, scalars to Go scalars.
	Decode(text string) (any, error)
}
