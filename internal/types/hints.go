package types

// NodeHints pre-declares the communication endpoints a node instance is
// expected to use, keyed by call kind.  Each map entry is a resolved-name
// pattern (possibly containing the "?" wildcard) to message/service type.
type NodeHints struct {
	Advertise map[string]string `yaml:"advertise,omitempty"`
	Subscribe map[string]string `yaml:"subscribe,omitempty"`
	Service   map[string]string `yaml:"service,omitempty"`
	Client    map[string]string `yaml:"client,omitempty"`
}

// ConfigurationHints maps a node instance's fully-qualified name to its
// endpoint hints.  Supplied out-of-band by the caller; see the hint index
// for the matching rules.
type ConfigurationHints map[string]NodeHints
