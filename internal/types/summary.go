package types

// ConfigSummary is the serialized form of a resolved configuration, written
// by the report adapter and read back by inspection.
type ConfigSummary struct {
	Name         string             `yaml:"configuration"`
	Nodes        []NodeSummary      `yaml:"nodes"`
	Topics       []EndpointSummary  `yaml:"topics"`
	Services     []EndpointSummary  `yaml:"services"`
	Parameters   []ParameterSummary `yaml:"parameters"`
	Dependencies DependencySummary  `yaml:"dependencies"`
	Errors       []string           `yaml:"errors,omitempty"`
}

type NodeSummary struct {
	Name        string      `yaml:"name"`
	Package     string      `yaml:"package"`
	Executable  string      `yaml:"executable"`
	Args        string      `yaml:"args,omitempty"`
	Remaps      []string    `yaml:"remaps,omitempty"`
	Publishers  int         `yaml:"publishers"`
	Subscribers int         `yaml:"subscribers"`
	Servers     int         `yaml:"servers"`
	Clients     int         `yaml:"clients"`
	Conditions  []Condition `yaml:"conditions,omitempty"`
}

type EndpointSummary struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type,omitempty"`
	Links      []string    `yaml:"links,omitempty"`
	Conditions []Condition `yaml:"conditions,omitempty"`
}

type ParameterSummary struct {
	Name       string      `yaml:"name"`
	Type       string      `yaml:"type,omitempty"`
	Value      any         `yaml:"value,omitempty"`
	NodeScope  bool        `yaml:"node_scope,omitempty"`
	Conditions []Condition `yaml:"conditions,omitempty"`
}

type DependencySummary struct {
	Packages    []string `yaml:"packages,omitempty"`
	Environment []string `yaml:"environment,omitempty"`
}
