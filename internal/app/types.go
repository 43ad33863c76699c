package app

import "launchgraph/internal/types"

type BuildRequest struct {
	ProjectPath  string
	Workspace    []string
	ExtractionDB string
	HintsPath    string
	OutputDir    string
}

type BuildResult struct {
	Project        string
	Configurations []ConfigOutcome
}

// ConfigOutcome reports one resolved configuration: entity counts, the
// recoverable diagnostics collected during the walk, and where the summary
// was written, if anywhere.
type ConfigOutcome struct {
	Name       string
	Nodes      int
	Topics     int
	Services   int
	Parameters int
	Errors     []string
	ReportPath string
}

type InspectRequest struct {
	ReportPath string
}

type InspectResult struct {
	Summary types.ConfigSummary
}
