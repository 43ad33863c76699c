package app

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"launchgraph/internal/types"
)

// ProjectFile is the analysis project index: which configurations to build,
// from which launch files, with which endpoint hints.
type ProjectFile struct {
	Project        string                          `yaml:"project"`
	Configurations map[string]ProjectConfiguration `yaml:"configurations"`

	dir string
}

type ProjectConfiguration struct {
	Launch []string                 `yaml:"launch"`
	Hints  types.ConfigurationHints `yaml:"hints,omitempty"`
}

func LoadProject(path string) (ProjectFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return ProjectFile{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read project file").
			WithCause(err)
	}
	var project ProjectFile
	if err := yaml.Unmarshal(content, &project); err != nil {
		return ProjectFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse project file").
			WithCause(err)
	}
	if project.Project == "" {
		return ProjectFile{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project file is missing a project name")
	}
	project.dir = filepath.Dir(path)
	return project, nil
}

// ConfigurationNames returns the configuration names in stable order.
func (p ProjectFile) ConfigurationNames() []string {
	names := make([]string, 0, len(p.Configurations))
	for name := range p.Configurations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LaunchPath resolves a launch entry relative to the project file.
func (p ProjectFile) LaunchPath(entry string) string {
	if filepath.IsAbs(entry) {
		return filepath.Clean(entry)
	}
	return filepath.Join(p.dir, entry)
}

// hintsFile is an out-of-band hint overlay: configuration name to per-node
// endpoint hints, merged over the project file's own hints.
type hintsFile map[string]types.ConfigurationHints

func loadHints(path string) (hintsFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read hints file").
			WithCause(err)
	}
	var hints hintsFile
	if err := yaml.Unmarshal(content, &hints); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse hints file").
			WithCause(err)
	}
	return hints, nil
}

func mergeHints(base, overlay types.ConfigurationHints) types.ConfigurationHints {
	merged := types.ConfigurationHints{}
	for node, hints := range base {
		merged[node] = hints
	}
	for node, hints := range overlay {
		merged[node] = hints
	}
	return merged
}
