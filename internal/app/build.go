package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"launchgraph/internal/adapters"
	"launchgraph/internal/core"
	"launchgraph/internal/types"
)

// Build resolves every configuration named by a project file against a
// source workspace and, when an output directory is given, writes one
// summary report per configuration.
func (s Service) Build(ctx context.Context, req BuildRequest) (BuildResult, error) {
	projectPath := strings.TrimSpace(req.ProjectPath)
	if projectPath == "" {
		return BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("project file path is required")
	}
	if len(req.Workspace) == 0 {
		return BuildResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("at least one workspace root is required")
	}

	project, err := LoadProject(projectPath)
	if err != nil {
		return BuildResult{}, err
	}

	sources := adapters.NewSourceIndexAdapter()
	if err := sources.ScanWorkspace(ctx, req.Workspace, s.TreeParser); err != nil {
		return BuildResult{}, err
	}
	if req.ExtractionDB != "" {
		if err := sources.LoadExtractionDB(req.ExtractionDB); err != nil {
			return BuildResult{}, err
		}
	}

	overlay := hintsFile{}
	if req.HintsPath != "" {
		if overlay, err = loadHints(req.HintsPath); err != nil {
			return BuildResult{}, err
		}
	}

	environment := s.Environment()
	result := BuildResult{Project: project.Project}
	for _, name := range project.ConfigurationNames() {
		config := project.Configurations[name]
		hints := mergeHints(config.Hints, overlay[name])
		builder := core.NewConfigBuilder(name, environment, sources, s.YAML, hints)

		for _, entry := range config.Launch {
			path := project.LaunchPath(entry)
			launch, ok := sources.LaunchFile(path)
			if !ok {
				builder.Errors = append(builder.Errors, "cannot find launch file: "+path)
				continue
			}
			sub := adapters.NewSubstitutionAdapter(environment, sources, launch.Dir, builder.Config.Dependencies)
			builder.AddLaunch(ctx, launch, sub)
		}

		outcome := ConfigOutcome{
			Name:       name,
			Nodes:      builder.Config.Nodes.Len(),
			Topics:     builder.Config.Topics.Len(),
			Services:   builder.Config.Services.Len(),
			Parameters: builder.Config.Parameters.Len(),
			Errors:     builder.Errors,
		}
		if req.OutputDir != "" {
			writer := adapters.NewReportWriterAdapter(req.OutputDir)
			path, err := writer.WriteSummary(builder.Config, builder.Errors)
			if err != nil {
				return BuildResult{}, err
			}
			outcome.ReportPath = path
		}
		result.Configurations = append(result.Configurations, outcome)

		log.Ctx(ctx).Info().
			Str("configuration", name).
			Int("nodes", outcome.Nodes).
			Int("errors", len(outcome.Errors)).
			Msg("configuration resolved")
	}
	return result, nil
}

// BuildConfiguration resolves a single launch file into a configuration
// without a project file, for callers that drive the core directly.
func (s Service) BuildConfiguration(ctx context.Context, name string, sources *adapters.SourceIndexAdapter, launchPath string, hints types.ConfigurationHints) (*types.Configuration, []string, error) {
	launch, ok := sources.LaunchFile(launchPath)
	if !ok {
		return nil, nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("cannot find launch file: " + launchPath)
	}
	environment := s.Environment()
	builder := core.NewConfigBuilder(name, environment, sources, s.YAML, hints)
	sub := adapters.NewSubstitutionAdapter(environment, sources, launch.Dir, builder.Config.Dependencies)
	builder.AddLaunch(ctx, launch, sub)
	return builder.Config, builder.Errors, nil
}
