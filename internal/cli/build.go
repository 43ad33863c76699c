package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"launchgraph/internal/app"
)

type buildOptions struct {
	Project      string
	Workspace    []string
	ExtractionDB string
	Hints        string
	OutputDir    string
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{}
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Resolve the project's configurations and write summary reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBuild(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Project, "project", "", "Project file path")
	cmd.Flags().StringSliceVar(&opts.Workspace, "workspace", nil, "Workspace root(s)")
	cmd.Flags().StringVar(&opts.ExtractionDB, "extraction-db", "", "Node extraction database")
	cmd.Flags().StringVar(&opts.Hints, "hints", "", "Endpoint hints file")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")

	_ = viper.BindPFlag("project", cmd.Flags().Lookup("project"))
	_ = viper.BindPFlag("workspace", cmd.Flags().Lookup("workspace"))
	_ = viper.BindPFlag("extraction_db", cmd.Flags().Lookup("extraction-db"))
	_ = viper.BindPFlag("hints", cmd.Flags().Lookup("hints"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))

	return cmd
}

func runBuild(ctx context.Context, cmd *cobra.Command, opts buildOptions) error {
	service := app.NewService()
	result, err := service.Build(ctx, app.BuildRequest{
		ProjectPath:  resolveString(cmd, opts.Project, "project", "project"),
		Workspace:    resolveStrings(cmd, opts.Workspace, "workspace", "workspace"),
		ExtractionDB: resolveString(cmd, opts.ExtractionDB, "extraction_db", "extraction-db"),
		HintsPath:    resolveString(cmd, opts.Hints, "hints", "hints"),
		OutputDir:    resolveString(cmd, opts.OutputDir, "output", "output"),
	})
	if err != nil {
		return err
	}
	fmt.Printf("project: %s\n", result.Project)
	for _, outcome := range result.Configurations {
		fmt.Printf("  %s: %d nodes, %d topics, %d services, %d parameters, %d errors\n",
			outcome.Name, outcome.Nodes, outcome.Topics, outcome.Services,
			outcome.Parameters, len(outcome.Errors))
	}
	return nil
}
