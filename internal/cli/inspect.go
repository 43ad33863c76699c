package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"launchgraph/internal/app"
)

type inspectOptions struct {
	Report string
}

func newInspectCommand() *cobra.Command {
	opts := inspectOptions{}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Summarize a previously written configuration report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Report, "report", "", "Report file path")
	_ = viper.BindPFlag("report", cmd.Flags().Lookup("report"))
	return cmd
}

func runInspect(ctx context.Context, cmd *cobra.Command, opts inspectOptions) error {
	service := app.NewService()
	result, err := service.Inspect(ctx, app.InspectRequest{
		ReportPath: resolveString(cmd, opts.Report, "report", "report"),
	})
	if err != nil {
		return err
	}
	summary := result.Summary
	fmt.Printf("configuration: %s\n", summary.Name)
	fmt.Printf("  nodes: %d\n", len(summary.Nodes))
	fmt.Printf("  topics: %d\n", len(summary.Topics))
	fmt.Printf("  services: %d\n", len(summary.Services))
	fmt.Printf("  parameters: %d\n", len(summary.Parameters))
	for _, message := range summary.Errors {
		fmt.Printf("  error: %s\n", message)
	}
	return nil
}
