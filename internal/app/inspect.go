package app

import (
	"context"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"launchgraph/internal/adapters"
)

// Inspect reads back a previously written configuration summary.
func (s Service) Inspect(ctx context.Context, req InspectRequest) (InspectResult, error) {
	path := strings.TrimSpace(req.ReportPath)
	if path == "" {
		return InspectResult{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("report path is required")
	}
	reader := adapters.NewReportWriterAdapter("")
	summary, err := reader.ReadSummary(path)
	if err != nil {
		return InspectResult{}, err
	}
	return InspectResult{Summary: summary}, nil
}
