package ports

import "launchgraph/internal/types"

// ReportPort persists a resolved configuration summary for downstream
// consumers and reads it back for inspection.
type ReportPort interface {
	WriteSummary(config *types.Configuration, errors []string) (string, error)
	ReadSummary(path string) (types.ConfigSummary, error)
}
