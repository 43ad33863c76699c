package adapters

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"launchgraph/internal/ports"
	"launchgraph/internal/types"
)

// ReportWriterAdapter persists resolved configurations as YAML summaries
// under an output directory, one file per configuration.
type ReportWriterAdapter struct {
	Dir string
}

func NewReportWriterAdapter(dir string) ReportWriterAdapter {
	return ReportWriterAdapter{Dir: dir}
}

func (a ReportWriterAdapter) WriteSummary(config *types.Configuration, errs []string) (string, error) {
	if err := os.MkdirAll(a.Dir, 0755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create output directory").
			WithCause(err)
	}
	summary := Summarize(config, errs)
	content, err := yaml.Marshal(summary)
	if err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to serialize configuration summary").
			WithCause(err)
	}
	path := filepath.Join(a.Dir, config.Name+".yaml")
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write configuration summary").
			WithCause(err)
	}
	return path, nil
}

func (a ReportWriterAdapter) ReadSummary(path string) (types.ConfigSummary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.ConfigSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read report").
			WithCause(err)
	}
	var summary types.ConfigSummary
	if err := yaml.Unmarshal(content, &summary); err != nil {
		return types.ConfigSummary{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse report").
			WithCause(err)
	}
	return summary, nil
}

// Summarize flattens a configuration graph into its serialized form.
func Summarize(config *types.Configuration, errs []string) types.ConfigSummary {
	summary := types.ConfigSummary{
		Name: config.Name,
		Dependencies: types.DependencySummary{
			Packages:    config.Dependencies.Packages.Sorted(),
			Environment: config.Dependencies.Environment.Sorted(),
		},
		Errors: errs,
	}
	for _, node := range config.Nodes.Items() {
		entry := types.NodeSummary{
			Name:        node.Name.Full,
			Package:     node.Template.Package.Name,
			Executable:  node.Template.Name,
			Args:        node.Args,
			Publishers:  len(node.Publishers),
			Subscribers: len(node.Subscribers),
			Servers:     len(node.Servers),
			Clients:     len(node.Clients),
			Conditions:  node.Conditions,
		}
		for source, target := range node.Remaps {
			entry.Remaps = append(entry.Remaps, fmt.Sprintf("%s -> %s", source, target))
		}
		sort.Strings(entry.Remaps)
		summary.Nodes = append(summary.Nodes, entry)
	}
	for _, topic := range config.Topics.Items() {
		entry := types.EndpointSummary{
			Name:       topic.Name.Full,
			Type:       topic.Type,
			Conditions: topic.Conditions,
		}
		for _, link := range topic.Publishers {
			entry.Links = append(entry.Links, "publisher "+link.Node.Name.Full)
		}
		for _, link := range topic.Subscribers {
			entry.Links = append(entry.Links, "subscriber "+link.Node.Name.Full)
		}
		summary.Topics = append(summary.Topics, entry)
	}
	for _, service := range config.Services.Items() {
		entry := types.EndpointSummary{
			Name:       service.Name.Full,
			Type:       service.Type,
			Conditions: service.Conditions,
		}
		if service.Server != nil {
			entry.Links = append(entry.Links, "server "+service.Server.Node.Name.Full)
		}
		for _, link := range service.Clients {
			entry.Links = append(entry.Links, "client "+link.Node.Name.Full)
		}
		summary.Services = append(summary.Services, entry)
	}
	for _, param := range config.Parameters.Items() {
		summary.Parameters = append(summary.Parameters, types.ParameterSummary{
			Name:       param.Name.Full,
			Type:       param.Type,
			Value:      param.Value,
			NodeScope:  param.NodeScope,
			Conditions: param.Conditions,
		})
	}
	return summary
}

var _ ports.ReportPort = ReportWriterAdapter{}
