package app

import (
	"os"
	"strings"

	"launchgraph/internal/adapters"
	"launchgraph/internal/ports"
)

type Service struct {
	TreeParser  ports.TreeParserPort
	YAML        ports.YAMLPort
	Environment func() map[string]string
}

func NewService() Service {
	return Service{
		TreeParser:  adapters.NewLaunchXMLAdapter(),
		YAML:        adapters.NewYAMLAdapter(),
		Environment: processEnvironment,
	}
}

func processEnvironment() map[string]string {
	env := map[string]string{}
	for _, entry := range os.Environ() {
		if idx := strings.Index(entry, "="); idx > 0 {
			env[entry[:idx]] = entry[idx+1:]
		}
	}
	return env
}
