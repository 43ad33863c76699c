package adapters

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	"gopkg.in/yaml.v3"

	"launchgraph/internal/ports"
)

// YAMLAdapter is the decoding capability handed to the resolver core.
type YAMLAdapter struct{}

func NewYAMLAdapter() YAMLAdapter {
	return YAMLAdapter{}
}

func (YAMLAdapter) Decode(text string) (any, error) {
	var out any
	if err := yaml.Unmarshal([]byte(text), &out); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid yaml document").
			WithCause(err)
	}
	return out, nil
}

var _ ports.YAMLPort = YAMLAdapter{}
