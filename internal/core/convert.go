package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"launchgraph/internal/ports"
	"launchgraph/internal/types"
)

// coerceValue converts a raw attribute string into a typed parameter value,
// following roslaunch rules.  With no declared type it tries numeric, then
// boolean, then falls back to string.  Returns the value plus the concrete
// type name it settled on.
func coerceValue(raw string, ptype string, yaml ports.YAMLPort) (any, string, error) {
	switch ptype {
	case "":
		if strings.Contains(raw, ".") {
			if value, err := strconv.ParseFloat(raw, 64); err == nil {
				return value, "double", nil
			}
		} else if value, err := strconv.Atoi(raw); err == nil {
			return value, "int", nil
		}
		lower := strings.ToLower(raw)
		if lower == "true" || lower == "false" {
			return coerceValue(raw, "bool", yaml)
		}
		return raw, "str", nil
	case "str", "string":
		return raw, "str", nil
	case "int":
		value, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, "", invalidValue(raw, ptype)
		}
		return value, "int", nil
	case "double":
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, "", invalidValue(raw, ptype)
		}
		return value, "double", nil
	case "bool", "boolean":
		switch strings.ToLower(strings.TrimSpace(raw)) {
		case "true", "1":
			return true, "bool", nil
		case "false", "0":
			return false, "bool", nil
		}
		return nil, "", invalidValue(raw, ptype)
	case "yaml":
		value, err := yaml.Decode(raw)
		if err != nil {
			return nil, "", errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("invalid yaml value").
				WithCause(err)
		}
		return value, "yaml", nil
	default:
		return nil, "", errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unknown parameter type %q", ptype))
	}
}

// typeOf names the parameter type of an already-converted value.
func typeOf(value any) string {
	switch value.(type) {
	case nil:
		return ""
	case bool:
		return "bool"
	case int:
		return "int"
	case float64:
		return "double"
	case string:
		return "str"
	default:
		return "yaml"
	}
}

// coerceBool interprets a resolved conditional attribute.
func coerceBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, invalidValue(raw, "bool")
}

func invalidValue(raw, ptype string) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("%q is not a %q value", raw, ptype))
}

// flatParam is one leaf of a flattened nested parameter value.  Independent
// leaves (joined path starting with "/" or "~") are not sub-keys of a
// private parameter and are committed immediately instead of staged.
type flatParam struct {
	name        string
	value       any
	independent bool
}

// flattenValue walks a nested mapping depth-first, joining each key path
// with "/".  Only non-mapping leaves are emitted; intermediate keys never
// become parameters.  Scalars flatten to a single entry under name.
func flattenValue(name string, value any) []flatParam {
	var out []flatParam
	unfold(&out, "", name, value)
	return out
}

func unfold(out *[]flatParam, ns, key string, value any) {
	name := types.NsJoin(key, ns)
	mapping, ok := asMapping(value)
	if !ok {
		*out = append(*out, flatParam{
			name:        name,
			value:       value,
			independent: strings.HasPrefix(name, "/") || strings.HasPrefix(name, "~"),
		})
		return
	}
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		unfold(out, name, k, mapping[k])
	}
}

func asMapping(value any) (map[string]any, bool) {
	switch mapping := value.(type) {
	case map[string]any:
		return mapping, true
	case map[any]any:
		converted := make(map[string]any, len(mapping))
		for k, v := range mapping {
			converted[fmt.Sprint(k)] = v
		}
		return converted, true
	default:
		return nil, false
	}
}
