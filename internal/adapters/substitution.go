package adapters

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"launchgraph/internal/ports"
	"launchgraph/internal/types"
)

// SubstitutionAdapter evaluates the roslaunch substitution mini-language:
// $(arg name), $(env VAR), $(optenv VAR default), $(find pkg), $(dirname)
// and $(anon name).  $(eval ...) is outside the static model and always
// reports unresolved.  Every package and environment variable touched is
// recorded into the configuration's dependency sets.
type SubstitutionAdapter struct {
	environment map[string]string
	sources     ports.SourceIndexPort
	dir         string
	deps        types.DependencySet
	anon        map[string]string
}

func NewSubstitutionAdapter(environment map[string]string, sources ports.SourceIndexPort, dir string, deps types.DependencySet) *SubstitutionAdapter {
	return &SubstitutionAdapter{
		environment: environment,
		sources:     sources,
		dir:         dir,
		deps:        deps,
		anon:        map[string]string{},
	}
}

func (a *SubstitutionAdapter) ForFile(dir string) ports.SubstitutionPort {
	return &SubstitutionAdapter{
		environment: a.environment,
		sources:     a.sources,
		dir:         dir,
		deps:        a.deps,
		anon:        a.anon,
	}
}

func (a *SubstitutionAdapter) Resolve(expr string, args map[string]string, strict bool) (ports.Resolution, error) {
	var out strings.Builder
	rest := expr
	unresolved := false
	for {
		start := strings.Index(rest, "$(")
		if start < 0 {
			out.WriteString(rest)
			break
		}
		end := strings.Index(rest[start:], ")")
		if end < 0 {
			return ports.Resolution{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("unterminated substitution: " + expr)
		}
		out.WriteString(rest[:start])
		inner := rest[start+2 : start+end]
		rest = rest[start+end+1:]

		value, known, err := a.substitute(inner, args, strict)
		if err != nil {
			return ports.Resolution{}, err
		}
		if !known {
			unresolved = true
			continue
		}
		out.WriteString(value)
	}
	if unresolved {
		return ports.Unresolved(), nil
	}
	return ports.Resolved(out.String()), nil
}

func (a *SubstitutionAdapter) substitute(inner string, args map[string]string, strict bool) (string, bool, error) {
	fields := strings.Fields(inner)
	if len(fields) == 0 {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty substitution")
	}
	directive := fields[0]
	operand := ""
	if len(fields) > 1 {
		operand = fields[1]
	}
	switch directive {
	case "arg":
		if value, ok := args[operand]; ok {
			return value, true, nil
		}
		return a.unresolvable(strict, "unresolved arg: "+operand)
	case "env":
		a.deps.Environment.Add(operand)
		if value, ok := a.environment[operand]; ok {
			return value, true, nil
		}
		return a.unresolvable(strict, "unresolved environment variable: "+operand)
	case "optenv":
		a.deps.Environment.Add(operand)
		if value, ok := a.environment[operand]; ok {
			return value, true, nil
		}
		return strings.Join(fields[2:], " "), true, nil
	case "find":
		a.deps.Packages.Add(operand)
		if pkg, ok := a.sources.Package(operand); ok {
			return pkg.Path, true, nil
		}
		return a.unresolvable(strict, "cannot find package: "+operand)
	case "dirname":
		return a.dir, true, nil
	case "anon":
		if value, ok := a.anon[operand]; ok {
			return value, true, nil
		}
		value := fmt.Sprintf("%s_%d", operand, len(a.anon)+1)
		a.anon[operand] = value
		return value, true, nil
	case "eval":
		return a.unresolvable(strict, "cannot evaluate expression: "+inner)
	default:
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("unknown substitution: " + directive)
	}
}

func (a *SubstitutionAdapter) unresolvable(strict bool, message string) (string, bool, error) {
	if strict {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg(message)
	}
	return "", false, nil
}

var _ ports.SubstitutionPort = (*SubstitutionAdapter)(nil)
