package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"launchgraph/internal/ports"
	"launchgraph/internal/types"
)

// ConfigBuilder walks launch trees depth-first and resolves them into a
// configuration graph.  Recoverable failures never abort the walk: they are
// appended to Errors and resolution continues with the next sibling tag.
type ConfigBuilder struct {
	Config  *types.Configuration
	Sources ports.SourceIndexPort
	YAML    ports.YAMLPort
	Hints   types.ConfigurationHints
	Errors  []string

	arena *paramArena

	// active tracks launch files on the current resolution stack; re-entry
	// via include is a cycle, not recursion.
	active map[string]bool
}

func NewConfigBuilder(name string, environment map[string]string, sources ports.SourceIndexPort, yaml ports.YAMLPort, hints types.ConfigurationHints) *ConfigBuilder {
	if hints == nil {
		hints = types.ConfigurationHints{}
	}
	return &ConfigBuilder{
		Config:  types.NewConfiguration(name, environment),
		Sources: sources,
		YAML:    yaml,
		Hints:   hints,
		arena:   &paramArena{},
		active:  map[string]bool{},
	}
}

// AddLaunch resolves one launch file, including everything it transitively
// includes, into the configuration.  Parameters are only committed to the
// configuration once the whole file has been walked, so later rosparam tags
// can still redefine or delete earlier entries.
func (b *ConfigBuilder) AddLaunch(ctx context.Context, launch *types.LaunchFile, sub ports.SubstitutionPort) {
	b.Config.LaunchFiles = append(b.Config.LaunchFiles, launch)
	if launch.Tree == nil {
		b.Errors = append(b.Errors, "missing parse tree: "+launch.Path)
		return
	}
	scope := newRootScope(b.Config, launch, map[string]string{}, b.arena)
	b.active[launch.Path] = true
	b.walkChildren(ctx, launch.Tree, scope, sub)
	delete(b.active, launch.Path)

	for _, param := range b.arena.staged {
		b.Config.Parameters.Add(param)
	}
	b.arena.staged = b.arena.staged[:0]

	log.Ctx(ctx).Debug().
		Str("launch", launch.Path).
		Int("nodes", b.Config.Nodes.Len()).
		Int("errors", len(b.Errors)).
		Msg("launch file resolved")
}

func (b *ConfigBuilder) walkChildren(ctx context.Context, tree *types.LaunchNode, scope *LaunchScope, sub ports.SubstitutionPort) {
	for _, tag := range tree.Children {
		if tag.Kind == types.TagError {
			b.Errors = append(b.Errors, tag.Text)
			continue
		}
		condition, err := b.tagCondition(tag, scope, sub)
		if err != nil {
			b.recordError(ctx, tag, err)
			continue
		}
		if condition.IsNever() {
			continue
		}
		if err := b.dispatch(ctx, tag, condition, scope, sub); err != nil {
			b.recordError(ctx, tag, err)
		}
	}
}

func (b *ConfigBuilder) dispatch(ctx context.Context, tag *types.LaunchNode, condition types.Condition, scope *LaunchScope, sub ports.SubstitutionPort) error {
	switch tag.Kind {
	case types.TagNode:
		return b.nodeTag(ctx, tag, condition, scope, sub)
	case types.TagInclude:
		return b.includeTag(ctx, tag, condition, scope, sub)
	case types.TagGroup:
		return b.groupTag(ctx, tag, condition, scope, sub)
	case types.TagRemap:
		return b.remapTag(tag, condition, scope, sub)
	case types.TagParam:
		return b.paramTag(tag, condition, scope, sub)
	case types.TagRosparam:
		return b.rosparamTag(tag, condition, scope, sub)
	case types.TagArg:
		return b.argTag(tag, condition, scope, sub)
	case types.TagEnv, types.TagMachine, types.TagTest:
		// Valid tags with no effect on the resolved graph.
		return nil
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("unhandled tag kind %q at %s", tag.Kind, tag.Location()))
	}
}

// tagCondition resolves a tag's conditional attribute into one of the three
// condition values.  An unresolvable guard is not an error: the subtree is
// resolved assuming inclusion and every entity it produces carries the
// symbolic condition.
func (b *ConfigBuilder) tagCondition(tag *types.LaunchNode, scope *LaunchScope, sub ports.SubstitutionPort) (types.Condition, error) {
	if tag.Condition == nil {
		return types.AlwaysCondition(), nil
	}
	resolution, err := sub.Resolve(tag.Condition.Expression, scope.arguments, false)
	if err != nil {
		return types.Condition{}, err
	}
	if !resolution.Known {
		return types.SymbolicCondition(tag.Condition.Expression, tag.Location()), nil
	}
	value, err := coerceBool(resolution.Value)
	if err != nil {
		return types.Condition{}, err
	}
	if value == tag.Condition.Polarity {
		return types.AlwaysCondition(), nil
	}
	return types.NeverCondition(), nil
}

func (b *ConfigBuilder) nodeTag(ctx context.Context, tag *types.LaunchNode, condition types.Condition, scope *LaunchScope, sub ports.SubstitutionPort) error {
	pkg, err := b.resolve(sub, scope, tag.Attr("pkg"))
	if err != nil {
		return err
	}
	executable, err := b.resolve(sub, scope, tag.Attr("type"))
	if err != nil {
		return err
	}
	args, err := b.resolve(sub, scope, tag.Attr("args"))
	if err != nil {
		return err
	}
	if pkg == "" || executable == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("node tag is missing pkg or type")
	}
	template, err := b.nodeTemplate(pkg, executable, args)
	if err != nil {
		return err
	}
	name, err := b.resolve(sub, scope, tag.Attr("name"))
	if err != nil {
		return err
	}
	ns, err := b.resolve(sub, scope, tag.Attr("ns"))
	if err != nil {
		return err
	}

	instance, nodeScope, previous := scope.enterNode(template, name, ns, args, condition)
	if previous != nil {
		b.Errors = append(b.Errors, fmt.Sprintf(
			"node name already in use: %s (previous instance replaced)", instance.Name.Full))
	}
	b.walkChildren(ctx, tag, nodeScope, sub)

	hints := buildCommHints(nodeScope, b.Hints[instance.Name.Full])
	nodeScope.materializeTopics(ctx, hints.topics())
	nodeScope.materializeServices(ctx, hints.services())
	nodeScope.linkRemainingHints(hints)
	return nil
}

// nodeTemplate looks up the static template for a package/executable pair.
// A missing package is a hard error; a missing template degrades to a
// synthesized placeholder so analysis can continue with reduced precision.
// Nodelet load/standalone invocations resolve to the nodelet's own pair.
func (b *ConfigBuilder) nodeTemplate(pkg, executable, args string) (*types.NodeTemplate, error) {
	nodelet := ""
	if executable == "nodelet" {
		fields := strings.Fields(args)
		if len(fields) == 0 {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("nodelet without args")
		}
		if fields[0] == "load" || fields[0] == "standalone" {
			if len(fields) < 3 {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("nodelet load: too few arguments")
			}
			parts := strings.SplitN(fields[1], "/", 2)
			if len(parts) != 2 {
				return nil, errbuilder.New().
					WithCode(errbuilder.CodeInvalidArgument).
					WithMsg("nodelet load: malformed target " + fields[1])
			}
			pkg, executable = parts[0], parts[1]
			nodelet = executable
		}
	}
	sourcePkg, ok := b.Sources.Package(pkg)
	if !ok {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("cannot find package: " + pkg)
	}
	if template, ok := b.Sources.NodeTemplate(pkg, executable); ok {
		return template, nil
	}
	return &types.NodeTemplate{
		Name:        executable,
		Package:     sourcePkg,
		Nodelet:     nodelet,
		Placeholder: true,
	}, nil
}

func (b *ConfigBuilder) includeTag(ctx context.Context, tag *types.LaunchNode, condition types.Condition, scope *LaunchScope, sub ports.SubstitutionPort) error {
	path, err := b.resolve(sub, scope, tag.Attr("file"))
	if err != nil {
		return err
	}
	ns, err := b.resolve(sub, scope, tag.Attr("ns"))
	if err != nil {
		return err
	}
	passAllRaw, err := b.resolve(sub, scope, tag.Attr("pass_all_args"))
	if err != nil {
		return err
	}
	passAll := false
	if passAllRaw != "" {
		if passAll, err = coerceBool(passAllRaw); err != nil {
			return err
		}
	}
	launch, ok := b.Sources.LaunchFile(path)
	if !ok {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("cannot find launch file: " + path)
	}
	if launch.Tree == nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("missing parse tree: " + launch.Path)
	}
	if b.active[launch.Path] {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("include cycle detected: " + launch.Path)
	}

	args := map[string]string{}
	if passAll {
		for name, value := range scope.arguments {
			args[name] = value
		}
	}
	child := scope.fork(ns, condition, launch, args)

	// Override arguments bind in the including context, before the
	// included file's own tree is resolved against a fresh evaluator
	// rooted at its directory.
	b.walkChildren(ctx, tag, child, sub)
	included := sub.ForFile(launch.Dir)
	b.active[launch.Path] = true
	b.walkChildren(ctx, launch.Tree, child, included)
	delete(b.active, launch.Path)
	return nil
}

func (b *ConfigBuilder) groupTag(ctx context.Context, tag *types.LaunchNode, condition types.Condition, scope *LaunchScope, sub ports.SubstitutionPort) error {
	ns, err := b.resolve(sub, scope, tag.Attr("ns"))
	if err != nil {
		return err
	}
	child := scope.fork(ns, condition, nil, nil)
	b.walkChildren(ctx, tag, child, sub)
	return nil
}

// remapTag rejects symbolic conditions outright: a conditionally-present
// remap would corrupt the static remap table for everything below it.
func (b *ConfigBuilder) remapTag(tag *types.LaunchNode, condition types.Condition, scope *LaunchScope, sub ports.SubstitutionPort) error {
	if !condition.IsAlways() {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cannot resolve conditional remap")
	}
	source, err := b.resolve(sub, scope, tag.Attr("from"))
	if err != nil {
		return err
	}
	target, err := b.resolve(sub, scope, tag.Attr("to"))
	if err != nil {
		return err
	}
	scope.declareRemap(source, target)
	return nil
}

func (b *ConfigBuilder) paramTag(tag *types.LaunchNode, condition types.Condition, scope *LaunchScope, sub ports.SubstitutionPort) error {
	name, err := b.resolve(sub, scope, tag.Attr("name"))
	if err != nil {
		return err
	}
	ptype, err := b.resolve(sub, scope, tag.Attr("type"))
	if err != nil {
		return err
	}
	var raw *string
	switch {
	case tag.HasAttr("value"):
		value, err := b.resolve(sub, scope, tag.Attr("value"))
		if err != nil {
			return err
		}
		raw = &value
	case tag.HasAttr("textfile"):
		path, err := b.resolve(sub, scope, tag.Attr("textfile"))
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("cannot read file: " + path).
				WithCause(err)
		}
		text := string(content)
		raw = &text
	case tag.HasAttr("binfile"), tag.HasAttr("command"):
		// Value intentionally left unresolved; binary and command sources
		// are outside the static model.
		raw = nil
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("param tag has no value source")
	}
	return scope.stageParameter(name, ptype, raw, condition, b.YAML)
}

func (b *ConfigBuilder) rosparamTag(tag *types.LaunchNode, condition types.Condition, scope *LaunchScope, sub ports.SubstitutionPort) error {
	command, err := b.resolve(sub, scope, tag.Attr("command"))
	if err != nil {
		return err
	}
	if command == "" {
		command = "load"
	}
	ns, err := b.resolve(sub, scope, tag.Attr("ns"))
	if err != nil {
		return err
	}
	name, err := b.resolve(sub, scope, tag.Attr("param"))
	if err != nil {
		return err
	}
	switch command {
	case "load":
		path, err := b.resolve(sub, scope, tag.Attr("file"))
		if err != nil {
			return err
		}
		var text string
		if path != "" {
			content, err := os.ReadFile(path)
			if err != nil {
				return errbuilder.New().
					WithCode(errbuilder.CodeNotFound).
					WithMsg("cannot read file: " + path).
					WithCause(err)
			}
			text = string(content)
		} else {
			text = tag.Text
			substRaw, err := b.resolve(sub, scope, tag.Attr("subst_value"))
			if err != nil {
				return err
			}
			if substRaw != "" {
				subst, err := coerceBool(substRaw)
				if err != nil {
					return err
				}
				if subst {
					if text, err = b.resolve(sub, scope, text); err != nil {
						return err
					}
				}
			}
		}
		return scope.stageRosparam(name, ns, text, condition, b.YAML)
	case "delete":
		return scope.deleteParameter(name, ns, condition)
	default:
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("unsupported rosparam command %q", command))
	}
}

// argTag binds an argument value.  Bindings must be unconditional: a guarded
// binding cannot be represented in the static argument table.
func (b *ConfigBuilder) argTag(tag *types.LaunchNode, condition types.Condition, scope *LaunchScope, sub ports.SubstitutionPort) error {
	if len(scope.conditions) > 0 || !condition.IsAlways() {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("cannot resolve conditional arg")
	}
	name := tag.Attr("name")
	if name == "" {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("arg tag is missing name")
	}
	if tag.HasAttr("value") {
		value, err := b.resolve(sub, scope, tag.Attr("value"))
		if err != nil {
			return err
		}
		scope.arguments[name] = value
		return nil
	}
	value, err := b.resolve(sub, scope, tag.Attr("default"))
	if err != nil {
		return err
	}
	if _, bound := scope.arguments[name]; !bound {
		scope.arguments[name] = value
	}
	return nil
}

// resolve evaluates a deferred expression in strict mode: a value that
// cannot be resolved outside a conditional context is a configuration error.
func (b *ConfigBuilder) resolve(sub ports.SubstitutionPort, scope *LaunchScope, expr string) (string, error) {
	if expr == "" {
		return "", nil
	}
	resolution, err := sub.Resolve(expr, scope.arguments, true)
	if err != nil {
		return "", err
	}
	if !resolution.Known {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("cannot resolve expression: " + expr)
	}
	return resolution.Value, nil
}

func (b *ConfigBuilder) recordError(ctx context.Context, tag *types.LaunchNode, err error) {
	message := fmt.Sprintf("%s: %s", tag.Location(), diagnostic(err))
	b.Errors = append(b.Errors, message)
	log.Ctx(ctx).Warn().Str("tag", string(tag.Kind)).Msg(message)
}

func diagnostic(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && strings.TrimSpace(builder.Msg) != "" {
		return builder.Msg
	}
	return err.Error()
}
