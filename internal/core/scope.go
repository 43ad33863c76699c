package core

import (
	"context"
	"fmt"
	"strings"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"

	"launchgraph/internal/ports"
	"launchgraph/internal/types"
)

// paramArena holds the parameters staged during one launch walk.  Every
// scope borrows the same arena; nothing is committed to the configuration's
// parameter collection until the whole file has been walked, so later tags
// can still redefine or delete earlier entries.
type paramArena struct {
	staged []*types.Parameter
}

func (a *paramArena) commit(param *types.Parameter) {
	a.staged = append(a.staged, param)
}

func (a *paramArena) remove(name string) bool {
	removed := false
	kept := a.staged[:0]
	for _, param := range a.staged {
		if param.Name.Full == name {
			removed = true
			continue
		}
		kept = append(kept, param)
	}
	a.staged = kept
	return removed
}

// LaunchScope is one node of the scope tree mirroring the launch tree's
// nesting.  It carries the inherited namespace, remap table, argument
// bindings and active conditions, plus the pending-private parameters that
// wait for an owning node.
type LaunchScope struct {
	parent     *LaunchScope
	config     *types.Configuration
	launchFile *types.LaunchFile
	namespace  string
	node       *types.NodeInstance
	remaps     map[string]string
	arguments  map[string]string
	conditions []types.Condition
	arena      *paramArena

	// pending holds bare "~name" parameters declared outside any node
	// scope.  They are re-homed under the next node entered in this scope.
	pending []*types.Parameter
}

func newRootScope(config *types.Configuration, launch *types.LaunchFile, args map[string]string, arena *paramArena) *LaunchScope {
	if args == nil {
		args = map[string]string{}
	}
	return &LaunchScope{
		config:     config,
		launchFile: launch,
		namespace:  "/",
		remaps:     map[string]string{},
		arguments:  args,
		arena:      arena,
	}
}

// privateNS is the namespace private names resolve against: the owning
// node's full name inside a node scope, the current namespace otherwise.
func (s *LaunchScope) privateNS() string {
	if s.node != nil {
		return s.node.Name.Full
	}
	return s.namespace
}

func (s *LaunchScope) resolveNamespace(ns string) string {
	if ns == "" {
		return s.namespace
	}
	if ns == "~" {
		return s.privateNS()
	}
	return types.ResolveName(ns, s.namespace, s.privateNS())
}

// fork produces a child scope for a group or include.  The remap table is
// copied so later remaps in the child stay invisible to siblings; the
// condition list is copied and extended with the forking condition; the
// argument table is replaced when the caller supplies one.
func (s *LaunchScope) fork(ns string, condition types.Condition, launch *types.LaunchFile, args map[string]string) *LaunchScope {
	if launch == nil {
		launch = s.launchFile
	}
	if args == nil {
		args = s.arguments
	}
	child := &LaunchScope{
		parent:     s,
		config:     s.config,
		launchFile: launch,
		namespace:  s.resolveNamespace(ns),
		remaps:     copyRemaps(s.remaps),
		arguments:  args,
		conditions: types.CopyConditions(s.conditions),
		arena:      s.arena,
		pending:    append([]*types.Parameter(nil), s.pending...),
	}
	if !condition.IsAlways() {
		child.conditions = append(child.conditions, condition)
	}
	return child
}

// declareRemap resolves both names against the current scope and records the
// mapping for subsequent lookups in this scope and its descendants.
func (s *LaunchScope) declareRemap(source, target string) {
	pns := s.privateNS()
	from := types.ResolveName(source, s.namespace, pns)
	to := types.ResolveName(target, s.namespace, pns)
	s.remaps[from] = to
}

// enterNode registers a node instance and opens its scope.  The returned
// previous instance is non-nil when another node already resolved to the
// same name; the caller decides how to surface that.  Parameters pending in
// this scope are re-homed under the new node's private namespace.
func (s *LaunchScope) enterNode(template *types.NodeTemplate, name, ns, args string, condition types.Condition) (*types.NodeInstance, *LaunchScope, *types.NodeInstance) {
	namespace := s.resolveNamespace(ns)
	if name == "" {
		name = template.DefaultOwnName()
	}
	instance := &types.NodeInstance{
		Name:       types.NewRosName(name, namespace, s.privateNS(), nil),
		Template:   template,
		LaunchFile: s.launchFile,
		Args:       args,
		Remaps:     copyRemaps(s.remaps),
		Conditions: types.CopyConditions(s.conditions),
	}
	if !condition.IsAlways() {
		instance.Conditions = append(instance.Conditions, condition)
	}
	template.Instances = append(template.Instances, instance)
	previous, existed := s.config.Nodes.Add(instance)

	// The node scope shares the instance's remap table: remaps declared
	// inside the node tag belong to the instance.
	child := &LaunchScope{
		parent:     s,
		config:     s.config,
		launchFile: s.launchFile,
		namespace:  namespace,
		node:       instance,
		remaps:     instance.Remaps,
		arguments:  s.arguments,
		conditions: instance.Conditions,
		arena:      s.arena,
	}
	pns := child.privateNS()
	for _, param := range s.pending {
		conditions := append(types.CopyConditions(param.Conditions), instance.Conditions...)
		s.arena.commit(&types.Parameter{
			Name:       types.NewRosName(param.Name.Given, pns, pns, nil),
			Type:       param.Type,
			Value:      param.Value,
			NodeScope:  param.NodeScope,
			Conditions: conditions,
		})
	}
	if !existed {
		previous = nil
	}
	return instance, child, previous
}

// stageParameter coerces and stages one parameter.  raw is nil when the tag
// had no resolvable value source (binfile or command); the parameter is then
// recorded with its value intentionally left unresolved.
func (s *LaunchScope) stageParameter(name, ptype string, raw *string, condition types.Condition, yaml ports.YAMLPort) error {
	var value any
	finalType := ptype
	if raw != nil {
		converted, inferred, err := coerceValue(*raw, ptype, yaml)
		if err != nil {
			return err
		}
		value = converted
		finalType = inferred
	}
	conditions := types.CopyConditions(s.conditions)
	if !condition.IsAlways() {
		conditions = append(conditions, condition)
	}
	if _, isMapping := asMapping(value); isMapping || finalType == "yaml" {
		s.stageFlattened(name, value, conditions, true)
		return nil
	}
	pns := s.privateNS()
	rosname := types.NewRosName(name, pns, pns, nil)
	param := &types.Parameter{
		Name:       rosname,
		Type:       finalType,
		Value:      value,
		NodeScope:  s.node != nil,
		Conditions: conditions,
	}
	if s.node == nil && rosname.IsPrivate() {
		s.pending = append(s.pending, param)
		return nil
	}
	s.arena.commit(param)
	return nil
}

// stageRosparam parses a YAML document and stages its flattened leaves.
func (s *LaunchScope) stageRosparam(name, ns, text string, condition types.Condition, yaml ports.YAMLPort) error {
	value, err := yaml.Decode(text)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("invalid rosparam yaml").
			WithCause(err)
	}
	pns := s.privateNS()
	if ns == "" {
		ns = pns
	}
	ns = types.NsJoin(ns, pns)
	if name != "" {
		name = types.NsJoin(name, ns)
	} else {
		if _, isMapping := asMapping(value); !isMapping {
			return errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("rosparam requires a name for non-dictionary values")
		}
		// Mappings unfold, so the namespace stands in for a name.
		name = ns
	}
	conditions := types.CopyConditions(s.conditions)
	if !condition.IsAlways() {
		conditions = append(conditions, condition)
	}
	s.stageFlattened(name, value, conditions, false)
	return nil
}

func (s *LaunchScope) stageFlattened(name string, value any, conditions []types.Condition, private bool) {
	private = private && strings.HasPrefix(name, "~")
	pns := s.privateNS()
	nodeScope := s.node != nil
	for _, leaf := range flattenValue(name, value) {
		var rosname types.RosName
		if leaf.independent && strings.HasPrefix(leaf.name, "~") {
			rosname = types.NewRosName(leaf.name, "/roslaunch", "/roslaunch", nil)
		} else {
			rosname = types.NewRosName(leaf.name, pns, pns, nil)
		}
		param := &types.Parameter{
			Name:       rosname,
			Type:       typeOf(leaf.value),
			Value:      leaf.value,
			NodeScope:  nodeScope,
			Conditions: conditions,
		}
		if leaf.independent || !private {
			s.arena.commit(param)
		} else {
			s.pending = append(s.pending, param)
		}
	}
}

// deleteParameter removes a previously staged or committed parameter.  The
// deletion only applies when no conditional guard is active anywhere in the
// ancestor chain; a guarded delete is a no-op because it is not safe to
// retroactively unapply committed state.
func (s *LaunchScope) deleteParameter(name, ns string, condition types.Condition) error {
	pns := s.privateNS()
	if ns == "" {
		ns = pns
	}
	ns = types.NsJoin(ns, pns)
	full := types.ResolveName(name, ns, "/rosparam")
	_, known := s.config.Parameters.Get(full)
	if !known && !s.arenaHas(full) {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("missing parameter: %s", full))
	}
	if !condition.IsAlways() || len(s.conditions) > 0 {
		return nil
	}
	s.arena.remove(full)
	s.config.Parameters.Remove(full)
	return nil
}

func (s *LaunchScope) arenaHas(name string) bool {
	for _, param := range s.arena.staged {
		if param.Name.Full == name {
			return true
		}
	}
	return false
}

// materializeTopics resolves every topic call site on the owning node's
// template into links, consulting hints before creating new topics.
func (s *LaunchScope) materializeTopics(ctx context.Context, hints map[string]*types.Topic) {
	node := s.node
	assert.NotEmpty(ctx, node.Name.Full, "topic links require a node scope")
	pns := s.privateNS()
	for _, call := range node.Template.Advertise {
		link := s.makeTopicLink(call, pns, hints)
		node.Publishers = append(node.Publishers, link)
		link.Topic.Publishers = append(link.Topic.Publishers, link)
		recomputeTopicConditions(link.Topic)
	}
	for _, call := range node.Template.Subscribe {
		link := s.makeTopicLink(call, pns, hints)
		node.Subscribers = append(node.Subscribers, link)
		link.Topic.Subscribers = append(link.Topic.Subscribers, link)
		recomputeTopicConditions(link.Topic)
	}
}

// materializeServices resolves every service call site on the owning node's
// template into links.
func (s *LaunchScope) materializeServices(ctx context.Context, hints map[string]*types.Service) {
	node := s.node
	assert.NotEmpty(ctx, node.Name.Full, "service links require a node scope")
	pns := s.privateNS()
	for _, call := range node.Template.Service {
		link := s.makeServiceLink(call, pns, hints)
		node.Servers = append(node.Servers, link)
		link.Service.Server = link
		recomputeServiceConditions(link.Service)
	}
	for _, call := range node.Template.Client {
		link := s.makeServiceLink(call, pns, hints)
		node.Clients = append(node.Clients, link)
		link.Service.Clients = append(link.Service.Clients, link)
		recomputeServiceConditions(link.Service)
	}
}

func (s *LaunchScope) makeTopicLink(call types.CallSite, pns string, hints map[string]*types.Topic) *types.TopicLink {
	rosname := types.NewRosName(call.Name, s.resolveNamespace(call.Namespace), pns, s.node.Remaps)
	topic := lookupTopic(rosname.Full, call.Type, s.config.Topics, hints)
	if topic == nil {
		topic = &types.Topic{Name: rosname, Type: call.Type}
	}
	if _, ok := s.config.Topics.Get(topic.Name.Full); !ok {
		s.config.Topics.Add(topic)
	}
	givenNS := call.Namespace
	if givenNS == "" {
		givenNS = s.namespace
	}
	return &types.TopicLink{
		Node:       s.node,
		Topic:      topic,
		Type:       call.Type,
		GivenName:  types.NewRosName(call.Name, givenNS, pns, nil),
		QueueSize:  call.QueueSize,
		Conditions: types.CopyConditions(call.Conditions),
	}
}

func (s *LaunchScope) makeServiceLink(call types.CallSite, pns string, hints map[string]*types.Service) *types.ServiceLink {
	rosname := types.NewRosName(call.Name, s.resolveNamespace(call.Namespace), pns, s.node.Remaps)
	service := lookupService(rosname.Full, call.Type, s.config.Services, hints)
	if service == nil {
		service = &types.Service{Name: rosname, Type: call.Type}
	}
	if _, ok := s.config.Services.Get(service.Name.Full); !ok {
		s.config.Services.Add(service)
	}
	givenNS := call.Namespace
	if givenNS == "" {
		givenNS = s.namespace
	}
	return &types.ServiceLink{
		Node:       s.node,
		Service:    service,
		Type:       call.Type,
		GivenName:  types.NewRosName(call.Name, givenNS, pns, nil),
		Conditions: types.CopyConditions(call.Conditions),
	}
}

// recomputeTopicConditions rebuilds a topic's condition list from its links.
// The first link whose node carries no conditions wins outright: an
// unconditionally-present attachment makes the topic's presence exactly that
// link's own condition.  Otherwise every attachment contributes its node and
// link conditions in order.  This short-circuit is a deliberate
// over-approximation; downstream consumers depend on the list's content and
// iteration order, so it must not be replaced with a boolean formula.
func recomputeTopicConditions(topic *types.Topic) {
	var conditions []types.Condition
	for _, link := range append(append([]*types.TopicLink(nil), topic.Publishers...), topic.Subscribers...) {
		if len(link.Node.Conditions) == 0 {
			topic.Conditions = types.CopyConditions(link.Conditions)
			return
		}
		conditions = append(conditions, link.Node.Conditions...)
		conditions = append(conditions, link.Conditions...)
	}
	topic.Conditions = conditions
}

// recomputeServiceConditions is the service analogue: server first, then
// clients, same short-circuit.
func recomputeServiceConditions(service *types.Service) {
	var links []*types.ServiceLink
	if service.Server != nil {
		links = append(links, service.Server)
	}
	links = append(links, service.Clients...)
	var conditions []types.Condition
	for _, link := range links {
		if len(link.Node.Conditions) == 0 {
			service.Conditions = types.CopyConditions(link.Conditions)
			return
		}
		conditions = append(conditions, link.Node.Conditions...)
		conditions = append(conditions, link.Conditions...)
	}
	service.Conditions = conditions
}

func copyRemaps(remaps map[string]string) map[string]string {
	copied := make(map[string]string, len(remaps))
	for source, target := range remaps {
		copied[source] = target
	}
	return copied
}
