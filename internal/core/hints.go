package core

import (
	"regexp"
	"sort"
	"strings"

	"launchgraph/internal/types"
)

// commHints holds the endpoint entities pre-seeded from a node's hints,
// keyed by fully-qualified name.  Hints are taken as true: the entities are
// created as soon as a matching node is found, so the call-site extraction
// can reconcile against them, and any hint that ends up with no link gets
// one created afterwards.
type commHints struct {
	advertise map[string]*types.Topic
	subscribe map[string]*types.Topic
	service   map[string]*types.Service
	client    map[string]*types.Service
}

func (h commHints) topics() map[string]*types.Topic {
	merged := make(map[string]*types.Topic, len(h.advertise)+len(h.subscribe))
	for name, topic := range h.advertise {
		merged[name] = topic
	}
	for name, topic := range h.subscribe {
		merged[name] = topic
	}
	return merged
}

func (h commHints) services() map[string]*types.Service {
	merged := make(map[string]*types.Service, len(h.service)+len(h.client))
	for name, service := range h.service {
		merged[name] = service
	}
	for name, service := range h.client {
		merged[name] = service
	}
	return merged
}

// buildCommHints resolves a node's hint patterns against its scope and
// instantiates the expected endpoints.
func buildCommHints(scope *LaunchScope, hints types.NodeHints) commHints {
	built := commHints{
		advertise: map[string]*types.Topic{},
		subscribe: map[string]*types.Topic{},
		service:   map[string]*types.Service{},
		client:    map[string]*types.Service{},
	}
	for name, hintType := range hints.Advertise {
		topic := hintTopic(scope, name, hintType)
		built.advertise[topic.Name.Full] = topic
	}
	for name, hintType := range hints.Subscribe {
		topic := hintTopic(scope, name, hintType)
		built.subscribe[topic.Name.Full] = topic
	}
	for name, hintType := range hints.Service {
		service := hintService(scope, name, hintType)
		built.service[service.Name.Full] = service
	}
	for name, hintType := range hints.Client {
		service := hintService(scope, name, hintType)
		built.client[service.Name.Full] = service
	}
	return built
}

func hintTopic(scope *LaunchScope, name, hintType string) *types.Topic {
	return &types.Topic{Name: hintName(scope, name), Type: hintType}
}

func hintService(scope *LaunchScope, name, hintType string) *types.Service {
	return &types.Service{Name: hintName(scope, name), Type: hintType}
}

func hintName(scope *LaunchScope, name string) types.RosName {
	ns := "/"
	own := name
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		ns = name[:idx]
		own = name[idx+1:]
		if ns == "" {
			ns = "/"
		}
	}
	pns := scope.privateNS()
	return types.NewRosName(own, scope.resolveNamespace(ns), pns, scope.node.Remaps)
}

// linkRemainingHints creates the links for hints the extraction did not
// reach, so every hinted endpoint ends up attached to its node.
func (s *LaunchScope) linkRemainingHints(hints commHints) {
	node := s.node
	for _, name := range sortedKeys(hints.advertise) {
		topic := hints.advertise[name]
		if topicLinked(node.Publishers, topic) {
			continue
		}
		link := s.hintTopicLink(topic)
		node.Publishers = append(node.Publishers, link)
		topic.Publishers = append(topic.Publishers, link)
		recomputeTopicConditions(topic)
	}
	for _, name := range sortedKeys(hints.subscribe) {
		topic := hints.subscribe[name]
		if topicLinked(node.Subscribers, topic) {
			continue
		}
		link := s.hintTopicLink(topic)
		node.Subscribers = append(node.Subscribers, link)
		topic.Subscribers = append(topic.Subscribers, link)
		recomputeTopicConditions(topic)
	}
	for _, name := range sortedKeys(hints.service) {
		service := hints.service[name]
		if serviceLinked(node.Servers, service) {
			continue
		}
		link := s.hintServiceLink(service)
		node.Servers = append(node.Servers, link)
		service.Server = link
		recomputeServiceConditions(service)
	}
	for _, name := range sortedKeys(hints.client) {
		service := hints.client[name]
		if serviceLinked(node.Clients, service) {
			continue
		}
		link := s.hintServiceLink(service)
		node.Clients = append(node.Clients, link)
		service.Clients = append(service.Clients, link)
		recomputeServiceConditions(service)
	}
}

func (s *LaunchScope) hintTopicLink(topic *types.Topic) *types.TopicLink {
	if _, ok := s.config.Topics.Get(topic.Name.Full); !ok {
		s.config.Topics.Add(topic)
	}
	return &types.TopicLink{
		Node:      s.node,
		Topic:     topic,
		Type:      topic.Type,
		GivenName: topic.Name,
	}
}

func (s *LaunchScope) hintServiceLink(service *types.Service) *types.ServiceLink {
	if _, ok := s.config.Services.Get(service.Name.Full); !ok {
		s.config.Services.Add(service)
	}
	return &types.ServiceLink{
		Node:      s.node,
		Service:   service,
		Type:      service.Type,
		GivenName: service.Name,
	}
}

func topicLinked(links []*types.TopicLink, topic *types.Topic) bool {
	for _, link := range links {
		if link.Topic == topic {
			return true
		}
	}
	return false
}

func serviceLinked(links []*types.ServiceLink, service *types.Service) bool {
	for _, link := range links {
		if link.Service == service {
			return true
		}
	}
	return false
}

// lookupTopic reconciles a call-site name against hints and already-created
// topics: literal equality first, then wildcard pattern matching where a
// type-matched candidate always wins and a type-mismatched match is kept as
// a fallback.  Returns nil when a new topic should be created.
func lookupTopic(name, callType string, collection *types.Collection[*types.Topic], hints map[string]*types.Topic) *types.Topic {
	if topic, ok := hints[name]; ok {
		return topic
	}
	if topic, ok := collection.Get(name); ok {
		return topic
	}
	if !strings.Contains(name, "?") {
		return nil
	}
	pattern := compileWildcard(name)
	var candidate *types.Topic
	for _, key := range sortedKeys(hints) {
		topic := hints[key]
		if !pattern.MatchString(topic.Name.Full) {
			continue
		}
		if topic.Type == callType {
			return topic
		}
		if candidate == nil {
			candidate = topic
		}
	}
	for _, topic := range collection.Items() {
		if !pattern.MatchString(topic.Name.Full) {
			continue
		}
		if topic.Type == callType {
			return topic
		}
		if candidate == nil {
			candidate = topic
		}
	}
	return candidate
}

// lookupService is the service analogue of lookupTopic.
func lookupService(name, callType string, collection *types.Collection[*types.Service], hints map[string]*types.Service) *types.Service {
	if service, ok := hints[name]; ok {
		return service
	}
	if service, ok := collection.Get(name); ok {
		return service
	}
	if !strings.Contains(name, "?") {
		return nil
	}
	pattern := compileWildcard(name)
	var candidate *types.Service
	for _, key := range sortedKeys(hints) {
		service := hints[key]
		if !pattern.MatchString(service.Name.Full) {
			continue
		}
		if service.Type == callType {
			return service
		}
		if candidate == nil {
			candidate = service
		}
	}
	for _, service := range collection.Items() {
		if !pattern.MatchString(service.Name.Full) {
			continue
		}
		if service.Type == callType {
			return service
		}
		if candidate == nil {
			candidate = service
		}
	}
	return candidate
}

// compileWildcard turns a hint pattern into a regexp; "?" stands for one or
// more path segments.
func compileWildcard(name string) *regexp.Regexp {
	parts := strings.Split(name, "?")
	for i, part := range parts {
		parts[i] = regexp.QuoteMeta(part)
	}
	return regexp.MustCompile("^" + strings.Join(parts, "(?:.+?)") + "$")
}

func sortedKeys[T any](values map[string]T) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
