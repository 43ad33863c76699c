package types

import "sort"

// Configuration is the aggregate root of a resolved launch description: one
// entry per runtime entity, keyed by fully-qualified name, plus the
// dependency sets and source launch files that contributed to it.
type Configuration struct {
	Name        string
	Environment map[string]string

	Nodes      *Collection[*NodeInstance]
	Topics     *Collection[*Topic]
	Services   *Collection[*Service]
	Parameters *Collection[*Parameter]

	LaunchFiles  []*LaunchFile
	Dependencies DependencySet
}

func NewConfiguration(name string, environment map[string]string) *Configuration {
	return &Configuration{
		Name:        name,
		Environment: environment,
		Nodes:       NewCollection[*NodeInstance](),
		Topics:      NewCollection[*Topic](),
		Services:    NewCollection[*Service](),
		Parameters:  NewCollection[*Parameter](),
		Dependencies: DependencySet{
			Packages:    NewStringSet(),
			Environment: NewStringSet(),
		},
	}
}

// DependencySet records the packages and environment variables touched while
// resolving a configuration.
type DependencySet struct {
	Packages    *StringSet
	Environment *StringSet
}

// Resource is anything indexed by a Configuration collection.
type Resource interface {
	FullName() string
}

// Collection is a name-keyed, insertion-ordered set of resources.  A name
// maps to at most one resource; adding a duplicate replaces the previous
// entry in place and returns it.
type Collection[T Resource] struct {
	byName map[string]T
	order  []string
}

func NewCollection[T Resource]() *Collection[T] {
	return &Collection[T]{byName: map[string]T{}}
}

func (c *Collection[T]) Get(name string) (T, bool) {
	resource, ok := c.byName[name]
	return resource, ok
}

// Add inserts a resource under its full name.  The previous resource under
// that name is returned, with ok reporting whether one existed.
func (c *Collection[T]) Add(resource T) (T, bool) {
	name := resource.FullName()
	previous, existed := c.byName[name]
	if !existed {
		c.order = append(c.order, name)
	}
	c.byName[name] = resource
	return previous, existed
}

func (c *Collection[T]) Remove(name string) bool {
	if _, ok := c.byName[name]; !ok {
		return false
	}
	delete(c.byName, name)
	for i, existing := range c.order {
		if existing == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Items returns the resources in insertion order.
func (c *Collection[T]) Items() []T {
	items := make([]T, 0, len(c.order))
	for _, name := range c.order {
		items = append(items, c.byName[name])
	}
	return items
}

func (c *Collection[T]) Len() int {
	return len(c.byName)
}

// StringSet is a deduplicated string collection with sorted read-back.
type StringSet struct {
	values map[string]struct{}
}

func NewStringSet() *StringSet {
	return &StringSet{values: map[string]struct{}{}}
}

func (s *StringSet) Add(value string) {
	if value == "" {
		return
	}
	s.values[value] = struct{}{}
}

func (s *StringSet) Has(value string) bool {
	_, ok := s.values[value]
	return ok
}

func (s *StringSet) Sorted() []string {
	out := make([]string, 0, len(s.values))
	for value := range s.values {
		out = append(out, value)
	}
	sort.Strings(out)
	return out
}

func (s *StringSet) Len() int {
	return len(s.values)
}

// Package is a source package known to the source index.
type Package struct {
	Name string
	Path string
}

// LaunchFile is a parsed launch description on disk.
type LaunchFile struct {
	Path string
	Dir  string
	Tree *LaunchNode
}

// CallSite is one communication call recorded on a node template: the name
// and type used at the call, plus any conditions the extraction attached.
type CallSite struct {
	Name       string      `yaml:"name"`
	Namespace  string      `yaml:"namespace,omitempty"`
	Type       string      `yaml:"type"`
	QueueSize  int         `yaml:"queue_size,omitempty"`
	Conditions []Condition `yaml:"conditions,omitempty"`
}

// NodeTemplate is the static executable/package pair a node instance runs.
// Placeholder templates are synthesized when the pair is not in the source
// index, so analysis can continue with reduced precision.
type NodeTemplate struct {
	Name        string
	Package     *Package
	Nodelet     string
	Placeholder bool

	Advertise []CallSite
	Subscribe []CallSite
	Service   []CallSite
	Client    []CallSite

	Instances []*NodeInstance
}

// DefaultOwnName is the instance name used when a node tag has no explicit
// name attribute.
func (t *NodeTemplate) DefaultOwnName() string {
	return t.Name
}

// NodeInstance is one runtime instance of a node template.
type NodeInstance struct {
	Name       RosName
	Template   *NodeTemplate
	LaunchFile *LaunchFile
	Args       string
	Remaps     map[string]string
	Conditions []Condition

	Publishers  []*TopicLink
	Subscribers []*TopicLink
	Servers     []*ServiceLink
	Clients     []*ServiceLink
}

func (n *NodeInstance) FullName() string {
	return n.Name.Full
}

// Topic is a message endpoint, created lazily the first time any node
// references its resolved name.  Its condition list is recomputed from its
// links whenever one is attached.
type Topic struct {
	Name       RosName
	Type       string
	Conditions []Condition

	Publishers  []*TopicLink
	Subscribers []*TopicLink
}

func (t *Topic) FullName() string {
	return t.Name.Full
}

// Service is a request/reply endpoint.  At most one server link is kept.
type Service struct {
	Name       RosName
	Type       string
	Conditions []Condition

	Server  *ServiceLink
	Clients []*ServiceLink
}

func (s *Service) FullName() string {
	return s.Name.Full
}

// TopicLink connects one node instance to one topic at one call site.
type TopicLink struct {
	Node  *NodeInstance
	Topic *Topic
	Type  string

	// GivenName is the call-site name resolved without remaps.
	GivenName  RosName
	QueueSize  int
	Conditions []Condition
}

// ServiceLink connects one node instance to one service at one call site.
type ServiceLink struct {
	Node    *NodeInstance
	Service *Service
	Type    string

	GivenName  RosName
	Conditions []Condition
}

// Parameter is a resolved parameter value.  NodeScope marks parameters that
// are private to one node instance.
type Parameter struct {
	Name       RosName
	Type       string
	Value      any
	NodeScope  bool
	Conditions []Condition
}

func (p *Parameter) FullName() string {
	return p.Name.Full
}
