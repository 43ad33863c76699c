package types

import "fmt"

// TagKind identifies a launch tree node.  The set is closed: the parser maps
// anything it does not understand to TagError, so dispatch over TagKind never
// meets an unknown launch construct, only an unknown enum value, which is an
// internal defect.
type TagKind string

const (
	TagLaunch   TagKind = "launch"
	TagNode     TagKind = "node"
	TagInclude  TagKind = "include"
	TagGroup    TagKind = "group"
	TagRemap    TagKind = "remap"
	TagParam    TagKind = "param"
	TagRosparam TagKind = "rosparam"
	TagArg      TagKind = "arg"
	TagEnv      TagKind = "env"
	TagMachine  TagKind = "machine"
	TagTest     TagKind = "test"

	// TagError is a degraded node carrying a parser diagnostic in Text
	// instead of semantics.
	TagError TagKind = "error"
)

// TagCondition is the raw conditional attribute of a tag: the tag is included
// when Expression resolves to a boolean equal to Polarity ("if" carries true,
// "unless" carries false).
type TagCondition struct {
	Polarity   bool
	Expression string
}

// LaunchNode is one node of a parsed, not-yet-resolved launch tree.
// Attribute values are deferred expressions; nothing is resolved until the
// tree is walked against a scope.
type LaunchNode struct {
	Kind       TagKind
	Attributes map[string]string
	Text       string
	Condition  *TagCondition
	Children   []*LaunchNode

	File string
	Line int
}

// Attr returns the raw attribute value, or "" when absent.
func (n *LaunchNode) Attr(name string) string {
	return n.Attributes[name]
}

// HasAttr reports whether the attribute was present in the source, which is
// distinct from it being empty.
func (n *LaunchNode) HasAttr(name string) bool {
	_, ok := n.Attributes[name]
	return ok
}

// Location renders the node's source position for diagnostics and symbolic
// conditions.
func (n *LaunchNode) Location() string {
	if n.File == "" {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", n.File, n.Line)
}
