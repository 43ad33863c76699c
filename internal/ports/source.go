package ports

import "launchgraph/internal/types"

// SourceIndexPort looks up static source entities during resolution.  A
// missing package is a hard error for the caller; a missing node template
// degrades to a synthesized placeholder.
type SourceIndexPort interface {
	NodeTemplate(pkg, executable string) (*types.NodeTemplate, bool)
	Package(name string) (*types.Package, bool)
	LaunchFile(path string) (*types.LaunchFile, bool)
}

// TreeParserPort turns a launch file on disk into a launch tree.  Tags the
// parser cannot understand become degraded error nodes, not parse failures.
type TreeParserPort interface {
	Parse(path string) (*types.LaunchNode, error)
}
