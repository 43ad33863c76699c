package types

import "strings"

// RosName is a fully-qualified graph name together with the parts it was
// derived from.  Two RosNames denote the same entity iff their Full strings
// are equal.
type RosName struct {
	// Given is the name as written at the declaration site, before any
	// namespace resolution or remapping.
	Given string

	// Namespace is the namespace the name was resolved against.
	Namespace string

	// Full is the fully-qualified name, after remaps.
	Full string
}

// NewRosName resolves a given name against a namespace and private namespace
// and applies the remap table to the resolved result.
func NewRosName(given, ns, privateNS string, remaps map[string]string) RosName {
	full := ResolveName(given, ns, privateNS)
	if target, ok := remaps[full]; ok {
		full = target
	}
	return RosName{Given: given, Namespace: ns, Full: full}
}

// ResolveName turns a name into its fully-qualified form.  Global names are
// kept as-is, private names resolve against the private namespace, and
// relative names resolve against the current namespace.
func ResolveName(name, ns, privateNS string) string {
	if name == "" {
		return normalizeNamespace(ns)
	}
	if strings.HasPrefix(name, "/") {
		return name
	}
	if strings.HasPrefix(name, "~") {
		return NsJoin(strings.TrimPrefix(name, "~"), normalizeNamespace(privateNS))
	}
	return NsJoin(name, normalizeNamespace(ns))
}

// NsJoin joins a name onto a namespace without resolving private or global
// markers, mimicking ROS behaviour.
func NsJoin(name, ns string) string {
	if strings.HasPrefix(name, "~") || strings.HasPrefix(name, "/") {
		return name
	}
	if ns == "~" {
		return "~" + name
	}
	if ns == "" {
		return name
	}
	if strings.HasSuffix(ns, "/") {
		return ns + name
	}
	return ns + "/" + name
}

// IsPrivate reports whether the name was written with the private marker.
func (n RosName) IsPrivate() bool {
	return strings.HasPrefix(n.Given, "~")
}

// Own is the last segment of the fully-qualified name.
func (n RosName) Own() string {
	if idx := strings.LastIndex(n.Full, "/"); idx >= 0 {
		return n.Full[idx+1:]
	}
	return n.Full
}

func normalizeNamespace(ns string) string {
	if ns == "" {
		return "/"
	}
	return ns
}
