package ports

// Resolution is the outcome of evaluating a deferred expression.  Known is
// false when the expression touched a value that is not available at
// analysis time (an unset argument or environment variable); that outcome is
// legal in conditional contexts and feeds the symbolic-condition path.
// Invalid expressions are reported through the error return instead, never
// through Resolution.
type Resolution struct {
	Known bool
	Value string
}

func Resolved(value string) Resolution {
	return Resolution{Known: true, Value: value}
}

func Unresolved() Resolution {
	return Resolution{}
}

// SubstitutionPort evaluates deferred launch expressions against an
// environment: argument bindings, OS environment, and package locations.
// Implementations record every package and environment variable they touch
// into the configuration's dependency sets as a side effect.
type SubstitutionPort interface {
	// Resolve evaluates expr with the given argument bindings.  In strict
	// mode an unresolvable expression is an error; otherwise it yields an
	// unknown Resolution.
	Resolve(expr string, args map[string]string, strict bool) (Resolution, error)

	// ForFile returns an evaluator rooted at another launch file's
	// directory, sharing the environment and dependency sets.  Used when
	// recursing into an included file.
	ForFile(dir string) SubstitutionPort
}
