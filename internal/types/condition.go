package types

// ConditionKind classifies a presence condition.
type ConditionKind string

const (
	// ConditionAlways marks a branch as definitely included.
	ConditionAlways ConditionKind = "always"

	// ConditionNever marks a branch as definitely excluded.
	ConditionNever ConditionKind = "never"

	// ConditionSymbolic marks a branch whose guard could not be resolved
	// during analysis.  The branch is resolved assuming inclusion and the
	// condition is preserved as data on every entity it produces.
	ConditionSymbolic ConditionKind = "symbolic"
)

// Condition is a three-valued presence guard.  A list of conditions on an
// entity means the entity exists iff the conjunction evaluates true; an
// empty list means unconditional.
type Condition struct {
	Kind ConditionKind `yaml:"kind"`

	// Expression is the original unresolved guard, set for symbolic
	// conditions only.
	Expression string `yaml:"expression,omitempty"`

	// Location points at the launch file position the guard came from.
	Location string `yaml:"location,omitempty"`
}

func AlwaysCondition() Condition {
	return Condition{Kind: ConditionAlways}
}

func NeverCondition() Condition {
	return Condition{Kind: ConditionNever}
}

func SymbolicCondition(expression, location string) Condition {
	return Condition{Kind: ConditionSymbolic, Expression: expression, Location: location}
}

func (c Condition) IsAlways() bool {
	return c.Kind == ConditionAlways
}

func (c Condition) IsNever() bool {
	return c.Kind == ConditionNever
}

// CopyConditions returns an independent copy of a condition list, so child
// scopes can extend it without leaking into siblings.
func CopyConditions(conditions []Condition) []Condition {
	if len(conditions) == 0 {
		return nil
	}
	return append([]Condition(nil), conditions...)
}
