package query

import "strings"

// Operator names one comparison in a Condition.
type Operator string

const (
	OpEquals             Operator = "equals"
	OpNotEquals          Operator = "notEquals"
	OpGreaterThan        Operator = "greaterThan"
	OpGreaterThanOrEqual Operator = "greaterThanOrEqual"
	OpLessThan           Operator = "lessThan"
	OpLessThanOrEqual    Operator = "lessThanOrEqual"
	OpIn                 Operator = "in"
	OpExists             Operator = "exists"
	OpTextContains       Operator = "textContains"
)

// operators lists every operator in evaluation and display order.
var operators = []Operator{
	OpEquals, OpNotEquals,
	OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual,
	OpIn, OpExists, OpTextContains,
}

var legacyNames = map[string]Operator{
	"$eq":     OpEquals,
	"$ne":     OpNotEquals,
	"$gt":     OpGreaterThan,
	"$gte":    OpGreaterThanOrEqual,
	"$lt":     OpLessThan,
	"$lte":    OpLessThanOrEqual,
	"$in":     OpIn,
	"$exists": OpExists,
	"$regex":  OpTextContains,
}

// Operators returns all operators in canonical order.
func Operators() []Operator {
	out := make([]Operator, len(operators))
	copy(out, operators)
	return out
}

// ParseOperator resolves a canonical or "$"-prefixed operator name.
func ParseOperator(name string) (Operator, bool) {
	if strings.HasPrefix(name, "$") {
		op, ok := legacyNames[name]
		return op, ok
	}
	op := Operator(name)
	return op, op.Valid()
}

// Valid reports whether o is a canonical operator name.
func (o Operator) Valid() bool {
	return o.rank() >= 0
}

// IsOrdering reports whether o is one of the four numeric comparisons.
func (o Operator) IsOrdering() bool {
	switch o {
	case OpGreaterThan, OpGreaterThanOrEqual, OpLessThan, OpLessThanOrEqual:
		return true
	}
	return false
}

// Legacy returns the "$"-prefixed spelling of o.
func (o Operator) Legacy() string {
	for name, op := range legacyNames {
		if op == o {
			return name
		}
	}
	return ""
}

func (o Operator) rank() int {
	for i, op := range operators {
		if op == o {
			return i
		}
	}
	return -1
}
