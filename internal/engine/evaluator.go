package engine

import (
	"regexp"

	"github.com/roach88/skuquery/internal/attr"
	"github.com/roach88/skuquery/internal/catalog"
	"github.com/roach88/skuquery/internal/query"
)

// predicate is one compiled operator.
type predicate struct {
	op      query.Operator
	operand attr.Value
	re      *regexp.Regexp
}

// fieldPlan resolves one field and folds its predicates over the value.
type fieldPlan struct {
	path  string
	preds []predicate
}

// plan is a compiled FilterGroup. Fields run in sorted order and operators
// in canonical order so evaluation short-circuits the same way every time.
type plan []fieldPlan

// compileFilter prepares g for evaluation. Text operands are NFC-normalized
// and textContains patterns are compiled case-insensitively. A textContains
// operand that is not text compiles to a predicate that never matches.
func compileFilter(g query.FilterGroup) (plan, error) {
	p := make(plan, 0, len(g))
	for _, field := range g.Fields() {
		cond := g[field]
		fp := fieldPlan{path: field, preds: make([]predicate, 0, len(cond))}
		for _, op := range cond.Operators() {
			pred := predicate{op: op, operand: attr.Normalize(cond[op])}
			if op == query.OpTextContains {
				if pattern, ok := pred.operand.(attr.Text); ok {
					re, err := regexp.Compile("(?i)" + string(pattern))
					if err != nil {
						return nil, query.NewPatternError(field, string(pattern), err)
					}
					pred.re = re
				}
			}
			fp.preds = append(fp.preds, pred)
		}
		p = append(p, fp)
	}
	return p, nil
}

// operators lists every (field, operator) pair in the plan.
func (p plan) operators() []query.Operator {
	var ops []query.Operator
	for _, fp := range p {
		for _, pred := range fp.preds {
			ops = append(ops, pred.op)
		}
	}
	return ops
}

// matches reports whether every predicate of every field holds for r.
func (p plan) matches(r catalog.Record) bool {
	for _, fp := range p {
		v := attr.Normalize(Resolve(r, fp.path))
		for _, pred := range fp.preds {
			if !pred.eval(v) {
				return false
			}
		}
	}
	return true
}

func (pred predicate) eval(v attr.Value) bool {
	switch pred.op {
	case query.OpEquals:
		return attr.Equal(v, pred.operand)
	case query.OpNotEquals:
		return !attr.Equal(v, pred.operand)
	case query.OpGreaterThan:
		return compareNumbers(v, pred.operand, func(c int) bool { return c > 0 })
	case query.OpGreaterThanOrEqual:
		return compareNumbers(v, pred.operand, func(c int) bool { return c >= 0 })
	case query.OpLessThan:
		return compareNumbers(v, pred.operand, func(c int) bool { return c < 0 })
	case query.OpLessThanOrEqual:
		return compareNumbers(v, pred.operand, func(c int) bool { return c <= 0 })
	case query.OpIn:
		list, ok := pred.operand.(attr.List)
		if !ok {
			return false
		}
		for _, elem := range list {
			if attr.Equal(v, elem) {
				return true
			}
		}
		return false
	case query.OpExists:
		want, ok := pred.operand.(attr.Bool)
		if !ok {
			return false
		}
		present := attr.KindOf(v) != attr.KindAbsent
		return present == bool(want)
	case query.OpTextContains:
		text, ok := v.(attr.Text)
		if !ok || pred.re == nil {
			return false
		}
		return pred.re.MatchString(string(text))
	default:
		return false
	}
}

// compareNumbers applies test to the ordering of v against operand. Any
// non-number on either side is a non-match.
func compareNumbers(v, operand attr.Value, test func(int) bool) bool {
	a, ok := v.(attr.Number)
	if !ok {
		return false
	}
	b, ok := operand.(attr.Number)
	if !ok {
		return false
	}
	switch {
	case a < b:
		return test(-1)
	case a > b:
		return test(1)
	default:
		return test(0)
	}
}
