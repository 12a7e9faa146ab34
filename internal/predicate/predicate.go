// Package predicate implements composable filters as an explicit expression
// tree: And / Or / Not nodes over Atom leaves. A tree can be evaluated
// in-memory against a candidate record or translated to a parameterized SQL
// WHERE clause — the two interpreters are independent, so repositories pick
// whichever fits their backend.
package predicate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownField reports an atom naming a field outside the caller's
// whitelist (ToSQL) or candidate map (Eval).
var ErrUnknownField = errors.New("predicate: unknown field")

// Comparison operators accepted by Atom.
const (
	OpEq       = "eq"
	OpNe       = "ne"
	OpGt       = "gt"
	OpGte      = "gte"
	OpLt       = "lt"
	OpLte      = "lte"
	OpContains = "contains"
)

// Node kinds.
const (
	kindAnd  = "and"
	kindOr   = "or"
	kindNot  = "not"
	kindAtom = "atom"
)

// MaxDepth bounds tree depth for predicates arriving over the wire.
const MaxDepth = 10

// Predicate is one node of the expression tree. Exactly one shape is
// populated per node, discriminated by kind.
type Predicate struct {
	kind string

	// and / or
	left  *Predicate
	right *Predicate

	// not
	inner *Predicate

	// atom
	field string
	op    string
	value any
}

func And(l, r Predicate) Predicate {
	return Predicate{kind: kindAnd, left: &l, right: &r}
}

func Or(l, r Predicate) Predicate {
	return Predicate{kind: kindOr, left: &l, right: &r}
}

func Not(p Predicate) Predicate {
	return Predicate{kind: kindNot, inner: &p}
}

// Atom is a single field comparison. value may be a string, bool, number,
// or decimal.Decimal.
func Atom(field, op string, value any) Predicate {
	return Predicate{kind: kindAtom, field: field, op: op, value: value}
}

// Depth returns the height of the tree (an Atom has depth 1).
func (p Predicate) Depth() int {
	switch p.kind {
	case kindAnd, kindOr:
		l, r := p.left.Depth(), p.right.Depth()
		if l > r {
			return l + 1
		}
		return r + 1
	case kindNot:
		return p.inner.Depth() + 1
	default:
		return 1
	}
}

// Eval walks the tree against a candidate. fields maps field name to its
// current value; a missing field is an error, not a false match.
func (p Predicate) Eval(fields map[string]any) (bool, error) {
	switch p.kind {
	case kindAnd:
		l, err := p.left.Eval(fields)
		if err != nil {
			return false, err
		}
		if !l {
			return false, nil
		}
		return p.right.Eval(fields)
	case kindOr:
		l, err := p.left.Eval(fields)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return p.right.Eval(fields)
	case kindNot:
		v, err := p.inner.Eval(fields)
		if err != nil {
			return false, err
		}
		return !v, nil
	case kindAtom:
		have, ok := fields[p.field]
		if !ok {
			return false, fmt.Errorf("%w %q", ErrUnknownField, p.field)
		}
		return compare(have, p.op, p.value)
	default:
		return false, fmt.Errorf("predicate: empty node")
	}
}

// ToSQL renders the tree as a parameterized WHERE fragment. allowed maps
// exposed field names to real column names; any field outside the map is
// rejected so callers cannot probe arbitrary columns.
func (p Predicate) ToSQL(allowed map[string]string) (string, []any, error) {
	switch p.kind {
	case kindAnd, kindOr:
		lc, la, err := p.left.ToSQL(allowed)
		if err != nil {
			return "", nil, err
		}
		rc, ra, err := p.right.ToSQL(allowed)
		if err != nil {
			return "", nil, err
		}
		join := "AND"
		if p.kind == kindOr {
			join = "OR"
		}
		return fmt.Sprintf("(%s %s %s)", lc, join, rc), append(la, ra...), nil
	case kindNot:
		c, a, err := p.inner.ToSQL(allowed)
		if err != nil {
			return "", nil, err
		}
		return fmt.Sprintf("NOT %s", c), a, nil
	case kindAtom:
		col, ok := allowed[p.field]
		if !ok {
			return "", nil, fmt.Errorf("%w %q", ErrUnknownField, p.field)
		}
		switch p.op {
		case OpEq:
			return col + " = ?", []any{p.value}, nil
		case OpNe:
			return col + " <> ?", []any{p.value}, nil
		case OpGt:
			return col + " > ?", []any{p.value}, nil
		case OpGte:
			return col + " >= ?", []any{p.value}, nil
		case OpLt:
			return col + " < ?", []any{p.value}, nil
		case OpLte:
			return col + " <= ?", []any{p.value}, nil
		case OpContains:
			s, ok := p.value.(string)
			if !ok {
				return "", nil, fmt.Errorf("predicate: contains needs a string value on %q", p.field)
			}
			return col + " ILIKE ?", []any{"%" + s + "%"}, nil
		default:
			return "", nil, fmt.Errorf("predicate: unknown operator %q", p.op)
		}
	default:
		return "", nil, fmt.Errorf("predicate: empty node")
	}
}

// compare applies op to a candidate value and the atom's value. Numeric
// comparisons go through decimal so int/float/decimal candidates compare
// consistently; strings and bools support eq/ne (plus contains for strings).
func compare(have any, op string, want any) (bool, error) {
	if hd, hok := toDecimal(have); hok {
		wd, wok := toDecimal(want)
		if !wok {
			return false, fmt.Errorf("predicate: comparing number to %T", want)
		}
		switch op {
		case OpEq:
			return hd.Equal(wd), nil
		case OpNe:
			return !hd.Equal(wd), nil
		case OpGt:
			return hd.GreaterThan(wd), nil
		case OpGte:
			return hd.GreaterThanOrEqual(wd), nil
		case OpLt:
			return hd.LessThan(wd), nil
		case OpLte:
			return hd.LessThanOrEqual(wd), nil
		default:
			return false, fmt.Errorf("predicate: operator %q not valid for numbers", op)
		}
	}

	switch hv := have.(type) {
	case string:
		wv, ok := want.(string)
		if !ok {
			return false, fmt.Errorf("predicate: comparing string to %T", want)
		}
		switch op {
		case OpEq:
			return hv == wv, nil
		case OpNe:
			return hv != wv, nil
		case OpContains:
			return strings.Contains(strings.ToLower(hv), strings.ToLower(wv)), nil
		case OpGt:
			return hv > wv, nil
		case OpGte:
			return hv >= wv, nil
		case OpLt:
			return hv < wv, nil
		case OpLte:
			return hv <= wv, nil
		default:
			return false, fmt.Errorf("predicate: unknown operator %q", op)
		}
	case bool:
		wv, ok := want.(bool)
		if !ok {
			return false, fmt.Errorf("predicate: comparing bool to %T", want)
		}
		switch op {
		case OpEq:
			return hv == wv, nil
		case OpNe:
			return hv != wv, nil
		default:
			return false, fmt.Errorf("predicate: operator %q not valid for bools", op)
		}
	default:
		return false, fmt.Errorf("predicate: unsupported candidate type %T", have)
	}
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	default:
		return decimal.Decimal{}, false
	}
}
