package predicate

import (
	"encoding/json"
	"fmt"
)

// node is the wire shape of one tree node. Exactly one of the shapes must be
// set:
//
//	{"and": [l, r]}
//	{"or":  [l, r]}
//	{"not": expr}
//	{"field": "sell_price", "op": "lte", "value": 100}
type node struct {
	And   []json.RawMessage `json:"and"`
	Or    []json.RawMessage `json:"or"`
	Not   json.RawMessage   `json:"not"`
	Field string            `json:"field"`
	Op    string            `json:"op"`
	Value any               `json:"value"`
}

// FromJSON decodes a predicate tree from its wire form, rejecting trees
// deeper than MaxDepth.
func FromJSON(raw []byte) (Predicate, error) {
	p, err := decode(raw, 1)
	if err != nil {
		return Predicate{}, err
	}
	return p, nil
}

func decode(raw []byte, depth int) (Predicate, error) {
	if depth > MaxDepth {
		return Predicate{}, fmt.Errorf("predicate: tree deeper than %d levels", MaxDepth)
	}

	var n node
	if err := json.Unmarshal(raw, &n); err != nil {
		return Predicate{}, fmt.Errorf("predicate: %w", err)
	}

	switch {
	case n.And != nil:
		return decodePair(n.And, depth, And)
	case n.Or != nil:
		return decodePair(n.Or, depth, Or)
	case n.Not != nil:
		inner, err := decode(n.Not, depth+1)
		if err != nil {
			return Predicate{}, err
		}
		return Not(inner), nil
	case n.Field != "":
		switch n.Op {
		case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpContains:
		case "":
			return Predicate{}, fmt.Errorf("predicate: atom on %q missing op", n.Field)
		default:
			return Predicate{}, fmt.Errorf("predicate: unknown operator %q", n.Op)
		}
		if n.Value == nil {
			return Predicate{}, fmt.Errorf("predicate: atom on %q missing value", n.Field)
		}
		if n.Op == OpContains {
			if _, ok := n.Value.(string); !ok {
				return Predicate{}, fmt.Errorf("predicate: contains needs a string value on %q", n.Field)
			}
		}
		return Atom(n.Field, n.Op, n.Value), nil
	default:
		return Predicate{}, fmt.Errorf("predicate: node is neither and/or/not nor an atom")
	}
}

func decodePair(pair []json.RawMessage, depth int, combine func(l, r Predicate) Predicate) (Predicate, error) {
	if len(pair) != 2 {
		return Predicate{}, fmt.Errorf("predicate: and/or need exactly 2 operands, got %d", len(pair))
	}
	l, err := decode(pair[0], depth+1)
	if err != nil {
		return Predicate{}, err
	}
	r, err := decode(pair[1], depth+1)
	if err != nil {
		return Predicate{}, err
	}
	return combine(l, r), nil
}
