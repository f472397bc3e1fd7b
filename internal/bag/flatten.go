package bag

import (
	"fmt"
	"strconv"
	"strings"
)

// Separator joins path segments in flattened keys.
const Separator = "."

// Flatten converts a nested bag into dotted keys.
//
//   - nested bags: {"range": {"low": 1.0}} -> {"range.low": 1.0}
//   - lists of bags: {"iv": [{"low": 1.0}]} -> {"iv.0.low": 1.0}
//   - lists of scalars and empty containers stay leaves
//
// Keys that are empty or contain the separator cannot be flattened
// unambiguously and are rejected.
func Flatten(b Bag) (Bag, error) {
	out := make(Bag)
	for _, k := range b.SortedKeys() {
		if err := checkKey(k); err != nil {
			return nil, err
		}
		if err := flattenInto(out, k, b[k]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func checkKey(k string) error {
	if k == "" {
		return fmt.Errorf("empty key cannot be flattened")
	}
	if strings.Contains(k, Separator) {
		return fmt.Errorf("key %q contains %q and cannot be flattened", k, Separator)
	}
	return nil
}

func flattenInto(out Bag, prefix string, v Value) error {
	switch val := v.(type) {
	case Bag:
		if len(val) == 0 {
			out[prefix] = Bag{}
			return nil
		}
		for _, k := range val.SortedKeys() {
			if err := checkKey(k); err != nil {
				return fmt.Errorf("%s: %w", prefix, err)
			}
			if err := flattenInto(out, prefix+Separator+k, val[k]); err != nil {
				return err
			}
		}
		return nil
	case List:
		if !isBagList(val) {
			out[prefix] = Clone(val)
			return nil
		}
		for i, elem := range val {
			if err := flattenInto(out, prefix+Separator+strconv.Itoa(i), elem); err != nil {
				return err
			}
		}
		return nil
	default:
		out[prefix] = v
		return nil
	}
}

func isBagList(l List) bool {
	if len(l) == 0 {
		return false
	}
	for _, elem := range l {
		if _, ok := elem.(Bag); !ok {
			return false
		}
	}
	return true
}

// Unflatten is the inverse of Flatten for bags. Nested values already
// present are merged with dotted keys addressing the same subtree.
//
// Unflatten is purely structural: "iv.0.low" becomes {"iv": {"0": {...}}}.
// Whether an index-keyed bag is a list depends on the field it belongs to,
// so turning it back into a List is left to the caller (see IndexedList).
//
// Unflatten of an already nested bag without dotted keys returns an equal
// bag, so callers may apply it unconditionally.
func Unflatten(b Bag) (Bag, error) {
	root := make(Bag)
	for _, k := range b.SortedKeys() {
		if err := insert(root, strings.Split(k, Separator), Clone(b[k]), k); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func insert(node Bag, path []string, v Value, full string) error {
	head := path[0]
	if head == "" {
		return fmt.Errorf("key %q has an empty segment", full)
	}
	if len(path) == 1 {
		existing, ok := node[head]
		if !ok {
			node[head] = v
			return nil
		}
		eb, eok := existing.(Bag)
		vb, vok := v.(Bag)
		if !eok || !vok {
			return fmt.Errorf("key %q conflicts with another entry", full)
		}
		for _, k := range vb.SortedKeys() {
			if err := insert(eb, []string{k}, vb[k], full+Separator+k); err != nil {
				return err
			}
		}
		return nil
	}
	child, ok := node[head]
	if !ok {
		child = make(Bag)
		node[head] = child
	}
	cb, ok := child.(Bag)
	if !ok {
		return fmt.Errorf("key %q conflicts with leaf %q", full, head)
	}
	return insert(cb, path[1:], v, full)
}

// IndexedList returns the elements of b as a List when its keys are
// exactly "0".."n-1", the shape Flatten gives a list of bags. Any other bag,
// including an empty one, is not an indexed list.
func IndexedList(b Bag) (List, bool) {
	if len(b) == 0 {
		return nil, false
	}
	list := make(List, len(b))
	for k, child := range b {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 || i >= len(b) || strconv.Itoa(i) != k {
			return nil, false
		}
		list[i] = child
	}
	return list, true
}
