package attr

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Equal reports structural equality. Absent equals only Absent and Null
// equals only Null. Numbers compare by value, lists element-wise and objects
// key-wise.
func Equal(a, b Value) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}

	switch ka {
	case KindAbsent, KindNull:
		return true
	case KindBool:
		return a.(Bool) == b.(Bool)
	case KindNumber:
		return a.(Number) == b.(Number)
	case KindText:
		return a.(Text) == b.(Text)
	case KindList:
		la, lb := a.(List), b.(List)
		if len(la) != len(lb) {
			return false
		}
		for i := range la {
			if !Equal(la[i], lb[i]) {
				return false
			}
		}
		return true
	case KindObject:
		oa, ob := a.(Object), b.(Object)
		if len(oa) != len(ob) {
			return false
		}
		for k, va := range oa {
			vb, ok := ob[k]
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// rank groups kinds for cross-kind ordering. Absent and Null share the
// lowest rank so both sort as "no value".
func rank(k Kind) int {
	switch k {
	case KindAbsent, KindNull:
		return 0
	case KindBool:
		return 1
	case KindNumber:
		return 2
	case KindText:
		return 3
	case KindList:
		return 4
	default:
		return 5
	}
}

// Compare returns -1, 0 or +1 and defines a total order over all values:
// missing < bool < number < text < list < object. Within a kind the natural
// order applies: false < true, numeric order, byte-wise text order,
// lexicographic lists, and objects by sorted key set then values.
func Compare(a, b Value) int {
	ra, rb := rank(KindOf(a)), rank(KindOf(b))
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	switch ra {
	case 0:
		return 0
	case 1:
		ba, bb := a.(Bool), b.(Bool)
		switch {
		case ba == bb:
			return 0
		case !bool(ba):
			return -1
		default:
			return 1
		}
	case 2:
		return cmp.Compare(float64(a.(Number)), float64(b.(Number)))
	case 3:
		return strings.Compare(string(a.(Text)), string(b.(Text)))
	case 4:
		la, lb := a.(List), b.(List)
		for i := 0; i < len(la) && i < len(lb); i++ {
			if c := Compare(la[i], lb[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(la), len(lb))
	default:
		return compareObjects(a.(Object), b.(Object))
	}
}

func compareObjects(a, b Object) int {
	ka := sortedKeys(a)
	kb := sortedKeys(b)
	if c := slices.Compare(ka, kb); c != 0 {
		return c
	}
	for _, k := range ka {
		if c := Compare(a[k], b[k]); c != 0 {
			return c
		}
	}
	return 0
}

func sortedKeys(o Object) []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Normalize returns v with text NFC-normalized, recursing into lists and
// object keys and values, so that canonically equivalent values compare
// equal. Used for sort keys and filter operands.
func Normalize(v Value) Value {
	switch val := v.(type) {
	case Text:
		return Text(norm.NFC.String(string(val)))
	case List:
		out := make(List, len(val))
		for i, elem := range val {
			out[i] = Normalize(elem)
		}
		return out
	case Object:
		out := make(Object, len(val))
		for k, elem := range val {
			out[norm.NFC.String(k)] = Normalize(elem)
		}
		return out
	default:
		return v
	}
}
