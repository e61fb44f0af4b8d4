package object

import (
	"io"
	"strconv"
)

// FormatValue renders v the way the `print`/`println` natives and OP_PRINT
// do: nil, true/false, a number without a trailing ".0" when it is integral,
// and every Obj through its own String().
func FormatValue(v Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		n := v.AsNumber()
		if n == float64(int64(n)) {
			return strconv.FormatInt(int64(n), 10)
		}
		return strconv.FormatFloat(n, 'g', -1, 64)
	case v.IsObj():
		return v.AsObj().String()
	default:
		return "?"
	}
}

// Print writes v's formatted form to w with no trailing newline, the
// primitive OP_PRINT builds on (it appends the newline itself).
func Print(w io.Writer, v Value) { io.WriteString(w, FormatValue(v)) }

// IsFalsey implements spec.md §4.4's falsey rule: only Nil and Bool(false)
// are falsey, everything else (including 0 and "") is truthy.
func IsFalsey(v Value) bool {
	return v.IsNil() || (v.IsBool() && !v.AsBool())
}

// Equal implements value equality: reflexive and symmetric for every type,
// and transitive for numbers and strings. Non-object values compare by
// value; object references compare by identity, except that interned
// strings compare equal whenever their bytes do (which identity already
// guarantees, see Heap.intern in heap.go) and List/Dict compare structurally.
func Equal(a, b Value) bool {
	if a.IsNil() && b.IsNil() {
		return true
	}
	if a.IsBool() && b.IsBool() {
		return a.AsBool() == b.AsBool()
	}
	if a.IsNumber() && b.IsNumber() {
		return a.AsNumber() == b.AsNumber()
	}
	if a.IsObj() && b.IsObj() {
		return objEqual(a.AsObj(), b.AsObj())
	}
	return false
}

func objEqual(a, b Obj) bool {
	if a == b {
		return true
	}
	if a.objType() != b.objType() {
		return false
	}
	switch at := a.(type) {
	case *StringObj:
		return at.Chars == b.(*StringObj).Chars
	case *ListObj:
		return listEqual(at, b.(*ListObj))
	case *DictObj:
		return dictEqual(at, b.(*DictObj))
	default:
		return false
	}
}

func listEqual(a, b *ListObj) bool {
	if len(a.Elems) != len(b.Elems) {
		return false
	}
	for i := range a.Elems {
		if !Equal(a.Elems[i], b.Elems[i]) {
			return false
		}
	}
	return true
}

func dictEqual(a, b *DictObj) bool {
	if a.Len() != b.Len() {
		return false
	}
	eq := true
	a.Each(func(k string, v Value) bool {
		bv, ok := b.Get(k)
		if !ok || !Equal(v, bv) {
			eq = false
			return true // stop iterating
		}
		return false
	})
	return eq
}
