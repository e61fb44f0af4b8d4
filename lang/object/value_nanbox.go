//go:build nanbox

package object

import (
	"math"
	"unsafe"
)

// Value is the NaN-boxed scalar representation selected by the "nanbox"
// build tag: every Value is one IEEE-754 double. Nil, true, false and object
// references are packed into the quiet-NaN payload space, following the
// scheme popularized by clox/Crafting Interpreters. The companion
// value_tagged.go (built with the tag absent) implements the exact same
// exported API with a plain tagged union; nothing outside this package
// should be able to tell which one is active.
//
// Object pointers are boxed as the address of the object's header. Go's own
// garbage collector never sees that address as a pointer (it's stored in the
// low 48 bits of a uint64), so liveness is guaranteed entirely by the Heap's
// intrusive object list keeping a real Obj reference around for as long as
// this tracing collector considers the object reachable; see heap.go.
type Value uint64

const (
	signBit  uint64 = 1 << 63
	qnan     uint64 = 0x7ff8000000000000
	tagNil   uint64 = 1
	tagFalse uint64 = 2
	tagTrue  uint64 = 3

	pointerMask = ^(signBit | qnan)
)

var Nil = Value(qnan | tagNil)

func Bool(b bool) Value {
	if b {
		return Value(qnan | tagTrue)
	}
	return Value(qnan | tagFalse)
}

// Number encodes a float64 payload. Every NaN, whatever its sign and payload
// bits, is canonicalized to the bare qnan pattern: its sign bit is clear and
// its low tag bits are zero, so it matches none of the Nil, Bool or object
// patterns and still reads back as a number.
func Number(f float64) Value {
	if f != f {
		return Value(qnan)
	}
	return Value(math.Float64bits(f))
}

func FromObj(o Obj) Value {
	h := o.hdr()
	return Value(signBit | qnan | (uint64(uintptr(unsafe.Pointer(h))) & pointerMask))
}

func (v Value) IsNil() bool  { return Value(v) == Value(qnan|tagNil) }
func (v Value) IsBool() bool { return v == Value(qnan|tagFalse) || v == Value(qnan|tagTrue) }
func (v Value) IsObj() bool  { return uint64(v)&(signBit|qnan) == (signBit | qnan) }
func (v Value) IsNumber() bool {
	return !v.IsNil() && !v.IsBool() && !v.IsObj()
}

func (v Value) AsBool() bool      { return v == Value(qnan|tagTrue) }
func (v Value) AsNumber() float64 { return math.Float64frombits(uint64(v)) }
func (v Value) AsObj() Obj {
	h := (*header)(unsafe.Pointer(uintptr(uint64(v) & pointerMask)))
	return objFromHeader(h)
}

func (v Value) Type() string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsBool():
		return "bool"
	case v.IsObj():
		return v.AsObj().typeName()
	default:
		return "number"
	}
}
