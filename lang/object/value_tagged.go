//go:build !nanbox

package object

// Value is the default scalar representation: an explicit tagged union of
// Nil, Bool, Number and Obj. It is kept a plain comparable struct (no
// slices/maps/funcs) and is stored by value as the element type of the
// dolthub/swiss tables backing Dict and Table (whose keys are string and
// *StringObj respectively).
//
// See value_nanbox.go for the alternate 64-bit NaN-boxed encoding selected by
// the "nanbox" build tag; both files expose the identical API below so the
// rest of the module never needs to know which representation is active.
type Value struct {
	typ ValueType
	num float64 // holds the float64 payload, or 0/1 for Bool
	obj Obj     // non-nil only when typ == ValObj
}

// ValueType tags the active variant of a Value.
type ValueType uint8

const (
	ValNil ValueType = iota
	ValBool
	ValNumber
	ValObj
)

var Nil = Value{typ: ValNil}

func Bool(b bool) Value {
	if b {
		return Value{typ: ValBool, num: 1}
	}
	return Value{typ: ValBool, num: 0}
}

func Number(f float64) Value { return Value{typ: ValNumber, num: f} }

func FromObj(o Obj) Value { return Value{typ: ValObj, obj: o} }

func (v Value) IsNil() bool    { return v.typ == ValNil }
func (v Value) IsBool() bool   { return v.typ == ValBool }
func (v Value) IsNumber() bool { return v.typ == ValNumber }
func (v Value) IsObj() bool    { return v.typ == ValObj }

func (v Value) AsBool() bool      { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObj() Obj        { return v.obj }

// Type returns a short name for the value's kind, for error messages.
func (v Value) Type() string {
	switch v.typ {
	case ValNil:
		return "nil"
	case ValBool:
		return "bool"
	case ValNumber:
		return "number"
	default:
		return v.obj.typeName()
	}
}
