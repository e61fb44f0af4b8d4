package object

import "unsafe"

// ObjType discriminates the concrete variant of a heap-allocated Obj. Every
// concrete object type embeds header as its first field, which is what lets
// the NaN-boxed Value representation (value_nanbox.go) reconstruct an Obj
// from a bare pointer: the header's address and the object's address always
// coincide.
type ObjType uint8

//nolint:revive
const (
	ObjTypeString ObjType = iota
	ObjTypeFunction
	ObjTypeClosure
	ObjTypeUpvalue
	ObjTypeNative
	ObjTypeNativeVoid
	ObjTypeClass
	ObjTypeInstance
	ObjTypeBoundMethod
	ObjTypeList
	ObjTypeDict
)

// header is the common record embedded in every heap object: a type tag, the
// GC mark bit ("dark" in spec.md terms) and the intrusive next-pointer into
// the heap's object list.
type header struct {
	typ  ObjType
	dark bool
	next Obj
}

func (h *header) hdr() *header    { return h }
func (h *header) objType() ObjType { return h.typ }

// Obj is implemented by every heap-allocated object variant (String,
// Function, Closure, Upvalue, Native, NativeVoid, Class, Instance,
// BoundMethod, List, Dict). The hdr/objType methods are unexported, which
// seals the interface to this package the same way the teacher's Value
// interface in lang/machine is only ever implemented by its own types.
type Obj interface {
	hdr() *header
	objType() ObjType
	typeName() string
	String() string
}

func (h *header) isDark() bool  { return h.dark }
func (h *header) mark()         { h.dark = true }
func (h *header) unmark()       { h.dark = false }

// objFromHeader reconstructs the concrete Obj value from a bare *header
// pointer, used by the NaN-boxed Value representation where only the header
// address survives the encoding. Because header is always the first field of
// the concrete struct, the pointer conversion is valid.
func objFromHeader(h *header) Obj {
	switch h.typ {
	case ObjTypeString:
		return (*StringObj)(unsafe.Pointer(h))
	case ObjTypeFunction:
		return (*FunctionObj)(unsafe.Pointer(h))
	case ObjTypeClosure:
		return (*ClosureObj)(unsafe.Pointer(h))
	case ObjTypeUpvalue:
		return (*UpvalueObj)(unsafe.Pointer(h))
	case ObjTypeNative:
		return (*NativeObj)(unsafe.Pointer(h))
	case ObjTypeNativeVoid:
		return (*NativeVoidObj)(unsafe.Pointer(h))
	case ObjTypeClass:
		return (*ClassObj)(unsafe.Pointer(h))
	case ObjTypeInstance:
		return (*InstanceObj)(unsafe.Pointer(h))
	case ObjTypeBoundMethod:
		return (*BoundMethodObj)(unsafe.Pointer(h))
	case ObjTypeList:
		return (*ListObj)(unsafe.Pointer(h))
	case ObjTypeDict:
		return (*DictObj)(unsafe.Pointer(h))
	default:
		panic("object: unknown ObjType in objFromHeader")
	}
}
