package object

// Heap is the single allocator for every Obj: it records each object in an
// intrusive linked list (header.next) and owns the interned-string table, so
// that a tracing mark/sweep cycle (spec.md §4.6) can walk the list and
// reclaim anything the VM's and compiler's roots no longer reach.
//
// reallocate in the C original is the one chokepoint that updates
// bytesAllocated and may trigger a cycle; the equivalent chokepoint here is
// Heap.register, called by every New* constructor below. Every constructor
// therefore must finish building its object (including linking in whatever
// child references it needs) before calling register, since register may
// immediately start a GC cycle that walks roots — partially-built objects
// must never be reachable from a root when that happens (spec.md §5).
type Heap struct {
	objects        Obj
	strings        map[string]*StringObj // content -> interned StringObj; see DESIGN.md for why this one table stays a plain Go map
	bytesAllocated int
	nextGC         int
	gray           []Obj

	// StressGC, when true, triggers a collection on every call to register
	// instead of only when bytesAllocated exceeds nextGC. Used by tests that
	// want to force GC churn on every allocation, mirroring the C
	// DEBUG_STRESS_GC build flag.
	StressGC bool

	// Roots is called at the start of every collection to mark every Value
	// reachable from the VM's stack, its frames' closures, the globals
	// table's values and the interned initString (part of spec.md §4.6's
	// "Roots" list). It is supplied by the VM once construction is complete;
	// nil disables collection (used transiently while bootstrapping).
	Roots func(mark func(Value))

	// MarkObjRoots is like Roots but for roots that are already Obj values
	// rather than Values wrapping them: the VM's open-upvalue list and the
	// globals Table's keys, plus, while compiler.Compile runs, the
	// compiler's currently-building function chain.
	MarkObjRoots func(mark func(Obj))
}

const initialNextGC = 1 << 20 // 1 MiB, matches the scale of the C implementation's default threshold

// NewHeap returns an empty Heap. The Roots field must be set before the
// first allocation that could trigger a collection.
func NewHeap() *Heap {
	return &Heap{strings: make(map[string]*StringObj), nextGC: initialNextGC}
}

// register runs any due collection before linking o into the object list,
// so the cycle cannot sweep the object its caller is about to use.
func (h *Heap) register(o Obj, size int) {
	h.bytesAllocated += size

	if h.StressGC || h.bytesAllocated > h.nextGC {
		h.Collect()
	}

	hd := o.hdr()
	hd.next = h.objects
	h.objects = o
}

// BytesAllocated reports the heap's current accounting total, for tests that
// want to assert a GC cycle actually freed something.
func (h *Heap) BytesAllocated() int { return h.bytesAllocated }

// --- string interning -------------------------------------------------

// CopyString interns a defensively-copied string: the caller's buffer may be
// a sub-slice of shared source text that must not be aliased past this call.
func (h *Heap) CopyString(s string) *StringObj {
	return h.intern(string(append([]byte(nil), s...)))
}

// TakeString interns a string the caller already owns exclusively (e.g. the
// freshly-built result of a concatenation), transferring ownership without a
// defensive copy. Go's immutable strings make the copy/no-copy distinction
// moot at the memory-safety level, but the two constructors are kept
// separate to preserve the move-vs-borrow contract spec.md §9 calls out.
func (h *Heap) TakeString(s string) *StringObj {
	return h.intern(s)
}

func (h *Heap) intern(s string) *StringObj {
	if existing, ok := h.strings[s]; ok {
		return existing
	}
	so := &StringObj{header: header{typ: ObjTypeString}, Chars: s, Hash: fnv1a32(s)}
	h.register(so, len(s)+24)
	h.strings[s] = so
	return so
}

// --- object constructors ----------------------------------------------

func (h *Heap) NewFunction() *FunctionObj {
	fn := &FunctionObj{header: header{typ: ObjTypeFunction}, Chunk: &Chunk{}}
	h.register(fn, 64)
	return fn
}

func (h *Heap) NewClosure(fn *FunctionObj) *ClosureObj {
	cl := &ClosureObj{
		header:   header{typ: ObjTypeClosure},
		Function: fn,
		Upvalues: make([]*UpvalueObj, fn.UpvalueCount),
	}
	h.register(cl, 32+8*fn.UpvalueCount)
	return cl
}

func (h *Heap) NewUpvalue(slot *Value) *UpvalueObj {
	uv := &UpvalueObj{header: header{typ: ObjTypeUpvalue}, Location: slot}
	h.register(uv, 32)
	return uv
}

func (h *Heap) NewNative(name string, fn NativeFn) *NativeObj {
	n := &NativeObj{header: header{typ: ObjTypeNative}, Name: name, Fn: fn}
	h.register(n, 32)
	return n
}

func (h *Heap) NewNativeVoid(name string, fn NativeVoidFn) *NativeVoidObj {
	n := &NativeVoidObj{header: header{typ: ObjTypeNativeVoid}, Name: name, Fn: fn}
	h.register(n, 32)
	return n
}

func (h *Heap) NewClass(name *StringObj) *ClassObj {
	c := &ClassObj{header: header{typ: ObjTypeClass}, Name: name, Methods: make(map[string]*ClosureObj)}
	h.register(c, 48)
	return c
}

func (h *Heap) NewInstance(class *ClassObj) *InstanceObj {
	in := &InstanceObj{header: header{typ: ObjTypeInstance}, Class: class, Fields: NewTable(4)}
	h.register(in, 40)
	return in
}

func (h *Heap) NewBoundMethod(receiver Value, method *ClosureObj) *BoundMethodObj {
	bm := &BoundMethodObj{header: header{typ: ObjTypeBoundMethod}, Receiver: receiver, Method: method}
	h.register(bm, 32)
	return bm
}

func (h *Heap) NewList(elems []Value) *ListObj {
	l := &ListObj{header: header{typ: ObjTypeList}, Elems: elems}
	h.register(l, 24+16*len(elems))
	return l
}

func (h *Heap) NewDict(size int) *DictObj {
	d := NewDict(size)
	d.header = header{typ: ObjTypeDict}
	h.register(d, 48)
	return d
}

// --- garbage collection -------------------------------------------------

// Collect runs one tri-color mark/sweep cycle: mark roots, drain the gray
// stack, drop interned strings no survivor references, sweep the object
// list, then double the next collection's threshold (spec.md §4.6).
func (h *Heap) Collect() {
	if h.Roots == nil {
		return
	}
	h.gray = h.gray[:0]
	h.Roots(h.markValue)
	if h.MarkObjRoots != nil {
		h.MarkObjRoots(h.markObj)
	}
	h.traceReferences()
	h.removeWhiteStrings()
	h.sweep()
	h.nextGC = h.bytesAllocated * 2
	if h.nextGC < initialNextGC {
		h.nextGC = initialNextGC
	}
}

func (h *Heap) markValue(v Value) {
	if v.IsObj() {
		h.markObj(v.AsObj())
	}
}

func (h *Heap) markObj(o Obj) {
	if o == nil {
		return
	}
	hd := o.hdr()
	if hd.isDark() {
		return
	}
	hd.mark()
	h.gray = append(h.gray, o)
}

func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		o := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(o)
	}
}

// blacken traverses o's outgoing references, graying each in turn. This is
// the flat type-switch the design notes call for instead of a per-type
// virtual trace() method: every variant's references are enumerated once,
// here, rather than scattered across eleven small interface implementations.
func (h *Heap) blacken(o Obj) {
	switch v := o.(type) {
	case *StringObj:
		// leaf: no outgoing references
	case *FunctionObj:
		if v.Name != nil {
			h.markObj(v.Name)
		}
		for _, c := range v.Chunk.Constants {
			h.markValue(c)
		}
	case *ClosureObj:
		h.markObj(v.Function)
		for _, uv := range v.Upvalues {
			h.markObj(uv)
		}
	case *UpvalueObj:
		if !v.IsOpen() {
			h.markValue(v.Closed)
		}
	case *NativeObj, *NativeVoidObj:
		// leaf
	case *ClassObj:
		h.markObj(v.Name)
		for _, m := range v.Methods {
			h.markObj(m)
		}
		if v.Super != nil {
			h.markObj(v.Super)
		}
	case *InstanceObj:
		h.markObj(v.Class)
		v.Fields.Iter(func(k *StringObj, val Value) bool {
			h.markObj(k)
			h.markValue(val)
			return false
		})
	case *BoundMethodObj:
		h.markValue(v.Receiver)
		h.markObj(v.Method)
	case *ListObj:
		for _, e := range v.Elems {
			h.markValue(e)
		}
	case *DictObj:
		v.Each(func(_ string, val Value) bool {
			h.markValue(val)
			return false
		})
	}
}

// removeWhiteStrings drops interned strings no surviving object references.
// Strings reach the intern table as weak references: the table itself is
// never a GC root (spec.md §4.6 step 3).
func (h *Heap) removeWhiteStrings() {
	for k, s := range h.strings {
		if !s.hdr().isDark() {
			delete(h.strings, k)
		}
	}
}

// sweep walks the intrusive object list, unlinking and discarding every
// white (unmarked) object and clearing the dark bit on every survivor.
func (h *Heap) sweep() {
	var prev Obj
	obj := h.objects
	for obj != nil {
		hd := obj.hdr()
		next := hd.next
		if hd.isDark() {
			hd.unmark()
			prev = obj
		} else {
			if prev != nil {
				prev.hdr().next = next
			} else {
				h.objects = next
			}
			h.bytesAllocated -= approxSize(obj)
		}
		obj = next
	}
}

func approxSize(o Obj) int {
	switch v := o.(type) {
	case *StringObj:
		return len(v.Chars) + 24
	case *FunctionObj:
		return 64
	case *ClosureObj:
		return 32 + 8*len(v.Upvalues)
	case *UpvalueObj:
		return 32
	case *NativeObj, *NativeVoidObj:
		return 32
	case *ClassObj:
		return 48
	case *InstanceObj:
		return 40
	case *BoundMethodObj:
		return 32
	case *ListObj:
		return 24 + 16*len(v.Elems)
	case *DictObj:
		return 48
	default:
		return 16
	}
}
