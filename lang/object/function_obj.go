package object

// FunctionObj is a compiled function: its arity, how many upvalues its
// closures must capture, the Chunk the compiler wrote for it, and an
// optional name (nil for the implicit top-level script function).
type FunctionObj struct {
	header
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *StringObj
}

var _ Obj = (*FunctionObj)(nil)

func (f *FunctionObj) typeName() string { return "function" }
func (f *FunctionObj) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.Chars + ">"
}

// ClosureObj pairs a shared FunctionObj with the array of upvalues it
// captured at creation time (OP_CLOSURE).
type ClosureObj struct {
	header
	Function *FunctionObj
	Upvalues []*UpvalueObj
}

var _ Obj = (*ClosureObj)(nil)

func (c *ClosureObj) typeName() string { return "closure" }
func (c *ClosureObj) String() string   { return c.Function.String() }

// UpvalueObj is open while Location points into a live stack slot and closed
// once the value has been copied into Closed and Location set to nil (spec.md §4.5's
// captureUpvalue/closeUpvalues pair). NextOpen links the VM's open-upvalue
// list, kept sorted by descending stack-slot address.
type UpvalueObj struct {
	header
	Location *Value
	Closed   Value
	NextOpen *UpvalueObj
}

var _ Obj = (*UpvalueObj)(nil)

func (u *UpvalueObj) typeName() string { return "upvalue" }
func (u *UpvalueObj) String() string   { return "upvalue" }

// IsOpen reports whether the upvalue still refers to a live stack slot.
func (u *UpvalueObj) IsOpen() bool { return u.Location != nil }

// Get returns the upvalue's current value, indirecting through Location
// while open.
func (u *UpvalueObj) Get() Value {
	if u.Location != nil {
		return *u.Location
	}
	return u.Closed
}

// Set overwrites the upvalue's current value, indirecting through Location
// while open.
func (u *UpvalueObj) Set(v Value) {
	if u.Location != nil {
		*u.Location = v
		return
	}
	u.Closed = v
}

// Close copies the live value out of the stack slot into Closed and clears
// Location, ending the indirection into the (about-to-be-reused) stack slot.
func (u *UpvalueObj) Close() {
	u.Closed = *u.Location
	u.Location = nil
}
