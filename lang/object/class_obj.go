package object

// ClassObj is a runtime class: its name, its own method table (String ->
// Closure) and an optional superclass. Methods is a plain Go map because
// class bodies are small and fixed once OP_CLASS/OP_METHOD finish running —
// there is no churn or growth pattern that would benefit from swiss's
// Robin-Hood table the way the VM-wide globals Table or a user Dict would;
// see DESIGN.md.
type ClassObj struct {
	header
	Name    *StringObj
	Methods map[string]*ClosureObj
	Super   *ClassObj
}

var _ Obj = (*ClassObj)(nil)

func (c *ClassObj) typeName() string { return "class" }
func (c *ClassObj) String() string   { return c.Name.Chars }

// FindMethod looks up name in the class's own table, then walks the
// superclass chain (used by GET_PROPERTY/INVOKE/GET_SUPER fallback and by
// non-inherited lookups after OP_INHERIT has already copied the shallow
// table once at class-definition time).
func (c *ClassObj) FindMethod(name string) (*ClosureObj, bool) {
	for cls := c; cls != nil; cls = cls.Super {
		if m, ok := cls.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// InstanceObj is a runtime object instance: a reference to its class plus an
// open-addressed fields table, backed by the same swiss-table-based Table
// type as the VM's globals (spec.md §3's "fields table (String -> Value)").
type InstanceObj struct {
	header
	Class  *ClassObj
	Fields *Table
}

var _ Obj = (*InstanceObj)(nil)

func (i *InstanceObj) typeName() string { return "instance" }
func (i *InstanceObj) String() string   { return i.Class.Name.Chars + " instance" }

// BoundMethodObj binds a receiver Value to a Closure, produced by
// GET_PROPERTY's bind-method fallback.
type BoundMethodObj struct {
	header
	Receiver Value
	Method   *ClosureObj
}

var _ Obj = (*BoundMethodObj)(nil)

func (b *BoundMethodObj) typeName() string { return "bound method" }
func (b *BoundMethodObj) String() string   { return b.Method.String() }
