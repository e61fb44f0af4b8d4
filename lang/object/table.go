package object

import "github.com/dolthub/swiss"

// Table is the open-addressed String -> Value table spec.md §3 describes for
// both the VM's globals and an Instance's field set, backed by
// dolthub/swiss. Keys are interned *StringObj pointers, so equality is
// already reference identity by construction (see string_obj.go/heap.go) —
// exactly what spec.md requires of this table's key comparison.
type Table struct {
	m *swiss.Map[*StringObj, Value]
}

// NewTable returns an empty table with initial capacity for at least size
// entries.
func NewTable(size int) *Table {
	if size < 1 {
		size = 1
	}
	return &Table{m: swiss.NewMap[*StringObj, Value](uint32(size))}
}

// Get resolves spec.md §9's open question: it reports false when key is
// absent, never an unconditional true.
func (t *Table) Get(key *StringObj) (Value, bool) { return t.m.Get(key) }

// Set inserts or overwrites key's value and reports whether the key is new.
func (t *Table) Set(key *StringObj, v Value) (isNew bool) {
	_, existed := t.m.Get(key)
	t.m.Put(key, v)
	return !existed
}

func (t *Table) Delete(key *StringObj) bool { return t.m.Delete(key) }

func (t *Table) Len() int { return int(t.m.Count()) }

// Iter calls fn for every entry; fn returns true to stop early.
func (t *Table) Iter(fn func(key *StringObj, v Value) (stop bool)) {
	t.m.Iter(fn)
}
