package object

// ListObj is a dynamic Value array. Go's slice append already provides the
// "count, capacity, buffer" growth spec.md §3 describes; a hand-rolled
// growable array would just reimplement it less efficiently, so Elems is a
// plain []Value (same reasoning as Chunk.Code, see chunk.go).
type ListObj struct {
	header
	Elems []Value
}

var _ Obj = (*ListObj)(nil)

func (l *ListObj) typeName() string { return "list" }
func (l *ListObj) String() string   { return "<list>" }

func (l *ListObj) Len() int { return len(l.Elems) }

// NormalizeIndex adds Len to a negative index, matching the convention
// spec.md's HasSetIndex-equivalent natives use (see vm/natives.go).
func (l *ListObj) NormalizeIndex(i int) int {
	if i < 0 {
		return i + len(l.Elems)
	}
	return i
}
