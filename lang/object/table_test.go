package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CabooseLang/Caboose/lang/object"
)

func TestTableGetMissingKeyReturnsFalse(t *testing.T) {
	tbl := object.NewTable(4)
	h := object.NewHeap()
	key := h.CopyString("missing")

	_, ok := tbl.Get(key)
	assert.False(t, ok)
}

func TestTableSetReportsNewness(t *testing.T) {
	tbl := object.NewTable(4)
	h := object.NewHeap()
	key := h.CopyString("x")

	assert.True(t, tbl.Set(key, object.Number(1)), "first Set of a key must report isNew")
	assert.False(t, tbl.Set(key, object.Number(2)), "overwriting an existing key must not report isNew")

	v, ok := tbl.Get(key)
	assert.True(t, ok)
	assert.Equal(t, object.Number(2), v)
}

func TestTableDelete(t *testing.T) {
	tbl := object.NewTable(4)
	h := object.NewHeap()
	key := h.CopyString("x")
	tbl.Set(key, object.Number(1))

	assert.True(t, tbl.Delete(key))
	assert.False(t, tbl.Delete(key))
	_, ok := tbl.Get(key)
	assert.False(t, ok)
}

func TestDictGetMissingKeyReturnsFalse(t *testing.T) {
	h := object.NewHeap()
	d := h.NewDict(1)
	_, ok := d.Get("nope")
	assert.False(t, ok)
}

func TestDictCloneIsShallow(t *testing.T) {
	h := object.NewHeap()
	d := h.NewDict(1)
	inner := h.NewList([]object.Value{object.Number(1)})
	d.Set("list", object.FromObj(inner))

	clone := d.Clone()
	inner.Elems[0] = object.Number(99)

	v, ok := clone.Get("list")
	assert.True(t, ok)
	assert.Equal(t, object.Number(99), v.AsObj().(*object.ListObj).Elems[0],
		"a shallow clone shares nested containers with the original")
}
