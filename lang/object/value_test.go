package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CabooseLang/Caboose/lang/object"
)

func TestValueConstructorsAndAccessors(t *testing.T) {
	require.True(t, object.Nil.IsNil())
	require.True(t, object.Bool(true).IsBool())
	assert.True(t, object.Bool(true).AsBool())
	assert.False(t, object.Bool(false).AsBool())
	require.True(t, object.Number(3.5).IsNumber())
	assert.Equal(t, 3.5, object.Number(3.5).AsNumber())
}

func TestIsFalsey(t *testing.T) {
	assert.True(t, object.IsFalsey(object.Nil))
	assert.True(t, object.IsFalsey(object.Bool(false)))
	assert.False(t, object.IsFalsey(object.Bool(true)))
	assert.False(t, object.IsFalsey(object.Number(0)))
	assert.False(t, object.IsFalsey(object.FromObj(object.NewHeap().CopyString(""))))
}

func TestEqualAcrossTypes(t *testing.T) {
	assert.True(t, object.Equal(object.Nil, object.Nil))
	assert.False(t, object.Equal(object.Nil, object.Bool(false)))
	assert.True(t, object.Equal(object.Number(1), object.Number(1)))
	assert.False(t, object.Equal(object.Number(1), object.Number(2)))

	h := object.NewHeap()
	a := object.FromObj(h.CopyString("hi"))
	b := object.FromObj(h.CopyString("hi"))
	assert.True(t, object.Equal(a, b), "interned strings with the same bytes must compare equal")
}

func TestEqualListsAndDictsAreStructural(t *testing.T) {
	h := object.NewHeap()
	l1 := object.FromObj(h.NewList([]object.Value{object.Number(1), object.Number(2)}))
	l2 := object.FromObj(h.NewList([]object.Value{object.Number(1), object.Number(2)}))
	l3 := object.FromObj(h.NewList([]object.Value{object.Number(1), object.Number(3)}))
	assert.True(t, object.Equal(l1, l2))
	assert.False(t, object.Equal(l1, l3))

	d1 := h.NewDict(1)
	d1.Set("a", object.Number(1))
	d2 := h.NewDict(1)
	d2.Set("a", object.Number(1))
	assert.True(t, object.Equal(object.FromObj(d1), object.FromObj(d2)))
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "nil", object.FormatValue(object.Nil))
	assert.Equal(t, "true", object.FormatValue(object.Bool(true)))
	assert.Equal(t, "false", object.FormatValue(object.Bool(false)))
	assert.Equal(t, "3", object.FormatValue(object.Number(3)))
	assert.Equal(t, "3.5", object.FormatValue(object.Number(3.5)))

	h := object.NewHeap()
	assert.Equal(t, "hi", object.FormatValue(object.FromObj(h.CopyString("hi"))))
}
