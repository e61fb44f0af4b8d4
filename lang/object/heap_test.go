package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CabooseLang/Caboose/lang/object"
)

func TestCopyStringInterns(t *testing.T) {
	h := object.NewHeap()
	a := h.CopyString("hello")
	b := h.CopyString("hello")
	assert.Same(t, a, b, "two CopyString calls with the same bytes must return the same pointer")

	c := h.TakeString("hello")
	assert.Same(t, a, c, "TakeString must hit the same intern table as CopyString")
}

func TestCollectFreesUnreachableObjects(t *testing.T) {
	h := object.NewHeap()
	h.Roots = func(mark func(object.Value)) {}
	h.StressGC = false

	before := h.BytesAllocated()
	h.CopyString("garbage")
	h.CopyString("garbage")
	afterAlloc := h.BytesAllocated()
	require.Greater(t, afterAlloc, before)

	h.Collect()
	assert.Equal(t, before, h.BytesAllocated(), "an unrooted string must be swept")
}

func TestCollectKeepsRootedObjects(t *testing.T) {
	h := object.NewHeap()
	kept := h.CopyString("keep-me")
	h.Roots = func(mark func(object.Value)) {
		mark(object.FromObj(kept))
	}

	h.CopyString("garbage")
	h.Collect()

	// kept is still interned and reachable from the roots, so a second
	// CopyString of the same bytes must still return the same pointer.
	again := h.CopyString("keep-me")
	assert.Same(t, kept, again)
}

func TestCollectTracesThroughList(t *testing.T) {
	h := object.NewHeap()
	inner := h.CopyString("nested")
	list := h.NewList([]object.Value{object.FromObj(inner)})
	h.Roots = func(mark func(object.Value)) {
		mark(object.FromObj(list))
	}

	h.Collect()

	again := h.CopyString("nested")
	assert.Same(t, inner, again, "a string reachable only through a rooted list must survive")
}

func TestStressGCCollectsOnEveryAllocation(t *testing.T) {
	h := object.NewHeap()
	h.StressGC = true
	h.Roots = func(mark func(object.Value)) {}

	for i := 0; i < 50; i++ {
		h.CopyString("churn")
	}
	assert.NotPanics(t, func() { h.Collect() })
}
