package object_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CabooseLang/Caboose/lang/object"
)

func TestUpvalueOpenTracksLiveSlot(t *testing.T) {
	h := object.NewHeap()
	slot := object.Number(1)
	uv := h.NewUpvalue(&slot)

	assert.True(t, uv.IsOpen())
	assert.Equal(t, object.Number(1), uv.Get())

	slot = object.Number(2)
	assert.Equal(t, object.Number(2), uv.Get(), "an open upvalue reads through Location")

	uv.Set(object.Number(3))
	assert.Equal(t, object.Number(3), slot, "Set on an open upvalue writes through Location")
}

func TestUpvalueCloseSnapshotsValue(t *testing.T) {
	h := object.NewHeap()
	slot := object.Number(5)
	uv := h.NewUpvalue(&slot)

	uv.Close()
	assert.False(t, uv.IsOpen())
	assert.Equal(t, object.Number(5), uv.Get())

	slot = object.Number(99)
	assert.Equal(t, object.Number(5), uv.Get(), "a closed upvalue no longer reads through the old slot")

	uv.Set(object.Number(7))
	assert.Equal(t, object.Number(7), uv.Get())
}
