package chunk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CabooseLang/Caboose/lang/chunk"
)

func TestOpCodeString(t *testing.T) {
	assert.Equal(t, "OP_CONSTANT", chunk.OpConstant.String())
	assert.Equal(t, "OP_RETURN", chunk.OpReturn.String())
	assert.Equal(t, "OP_SUPER_INVOKE", chunk.OpSuper.String())
}

func TestOpCodeStringUnknown(t *testing.T) {
	assert.Equal(t, "OP_UNKNOWN", chunk.OpCode(250).String())
}
