package compiler_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CabooseLang/Caboose/lang/compiler"
	"github.com/CabooseLang/Caboose/lang/object"
)

func compile(t *testing.T, src string) (*object.FunctionObj, []*compiler.CompileError) {
	t.Helper()
	heap := object.NewHeap()
	return compiler.Compile(heap, src)
}

func TestCompileSimpleProgram(t *testing.T) {
	fn, errs := compile(t, `
		var x = 1;
		print x + 2;
	`)
	require.Empty(t, errs)
	require.NotNil(t, fn)
	assert.NotEmpty(t, fn.Chunk.Code)
}

func TestCompileClassWithMethodsAndInheritance(t *testing.T) {
	_, errs := compile(t, `
		class Animal {
			init(name) {
				this.name = name;
			}
			speak() {
				return this.name;
			}
		}
		class Dog < Animal {
			speak() {
				return super.speak() + " woof";
			}
		}
		var d = Dog("Rex");
		print d.speak();
	`)
	require.Empty(t, errs)
}

func TestCompileFunctionWithClosureCapture(t *testing.T) {
	_, errs := compile(t, `
		fun makeCounter() {
			var count = 0;
			fun inc() {
				count = count + 1;
				return count;
			}
			return inc;
		}
	`)
	require.Empty(t, errs)
}

func TestCompileErrorMissingSemicolon(t *testing.T) {
	_, errs := compile(t, `var x = 1`)
	require.NotEmpty(t, errs)
}

func TestCompileErrorThisOutsideClass(t *testing.T) {
	_, errs := compile(t, `print this;`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "Can't use 'this' outside of a class.")
}

func TestCompileErrorReturnFromTopLevel(t *testing.T) {
	_, errs := compile(t, `return 1;`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "Can't return from top-level code.")
}

func TestCompileErrorReturnValueFromInitializer(t *testing.T) {
	_, errs := compile(t, `
		class Foo {
			init() {
				return 1;
			}
		}
	`)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "Can't return a value from an initializer.")
}

func TestCompileErrorSelfInheritance(t *testing.T) {
	_, errs := compile(t, `class Foo < Foo {}`)
	require.NotEmpty(t, errs)
}

func TestCompileForLoopDesugaring(t *testing.T) {
	_, errs := compile(t, `
		for (var i = 0; i < 3; i = i + 1) {
			print i;
		}
	`)
	require.Empty(t, errs)
}

func TestCompileImportStatement(t *testing.T) {
	_, errs := compile(t, `import "foo";`)
	require.Empty(t, errs)
}

// blockWithLocals builds a top-level block declaring n distinct locals, to
// probe the maxLocals=256 boundary (slot 0 is already reserved by the
// script's own compilerState, so n=255 is the last count that fits).
func blockWithLocals(n int) string {
	var sb strings.Builder
	sb.WriteString("{\n")
	for i := 0; i < n; i++ {
		sb.WriteString("var l")
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(" = 0;\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}

func TestCompileMaxLocalsFits(t *testing.T) {
	_, errs := compile(t, blockWithLocals(255))
	require.Empty(t, errs)
}

func TestCompileTooManyLocals(t *testing.T) {
	_, errs := compile(t, blockWithLocals(256))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "Too many local variables in function.")
}

// manyConstants builds n distinct expression statements, each consuming one
// constant-pool slot (AddConstant never deduplicates), to probe the
// 256-entry constant-pool boundary.
func manyConstants(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(";\n")
	}
	return sb.String()
}

func TestCompileMaxConstantsFits(t *testing.T) {
	_, errs := compile(t, manyConstants(256))
	require.Empty(t, errs)
}

func TestCompileTooManyConstants(t *testing.T) {
	_, errs := compile(t, manyConstants(257))
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "Too many constants in one chunk.")
}

func TestCompileJumpOffsetTooLargeToPatch(t *testing.T) {
	// a is declared local (inside the outer block) so each reference below
	// compiles to OP_GET_LOCAL and costs no constant-pool slot, keeping this
	// test isolated from the 256-constant boundary exercised above.
	src := "{\n" +
		"var a = 0;\n" +
		"if (true) {\n" +
		strings.Repeat("a;\n", 25000) +
		"}\n" +
		"}\n"
	_, errs := compile(t, src)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[0].Message, "Too much code to jump over.")
}
