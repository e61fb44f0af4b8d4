package vm_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CabooseLang/Caboose/lang/vm"
)

func run(t *testing.T, src string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	m := vm.New(&out, &errBuf)
	err = m.Interpret(src)
	return out.String(), errBuf.String(), err
}

func TestInterpretArithmeticAndPrint(t *testing.T) {
	out, _, err := run(t, `print 1 + 2 * 3;`)
	require.NoError(t, err)
	assert.Equal(t, "7\n", out)
}

func TestInterpretStringConcatenation(t *testing.T) {
	out, _, err := run(t, `print "foo" + "bar";`)
	require.NoError(t, err)
	assert.Equal(t, "foobar\n", out)
}

func TestInterpretVariablesAndAssignment(t *testing.T) {
	out, _, err := run(t, `
		var x = 10;
		x = x + 5;
		print x;
	`)
	require.NoError(t, err)
	assert.Equal(t, "15\n", out)
}

func TestInterpretIfElse(t *testing.T) {
	out, _, err := run(t, `
		if (1 < 2) {
			print "yes";
		} else {
			print "no";
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "yes\n", out)
}

func TestInterpretWhileLoop(t *testing.T) {
	out, _, err := run(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		print sum;
	`)
	require.NoError(t, err)
	assert.Equal(t, "10\n", out)
}

func TestInterpretForLoop(t *testing.T) {
	out, _, err := run(t, `
		for (var i = 0; i < 3; i = i + 1) {
			print i;
		}
	`)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n2\n", out)
}

func TestInterpretFunctionsAndClosures(t *testing.T) {
	out, _, err := run(t, `
		fun makeCounter() {
			var count = 0;
			fun inc() {
				count = count + 1;
				return count;
			}
			return inc;
		}
		var counter = makeCounter();
		print counter();
		print counter();
		print counter();
	`)
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestInterpretClassesAndMethods(t *testing.T) {
	out, _, err := run(t, `
		class Greeter {
			init(name) {
				this.name = name;
			}
			greet() {
				return "hello " + this.name;
			}
		}
		var g = Greeter("world");
		print g.greet();
	`)
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestInterpretInheritanceAndSuper(t *testing.T) {
	out, _, err := run(t, `
		class Animal {
			speak() {
				return "...";
			}
		}
		class Dog < Animal {
			speak() {
				return super.speak() + " woof";
			}
		}
		print Dog().speak();
	`)
	require.NoError(t, err)
	assert.Equal(t, "... woof\n", out)
}

func TestInterpretRecursiveFunction(t *testing.T) {
	out, _, err := run(t, `
		fun fib(n) {
			if (n < 2) return n;
			return fib(n - 1) + fib(n - 2);
		}
		print fib(10);
	`)
	require.NoError(t, err)
	assert.Equal(t, "55\n", out)
}

func TestInterpretListNatives(t *testing.T) {
	out, _, err := run(t, `
		var l = list(1, 2, 3);
		push(l, 4);
		print len(l);
		print pop(l);
	`)
	require.NoError(t, err)
	assert.Equal(t, "4\n4\n", out)
}

func TestInterpretDictSubscriptIsCompileError(t *testing.T) {
	_, _, err := run(t, `
		var d = dict();
		d["a"] = 1;
	`)
	// dicts have no subscript syntax; this must fail to compile.
	require.Error(t, err)
}

func TestInterpretUndefinedVariableIsRuntimeError(t *testing.T) {
	_, stderr, err := run(t, `print x;`)
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, stderr, "Undefined variable 'x'.")
}

func TestInterpretCompileErrorReturnsCompileErrors(t *testing.T) {
	_, _, err := run(t, `var x = ;`)
	require.Error(t, err)
	var cerrs *vm.CompileErrors
	require.ErrorAs(t, err, &cerrs)
}

func TestInterpretTypeErrorOnBadOperands(t *testing.T) {
	_, stderr, err := run(t, `print 1 + "x";`)
	require.Error(t, err)
	assert.Contains(t, stderr, "Operands must be two numbers or two strings.")
}

func TestInterpretImportIsRuntimeError(t *testing.T) {
	_, _, err := run(t, `import "foo";`)
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
}

// recurseTo builds a chain of n single-argument functions, each calling the
// next, to probe the framesMax=64 call-depth boundary (the top-level script
// itself occupies the first frame, so depth n fills frames 2..n+1).
func recurseTo(n int) string {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "fun f%d(d) { if (d == 0) { return 0; } return f%d(d - 1); }\n", i, i+1)
	}
	fmt.Fprintf(&sb, "print f0(%d);\n", n-1)
	return sb.String()
}

func TestInterpretCallDepthWithinFrameLimitSucceeds(t *testing.T) {
	out, _, err := run(t, recurseTo(63))
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestInterpretCallDepthBeyondFrameLimitOverflows(t *testing.T) {
	_, stderr, err := run(t, recurseTo(64))
	require.Error(t, err)
	var rerr *vm.RuntimeError
	require.ErrorAs(t, err, &rerr)
	assert.Contains(t, stderr, "Stack overflow.")
}
