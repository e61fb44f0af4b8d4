// Package vm implements the stack-based virtual machine that executes a
// Chunk compiled by lang/compiler. It owns the heap, the globals table, the
// call-frame stack and the open-upvalue list, and drives the GC's root set.
package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/CabooseLang/Caboose/lang/chunk"
	"github.com/CabooseLang/Caboose/lang/compiler"
	"github.com/CabooseLang/Caboose/lang/object"
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// CallFrame is one active invocation: its closure, the instruction pointer
// into the closure's chunk, and base — the index into the VM's shared value
// stack where the callee's window starts (slot 0 is the receiver or the
// callable itself, per spec.md §4.5). Using an index rather than a slice
// keeps every frame viewing the same backing array without re-slicing as
// the stack grows underneath it.
type CallFrame struct {
	closure *object.ClosureObj
	ip      int
	base    int
}

// RuntimeError carries the message plus the frame-by-frame trace
// runtimeError builds while unwinding, mirroring the teacher's pattern of a
// typed error a host can inspect instead of string-matching stderr output.
type RuntimeError struct {
	Message string
	Trace   []string
}

func (e *RuntimeError) Error() string { return e.Message }

// VM is the whole interpreter's mutable state. A zero VM is not usable;
// construct with New.
type VM struct {
	Heap   *object.Heap
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader

	// ExitFunc backs the `exit` native; it defaults to os.Exit but can be
	// overridden (tests replace it with a function that just records the
	// requested code instead of terminating the process).
	ExitFunc func(code int)

	globals *object.Table

	stack     [stackMax]object.Value
	stackTop  int
	frames    [framesMax]CallFrame
	frameCnt  int
	openUps   *object.UpvalueObj
	initStr   *object.StringObj

	// lastCallErr carries the error produced by a callValue/invoke failure
	// back to the dispatch loop: those helpers return a bool (a hot-path
	// success flag) rather than threading an error return through every
	// opcode case, so the loop reads this immediately after a false return.
	lastCallErr error
}

// New constructs a VM with its own heap, globals table, and standard native
// registry. stdout/stderr default to os.Stdout/os.Stderr when nil.
func New(stdout, stderr io.Writer) *VM {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	v := &VM{
		Heap:     object.NewHeap(),
		Stdout:   stdout,
		Stderr:   stderr,
		Stdin:    os.Stdin,
		ExitFunc: os.Exit,
		globals:  object.NewTable(16),
	}
	v.Heap.Roots = v.markRoots
	v.Heap.MarkObjRoots = v.markObjRoots
	v.initStr = v.Heap.CopyString("init")
	v.defineNatives()
	return v
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCnt = 0
	vm.openUps = nil
}

func (vm *VM) push(v object.Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() object.Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) object.Value {
	return vm.stack[vm.stackTop-1-distance]
}

// Interpret compiles and runs source, following spec.md §4.7's façade: a
// failed compile prints each diagnostic to Stderr and returns the
// *compiler.CompileError list wrapped in a single error; a failed run
// returns *RuntimeError; success returns nil.
func (vm *VM) Interpret(source string) error {
	fn, errs := compiler.Compile(vm.Heap, source)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(vm.Stderr, e)
		}
		return &CompileErrors{Errors: errs}
	}

	closure := vm.Heap.NewClosure(fn)
	vm.resetStack()
	vm.push(object.FromObj(closure))
	vm.callValue(object.FromObj(closure), 0)

	return vm.run()
}

// CompileErrors wraps every diagnostic produced by a failed compile.
type CompileErrors struct {
	Errors []*compiler.CompileError
}

func (e *CompileErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", e.Errors[0].Error(), len(e.Errors)-1)
}

func (vm *VM) currentFrame() *CallFrame { return &vm.frames[vm.frameCnt-1] }

func (vm *VM) readByte(fr *CallFrame) byte {
	b := fr.closure.Function.Chunk.Code[fr.ip]
	fr.ip++
	return b
}

func (vm *VM) readU16(fr *CallFrame) uint16 {
	hi := vm.readByte(fr)
	lo := vm.readByte(fr)
	return uint16(hi)<<8 | uint16(lo)
}

func (vm *VM) readConstant(fr *CallFrame) object.Value {
	idx := vm.readByte(fr)
	return fr.closure.Function.Chunk.Constants[idx]
}

func (vm *VM) readString(fr *CallFrame) *object.StringObj {
	return vm.readConstant(fr).AsObj().(*object.StringObj)
}

// run is the dispatch loop: spec.md §4.5's cached top-frame pointer is
// `fr`, refreshed after any opcode that may push or pop a CallFrame.
func (vm *VM) run() error {
	if vm.frameCnt == 0 {
		return nil
	}
	fr := vm.currentFrame()

	for {
		op := chunk.OpCode(vm.readByte(fr))

		switch op {
		case chunk.OpConstant:
			vm.push(vm.readConstant(fr))

		case chunk.OpNil:
			vm.push(object.Nil)
		case chunk.OpTrue:
			vm.push(object.Bool(true))
		case chunk.OpFalse:
			vm.push(object.Bool(false))
		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := vm.readByte(fr)
			vm.push(vm.stack[fr.base+int(slot)])
		case chunk.OpSetLocal:
			slot := vm.readByte(fr)
			vm.stack[fr.base+int(slot)] = vm.peek(0)

		case chunk.OpGetGlobal:
			name := vm.readString(fr)
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}
			vm.push(v)
		case chunk.OpDefineGlobal:
			name := vm.readString(fr)
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case chunk.OpSetGlobal:
			name := vm.readString(fr)
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.Chars)
			}

		case chunk.OpGetUpvalue:
			slot := vm.readByte(fr)
			vm.push(fr.closure.Upvalues[slot].Get())
		case chunk.OpSetUpvalue:
			slot := vm.readByte(fr)
			fr.closure.Upvalues[slot].Set(vm.peek(0))

		case chunk.OpGetProperty:
			if err := vm.getProperty(fr); err != nil {
				return err
			}
		case chunk.OpSetProperty:
			if err := vm.setProperty(fr); err != nil {
				return err
			}
		case chunk.OpGetSuper:
			name := vm.readString(fr)
			super := vm.pop().AsObj().(*object.ClassObj)
			receiver := vm.pop()
			if err := vm.bindMethod(super, name, receiver); err != nil {
				return err
			}

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(object.Bool(object.Equal(a, b)))
		case chunk.OpGreater, chunk.OpLess:
			if err := vm.numericCompare(op); err != nil {
				return err
			}

		case chunk.OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case chunk.OpSubtract, chunk.OpMultiply, chunk.OpDivide:
			if err := vm.arith(op); err != nil {
				return err
			}

		case chunk.OpNot:
			vm.push(object.Bool(object.IsFalsey(vm.pop())))
		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError("Operand must be a number.")
			}
			vm.push(object.Number(-vm.pop().AsNumber()))

		case chunk.OpPrint:
			object.Print(vm.Stdout, vm.pop())
			fmt.Fprintln(vm.Stdout)

		case chunk.OpJump:
			off := vm.readU16(fr)
			fr.ip += int(off)
		case chunk.OpJumpIfFalse:
			off := vm.readU16(fr)
			if object.IsFalsey(vm.peek(0)) {
				fr.ip += int(off)
			}
		case chunk.OpLoop:
			off := vm.readU16(fr)
			fr.ip -= int(off)

		case chunk.OpCall:
			argc := int(vm.readByte(fr))
			if !vm.callValue(vm.peek(argc), argc) {
				return vm.lastCallErr
			}
			fr = vm.currentFrame()
		case chunk.OpInvoke:
			name := vm.readString(fr)
			argc := int(vm.readByte(fr))
			if !vm.invoke(name, argc) {
				return vm.lastCallErr
			}
			fr = vm.currentFrame()
		case chunk.OpSuper:
			name := vm.readString(fr)
			argc := int(vm.readByte(fr))
			super := vm.pop().AsObj().(*object.ClassObj)
			if !vm.invokeFromClass(super, name, argc) {
				return vm.lastCallErr
			}
			fr = vm.currentFrame()

		case chunk.OpClosure:
			fn := vm.readConstant(fr).AsObj().(*object.FunctionObj)
			closure := vm.Heap.NewClosure(fn)
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte(fr)
				index := vm.readByte(fr)
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(&vm.stack[fr.base+int(index)])
				} else {
					closure.Upvalues[i] = fr.closure.Upvalues[index]
				}
			}
			vm.push(object.FromObj(closure))
		case chunk.OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case chunk.OpReturn:
			result := vm.pop()
			vm.closeUpvalues(fr.base)
			vm.frameCnt--
			if vm.frameCnt == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = fr.base
			vm.push(result)
			fr = vm.currentFrame()

		case chunk.OpClass:
			name := vm.readString(fr)
			vm.push(object.FromObj(vm.Heap.NewClass(name)))
		case chunk.OpInherit:
			if err := vm.inherit(); err != nil {
				return err
			}
		case chunk.OpMethod:
			name := vm.readString(fr)
			vm.method(name)

		case chunk.OpImport:
			// Reserved: spec.md §9 resolves this as a runtime error rather than
			// a silent no-op, so a host wiring a real loader later can swap the
			// handler without changing the opcode's numeric value.
			path := vm.pop().AsObj().(*object.StringObj)
			return vm.runtimeError("import of '%s' is not supported by this host.", path.Chars)

		default:
			return vm.runtimeError("unknown opcode %d.", byte(op))
		}
	}
}
