package vm

import (
	"fmt"

	"github.com/CabooseLang/Caboose/lang/object"
)

// runtimeError implements spec.md §4.5's runtimeError: it builds the
// message, then unwinds the frame stack top to bottom recording a
// "[line L] in F()" (or "script") trace entry per frame, and finally resets
// the stack so the VM is ready for another Interpret call.
func (vm *VM) runtimeError(format string, args ...any) *RuntimeError {
	return vm.runtimeErrorRaw(format, args...)
}

func (vm *VM) runtimeErrorRaw(format string, args ...any) *RuntimeError {
	msg := fmt.Sprintf(format, args...)
	re := &RuntimeError{Message: msg}

	for i := vm.frameCnt - 1; i >= 0; i-- {
		fr := &vm.frames[i]
		fn := fr.closure.Function
		line := fn.Chunk.Lines[fr.ip-1]
		name := "script"
		if fn.Name != nil {
			name = fn.Name.Chars + "()"
		}
		re.Trace = append(re.Trace, fmt.Sprintf("[line %d] in %s", line, name))
	}

	fmt.Fprintln(vm.Stderr, msg)
	for _, line := range re.Trace {
		fmt.Fprintln(vm.Stderr, line)
	}

	vm.resetStack()
	return re
}

// markRoots marks every Value reachable from the stack, the active frames'
// closures, and the globals table (spec.md §4.6's Roots list).
func (vm *VM) markRoots(mark func(v object.Value)) {
	for i := 0; i < vm.stackTop; i++ {
		mark(vm.stack[i])
	}
	for i := 0; i < vm.frameCnt; i++ {
		mark(object.FromObj(vm.frames[i].closure))
	}
	vm.globals.Iter(func(_ *object.StringObj, v object.Value) bool {
		mark(v)
		return false
	})
	if vm.initStr != nil {
		mark(object.FromObj(vm.initStr))
	}
}

// markObjRoots marks roots that are already Obj values: the open-upvalue
// list (walked via NextOpen) and the globals table's interned string keys.
func (vm *VM) markObjRoots(mark func(o object.Obj)) {
	for uv := vm.openUps; uv != nil; uv = uv.NextOpen {
		mark(uv)
	}
	vm.globals.Iter(func(k *object.StringObj, _ object.Value) bool {
		mark(k)
		return false
	})
}
