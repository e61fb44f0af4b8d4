package vm

import (
	"unsafe"

	"github.com/CabooseLang/Caboose/lang/chunk"
	"github.com/CabooseLang/Caboose/lang/object"
	"golang.org/x/exp/maps"
)

// callValue implements spec.md §4.5's CALL dispatch: the callable sits at
// stackTop[-argc-1]. Returns false (and records lastCallErr) on any failure.
func (vm *VM) callValue(callee object.Value, argc int) bool {
	if !callee.IsObj() {
		vm.lastCallErr = vm.runtimeErrorRaw("Can only call functions and classes.")
		return false
	}
	switch o := callee.AsObj().(type) {
	case *object.ClosureObj:
		return vm.call(o, argc)
	case *object.ClassObj:
		instance := vm.Heap.NewInstance(o)
		vm.stack[vm.stackTop-argc-1] = object.FromObj(instance)
		if init, ok := o.FindMethod("init"); ok {
			return vm.call(init, argc)
		}
		if argc != 0 {
			vm.lastCallErr = vm.runtimeErrorRaw("Expected 0 arguments but got %d.", argc)
			return false
		}
		return true
	case *object.BoundMethodObj:
		vm.stack[vm.stackTop-argc-1] = o.Receiver
		return vm.call(o.Method, argc)
	case *object.NativeObj:
		args := vm.stack[vm.stackTop-argc : vm.stackTop]
		result, err := o.Fn(args)
		if err != nil {
			vm.lastCallErr = vm.runtimeErrorRaw("%s", err.Error())
			return false
		}
		vm.stackTop -= argc + 1
		vm.push(result)
		return true
	case *object.NativeVoidObj:
		args := vm.stack[vm.stackTop-argc : vm.stackTop]
		_, err := o.Fn(args)
		if err != nil {
			vm.lastCallErr = vm.runtimeErrorRaw("%s", err.Error())
			return false
		}
		vm.stackTop -= argc + 1
		vm.push(object.Nil)
		return true
	default:
		vm.lastCallErr = vm.runtimeErrorRaw("Can only call functions and classes.")
		return false
	}
}

func (vm *VM) call(closure *object.ClosureObj, argc int) bool {
	if argc != closure.Function.Arity {
		vm.lastCallErr = vm.runtimeErrorRaw("Expected %d arguments but got %d.", closure.Function.Arity, argc)
		return false
	}
	if vm.frameCnt == framesMax {
		vm.lastCallErr = vm.runtimeErrorRaw("Stack overflow.")
		return false
	}
	vm.frames[vm.frameCnt] = CallFrame{closure: closure, base: vm.stackTop - argc - 1}
	vm.frameCnt++
	return true
}

func (vm *VM) invoke(name *object.StringObj, argc int) bool {
	receiver := vm.peek(argc)
	instance, ok := receiver.AsObj().(*object.InstanceObj)
	if !ok {
		vm.lastCallErr = vm.runtimeErrorRaw("Only instances have methods.")
		return false
	}
	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argc-1] = field
		return vm.callValue(field, argc)
	}
	return vm.invokeFromClass(instance.Class, name, argc)
}

func (vm *VM) invokeFromClass(class *object.ClassObj, name *object.StringObj, argc int) bool {
	method, ok := class.FindMethod(name.Chars)
	if !ok {
		vm.lastCallErr = vm.runtimeErrorRaw("Undefined property '%s'.", name.Chars)
		return false
	}
	return vm.call(method, argc)
}

func (vm *VM) bindMethod(class *object.ClassObj, name *object.StringObj, receiver object.Value) error {
	method, ok := class.FindMethod(name.Chars)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.Chars)
	}
	bound := vm.Heap.NewBoundMethod(receiver, method)
	vm.push(object.FromObj(bound))
	return nil
}

func (vm *VM) getProperty(fr *CallFrame) error {
	name := vm.readString(fr)
	receiver := vm.peek(0)
	instance, ok := receiver.AsObj().(*object.InstanceObj)
	if !ok {
		return vm.runtimeError("Only instances have properties.")
	}
	if v, ok := instance.Fields.Get(name); ok {
		vm.pop()
		vm.push(v)
		return nil
	}
	vm.pop()
	return vm.bindMethod(instance.Class, name, receiver)
}

func (vm *VM) setProperty(fr *CallFrame) error {
	name := vm.readString(fr)
	receiver := vm.peek(1)
	instance, ok := receiver.AsObj().(*object.InstanceObj)
	if !ok {
		return vm.runtimeError("Only instances have fields.")
	}
	instance.Fields.Set(name, vm.peek(0))
	value := vm.pop()
	vm.pop()
	vm.push(value)
	return nil
}

// inherit implements OP_INHERIT: a shallow copy of every method from the
// superclass's table into the subclass's, via x/exp/maps.Copy — the same
// dependency the teacher's go.mod carries, applied here to the one place
// spec.md §4.5 calls for an unconditional table copy.
func (vm *VM) inherit() error {
	superVal := vm.peek(1)
	superClass, ok := superVal.AsObj().(*object.ClassObj)
	if !ok {
		return vm.runtimeError("Superclass must be a class.")
	}
	subClass := vm.peek(0).AsObj().(*object.ClassObj)
	maps.Copy(subClass.Methods, superClass.Methods)
	subClass.Super = superClass
	vm.pop() // subclass popped, superclass stays as the "super" local
	return nil
}

func (vm *VM) method(name *object.StringObj) {
	methodVal := vm.peek(0)
	class := vm.peek(1).AsObj().(*object.ClassObj)
	class.Methods[name.Chars] = methodVal.AsObj().(*object.ClosureObj)
	vm.pop()
}

// --- upvalues ------------------------------------------------------------

// captureUpvalue finds or creates an open upvalue for slot, keeping
// vm.openUps sorted by descending address so closeUpvalues can stop early.
func (vm *VM) captureUpvalue(slot *object.Value) *object.UpvalueObj {
	var prev *object.UpvalueObj
	cur := vm.openUps
	for cur != nil && addrOf(cur.Location) > addrOf(slot) {
		prev = cur
		cur = cur.NextOpen
	}
	if cur != nil && cur.Location == slot {
		return cur
	}

	created := vm.Heap.NewUpvalue(slot)
	created.NextOpen = cur
	if prev == nil {
		vm.openUps = created
	} else {
		prev.NextOpen = created
	}
	return created
}

// closeUpvalues closes every open upvalue whose location is at or above the
// stack index `from`, copying the live value into Closed and unlinking it.
func (vm *VM) closeUpvalues(from int) {
	fromAddr := addrOf(&vm.stack[from])
	for vm.openUps != nil && addrOf(vm.openUps.Location) >= fromAddr {
		uv := vm.openUps
		uv.Close()
		vm.openUps = uv.NextOpen
	}
}

func addrOf(v *object.Value) uintptr { return uintptr(unsafe.Pointer(v)) }

// --- arithmetic ------------------------------------------------------------

func (vm *VM) numericCompare(op chunk.OpCode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	if op == chunk.OpGreater {
		vm.push(object.Bool(a > b))
	} else {
		vm.push(object.Bool(a < b))
	}
	return nil
}

func (vm *VM) arith(op chunk.OpCode) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	switch op {
	case chunk.OpSubtract:
		vm.push(object.Number(a - b))
	case chunk.OpMultiply:
		vm.push(object.Number(a * b))
	case chunk.OpDivide:
		vm.push(object.Number(a / b))
	}
	return nil
}

// add implements spec.md §4.5's ADD: string+string concatenates (and
// interns the result), number+number adds, anything else is an error.
func (vm *VM) add() error {
	b := vm.peek(0)
	a := vm.peek(1)

	bs, bIsStr := b.AsObj().(*object.StringObj)
	as, aIsStr := a.AsObj().(*object.StringObj)
	switch {
	case b.IsObj() && a.IsObj() && bIsStr && aIsStr:
		vm.pop()
		vm.pop()
		vm.push(object.FromObj(vm.Heap.TakeString(as.Chars + bs.Chars)))
		return nil
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(object.Number(a.AsNumber() + b.AsNumber()))
		return nil
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}
