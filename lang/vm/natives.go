package vm

import (
	"bufio"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/CabooseLang/Caboose/lang/object"
)

// defineNatives binds the standard native surface into the globals table:
// spec.md §6's named list (clock, time, input, random, ceil, floor, bool,
// num, str, pow, len, print, println, exit) plus the List/Dict/string
// natives SPEC_FULL.md's supplement adds, grounded in the original's
// natives.c/collections.c.
func (vm *VM) defineNatives() {
	start := time.Now()

	vm.defineNative("clock", func(args []object.Value) (object.Value, error) {
		return object.Number(time.Since(start).Seconds()), nil
	})
	vm.defineNative("time", func(args []object.Value) (object.Value, error) {
		return object.Number(float64(time.Now().Unix())), nil
	})
	vm.defineNative("random", func(args []object.Value) (object.Value, error) {
		return object.Number(rand.Float64()), nil
	})
	vm.defineNative("input", func(args []object.Value) (object.Value, error) {
		if len(args) > 0 {
			fmt.Fprint(vm.Stdout, object.FormatValue(args[0]))
		}
		reader := bufio.NewReader(vm.Stdin)
		line, _ := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		return object.FromObj(vm.Heap.TakeString(line)), nil
	})

	vm.defineNative("ceil", numberUnary(func(f float64) float64 {
		if f == float64(int64(f)) {
			return f
		}
		if f > 0 {
			return float64(int64(f)) + 1
		}
		return float64(int64(f))
	}))
	vm.defineNative("floor", numberUnary(func(f float64) float64 {
		if f < 0 && f != float64(int64(f)) {
			return float64(int64(f)) - 1
		}
		return float64(int64(f))
	}))
	vm.defineNative("pow", func(args []object.Value) (object.Value, error) {
		if len(args) != 2 || !args[0].IsNumber() || !args[1].IsNumber() {
			return object.Nil, fmt.Errorf("pow() takes two numbers")
		}
		base, exp := args[0].AsNumber(), args[1].AsNumber()
		result := 1.0
		neg := exp < 0
		n := int64(exp)
		if neg {
			n = -n
		}
		for i := int64(0); i < n; i++ {
			result *= base
		}
		if neg {
			result = 1 / result
		}
		return object.Number(result), nil
	})

	vm.defineNative("bool", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return object.Nil, fmt.Errorf("bool() takes one argument")
		}
		return object.Bool(!object.IsFalsey(args[0])), nil
	})
	vm.defineNative("num", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return object.Nil, fmt.Errorf("num() takes one argument")
		}
		switch {
		case args[0].IsNumber():
			return args[0], nil
		case args[0].IsObj():
			if s, ok := args[0].AsObj().(*object.StringObj); ok {
				var f float64
				if _, err := fmt.Sscanf(s.Chars, "%g", &f); err != nil {
					return object.Nil, fmt.Errorf("cannot convert %q to a number", s.Chars)
				}
				return object.Number(f), nil
			}
		}
		return object.Nil, fmt.Errorf("cannot convert to a number")
	})
	vm.defineNative("str", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return object.Nil, fmt.Errorf("str() takes one argument")
		}
		return object.FromObj(vm.Heap.TakeString(object.FormatValue(args[0]))), nil
	})

	vm.defineNative("len", func(args []object.Value) (object.Value, error) {
		if len(args) != 1 {
			return object.Nil, fmt.Errorf("len() takes one argument")
		}
		switch o := args[0].AsObj().(type) {
		case *object.StringObj:
			return object.Number(float64(len(o.Chars))), nil
		case *object.ListObj:
			return object.Number(float64(o.Len())), nil
		case *object.DictObj:
			return object.Number(float64(o.Len())), nil
		default:
			return object.Nil, fmt.Errorf("len() argument must be a string, list, or dict")
		}
	})

	vm.defineNativeVoid("print", func(args []object.Value) (bool, error) {
		for _, a := range args {
			object.Print(vm.Stdout, a)
		}
		return true, nil
	})
	vm.defineNativeVoid("println", func(args []object.Value) (bool, error) {
		for _, a := range args {
			object.Print(vm.Stdout, a)
			fmt.Fprintln(vm.Stdout)
		}
		if len(args) == 0 {
			fmt.Fprintln(vm.Stdout)
		}
		return true, nil
	})
	vm.defineNativeVoid("exit", func(args []object.Value) (bool, error) {
		code := 0
		if len(args) > 0 && args[0].IsNumber() {
			code = int(args[0].AsNumber())
		}
		vm.ExitFunc(code)
		return true, nil
	})

	vm.defineListNatives()
	vm.defineDictNatives()
	vm.defineStringNatives()
}

func numberUnary(f func(float64) float64) object.NativeFn {
	return func(args []object.Value) (object.Value, error) {
		if len(args) != 1 || !args[0].IsNumber() {
			return object.Nil, fmt.Errorf("expected one number argument")
		}
		return object.Number(f(args[0].AsNumber())), nil
	}
}

func (vm *VM) defineNative(name string, fn object.NativeFn) {
	vm.globals.Set(vm.Heap.CopyString(name), object.FromObj(vm.Heap.NewNative(name, fn)))
}

func (vm *VM) defineNativeVoid(name string, fn object.NativeVoidFn) {
	vm.globals.Set(vm.Heap.CopyString(name), object.FromObj(vm.Heap.NewNativeVoid(name, fn)))
}

// --- List/Dict natives (SPEC_FULL.md §D) ---------------------------------

func (vm *VM) defineListNatives() {
	vm.defineNative("list", func(args []object.Value) (object.Value, error) {
		elems := make([]object.Value, len(args))
		copy(elems, args)
		return object.FromObj(vm.Heap.NewList(elems)), nil
	})
	vm.defineNative("push", func(args []object.Value) (object.Value, error) {
		l, err := asList(args, 0)
		if err != nil {
			return object.Nil, err
		}
		l.Elems = append(l.Elems, args[1:]...)
		return object.FromObj(l), nil
	})
	vm.defineNative("pop", func(args []object.Value) (object.Value, error) {
		l, err := asList(args, 0)
		if err != nil {
			return object.Nil, err
		}
		if l.Len() == 0 {
			return object.Nil, fmt.Errorf("pop() from an empty list")
		}
		idx := l.Len() - 1
		if len(args) > 1 && args[1].IsNumber() {
			idx = l.NormalizeIndex(int(args[1].AsNumber()))
		}
		if idx < 0 || idx >= l.Len() {
			return object.Nil, fmt.Errorf("pop() index out of range")
		}
		v := l.Elems[idx]
		l.Elems = append(l.Elems[:idx], l.Elems[idx+1:]...)
		return v, nil
	})
	vm.defineNative("insert", func(args []object.Value) (object.Value, error) {
		l, err := asList(args, 0)
		if err != nil {
			return object.Nil, err
		}
		if len(args) != 3 || !args[1].IsNumber() {
			return object.Nil, fmt.Errorf("insert() takes an index and a value")
		}
		idx := l.NormalizeIndex(int(args[1].AsNumber()))
		if idx < 0 || idx > l.Len() {
			return object.Nil, fmt.Errorf("insert() index out of range")
		}
		l.Elems = append(l.Elems, object.Nil)
		copy(l.Elems[idx+1:], l.Elems[idx:])
		l.Elems[idx] = args[2]
		return object.FromObj(l), nil
	})
	vm.defineNative("remove", func(args []object.Value) (object.Value, error) {
		l, err := asList(args, 0)
		if err != nil {
			return object.Nil, err
		}
		if len(args) != 2 || !args[1].IsNumber() {
			return object.Nil, fmt.Errorf("remove() takes an index")
		}
		idx := l.NormalizeIndex(int(args[1].AsNumber()))
		if idx < 0 || idx >= l.Len() {
			return object.Nil, fmt.Errorf("remove() index out of range")
		}
		v := l.Elems[idx]
		l.Elems = append(l.Elems[:idx], l.Elems[idx+1:]...)
		return v, nil
	})
	vm.defineNative("sort", func(args []object.Value) (object.Value, error) {
		l, err := asList(args, 0)
		if err != nil {
			return object.Nil, err
		}
		sorted := make([]object.Value, len(l.Elems))
		copy(sorted, l.Elems)
		var sortErr error
		sort.SliceStable(sorted, func(i, j int) bool {
			a, b := sorted[i], sorted[j]
			if a.IsNumber() && b.IsNumber() {
				return a.AsNumber() < b.AsNumber()
			}
			as, aok := a.AsObj().(*object.StringObj)
			bs, bok := b.AsObj().(*object.StringObj)
			if aok && bok {
				return as.Chars < bs.Chars
			}
			sortErr = fmt.Errorf("sort() elements must be all numbers or all strings")
			return false
		})
		if sortErr != nil {
			return object.Nil, sortErr
		}
		return object.FromObj(vm.Heap.NewList(sorted)), nil
	})
	vm.defineNative("copy", func(args []object.Value) (object.Value, error) {
		switch o := valueArg(args, 0).AsObj().(type) {
		case *object.ListObj:
			elems := make([]object.Value, len(o.Elems))
			copy(elems, o.Elems)
			return object.FromObj(vm.Heap.NewList(elems)), nil
		case *object.DictObj:
			return object.FromObj(o.Clone()), nil
		default:
			return object.Nil, fmt.Errorf("copy() argument must be a list or dict")
		}
	})
	vm.defineNative("deepcopy", func(args []object.Value) (object.Value, error) {
		return vm.deepCopy(valueArg(args, 0))
	})
}

func (vm *VM) deepCopy(v object.Value) (object.Value, error) {
	switch o := v.AsObj().(type) {
	case *object.ListObj:
		elems := make([]object.Value, len(o.Elems))
		for i, e := range o.Elems {
			c, err := vm.deepCopy(e)
			if err != nil {
				return object.Nil, err
			}
			elems[i] = c
		}
		return object.FromObj(vm.Heap.NewList(elems)), nil
	case *object.DictObj:
		nd := vm.Heap.NewDict(o.Len())
		var copyErr error
		o.Each(func(k string, val object.Value) bool {
			c, err := vm.deepCopy(val)
			if err != nil {
				copyErr = err
				return true
			}
			nd.Set(k, c)
			return false
		})
		if copyErr != nil {
			return object.Nil, copyErr
		}
		return object.FromObj(nd), nil
	default:
		return v, nil
	}
}

func asList(args []object.Value, i int) (*object.ListObj, error) {
	if len(args) <= i || !args[i].IsObj() {
		return nil, fmt.Errorf("expected a list argument")
	}
	l, ok := args[i].AsObj().(*object.ListObj)
	if !ok {
		return nil, fmt.Errorf("expected a list argument")
	}
	return l, nil
}

func valueArg(args []object.Value, i int) object.Value {
	if len(args) <= i {
		return object.Nil
	}
	return args[i]
}

// --- Dict natives ----------------------------------------------------------

func (vm *VM) defineDictNatives() {
	vm.defineNative("dict", func(args []object.Value) (object.Value, error) {
		return object.FromObj(vm.Heap.NewDict(len(args) / 2)), nil
	})
	vm.defineNative("keys", func(args []object.Value) (object.Value, error) {
		d, err := asDict(args)
		if err != nil {
			return object.Nil, err
		}
		ks := d.Keys()
		elems := make([]object.Value, len(ks))
		for i, k := range ks {
			elems[i] = object.FromObj(vm.Heap.CopyString(k))
		}
		return object.FromObj(vm.Heap.NewList(elems)), nil
	})
	vm.defineNative("values", func(args []object.Value) (object.Value, error) {
		d, err := asDict(args)
		if err != nil {
			return object.Nil, err
		}
		elems := make([]object.Value, 0, d.Len())
		d.Each(func(_ string, v object.Value) bool {
			elems = append(elems, v)
			return false
		})
		return object.FromObj(vm.Heap.NewList(elems)), nil
	})
	vm.defineNative("has", func(args []object.Value) (object.Value, error) {
		d, err := asDict(args)
		if err != nil {
			return object.Nil, err
		}
		if len(args) != 2 {
			return object.Nil, fmt.Errorf("has() takes a key")
		}
		key, err := keyArg(args[1])
		if err != nil {
			return object.Nil, err
		}
		_, ok := d.Get(key)
		return object.Bool(ok), nil
	})
}

func asDict(args []object.Value) (*object.DictObj, error) {
	if len(args) == 0 || !args[0].IsObj() {
		return nil, fmt.Errorf("expected a dict argument")
	}
	d, ok := args[0].AsObj().(*object.DictObj)
	if !ok {
		return nil, fmt.Errorf("expected a dict argument")
	}
	return d, nil
}

func keyArg(v object.Value) (string, error) {
	s, ok := v.AsObj().(*object.StringObj)
	if !ok {
		return "", fmt.Errorf("dict keys must be strings")
	}
	return s.Chars, nil
}

// --- string natives ---------------------------------------------------

func (vm *VM) defineStringNatives() {
	vm.defineNative("upper", stringUnary(vm, strings.ToUpper))
	vm.defineNative("lower", stringUnary(vm, strings.ToLower))
	vm.defineNative("trim", stringUnary(vm, strings.TrimSpace))

	vm.defineNative("split", func(args []object.Value) (object.Value, error) {
		s, err := asString(args, 0)
		if err != nil {
			return object.Nil, err
		}
		sep, err := asString(args, 1)
		if err != nil {
			return object.Nil, err
		}
		parts := strings.Split(s, sep)
		elems := make([]object.Value, len(parts))
		for i, p := range parts {
			elems[i] = object.FromObj(vm.Heap.CopyString(p))
		}
		return object.FromObj(vm.Heap.NewList(elems)), nil
	})
	vm.defineNative("join", func(args []object.Value) (object.Value, error) {
		l, err := asList(args, 0)
		if err != nil {
			return object.Nil, err
		}
		sep, err := asString(args, 1)
		if err != nil {
			return object.Nil, err
		}
		parts := make([]string, len(l.Elems))
		for i, e := range l.Elems {
			parts[i] = object.FormatValue(e)
		}
		return object.FromObj(vm.Heap.TakeString(strings.Join(parts, sep))), nil
	})
	vm.defineNative("find", func(args []object.Value) (object.Value, error) {
		s, err := asString(args, 0)
		if err != nil {
			return object.Nil, err
		}
		sub, err := asString(args, 1)
		if err != nil {
			return object.Nil, err
		}
		return object.Number(float64(strings.Index(s, sub))), nil
	})
	vm.defineNative("substr", func(args []object.Value) (object.Value, error) {
		s, err := asString(args, 0)
		if err != nil {
			return object.Nil, err
		}
		if len(args) < 2 || !args[1].IsNumber() {
			return object.Nil, fmt.Errorf("substr() requires a start index")
		}
		start := int(args[1].AsNumber())
		end := len(s)
		if len(args) > 2 && args[2].IsNumber() {
			end = int(args[2].AsNumber())
		}
		if start < 0 || end > len(s) || start > end {
			return object.Nil, fmt.Errorf("substr() range out of bounds")
		}
		return object.FromObj(vm.Heap.CopyString(s[start:end])), nil
	})
}

func stringUnary(vm *VM, f func(string) string) object.NativeFn {
	return func(args []object.Value) (object.Value, error) {
		s, err := asString(args, 0)
		if err != nil {
			return object.Nil, err
		}
		return object.FromObj(vm.Heap.TakeString(f(s))), nil
	}
}

func asString(args []object.Value, i int) (string, error) {
	if len(args) <= i || !args[i].IsObj() {
		return "", fmt.Errorf("expected a string argument")
	}
	s, ok := args[i].AsObj().(*object.StringObj)
	if !ok {
		return "", fmt.Errorf("expected a string argument")
	}
	return s.Chars, nil
}
