package engine

import (
	"fmt"
	"reflect"
	"runtime"
	"unsafe"
)

const wordSize = unsafe.Sizeof(uintptr(0))

// makeWordFunc binds fptr, a pointer to a func variable, to call. Each
// argument and the result travel as a single machine word, which covers the
// integer and pointer signatures of the engine's entry points on both 32- and
// 64-bit targets.
func makeWordFunc(fptr any, call func(args ...uintptr) uintptr) error {
	v := reflect.ValueOf(fptr)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Func {
		return fmt.Errorf("%T is not a pointer to a func", fptr)
	}

	ty := v.Elem().Type()
	if err := checkSignature(ty); err != nil {
		return err
	}

	fn := reflect.MakeFunc(ty, func(in []reflect.Value) []reflect.Value {
		args := make([]uintptr, len(in))
		for i, a := range in {
			args[i] = argWord(a)
		}
		r := call(args...)
		runtime.KeepAlive(in)

		if ty.NumOut() == 0 {
			return nil
		}
		return []reflect.Value{resultValue(ty.Out(0), r)}
	})
	v.Elem().Set(fn)
	return nil
}

func checkSignature(ty reflect.Type) error {
	if ty.IsVariadic() {
		return fmt.Errorf("variadic %s is not supported", ty)
	}
	for i := range ty.NumIn() {
		if !isWord(ty.In(i)) {
			return fmt.Errorf("argument %d of %s does not fit a machine word", i, ty)
		}
	}
	switch ty.NumOut() {
	case 0:
	case 1:
		if !isWord(ty.Out(0)) {
			return fmt.Errorf("result of %s does not fit a machine word", ty)
		}
	default:
		return fmt.Errorf("%s returns more than one value", ty)
	}
	return nil
}

func isWord(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool, reflect.Pointer, reflect.UnsafePointer:
		return true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return t.Size() <= wordSize
	}
	return false
}

// argWord sign-extends signed integers, so a negative mode reaches the
// callee as the same two's complement value.
func argWord(v reflect.Value) uintptr {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uintptr(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return uintptr(v.Uint())
	case reflect.Pointer, reflect.UnsafePointer:
		return uintptr(v.UnsafePointer())
	}
	panic("engine: unsupported argument kind " + v.Kind().String())
}

// resultValue keeps only the bits of r that belong to the result type; the
// upper half of the return register is undefined for 32-bit results.
func resultValue(ty reflect.Type, r uintptr) reflect.Value {
	v := reflect.New(ty).Elem()
	switch ty.Kind() {
	case reflect.Bool:
		v.SetBool(uint32(r) != 0)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		v.SetInt(int64(r))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		v.SetUint(uint64(r))
	case reflect.UnsafePointer:
		v.SetPointer(*(*unsafe.Pointer)(unsafe.Pointer(&r)))
	case reflect.Pointer:
		p := *(*unsafe.Pointer)(unsafe.Pointer(&r))
		v.Set(reflect.NewAt(ty.Elem(), p).Convert(ty))
	}
	return v
}
