package notify

import (
	"reflect"
	"weak"
)

// Ref is a non-owning reference to an Observer. Resolve reports false once
// the referenced observer has been destroyed by its owner. A Ref never keeps
// its observer alive.
type Ref interface {
	Resolve() (Observer, bool)
}

// tinySize is the runtime's tiny-allocator bound. Pointer-free objects below
// it share a memory block with unrelated allocations and are not reclaimed
// while any neighbour in the block is alive.
const tinySize = 16

type weakRef[T any, P interface {
	*T
	Observer
}] struct {
	ptr weak.Pointer[T]
}

// Weak returns a Ref backed by a garbage-collector weak pointer. The observer
// stays resolvable for as long as its owner holds a strong reference to it;
// once it becomes unreachable and is collected, Resolve reports false.
//
// Observer types that hold no pointers and are smaller than 16 bytes,
// including zero-sized types, are never reliably collected. Weak returns a
// nil Ref for them, which Registry.Register ignores; own such observers
// through Slots instead.
func Weak[T any, P interface {
	*T
	Observer
}](p P) Ref {
	if !weakCollectable(reflect.TypeFor[T]()) {
		return nil
	}
	return weakRef[T, P]{ptr: weak.Make((*T)(p))}
}

// WeakSupported reports whether observers of type T can be held through Weak.
func WeakSupported[T any]() bool {
	return weakCollectable(reflect.TypeFor[T]())
}

func (r weakRef[T, P]) Resolve() (Observer, bool) {
	p := r.ptr.Value()
	if p == nil {
		return nil, false
	}
	return P(p), true
}

func weakCollectable(t reflect.Type) bool {
	return t.Size() >= tinySize || hasPointers(t)
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan,
		reflect.Func, reflect.Interface, reflect.Slice, reflect.String:
		return true
	case reflect.Array:
		return t.Len() > 0 && hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
