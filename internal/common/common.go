package common

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	ErrNotFlat   = errors.New("type holds references")
	ErrZeroSize  = errors.New("type has zero size")
	ErrNilLayout = errors.New("nil type")
)

// Layout describes the native in-memory shape of one record type.
type Layout struct {
	Type  reflect.Type
	Size  int
	Align int
}

var (
	mu      sync.RWMutex
	layouts = make(map[reflect.Type]Layout)
)

// LayoutOf returns the cached layout of t, computing it on first use.
func LayoutOf(t reflect.Type) (Layout, error) {
	if t == nil {
		return Layout{}, ErrNilLayout
	}
	mu.RLock()
	if l, ok := layouts[t]; ok {
		mu.RUnlock()
		return l, nil
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check
	if l, ok := layouts[t]; ok {
		return l, nil
	}
	if !IsFlat(t) {
		return Layout{}, fmt.Errorf("%s: %w", t, ErrNotFlat)
	}
	if t.Size() == 0 {
		return Layout{}, fmt.Errorf("%s: %w", t, ErrZeroSize)
	}
	l := Layout{Type: t, Size: int(t.Size()), Align: t.Align()}
	layouts[t] = l
	return l, nil
}

// IsFixedKind reports whether k is a fixed-size scalar kind for which every
// bit pattern is a valid value. Bool is excluded: a byte other than 0 or 1
// read into a bool breaks comparisons.
func IsFixedKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// IsFlat reports whether values of t hold no references the garbage
// collector has to trace, so their bytes may be viewed and written freely.
func IsFlat(t reflect.Type) bool {
	k := t.Kind()
	if IsFixedKind(k) {
		return true
	}
	switch k {
	case reflect.Array:
		return IsFlat(t.Elem())
	case reflect.Struct:
		for i := 0; i < t.NumField(); i++ {
			if !IsFlat(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
