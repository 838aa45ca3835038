package reinterp

import (
	"fmt"
	"reflect"
)

// WriteValue writes v, whose record type is only known at run time. v may be
// a record, a non-nil pointer to one, or a slice of records.
func (s *Stream) WriteValue(v any) error {
	rv := reflect.ValueOf(v)
	if rv.IsValid() && rv.Kind() != reflect.Pointer && rv.Kind() != reflect.Slice {
		// addressable copy
		p := reflect.New(rv.Type())
		p.Elem().Set(rv)
		rv = p
	}
	b, err := s.valueBytes(rv)
	if err != nil {
		return err
	}
	return s.drain(b)
}

// ReadValue fills dst, a non-nil pointer to a record or a slice of records.
func (s *Stream) ReadValue(dst any) error {
	b, err := s.valueBytes(reflect.ValueOf(dst))
	if err != nil {
		return err
	}
	return s.fill(b)
}

func (s *Stream) valueBytes(rv reflect.Value) ([]byte, error) {
	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() {
			return nil, fmt.Errorf("%w: nil %s", ErrNotRecord, rv.Type())
		}
		l, err := s.cache.layout(rv.Type().Elem())
		if err != nil {
			return nil, err
		}
		return rawBytes(rv.UnsafePointer(), l.Size), nil
	case reflect.Slice:
		l, err := s.cache.layout(rv.Type().Elem())
		if err != nil {
			return nil, err
		}
		if rv.Len() == 0 {
			return nil, nil
		}
		return rawBytes(rv.UnsafePointer(), rv.Len()*l.Size), nil
	case reflect.Invalid:
		return nil, fmt.Errorf("%w: nil", ErrNotRecord)
	default:
		return nil, fmt.Errorf("%w: %s", ErrNotRecord, rv.Type())
	}
}
