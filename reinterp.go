// Package reinterp presents a buffer of fixed-layout records and the bytes
// backing it as two views of the same memory, without copying, and builds a
// typed record stream on top of that.
//
// A record type is any fixed-size type free of references: numeric scalars,
// arrays of records and structs whose fields are records. Bools are refused
// because arbitrary bytes are not always valid bools. Bytes are the host's
// native in-memory layout, padding included; nothing is byte-swapped.
//
// Views handed to a callback alias the caller's buffer and are only valid
// until the callback returns. A Reinterpreter, a Cache and a Stream each
// belong to one goroutine at a time.
package reinterp

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/rawbytedev/reinterp/internal/common"
)

// Reinterpreter converts between []T and []byte views of the same memory.
type Reinterpreter[T any] struct {
	typ   reflect.Type
	size  int
	align int
	opts  Options

	byteStub   []byte
	structStub []T
	scratch    [1]T
}

// New builds the reinterpreter for T. It fails with ErrUnsupportedType when
// T has zero size or holds references.
func New[T any](opts ...Option) (*Reinterpreter[T], error) {
	return newReinterpreter[T](buildOptions(opts))
}

func newReinterpreter[T any](o Options) (*Reinterpreter[T], error) {
	t := reflect.TypeFor[T]()
	l, err := common.LayoutOf(t)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}
	o.log().Debug("reinterpreter built", "type", t.String(), "size", l.Size, "align", l.Align)
	return &Reinterpreter[T]{
		typ:        t,
		size:       l.Size,
		align:      l.Align,
		opts:       o,
		byteStub:   []byte{},
		structStub: []T{},
	}, nil
}

// Size is the number of bytes one T occupies.
func (r *Reinterpreter[T]) Size() int { return r.size }

// WithByteView calls fn with the bytes of buf. A nil buf yields a nil view
// and an empty one an empty view. Writes through the view change buf.
func (r *Reinterpreter[T]) WithByteView(buf []T, fn func([]byte) error) error {
	if buf == nil {
		return fn(nil)
	}
	if len(buf) == 0 {
		return fn(r.byteStub)
	}
	v := r.openRecords(buf)
	defer v.release()
	return fn(v.bytes)
}

// WithStructView calls fn with b viewed as records. len(b) must be a
// multiple of Size, otherwise ErrInvalidLength is returned and fn is not
// called.
func (r *Reinterpreter[T]) WithStructView(b []byte, fn func([]T) error) error {
	if b == nil {
		return fn(nil)
	}
	if len(b) == 0 {
		return fn(r.structStub)
	}
	if len(b)%r.size != 0 {
		return fmt.Errorf("%w: %d bytes for %s of size %d", ErrInvalidLength, len(b), r.typ, r.size)
	}
	v, err := r.openBytes(b)
	if err != nil {
		return err
	}
	defer v.release()
	return fn(v.records)
}

// WithValueBytes calls fn with the bytes of a copy of v held in the
// reinterpreter's scratch slot.
func (r *Reinterpreter[T]) WithValueBytes(v T, fn func([]byte) error) error {
	r.scratch[0] = v
	return r.WithByteView(r.scratch[:], fn)
}

// WithRefBytes calls fn with the bytes of *v itself, so changes made through
// the view are visible in *v afterwards. A nil v yields a nil view.
func (r *Reinterpreter[T]) WithRefBytes(v *T, fn func([]byte) error) error {
	if v == nil {
		return fn(nil)
	}
	return r.WithByteView(unsafe.Slice(v, 1), fn)
}

// FromBytes zeroes the scratch slot, lets fn fill its bytes and returns the
// resulting value.
func (r *Reinterpreter[T]) FromBytes(fn func([]byte) error) (T, error) {
	var zero T
	r.scratch[0] = zero
	if err := r.WithByteView(r.scratch[:], fn); err != nil {
		return zero, err
	}
	return r.scratch[0], nil
}

// AsStruct decodes exactly one record from b.
func (r *Reinterpreter[T]) AsStruct(b []byte) (T, error) {
	var out T
	if len(b) != r.size {
		return out, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidLength, r.size, len(b))
	}
	err := r.WithStructView(b, func(records []T) error {
		out = records[0]
		return nil
	})
	return out, err
}

// view is one live reinterpretation. release ends it and must run on every
// exit path of the call that opened it.
type view[T any] struct {
	records []T
	bytes   []byte
	size    int

	// records is an aligned copy of bytes, written back on release
	bounced bool
}

func (v *view[T]) release() {
	if v.bounced {
		copy(v.bytes, bytesOf(v.records, v.size))
	}
	v.records, v.bytes = nil, nil
}

func (r *Reinterpreter[T]) openRecords(buf []T) view[T] {
	return view[T]{records: buf, bytes: bytesOf(buf, r.size), size: r.size}
}

func (r *Reinterpreter[T]) openBytes(b []byte) (view[T], error) {
	v := view[T]{bytes: b, size: r.size}
	if uintptr(unsafe.Pointer(unsafe.SliceData(b)))%uintptr(r.align) == 0 {
		v.records = recordsOf[T](b, r.size)
		return v, nil
	}
	if r.opts.StrictAlignment {
		return view[T]{}, fmt.Errorf("%w: %s needs %d-byte alignment", ErrMisaligned, r.typ, r.align)
	}
	r.opts.log().Debug("bouncing misaligned buffer", "type", r.typ.String(), "bytes", len(b))
	v.records = make([]T, len(b)/r.size)
	copy(bytesOf(v.records, r.size), b)
	v.bounced = true
	return v, nil
}

func bytesOf[T any](s []T, size int) []byte {
	return rawBytes(unsafe.Pointer(unsafe.SliceData(s)), len(s)*size)
}

func rawBytes(p unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(p), n)
}

func recordsOf[T any](b []byte, size int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), len(b)/size)
}
