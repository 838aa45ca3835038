package reinterp

import (
	"errors"
	"fmt"
	"io"
	"reflect"
)

// Stream reads and writes records against an underlying byte stream. The
// bytes transferred are each record's native layout, in call order, with no
// framing. Stream does not own the underlying stream and adds no buffering.
type Stream struct {
	r     io.Reader
	w     io.Writer
	cache *Cache
	opts  Options
}

// NewStream returns a Stream that reads from and writes to rw.
func NewStream(rw io.ReadWriter, opts ...Option) (*Stream, error) {
	if isNil(rw) {
		return nil, ErrNilStream
	}
	s := newStream(opts)
	s.r, s.w = rw, rw
	return s, nil
}

// NewReader returns a read-only Stream over r.
func NewReader(r io.Reader, opts ...Option) (*Stream, error) {
	s := newStream(opts)
	if err := s.SetReader(r); err != nil {
		return nil, err
	}
	return s, nil
}

// NewWriter returns a write-only Stream over w.
func NewWriter(w io.Writer, opts ...Option) (*Stream, error) {
	s := newStream(opts)
	if err := s.SetWriter(w); err != nil {
		return nil, err
	}
	return s, nil
}

func newStream(opts []Option) *Stream {
	o := buildOptions(opts)
	return &Stream{cache: &Cache{opts: o}, opts: o}
}

// SetReader swaps the stream reads come from.
func (s *Stream) SetReader(r io.Reader) error {
	if isNil(r) {
		return ErrNilStream
	}
	s.r = r
	return nil
}

// SetWriter swaps the stream writes go to.
func (s *Stream) SetWriter(w io.Writer) error {
	if isNil(w) {
		return ErrNilStream
	}
	s.w = w
	return nil
}

// Reader returns the stream reads come from, nil for a write-only Stream.
func (s *Stream) Reader() io.Reader { return s.r }

// Writer returns the stream writes go to, nil for a read-only Stream.
func (s *Stream) Writer() io.Writer { return s.w }

// Cache returns the reinterpreters this Stream has built so far.
func (s *Stream) Cache() *Cache { return s.cache }

// Options returns the settings the Stream was built with.
func (s *Stream) Options() Options { return s.opts }

// Read reads one T.
func Read[T any](s *Stream) (T, error) {
	var zero T
	r, err := Get[T](s.cache)
	if err != nil {
		return zero, err
	}
	return r.FromBytes(s.fill)
}

// ReadSlice fills dst.
func ReadSlice[T any](s *Stream, dst []T) error {
	return ReadRange(s, dst, 0, len(dst))
}

// ReadRange fills dst[offset:offset+count]. On any read error the range is
// zeroed, so a short stream leaves no partial records behind.
func ReadRange[T any](s *Stream, dst []T, offset, count int) error {
	if err := CheckRange(len(dst), offset, count); err != nil {
		return err
	}
	r, err := Get[T](s.cache)
	if err != nil {
		return err
	}
	return r.WithByteView(dst[offset:offset+count], s.fill)
}

// Write writes one T.
func Write[T any](s *Stream, v T) error {
	r, err := Get[T](s.cache)
	if err != nil {
		return err
	}
	return r.WithValueBytes(v, s.drain)
}

// WriteSlice writes every element of vals.
func WriteSlice[T any](s *Stream, vals []T) error {
	return WriteRange(s, vals, 0, len(vals))
}

// WriteRange writes vals[offset:offset+count].
func WriteRange[T any](s *Stream, vals []T, offset, count int) error {
	if err := CheckRange(len(vals), offset, count); err != nil {
		return err
	}
	r, err := Get[T](s.cache)
	if err != nil {
		return err
	}
	return r.WithByteView(vals[offset:offset+count], s.drain)
}

// CheckRange validates a sub-range of a buffer of n elements.
func CheckRange(n, offset, count int) error {
	if offset < 0 || count < 0 || offset > n || count > n-offset {
		return fmt.Errorf("%w: offset %d count %d length %d", ErrOutOfRange, offset, count, n)
	}
	return nil
}

func (s *Stream) fill(p []byte) error {
	if s.r == nil {
		return ErrNotReadable
	}
	n, err := io.ReadFull(s.r, p)
	if err == nil {
		return nil
	}
	clear(p)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		s.opts.log().Warn("short read", "want", len(p), "got", n)
		return fmt.Errorf("%w: read %d of %d bytes: %w", ErrUnexpectedEndOfStream, n, len(p), io.ErrUnexpectedEOF)
	}
	return fmt.Errorf("reinterp: read: %w", err)
}

// isNil also catches interfaces holding a nil pointer, map, chan, func or slice.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func (s *Stream) drain(p []byte) error {
	if s.w == nil {
		return ErrNotWritable
	}
	if len(p) == 0 {
		return nil
	}
	if _, err := s.w.Write(p); err != nil {
		return fmt.Errorf("reinterp: write: %w", err)
	}
	return nil
}
