// Package framing adds explicit element counts in front of record slices so
// a reader can size its buffer before reading them back. The count is itself
// a record of type P written in native layout.
package framing

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"golang.org/x/exp/constraints"

	"github.com/rawbytedev/reinterp"
)

var ErrBadCount = errors.New("framing: bad element count")

// chunkBytes bounds how far ReadSlice allocates ahead of the data read.
const chunkBytes = 64 << 10

// WriteSlice writes len(vals) as a P followed by vals.
func WriteSlice[P constraints.Integer, T any](s *reinterp.Stream, vals []T) error {
	return WriteRange[P](s, vals, 0, len(vals))
}

// WriteRange writes count as a P followed by vals[offset:offset+count].
func WriteRange[P constraints.Integer, T any](s *reinterp.Stream, vals []T, offset, count int) error {
	if err := reinterp.CheckRange(len(vals), offset, count); err != nil {
		return err
	}
	n := P(count)
	if n < 0 || int64(n) != int64(count) {
		return fmt.Errorf("%w: %d does not fit the count type", ErrBadCount, count)
	}
	if err := reinterp.Write(s, n); err != nil {
		return err
	}
	return reinterp.WriteRange(s, vals, offset, count)
}

// ReadSlice reads a P count and then that many records into a new slice.
// Counts above the stream's MaxSliceLen are rejected before allocating. The
// slice grows in bounded chunks as records arrive, so a count larger than
// the data behind it ends in reinterp.ErrUnexpectedEndOfStream rather than
// one huge allocation.
func ReadSlice[P constraints.Integer, T any](s *reinterp.Stream) ([]T, error) {
	r, err := reinterp.Get[T](s.Cache())
	if err != nil {
		return nil, err
	}
	n, err := reinterp.Read[P](s)
	if err != nil {
		return nil, err
	}
	if n < 0 || uint64(n) > uint64(math.MaxInt/r.Size()) {
		return nil, fmt.Errorf("%w: %d", ErrBadCount, n)
	}
	if limit := s.Options().MaxSliceLen; limit > 0 && uint64(n) > uint64(limit) {
		return nil, fmt.Errorf("%w: %d exceeds limit %d", ErrBadCount, n, limit)
	}
	remaining := int(n)
	chunk := max(1, chunkBytes/r.Size())
	out := make([]T, 0, min(remaining, chunk))
	for remaining > 0 {
		step := min(remaining, chunk)
		start := len(out)
		out = slices.Grow(out, step)[:start+step]
		if err := reinterp.ReadRange(s, out, start, step); err != nil {
			return nil, err
		}
		remaining -= step
	}
	return out, nil
}
