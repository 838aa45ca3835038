// Package zstdio runs record streams over zstd-compressed byte streams.
package zstdio

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/rawbytedev/reinterp"
)

// NewWriter returns a write-only Stream whose bytes are compressed into w.
// Closing the returned Closer flushes the final frame; it does not close w.
func NewWriter(w io.Writer, opts ...reinterp.Option) (*reinterp.Stream, io.Closer, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, nil, fmt.Errorf("zstdio: new encoder: %w", err)
	}
	s, err := reinterp.NewWriter(enc, opts...)
	if err != nil {
		enc.Close()
		return nil, nil, err
	}
	return s, enc, nil
}

// NewReader returns a read-only Stream that decompresses r. Closing the
// returned Closer releases the decoder; it does not close r.
func NewReader(r io.Reader, opts ...reinterp.Option) (*reinterp.Stream, io.Closer, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("zstdio: new decoder: %w", err)
	}
	rc := dec.IOReadCloser()
	s, err := reinterp.NewReader(rc, opts...)
	if err != nil {
		rc.Close()
		return nil, nil, err
	}
	return s, rc, nil
}
