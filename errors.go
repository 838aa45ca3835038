package reinterp

import "errors"

// Layout errors
var (
	ErrUnsupportedType = errors.New("reinterp: record type must be fixed-size and free of references")
	ErrInvalidLength   = errors.New("reinterp: byte length is not a multiple of the record size")
	ErrMisaligned      = errors.New("reinterp: byte buffer is not aligned for the record type")
)

// Stream errors
var (
	ErrUnexpectedEndOfStream = errors.New("reinterp: unexpected end of stream")
	ErrNilStream             = errors.New("reinterp: stream can not be nil")
	ErrNotReadable           = errors.New("reinterp: stream is not readable")
	ErrNotWritable           = errors.New("reinterp: stream is not writable")
	ErrOutOfRange            = errors.New("reinterp: offset and count out of range")
	ErrNotRecord             = errors.New("reinterp: expected pointer to or slice of a flat record")
)
