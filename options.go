package reinterp

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Options controls how reinterpreters and streams behave.
type Options struct {
	// StrictAlignment makes byte buffers that are not aligned for the record
	// type fail with ErrMisaligned instead of being bounced through an
	// aligned copy.
	StrictAlignment bool `yaml:"strict_alignment"`

	// MaxSliceLen bounds the element count accepted by length-prefixed reads.
	// Zero means no limit.
	MaxSliceLen int `yaml:"max_slice_len"`

	Logger Logger `yaml:"-"`
}

// Option mutates Options.
type Option func(*Options)

// WithStrictAlignment sets Options.StrictAlignment.
func WithStrictAlignment(strict bool) Option {
	return func(o *Options) { o.StrictAlignment = strict }
}

// WithMaxSliceLen sets Options.MaxSliceLen.
func WithMaxSliceLen(n int) Option {
	return func(o *Options) { o.MaxSliceLen = n }
}

// WithLogger routes diagnostics to l. A nil logger discards them.
func WithLogger(l Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithOptions replaces every setting with o.
func WithOptions(o Options) Option {
	return func(dst *Options) { *dst = o }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o *Options) log() Logger {
	if o.Logger == nil {
		return noopLogger{}
	}
	return o.Logger
}

// ParseOptions decodes YAML configuration. Unknown keys are rejected and an
// empty document yields the zero Options.
func ParseOptions(data []byte) (Options, error) {
	var o Options
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&o); err != nil && !errors.Is(err, io.EOF) {
		return Options{}, fmt.Errorf("reinterp: parse options: %w", err)
	}
	if o.MaxSliceLen < 0 {
		return Options{}, fmt.Errorf("reinterp: parse options: max_slice_len %d is negative", o.MaxSliceLen)
	}
	return o, nil
}
