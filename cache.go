package reinterp

import (
	"fmt"
	"reflect"

	"go.hasen.dev/generic"

	"github.com/rawbytedev/reinterp/internal/common"
)

// Cache holds one Reinterpreter per record type, built on first request,
// plus the layouts of record types only known at run time.
// The zero value is ready to use. A Cache is not safe for concurrent use.
type Cache struct {
	entries map[reflect.Type]any
	layouts map[reflect.Type]common.Layout
	opts    Options
}

// NewCache returns an empty cache whose reinterpreters share opts.
func NewCache(opts ...Option) *Cache {
	return &Cache{opts: buildOptions(opts)}
}

// Get returns the reinterpreter for T held by c, building it if needed.
func Get[T any](c *Cache) (*Reinterpreter[T], error) {
	t := reflect.TypeFor[T]()
	if r, ok := c.entries[t]; ok {
		return r.(*Reinterpreter[T]), nil
	}
	c.opts.log().Debug("cache miss", "type", t.String())
	r, err := newReinterpreter[T](c.opts)
	if err != nil {
		return nil, err
	}
	generic.InitMap(&c.entries)
	c.entries[t] = r
	return r, nil
}

// Len reports how many record types have a reinterpreter.
func (c *Cache) Len() int { return len(c.entries) }

// layout describes a record type only known at run time.
func (c *Cache) layout(t reflect.Type) (common.Layout, error) {
	if l, ok := c.layouts[t]; ok {
		return l, nil
	}
	c.opts.log().Debug("cache miss", "type", t.String())
	l, err := common.LayoutOf(t)
	if err != nil {
		return common.Layout{}, fmt.Errorf("%w: %w", ErrUnsupportedType, err)
	}
	generic.InitMap(&c.layouts)
	c.layouts[t] = l
	return l, nil
}
