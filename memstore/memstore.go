// Package memstore is an in-memory container backend. Each locator holds a
// set of named arrays that are served through the same read-only contract
// as file-backed containers, which makes it useful for callers that
// already hold arrays in memory and for exercising storage units without
// files.
package memstore

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/robert-malhotra/go-cubeaccess/cubeaccess"
	"github.com/robert-malhotra/go-cubeaccess/internal/dtype"
	"github.com/robert-malhotra/go-cubeaccess/internal/hyperslab"
	"github.com/robert-malhotra/go-cubeaccess/internal/selector"
)

// Common errors
var (
	ErrNotFound = errors.New("container not found")
	ErrClosed   = errors.New("container is closed")
	ErrNoField  = errors.New("field not found")
)

// Var is one named array placed in a container. Data is a flat row-major
// typed slice; Shape defaults to the one-dimensional length of Data.
type Var struct {
	Name  string
	Dims  []string
	Shape []int
	Data  interface{}
	Attrs map[string]interface{}
}

type entry struct {
	field cubeaccess.Field
	data  interface{}
}

type dataset struct {
	order   []string
	entries map[string]entry
}

// Store is a registry of in-memory containers keyed by locator.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*dataset

	opens  atomic.Int64
	closes atomic.Int64
}

var _ cubeaccess.Backend = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{datasets: make(map[string]*dataset)}
}

// Name implements cubeaccess.Backend.
func (s *Store) Name() string {
	return "memory"
}

// Put replaces the container at locator with the given variables.
func (s *Store) Put(locator string, vars ...Var) error {
	ds := &dataset{entries: make(map[string]entry, len(vars))}
	for _, v := range vars {
		e, err := newEntry(v)
		if err != nil {
			return fmt.Errorf("variable %q: %w", v.Name, err)
		}
		if _, dup := ds.entries[v.Name]; dup {
			return fmt.Errorf("duplicate variable %q", v.Name)
		}
		ds.order = append(ds.order, v.Name)
		ds.entries[v.Name] = e
	}

	s.mu.Lock()
	s.datasets[locator] = ds
	s.mu.Unlock()
	return nil
}

// Remove deletes the container at locator.
func (s *Store) Remove(locator string) {
	s.mu.Lock()
	delete(s.datasets, locator)
	s.mu.Unlock()
}

func newEntry(v Var) (entry, error) {
	if v.Name == "" {
		return entry{}, fmt.Errorf("empty name")
	}
	dt, err := dtype.Of(v.Data)
	if err != nil {
		return entry{}, err
	}
	shape := slices.Clone(v.Shape)
	if shape == nil {
		shape = []int{dtype.Len(v.Data)}
	}
	if n := hyperslab.NumElements(shape); n != dtype.Len(v.Data) {
		return entry{}, fmt.Errorf("shape %v needs %d elements, data has %d", shape, n, dtype.Len(v.Data))
	}
	if len(v.Dims) != len(shape) {
		return entry{}, fmt.Errorf("%d dimension names for rank %d", len(v.Dims), len(shape))
	}
	return entry{
		field: cubeaccess.Field{
			Name:  v.Name,
			DType: dt,
			Shape: shape,
			Dims:  slices.Clone(v.Dims),
			Attrs: maps.Clone(v.Attrs),
		},
		data: v.Data,
	}, nil
}

// Open implements cubeaccess.Backend. The returned container sees the
// variables present at the time of the call.
func (s *Store) Open(locator string) (cubeaccess.Container, error) {
	s.mu.RLock()
	ds, ok := s.datasets[locator]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
	}
	s.opens.Add(1)
	return &container{store: s, ds: ds}, nil
}

// Opens returns the number of successful opens so far.
func (s *Store) Opens() int64 {
	return s.opens.Load()
}

// Outstanding returns the number of open handles not yet closed.
func (s *Store) Outstanding() int64 {
	return s.opens.Load() - s.closes.Load()
}

type container struct {
	store  *Store
	ds     *dataset
	closed atomic.Bool
}

func (c *container) Fields() ([]cubeaccess.Field, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	fields := make([]cubeaccess.Field, 0, len(c.ds.order))
	for _, name := range c.ds.order {
		fields = append(fields, c.ds.entries[name].field)
	}
	return fields, nil
}

func (c *container) Read(name string, sel []cubeaccess.Slice) (*cubeaccess.Array, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	e, ok := c.ds.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoField, name)
	}
	return selector.Read(e.data, e.field.Shape, sel)
}

func (c *container) Close() error {
	if c.closed.Swap(true) {
		return ErrClosed
	}
	c.store.closes.Add(1)
	return nil
}
