package cubeaccess

import (
	"maps"

	"github.com/charmbracelet/log"
)

// Option configures a Unit.
type Option func(*unitOptions)

type unitOptions struct {
	coords      map[string]Coordinate
	vars        map[string]Variable
	noDataAttrs []string
	logger      *log.Logger
	metrics     *Metrics
}

// WithMetadata injects precomputed coordinate and variable maps, e.g. from a
// catalog that already holds the schema. The container is then not opened
// at construction. Both maps must be non-empty to take effect; otherwise the
// unit falls back to introspection.
func WithMetadata(coords map[string]Coordinate, vars map[string]Variable) Option {
	return func(o *unitOptions) {
		o.coords = maps.Clone(coords)
		o.vars = maps.Clone(vars)
	}
}

// WithNoDataAttrs replaces the prioritized attribute names consulted for
// nodata values during introspection.
func WithNoDataAttrs(names ...string) Option {
	return func(o *unitOptions) {
		o.noDataAttrs = append([]string{}, names...)
	}
}

// WithLogger sets the logger used for open/close and range resolution
// tracing. The default is the module logger.
func WithLogger(l *log.Logger) Option {
	return func(o *unitOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics records container opens and element counts on m.
func WithMetrics(m *Metrics) Option {
	return func(o *unitOptions) {
		o.metrics = m
	}
}
