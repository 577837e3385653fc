package cubeaccess

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus metrics shared by storage units.
type Metrics struct {
	Opens            *prometheus.CounterVec
	OpenFailures     *prometheus.CounterVec
	ElementsRead     *prometheus.CounterVec
	RangeResolutions *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	opens := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cubeaccess_container_opens_total",
		Help: "Container opens performed by storage units",
	}, []string{"backend"})

	openFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cubeaccess_container_open_failures_total",
		Help: "Container opens that failed",
	}, []string{"backend"})

	elementsRead := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cubeaccess_elements_read_total",
		Help: "Array elements read from containers",
	}, []string{"backend", "kind"})

	rangeResolutions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cubeaccess_range_resolutions_total",
		Help: "Value ranges resolved against loaded axes",
	}, []string{"result"})

	reg.MustRegister(opens, openFailures, elementsRead, rangeResolutions)

	return &Metrics{
		Opens:            opens,
		OpenFailures:     openFailures,
		ElementsRead:     elementsRead,
		RangeResolutions: rangeResolutions,
	}
}

func (m *Metrics) opened(backend string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.OpenFailures.WithLabelValues(backend).Inc()
		return
	}
	m.Opens.WithLabelValues(backend).Inc()
}

func (m *Metrics) read(backend, kind string, n int) {
	if m == nil {
		return
	}
	m.ElementsRead.WithLabelValues(backend, kind).Add(float64(n))
}

// resolved records a range resolution as "hit", "empty" when the range
// fell between samples, or "outside" when the axis bounds already ruled
// it out.
func (m *Metrics) resolved(s Slice, overlaps bool) {
	if m == nil {
		return
	}
	result := "hit"
	switch {
	case !s.Empty():
	case !overlaps:
		result = "outside"
	default:
		result = "empty"
	}
	m.RangeResolutions.WithLabelValues(result).Inc()
}
