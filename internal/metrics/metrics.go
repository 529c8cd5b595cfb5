package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes used as the "outcome" label
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeStale   = "stale"
)

// CoordinatorMetrics defines metrics operations needed by the coordinator.
type CoordinatorMetrics interface {
	ObserveFetch(outcome string, d time.Duration)
	SetAccumulated(n int)
	IncEpochs()
}

// ServerMetrics defines metrics operations needed by the mock server.
type ServerMetrics interface {
	ObserveRequest(route string, status int, d time.Duration)
}

// Collector implements CoordinatorMetrics and ServerMetrics
type Collector struct {
	// Coordinator metrics
	Fetches       *prometheus.CounterVec // labels: outcome
	FetchDuration prometheus.Histogram
	Accumulated   prometheus.Gauge
	Epochs        prometheus.Counter

	// Server metrics
	Requests        *prometheus.CounterVec // labels: route, code
	RequestDuration *prometheus.HistogramVec
}

const namespace = "scrollgrid"

// New creates a Collector registered with reg. A nil reg uses the default
// registry.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		Fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Total number of page fetches by outcome",
		}, []string{"outcome"}),
		FetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time taken by the data provider to answer a page fetch",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		Accumulated: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "accumulated_items",
			Help:      "Number of items currently held by the coordinator",
		}),
		Epochs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "epochs_total",
			Help:      "Total number of filter epochs started",
		}),

		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests served",
		}, []string{"route", "code"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (c *Collector) ObserveFetch(outcome string, d time.Duration) {
	c.Fetches.WithLabelValues(outcome).Inc()
	if outcome != OutcomeStale {
		c.FetchDuration.Observe(d.Seconds())
	}
}

func (c *Collector) SetAccumulated(n int) { c.Accumulated.Set(float64(n)) }
func (c *Collector) IncEpochs()           { c.Epochs.Inc() }

func (c *Collector) ObserveRequest(route string, status int, d time.Duration) {
	c.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Noop discards every observation
type Noop struct{}

func (Noop) ObserveFetch(string, time.Duration)        {}
func (Noop) SetAccumulated(int)                        {}
func (Noop) IncEpochs()                                {}
func (Noop) ObserveRequest(string, int, time.Duration) {}
