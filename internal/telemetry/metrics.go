package telemetry

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	fetches         *prometheus.CounterVec
	fetchDuration   prometheus.Histogram
	refreshes       *prometheus.CounterVec
	lastRefresh     prometheus.Gauge
	pageBytes       prometheus.Gauge
	loadFailures    *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics registers the service collectors on reg. Collectors that are
// already registered are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outage_page_fetches_total",
			Help: "Upstream outage page fetches by result",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "outage_page_fetch_duration_seconds",
			Help:    "Duration of upstream outage page fetches",
			Buckets: prometheus.DefBuckets,
		}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outage_refreshes_total",
			Help: "Cached page refresh attempts by result",
		}, []string{"result"}),
		lastRefresh: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outage_last_refresh_success_timestamp_seconds",
			Help: "Unix time of the last successful page refresh",
		}),
		pageBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "outage_page_bytes",
			Help: "Size of the last fetched outage page",
		}),
		loadFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outage_load_failures_total",
			Help: "Failed outage loads by kind (fetch, no_article, markup)",
		}, []string{"kind"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "outage_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "outage_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	var err error
	if m.fetches, err = register(reg, m.fetches); err != nil {
		return nil, err
	}
	if m.fetchDuration, err = register(reg, m.fetchDuration); err != nil {
		return nil, err
	}
	if m.refreshes, err = register(reg, m.refreshes); err != nil {
		return nil, err
	}
	if m.lastRefresh, err = register(reg, m.lastRefresh); err != nil {
		return nil, err
	}
	if m.pageBytes, err = register(reg, m.pageBytes); err != nil {
		return nil, err
	}
	if m.loadFailures, err = register(reg, m.loadFailures); err != nil {
		return nil, err
	}
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.requestDuration, err = register(reg, m.requestDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveFetch records one upstream fetch.
func (m *Metrics) ObserveFetch(d time.Duration, size int, err error) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
	if err != nil {
		m.fetches.WithLabelValues("error").Inc()
		return
	}
	m.fetches.WithLabelValues("ok").Inc()
	m.pageBytes.Set(float64(size))
}

// ObserveRefresh records one refresh attempt of the cached page.
func (m *Metrics) ObserveRefresh(at time.Time, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.refreshes.WithLabelValues("error").Inc()
		return
	}
	m.refreshes.WithLabelValues("ok").Inc()
	m.lastRefresh.Set(float64(at.Unix()))
}

// ObserveLoadFailure counts a request that could not produce a schedule.
func (m *Metrics) ObserveLoadFailure(kind string) {
	if m == nil {
		return
	}
	m.loadFailures.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
