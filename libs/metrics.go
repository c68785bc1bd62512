package libs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry  *prometheus.Registry
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
	FeeQuotes *prometheus.CounterVec
}

func NewMetrics(service string) *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pcbshop",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pcbshop",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"route"})
	feeQuotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pcbshop",
		Subsystem: service,
		Name:      "shipping_fee_quotes_total",
		Help:      "Carrier fee quotes by outcome.",
	}, []string{"outcome"})

	registry.MustRegister(requests, latency, feeQuotes)
	return &Metrics{registry: registry, Requests: requests, LatencyMS: latency, FeeQuotes: feeQuotes}
}

func (m *Metrics) ObserveFeeQuote(outcome string) {
	if m == nil {
		return
	}
	m.FeeQuotes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
