package ocragent

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	inFlightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ocr_in_flight_requests",
		Help: "Number of currently pending and processed requests.",
	})
	counter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ocr_api_requests_total",
			Help: "A counter for requests to the wrapped handler.",
		},
		[]string{"code", "method"},
	)

	// duration is partitioned by the HTTP method and handler. Inference
	// dominates, hence the long upper buckets.
	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocr_request_duration_seconds",
			Help:    "A histogram of latencies for requests.",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"handler", "method"},
	)

	// requestSize has no labels, making it a zero-dimensional ObserverVec.
	requestSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ocr_request_size_bytes",
			Help:    "A histogram of request sizes.",
			Buckets: []float64{1024, 10240, 102400, 1048576, 5242880, 10485760},
		},
		[]string{},
	)

	registerMetricsOnce sync.Once
)

// InstrumentOcrHandler wraps an OCR handler to provide prometheus metrics.
// Both the multipart and the base64 handler go through this chain.
func InstrumentOcrHandler(handlerName string, ocrHandler http.Handler) http.Handler {
	registerMetricsOnce.Do(func() {
		prometheus.MustRegister(inFlightGauge, counter, duration, requestSize)
	})

	ocrChain := promhttp.InstrumentHandlerInFlight(inFlightGauge,
		promhttp.InstrumentHandlerDuration(duration.MustCurryWith(prometheus.Labels{"handler": handlerName}),
			promhttp.InstrumentHandlerCounter(counter,
				promhttp.InstrumentHandlerRequestSize(requestSize, ocrHandler),
			),
		),
	)
	return ocrChain
}
