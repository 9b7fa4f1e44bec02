package main

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Slideshow metrics
var (
	ticksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slideshow_ticks_total",
			Help: "Total number of slideshow ticks by result",
		},
		[]string{"result"}, // "shown", "failed"
	)

	loadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "slideshow_image_load_duration_seconds",
			Help:    "Time spent reading and decoding one image",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
	)

	failureMemoHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slideshow_failure_memo_hits_total",
			Help: "Picks that hit a recently failed path and were skipped without reading it",
		},
	)

	failureBackoffs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slideshow_failure_backoffs_total",
			Help: "Times the retry was delayed after too many consecutive load failures",
		},
	)
)

// Discovery metrics
var (
	discoveredFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "slideshow_discovered_files",
			Help: "Number of files found by the last discovery run",
		},
	)

	discoveryErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slideshow_discovery_errors_total",
			Help: "File-system errors encountered while scanning the image folder",
		},
	)
)

// serveMetrics exposes /metrics on addr in the background. The returned
// server is nil when addr is empty.
func serveMetrics(addr string) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		infoLog("Serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errorLog("Metrics server stopped: %v", err)
		}
	}()
	return srv
}
