package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface, the store, the Canvas gateway and the background refresh
// machinery. It satisfies the observer ports of the canvas and refresh
// packages so wiring stays one-directional.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	storeRead       prometheus.Observer
	storeWrite      prometheus.Observer
	storeHitRatio   prometheus.Gauge
	storeHits       prometheus.Counter
	storeMisses     prometheus.Counter
	canvasDuration  *prometheus.HistogramVec
	downloadsTotal  prometheus.Counter
	downloadBytes   prometheus.Counter
	extractions     *prometheus.CounterVec
	schedulerRuns   *prometheus.CounterVec

	storeHitCount  uint64
	storeMissCount uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	storeRead := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_read_seconds",
		Help:    "Latency for store reads",
		Buckets: prometheus.DefBuckets,
	})

	storeWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_write_seconds",
		Help:    "Latency for store writes",
		Buckets: prometheus.DefBuckets,
	})

	storeHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "store_hit_ratio",
		Help: "Ratio of store hits to total store reads",
	})

	storeHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_hits_total",
		Help: "Total store reads that found a value",
	})

	storeMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "store_misses_total",
		Help: "Total store reads that found nothing",
	})

	canvasDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "canvas_request_duration_seconds",
		Help:    "Duration of Canvas API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"resource", "status"})

	downloadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "file_downloads_total",
		Help: "Total course files downloaded into the cache",
	})

	downloadBytes := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "file_download_bytes_total",
		Help: "Total bytes downloaded into the file cache",
	})

	extractions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "text_extractions_total",
		Help: "Text extraction attempts by format and outcome",
	}, []string{"format", "outcome"})

	schedulerRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "refresh_runs_total",
		Help: "Background refresh runs per consumer",
	}, []string{"consumer"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, storeRead, storeWrite, storeHitRatio,
		storeHits, storeMisses, canvasDuration, downloadsTotal, downloadBytes, extractions,
		schedulerRuns, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		storeRead:       storeRead,
		storeWrite:      storeWrite,
		storeHitRatio:   storeHitRatio,
		storeHits:       storeHits,
		storeMisses:     storeMisses,
		canvasDuration:  canvasDuration,
		downloadsTotal:  downloadsTotal,
		downloadBytes:   downloadBytes,
		extractions:     extractions,
		schedulerRuns:   schedulerRuns,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordStoreRead records a store lookup and updates the hit ratio.
func (m *MetricsService) RecordStoreRead(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	if m.storeRead != nil {
		m.storeRead.Observe(duration.Seconds())
	}
	if hit {
		m.storeHits.Inc()
		atomic.AddUint64(&m.storeHitCount, 1)
	} else {
		m.storeMisses.Inc()
		atomic.AddUint64(&m.storeMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.storeHitCount)
	misses := atomic.LoadUint64(&m.storeMissCount)
	if total := hits + misses; total > 0 {
		m.storeHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveStoreWrite tracks the duration of store writes.
func (m *MetricsService) ObserveStoreWrite(duration time.Duration) {
	if m == nil || m.storeWrite == nil {
		return
	}
	m.storeWrite.Observe(duration.Seconds())
}

// ObserveCanvasRequest records one Canvas API call. Status zero means the
// request never got an HTTP answer.
func (m *MetricsService) ObserveCanvasRequest(resource string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.canvasDuration.WithLabelValues(resource, fmt.Sprintf("%d", status)).Observe(duration.Seconds())
}

// ObserveDownload counts one cached file download.
func (m *MetricsService) ObserveDownload(bytes int64) {
	if m == nil {
		return
	}
	m.downloadsTotal.Inc()
	m.downloadBytes.Add(float64(bytes))
}

// ObserveExtraction counts one text extraction attempt.
func (m *MetricsService) ObserveExtraction(format string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.extractions.WithLabelValues(format, outcome).Inc()
}

// RecordSchedulerRun counts one background refresh run.
func (m *MetricsService) RecordSchedulerRun(consumer string) {
	if m == nil {
		return
	}
	m.schedulerRuns.WithLabelValues(consumer).Inc()
}
