package freebucket

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsOnce ensures metrics are only initialized once.
var metricsOnce sync.Once

// metricsInstance is the singleton instance of server metrics.
var metricsInstance *Metrics

// Metrics holds all Prometheus metrics for the server.
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec   // freebucket_requests_total{method,status}
	RequestDuration *prometheus.HistogramVec // freebucket_request_duration_seconds{method}

	// Transfer metrics
	BytesUploaded   prometheus.Counter // freebucket_bytes_uploaded_total
	BytesDownloaded prometheus.Counter // freebucket_bytes_downloaded_total

	// Storage metrics
	BucketsTotal prometheus.Gauge // freebucket_buckets_total
	ObjectsTotal prometheus.Gauge // freebucket_objects_total
	StorageBytes prometheus.Gauge // freebucket_storage_bytes
}

// InitMetrics initializes all server metrics.
// Metrics are only registered once; subsequent calls return the same instance.
func InitMetrics(registry prometheus.Registerer) *Metrics {
	metricsOnce.Do(func() {
		if registry == nil {
			registry = prometheus.DefaultRegisterer
		}
		metricsInstance = &Metrics{
			RequestsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
				Name: "freebucket_requests_total",
				Help: "Total HTTP requests by method and status",
			}, []string{"method", "status"}),

			RequestDuration: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
				Name:    "freebucket_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			}, []string{"method"}),

			BytesUploaded: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "freebucket_bytes_uploaded_total",
				Help: "Total object payload bytes written",
			}),

			BytesDownloaded: promauto.With(registry).NewCounter(prometheus.CounterOpts{
				Name: "freebucket_bytes_downloaded_total",
				Help: "Total object payload bytes served",
			}),

			BucketsTotal: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
				Name: "freebucket_buckets_total",
				Help: "Number of buckets",
			}),

			ObjectsTotal: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
				Name: "freebucket_objects_total",
				Help: "Number of stored objects",
			}),

			StorageBytes: promauto.With(registry).NewGauge(prometheus.GaugeOpts{
				Name: "freebucket_storage_bytes",
				Help: "Total bytes of stored object payloads",
			}),
		}
	})

	return metricsInstance
}

// RecordRequest records a completed request.
func (m *Metrics) RecordRequest(method string, status int, durationSeconds float64) {
	m.RequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordUpload records bytes uploaded.
func (m *Metrics) RecordUpload(bytes int64) {
	m.BytesUploaded.Add(float64(bytes))
}

// RecordDownload records bytes downloaded.
func (m *Metrics) RecordDownload(bytes int64) {
	m.BytesDownloaded.Add(float64(bytes))
}

// UpdateStorageMetrics updates the storage gauges.
func (m *Metrics) UpdateStorageMetrics(buckets, objects, storageBytes uint64) {
	m.BucketsTotal.Set(float64(buckets))
	m.ObjectsTotal.Set(float64(objects))
	m.StorageBytes.Set(float64(storageBytes))
}

// Instrument is middleware that records request counts and latency.
func (m *Metrics) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		writer := ResponseWriterWrapper{ResponseWriter: w}
		next.ServeHTTP(&writer, r)

		status := writer.WrittenResponseCode
		if status == 0 {
			status = http.StatusOK
		}
		m.RecordRequest(r.Method, status, time.Since(start).Seconds())
	})
}
