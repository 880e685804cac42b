package freebucket

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the complete HTTP surface: dashboard, JSON control API,
// Prometheus metrics, and the S3-compatible API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Dashboard for browsers, S3 ListBuckets for signing clients.
	mux.HandleFunc("GET /{$}", s.handleRoot)

	mux.Handle("GET /metrics", promhttp.Handler())

	// JSON control API
	mux.HandleFunc("GET /api/stats", s.handleGetStats)
	mux.HandleFunc("GET /api/buckets", s.handleListBuckets)
	mux.HandleFunc("POST /api/buckets", s.handleCreateBucket)
	mux.HandleFunc("GET /api/buckets/{bucket}", s.handleGetBucket)
	mux.HandleFunc("DELETE /api/buckets/{bucket}", s.handleDeleteBucket)
	mux.HandleFunc("GET /api/buckets/{bucket}/objects", s.handleListObjects)
	mux.HandleFunc("POST /api/buckets/{bucket}/upload", s.handleUpload)
	mux.HandleFunc("GET /api/object/{bucket}/{key...}", s.handleGetObject)
	mux.HandleFunc("DELETE /api/object/{bucket}/{key...}", s.handleDeleteObject)

	// S3 bucket-level operations
	mux.HandleFunc("PUT /{bucket}", func(w http.ResponseWriter, r *http.Request) {
		s.handleS3BucketPut(w, r, r.PathValue("bucket"))
	})
	// A "GET" ServeMux pattern also matches HEAD; registering "HEAD /{bucket}"
	// separately conflicts with patterns like "GET /metrics", so dispatch here.
	mux.HandleFunc("GET /{bucket}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			s.handleS3BucketHead(w, r, r.PathValue("bucket"))
			return
		}
		s.handleS3BucketGet(w, r, r.PathValue("bucket"))
	})
	mux.HandleFunc("DELETE /{bucket}", func(w http.ResponseWriter, r *http.Request) {
		s.handleS3BucketDelete(w, r, r.PathValue("bucket"))
	})

	// S3 object-level operations
	mux.HandleFunc("PUT /{bucket}/{key...}", func(w http.ResponseWriter, r *http.Request) {
		s.handleS3ObjectPut(w, r, r.PathValue("bucket"), r.PathValue("key"))
	})
	mux.HandleFunc("GET /{bucket}/{key...}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			s.handleS3ObjectHead(w, r, r.PathValue("bucket"), r.PathValue("key"))
			return
		}
		s.handleS3ObjectGet(w, r, r.PathValue("bucket"), r.PathValue("key"))
	})
	mux.HandleFunc("DELETE /{bucket}/{key...}", func(w http.ResponseWriter, r *http.Request) {
		s.handleS3ObjectDelete(w, r, r.PathValue("bucket"), r.PathValue("key"))
	})

	return LogRequest(CORSMiddleware(SlashFix(s.metrics.Instrument(Recoverer(mux)))))
}
