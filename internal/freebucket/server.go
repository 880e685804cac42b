package freebucket

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"freebucket/internal/storage"
)

// Server exposes a storage engine over HTTP: a JSON control API under
// /api, an S3-compatible XML API at the root, and the dashboard.
type Server struct {
	cfg     Config
	engine  *storage.Engine
	metrics *Metrics
}

// NewServer opens (or creates) the data directory and returns a Server
// ready to serve requests.
func NewServer(cfg Config) (*Server, error) {
	if cfg.DataDir == "" {
		return nil, errors.New("DataDir must not be empty")
	}
	if cfg.Region == "" {
		cfg.Region = "local"
	}
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultConfig().MaxUploadSize
	}

	engine, err := storage.NewEngine(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open storage engine: %w", err)
	}

	return &Server{
		cfg:     cfg,
		engine:  engine,
		metrics: InitMetrics(nil),
	}, nil
}

// Engine returns the underlying storage engine.
func (s *Server) Engine() *storage.Engine {
	return s.engine
}

// apiErrorCode maps an engine error to the HTTP status and error code used
// by the JSON control API.
func apiErrorCode(err error) (int, string) {
	var (
		bucketNotFound *storage.BucketNotFoundError
		bucketExists   *storage.BucketExistsError
		objectNotFound *storage.ObjectNotFoundError
		invalidBucket  *storage.InvalidBucketNameError
		invalidKey     *storage.InvalidObjectKeyError
	)

	switch {
	case errors.As(err, &bucketNotFound):
		return http.StatusNotFound, "NoSuchBucket"
	case errors.As(err, &bucketExists):
		return http.StatusConflict, "BucketAlreadyOwnedByYou"
	case errors.As(err, &objectNotFound):
		return http.StatusNotFound, "NoSuchKey"
	case errors.As(err, &invalidBucket):
		return http.StatusBadRequest, "InvalidBucketName"
	case errors.As(err, &invalidKey):
		return http.StatusBadRequest, "InvalidObjectKey"
	default:
		return http.StatusInternalServerError, "InternalError"
	}
}

// writeJSON encodes v as JSON with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode JSON response", "err", err)
	}
}

// writeAPIError maps an engine error to the JSON error shape.
func writeAPIError(w http.ResponseWriter, err error) {
	status, code := apiErrorCode(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "err", err)
	}
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Code:    code,
		Message: err.Error(),
	})
}

// refreshStorageGauges pushes current engine aggregates into the metrics.
func (s *Server) refreshStorageGauges() {
	stats := s.engine.Stats()
	s.metrics.UpdateStorageMetrics(stats.TotalBuckets, stats.TotalObjects, stats.TotalSize)
}

// ------ JSON control API handlers ------

// handleGetStats implements GET /api/stats.
func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := s.engine.Stats()
	s.metrics.UpdateStorageMetrics(stats.TotalBuckets, stats.TotalObjects, stats.TotalSize)
	writeJSON(w, http.StatusOK, stats)
}

// handleListBuckets implements GET /api/buckets.
func (s *Server) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ListBucketsResponse{
		Buckets: s.engine.ListBuckets(),
		Owner:   "freebucket",
	})
}

// handleCreateBucket implements POST /api/buckets.
func (s *Server) handleCreateBucket(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req CreateBucketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "InvalidRequest",
			Code:    "InvalidRequest",
			Message: "request body must be a JSON object with a bucket name",
		})
		return
	}

	region := req.Region
	if region == "" {
		region = s.cfg.Region
	}

	bucket, err := s.engine.CreateBucket(req.Name, region)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	s.refreshStorageGauges()
	writeJSON(w, http.StatusCreated, bucket)
}

// handleGetBucket implements GET /api/buckets/{bucket}.
func (s *Server) handleGetBucket(w http.ResponseWriter, r *http.Request) {
	bucket, err := s.engine.GetBucket(r.PathValue("bucket"))
	if err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bucket)
}

// handleDeleteBucket implements DELETE /api/buckets/{bucket}.
func (s *Server) handleDeleteBucket(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteBucket(r.PathValue("bucket")); err != nil {
		writeAPIError(w, err)
		return
	}
	s.refreshStorageGauges()
	w.WriteHeader(http.StatusNoContent)
}

// handleListObjects implements GET /api/buckets/{bucket}/objects.
func (s *Server) handleListObjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	maxKeys := 1000
	if raw := q.Get("max_keys"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			maxKeys = v
		}
	}

	result, err := s.engine.ListObjects(r.PathValue("bucket"), q.Get("prefix"), q.Get("delimiter"), maxKeys)
	if err != nil {
		writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ListObjectsResponse{
		Bucket:         result.Bucket,
		Prefix:         result.Prefix,
		Objects:        result.Objects,
		CommonPrefixes: result.CommonPrefixes,
		IsTruncated:    result.IsTruncated,
		MaxKeys:        result.MaxKeys,
	})
}

// handleUpload implements POST /api/buckets/{bucket}/upload, accepting one
// or more files as multipart form data. Parts without a filename get a
// generated upload-<uuid> key.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	bucket := r.PathValue("bucket")
	if _, err := s.engine.GetBucket(bucket); err != nil {
		writeAPIError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)
	defer r.Body.Close()

	reader, err := r.MultipartReader()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "InvalidRequest",
			Code:    "InvalidRequest",
			Message: "request body must be multipart/form-data",
		})
		return
	}

	var uploaded []storage.ObjectMeta
	for {
		part, err := reader.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "InvalidRequest",
				Code:    "InvalidRequest",
				Message: fmt.Sprintf("read multipart body: %v", err),
			})
			return
		}

		data, err := io.ReadAll(part)
		part.Close()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "InvalidRequest",
				Code:    "InvalidRequest",
				Message: fmt.Sprintf("read multipart part: %v", err),
			})
			return
		}

		key := part.FileName()
		if key == "" {
			key = "upload-" + uuid.NewString()
		}

		meta, err := s.engine.PutObject(bucket, key, data, partContentType(part), nil)
		if err != nil {
			writeAPIError(w, err)
			return
		}

		s.metrics.RecordUpload(int64(len(data)))
		uploaded = append(uploaded, meta)
	}

	s.refreshStorageGauges()
	writeJSON(w, http.StatusCreated, UploadResponse{
		Uploaded: len(uploaded),
		Objects:  uploaded,
	})
}

// partContentType returns the declared content type of a multipart part,
// stripped of any media type parameters.
func partContentType(part *multipart.Part) string {
	ct := part.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
		return mediaType
	}
	return ct
}

// handleGetObject implements GET /api/object/{bucket}/{key...}.
func (s *Server) handleGetObject(w http.ResponseWriter, r *http.Request) {
	meta, data, err := s.engine.GetObject(r.PathValue("bucket"), r.PathValue("key"))
	if err != nil {
		writeAPIError(w, err)
		return
	}

	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("ETag", meta.ETag)
	w.Header().Set("Last-Modified", meta.LastModified.UTC().Format(http.TimeFormat))
	for k, v := range meta.Metadata {
		w.Header().Set("x-amz-meta-"+k, v)
	}

	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("Stream object", "bucket", meta.Bucket, "key", meta.Key, "err", err)
	}
	s.metrics.RecordDownload(int64(len(data)))
}

// handleDeleteObject implements DELETE /api/object/{bucket}/{key...}.
func (s *Server) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteObject(r.PathValue("bucket"), r.PathValue("key")); err != nil {
		writeAPIError(w, err)
		return
	}
	s.refreshStorageGauges()
	w.WriteHeader(http.StatusNoContent)
}
