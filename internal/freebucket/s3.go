package freebucket

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"freebucket/internal/storage"
)

const streamingPayloadSHA = "STREAMING-AWS4-HMAC-SHA256-PAYLOAD"

// userMetadataHeaderPrefix marks request headers carried through to object
// metadata and echoed back on retrieval.
const userMetadataHeaderPrefix = "x-amz-meta-"

// writeS3Error writes a minimal S3-style XML error response.
func writeS3Error(w http.ResponseWriter, code string, message string, resource string, status int) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	_ = xml.NewEncoder(w).Encode(S3Error{
		Code:     code,
		Message:  message,
		Resource: resource,
	})
}

// writeXMLResponse encodes v as XML and writes it to w with a 200 OK status.
func writeXMLResponse(w http.ResponseWriter, v any) error {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(http.StatusOK)
	return xml.NewEncoder(w).Encode(v)
}

// writeS3EngineError maps an engine error to the S3 XML error shape.
func writeS3EngineError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		bucketNotFound *storage.BucketNotFoundError
		bucketExists   *storage.BucketExistsError
		objectNotFound *storage.ObjectNotFoundError
		invalidBucket  *storage.InvalidBucketNameError
		invalidKey     *storage.InvalidObjectKeyError
	)

	switch {
	case errors.As(err, &bucketNotFound):
		writeS3Error(w, "NoSuchBucket", "The specified bucket does not exist.", r.URL.Path, http.StatusNotFound)
	case errors.As(err, &bucketExists):
		writeS3Error(w, "BucketAlreadyOwnedByYou", "Your previous request to create the named bucket succeeded and you already own it.", r.URL.Path, http.StatusConflict)
	case errors.As(err, &objectNotFound):
		writeS3Error(w, "NoSuchKey", "The specified key does not exist.", r.URL.Path, http.StatusNotFound)
	case errors.As(err, &invalidBucket):
		writeS3Error(w, "InvalidBucketName", "The specified bucket is not valid.", r.URL.Path, http.StatusBadRequest)
	case errors.As(err, &invalidKey):
		writeS3Error(w, "InvalidObjectName", "The specified key is not valid.", r.URL.Path, http.StatusBadRequest)
	default:
		slog.Error("Request failed", "err", err)
		writeS3Error(w, "InternalError", "We encountered an internal error. Please try again.", r.URL.Path, http.StatusInternalServerError)
	}
}

// writeNotImplemented is a helper for stubbing unsupported S3 operations.
func (s *Server) writeNotImplemented(w http.ResponseWriter, r *http.Request, op string) {
	message := op + " is not implemented."
	writeS3Error(w, "NotImplemented", message, r.URL.Path, http.StatusNotImplemented)
}

// userMetadataFromHeaders extracts x-amz-meta-* headers into a metadata map
// with lowercased, prefix-stripped keys.
func userMetadataFromHeaders(h http.Header) map[string]string {
	var metadata map[string]string
	for name, values := range h {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, userMetadataHeaderPrefix) || len(values) == 0 {
			continue
		}
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata[strings.TrimPrefix(lower, userMetadataHeaderPrefix)] = values[0]
	}
	return metadata
}

// decodeStreamingPayload decodes an AWS Signature Version 4 streaming
// (chunked) payload into memory. Each chunk begins with
// "<size-hex>;chunk-signature=...\r\n"; chunk signatures are not verified.
func decodeStreamingPayload(body io.Reader, decodedLen int64) ([]byte, error) {
	br := bufio.NewReader(body)

	var buf bytes.Buffer
	if decodedLen > 0 {
		buf.Grow(int(decodedLen))
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errors.New("unexpected EOF while reading chunk header")
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}

		// Strip chunk extensions (";chunk-signature=...").
		if idx := strings.IndexByte(line, ';'); idx != -1 {
			line = line[:idx]
		}

		sizeHex := strings.TrimSpace(line)
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, fmt.Errorf("parse chunk size %q: %w", sizeHex, err)
		}

		if size == 0 {
			// Final chunk; consume the trailer terminator and stop.
			_, _ = br.ReadString('\n')
			break
		}

		if _, err := io.CopyN(&buf, br, size); err != nil {
			return nil, fmt.Errorf("read chunk body: %w", err)
		}

		// Consume the trailing CRLF after the chunk body.
		if b, err := br.ReadByte(); err != nil || b != '\r' {
			if err == nil {
				return nil, fmt.Errorf("expected CR after chunk, got %q", b)
			}
			return nil, fmt.Errorf("read CR after chunk: %w", err)
		}
		if b, err := br.ReadByte(); err != nil || b != '\n' {
			if err == nil {
				return nil, fmt.Errorf("expected LF after chunk, got %q", b)
			}
			return nil, fmt.Errorf("read LF after chunk: %w", err)
		}
	}

	if decodedLen >= 0 && int64(buf.Len()) != decodedLen {
		slog.Debug("Decoded streaming payload length mismatch", "expected", decodedLen, "actual", buf.Len())
	}

	return buf.Bytes(), nil
}

// ------ Dispatchers for bucket-level HTTP handlers ------

// handleS3BucketPut dispatches PUT /bucket[?subresource].
func (s *Server) handleS3BucketPut(w http.ResponseWriter, r *http.Request, bucket string) {
	q := r.URL.Query()
	switch {
	case q.Has("tagging"):
		s.writeNotImplemented(w, r, "PutBucketTagging")
	case q.Has("versioning"):
		s.writeNotImplemented(w, r, "PutBucketVersioning")
	case q.Has("lifecycle"):
		s.writeNotImplemented(w, r, "PutBucketLifecycleConfiguration")
	case q.Has("policy"):
		s.writeNotImplemented(w, r, "PutBucketPolicy")
	default:
		s.handleS3CreateBucket(w, r, bucket)
	}
}

// handleS3BucketGet dispatches GET /bucket[?subresource]. Both ListObjects
// and ListObjectsV2 (list-type=2) are answered from the same listing.
func (s *Server) handleS3BucketGet(w http.ResponseWriter, r *http.Request, bucket string) {
	q := r.URL.Query()
	switch {
	case q.Has("location"):
		s.handleS3GetBucketLocation(w, r, bucket)
	case q.Has("versions"):
		s.writeNotImplemented(w, r, "ListObjectVersions")
	case q.Has("uploads"):
		s.writeNotImplemented(w, r, "ListMultipartUploads")
	default:
		s.handleS3ListObjects(w, r, bucket)
	}
}

// handleS3BucketHead implements HEAD /bucket.
func (s *Server) handleS3BucketHead(w http.ResponseWriter, r *http.Request, bucket string) {
	if _, err := s.engine.GetBucket(bucket); err != nil {
		writeS3EngineError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleS3BucketDelete implements DELETE /bucket.
func (s *Server) handleS3BucketDelete(w http.ResponseWriter, r *http.Request, bucket string) {
	if err := s.engine.DeleteBucket(bucket); err != nil {
		writeS3EngineError(w, r, err)
		return
	}
	s.refreshStorageGauges()
	w.WriteHeader(http.StatusNoContent)
}

// ------ Individual S3 API handlers ------

// handleS3ListBuckets implements GET / to list all buckets.
func (s *Server) handleS3ListBuckets(w http.ResponseWriter, r *http.Request) {
	buckets := s.engine.ListBuckets()

	entries := make([]ListAllMyBucketsEntry, 0, len(buckets))
	for _, b := range buckets {
		entries = append(entries, ListAllMyBucketsEntry{
			Name:         b.Name,
			CreationDate: b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	resp := ListAllMyBucketsResult{
		XMLNS: s3XMLNamespace,
		Owner: ListAllMyBucketsOwner{
			ID:          "freebucket",
			DisplayName: "freebucket",
		},
		Buckets: entries,
	}

	if err := writeXMLResponse(w, resp); err != nil {
		slog.Error("Encode list buckets XML", "err", err)
	}
}

// handleS3CreateBucket implements PUT /bucket to create a new bucket.
func (s *Server) handleS3CreateBucket(w http.ResponseWriter, r *http.Request, bucket string) {
	if _, err := s.engine.CreateBucket(bucket, s.cfg.Region); err != nil {
		writeS3EngineError(w, r, err)
		return
	}
	s.refreshStorageGauges()
	w.WriteHeader(http.StatusOK)
}

// handleS3GetBucketLocation implements GET /bucket?location.
func (s *Server) handleS3GetBucketLocation(w http.ResponseWriter, r *http.Request, bucket string) {
	b, err := s.engine.GetBucket(bucket)
	if err != nil {
		writeS3EngineError(w, r, err)
		return
	}

	resp := LocationConstraint{
		XMLNS:  s3XMLNamespace,
		Region: b.Region,
	}

	if err := writeXMLResponse(w, resp); err != nil {
		slog.Error("Encode bucket location XML", "bucket", bucket, "err", err)
	}
}

// handleS3ListObjects implements GET /bucket[?prefix=&delimiter=&max-keys=].
func (s *Server) handleS3ListObjects(w http.ResponseWriter, r *http.Request, bucket string) {
	q := r.URL.Query()
	prefix := q.Get("prefix")
	delimiter := q.Get("delimiter")
	maxKeys := 1000
	if raw := q.Get("max-keys"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			maxKeys = v
		}
	}

	result, err := s.engine.ListObjects(bucket, prefix, delimiter, maxKeys)
	if err != nil {
		writeS3EngineError(w, r, err)
		return
	}

	contents := make([]ObjectSummary, 0, len(result.Objects))
	for _, obj := range result.Objects {
		contents = append(contents, ObjectSummary{
			Key:          obj.Key,
			LastModified: obj.LastModified.UTC().Format(time.RFC3339),
			ETag:         obj.ETag,
			Size:         obj.Size,
			StorageClass: "STANDARD",
		})
	}

	prefixes := make([]CommonPrefixEntry, 0, len(result.CommonPrefixes))
	for _, p := range result.CommonPrefixes {
		prefixes = append(prefixes, CommonPrefixEntry{Prefix: p})
	}

	resp := ListBucketResult{
		XMLNS:          s3XMLNamespace,
		Name:           bucket,
		Prefix:         prefix,
		Delimiter:      delimiter,
		MaxKeys:        maxKeys,
		IsTruncated:    result.IsTruncated,
		Contents:       contents,
		CommonPrefixes: prefixes,
	}

	if err := writeXMLResponse(w, resp); err != nil {
		slog.Error("Encode list objects XML", "bucket", bucket, "err", err)
	}
}

// handleS3ObjectPut implements PUT /bucket/key to store an object.
func (s *Server) handleS3ObjectPut(w http.ResponseWriter, r *http.Request, bucket string, key string) {
	if r.Header.Get("x-amz-copy-source") != "" {
		s.writeNotImplemented(w, r, "CopyObject")
		return
	}

	defer r.Body.Close()

	var (
		data []byte
		err  error
	)

	contentSHA := r.Header.Get("X-Amz-Content-Sha256")
	if strings.EqualFold(contentSHA, streamingPayloadSHA) {
		decodedLenStr := r.Header.Get("X-Amz-Decoded-Content-Length")
		if decodedLenStr == "" {
			writeS3Error(w, "InvalidRequest", "Missing X-Amz-Decoded-Content-Length for streaming payload", r.URL.Path, http.StatusBadRequest)
			return
		}

		decodedLen, parseErr := strconv.ParseInt(decodedLenStr, 10, 64)
		if parseErr != nil || decodedLen < 0 {
			writeS3Error(w, "InvalidRequest", "Invalid X-Amz-Decoded-Content-Length", r.URL.Path, http.StatusBadRequest)
			return
		}

		data, err = decodeStreamingPayload(r.Body, decodedLen)
		if err != nil {
			slog.Error("Decode streaming payload", "err", err)
			writeS3Error(w, "InvalidRequest", "Failed to decode streaming payload", r.URL.Path, http.StatusBadRequest)
			return
		}
	} else {
		data, err = io.ReadAll(r.Body)
		if err != nil {
			slog.Error("Read request body", "err", err)
			writeS3Error(w, "InvalidRequest", "Failed to read request body", r.URL.Path, http.StatusBadRequest)
			return
		}
	}

	meta, err := s.engine.PutObject(bucket, key, data, r.Header.Get("Content-Type"), userMetadataFromHeaders(r.Header))
	if err != nil {
		writeS3EngineError(w, r, err)
		return
	}

	s.metrics.RecordUpload(int64(len(data)))
	s.refreshStorageGauges()

	w.Header().Set("ETag", meta.ETag)
	w.WriteHeader(http.StatusOK)
}

// writeObjectHeaders sets the standard S3 response headers for an object.
func writeObjectHeaders(w http.ResponseWriter, meta storage.ObjectMeta) {
	w.Header().Set("Content-Type", meta.ContentType)
	w.Header().Set("Content-Length", strconv.FormatUint(meta.Size, 10))
	w.Header().Set("Last-Modified", meta.LastModified.UTC().Format(http.TimeFormat))
	w.Header().Set("ETag", meta.ETag)
	w.Header().Set("Accept-Ranges", "bytes")
	for k, v := range meta.Metadata {
		w.Header().Set(userMetadataHeaderPrefix+k, v)
	}
}

// handleS3ObjectGet implements GET /bucket/key to retrieve an object.
func (s *Server) handleS3ObjectGet(w http.ResponseWriter, r *http.Request, bucket string, key string) {
	if r.URL.Query().Has("tagging") {
		s.writeNotImplemented(w, r, "GetObjectTagging")
		return
	}

	meta, data, err := s.engine.GetObject(bucket, key)
	if err != nil {
		writeS3EngineError(w, r, err)
		return
	}

	writeObjectHeaders(w, meta)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("Stream object", "bucket", bucket, "key", key, "err", err)
	}
	s.metrics.RecordDownload(int64(len(data)))
}

// handleS3ObjectHead implements HEAD /bucket/key, returning metadata headers
// compatible with S3 but without a response body.
func (s *Server) handleS3ObjectHead(w http.ResponseWriter, r *http.Request, bucket string, key string) {
	meta, err := s.engine.GetObjectMeta(bucket, key)
	if err != nil {
		writeS3EngineError(w, r, err)
		return
	}

	writeObjectHeaders(w, meta)
	w.WriteHeader(http.StatusOK)
}

// handleS3ObjectDelete implements DELETE /bucket/key to delete an object.
func (s *Server) handleS3ObjectDelete(w http.ResponseWriter, r *http.Request, bucket string, key string) {
	err := s.engine.DeleteObject(bucket, key)
	if err != nil {
		var objectNotFound *storage.ObjectNotFoundError
		if errors.As(err, &objectNotFound) {
			// S3 object deletion is idempotent.
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeS3EngineError(w, r, err)
		return
	}

	s.refreshStorageGauges()
	w.WriteHeader(http.StatusNoContent)
}
