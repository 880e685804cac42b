package freebucket

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"freebucket/internal/storage"
)

// newTestServer creates a Server backed by a temporary data directory.
func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.DataDir = t.TempDir()

	srv, err := NewServer(cfg)
	require.NoError(t, err, "NewServer error")

	httpSrv := httptest.NewServer(srv.Handler())
	t.Cleanup(httpSrv.Close)

	return srv, httpSrv
}

// doRequest sends a request with an optional body and returns the response.
func doRequest(t *testing.T, client *http.Client, method, url string, body io.Reader, headers map[string]string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err, "creating request")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	require.NoErrorf(t, err, "%s %s error", method, url)
	return resp
}

func quotedSHA256(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf("\"%s\"", hex.EncodeToString(sum[:]))
}

func TestS3CreateAndListBuckets(t *testing.T) {
	t.Parallel()

	_, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	for _, b := range []string{"bucket-b", "bucket-a"} {
		resp := doRequest(t, client, http.MethodPut, httpSrv.URL+"/"+b, nil, nil)
		resp.Body.Close()
		require.Equalf(t, http.StatusOK, resp.StatusCode, "PUT bucket %s status", b)
	}

	// Signing clients get the XML bucket listing on GET /.
	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/", nil, map[string]string{
		"Authorization": "AWS4-HMAC-SHA256 Credential=test/20260101/local/s3/aws4_request",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "GET / status")

	var listResp ListAllMyBucketsResult
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&listResp), "decoding ListAllMyBucketsResult")
	require.Len(t, listResp.Buckets, 2, "bucket count")
	require.Equal(t, "bucket-a", listResp.Buckets[0].Name, "buckets sorted by name")
	require.Equal(t, "bucket-b", listResp.Buckets[1].Name, "buckets sorted by name")
}

func TestS3CreateBucketConflict(t *testing.T) {
	t.Parallel()

	_, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	resp := doRequest(t, client, http.MethodPut, httpSrv.URL+"/dup", nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "first PUT status")

	resp = doRequest(t, client, http.MethodPut, httpSrv.URL+"/dup", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode, "second PUT status")

	var s3err S3Error
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&s3err), "decoding error XML")
	require.Equal(t, "BucketAlreadyOwnedByYou", s3err.Code, "error code")
}

func TestS3InvalidBucketName(t *testing.T) {
	t.Parallel()

	_, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	resp := doRequest(t, client, http.MethodPut, httpSrv.URL+"/ab", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "status for too-short name")

	var s3err S3Error
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&s3err), "decoding error XML")
	require.Equal(t, "InvalidBucketName", s3err.Code, "error code")
}

func TestS3PutGetObjectRoundTrip(t *testing.T) {
	t.Parallel()

	_, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	resp := doRequest(t, client, http.MethodPut, httpSrv.URL+"/files", nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "create bucket status")

	payload := []byte("hello freebucket")
	resp = doRequest(t, client, http.MethodPut, httpSrv.URL+"/files/docs/hello.txt", bytes.NewReader(payload), map[string]string{
		"Content-Type":      "text/plain",
		"x-amz-meta-author": "tester",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "put object status")
	require.Equal(t, quotedSHA256(payload), resp.Header.Get("ETag"), "put response ETag")

	resp = doRequest(t, client, http.MethodGet, httpSrv.URL+"/files/docs/hello.txt", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "get object status")
	require.Equal(t, "text/plain", resp.Header.Get("Content-Type"), "content type")
	require.Equal(t, quotedSHA256(payload), resp.Header.Get("ETag"), "get response ETag")
	require.Equal(t, "tester", resp.Header.Get("x-amz-meta-author"), "user metadata echoed")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "reading object body")
	require.Equal(t, payload, body, "payload round trip")
}

func TestS3HeadObject(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("files", "local")
	require.NoError(t, err, "CreateBucket error")
	_, err = srv.engine.PutObject("files", "a.bin", []byte{1, 2, 3}, "application/octet-stream", nil)
	require.NoError(t, err, "PutObject error")

	resp := doRequest(t, client, http.MethodHead, httpSrv.URL+"/files/a.bin", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "head object status")
	require.Equal(t, "3", resp.Header.Get("Content-Length"), "content length")
	require.NotEmpty(t, resp.Header.Get("Last-Modified"), "last modified header")
}

func TestS3HeadObjectMissingBucket(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	resp := doRequest(t, client, http.MethodHead, httpSrv.URL+"/no-such-bucket/a.bin", nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "head object status")

	// The missing bucket must take precedence over the missing key.
	var bucketErr *storage.BucketNotFoundError
	_, err := srv.engine.GetObjectMeta("no-such-bucket", "a.bin")
	require.ErrorAs(t, err, &bucketErr, "expected BucketNotFoundError")
}

func TestS3GetObjectNotFound(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("files", "local")
	require.NoError(t, err, "CreateBucket error")

	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/files/missing.txt", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "status")

	var s3err S3Error
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&s3err), "decoding error XML")
	require.Equal(t, "NoSuchKey", s3err.Code, "error code")
}

func TestS3ListObjectsWithDelimiter(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("media", "local")
	require.NoError(t, err, "CreateBucket error")
	for _, key := range []string{"photos/a.jpg", "photos/b/c.jpg", "readme.md"} {
		_, err := srv.engine.PutObject("media", key, []byte("x"), "", nil)
		require.NoErrorf(t, err, "PutObject %s error", key)
	}

	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/media?prefix=photos/&delimiter=/", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "list status")

	var list ListBucketResult
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&list), "decoding ListBucketResult")
	require.Equal(t, "media", list.Name, "bucket name")
	require.Len(t, list.Contents, 1, "leaf objects")
	require.Equal(t, "photos/a.jpg", list.Contents[0].Key, "leaf key")
	require.Len(t, list.CommonPrefixes, 1, "common prefixes")
	require.Equal(t, "photos/b/", list.CommonPrefixes[0].Prefix, "folded prefix")
	require.False(t, list.IsTruncated, "not truncated")
}

func TestS3ListObjectsV2Param(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("media", "local")
	require.NoError(t, err, "CreateBucket error")
	_, err = srv.engine.PutObject("media", "k.txt", []byte("x"), "", nil)
	require.NoError(t, err, "PutObject error")

	// list-type=2 is answered from the same listing.
	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/media?list-type=2", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "list status")

	var list ListBucketResult
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&list), "decoding ListBucketResult")
	require.Len(t, list.Contents, 1, "object count")
}

func TestS3DeleteBucket(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("doomed", "local")
	require.NoError(t, err, "CreateBucket error")

	resp := doRequest(t, client, http.MethodDelete, httpSrv.URL+"/doomed", nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode, "delete status")

	resp = doRequest(t, client, http.MethodHead, httpSrv.URL+"/doomed", nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "head after delete")
}

func TestS3DeleteBucketNotEmpty(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("full", "local")
	require.NoError(t, err, "CreateBucket error")
	_, err = srv.engine.PutObject("full", "k.txt", []byte("x"), "", nil)
	require.NoError(t, err, "PutObject error")

	resp := doRequest(t, client, http.MethodDelete, httpSrv.URL+"/full", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode, "delete status")

	var s3err S3Error
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&s3err), "decoding error XML")
	require.Equal(t, "InternalError", s3err.Code, "error code")
}

func TestS3GetBucketLocation(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("regional", "eu-local-1")
	require.NoError(t, err, "CreateBucket error")

	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/regional?location", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "location status")

	var loc struct {
		Region string `xml:",chardata"`
	}
	require.NoError(t, xml.NewDecoder(resp.Body).Decode(&loc), "decoding LocationConstraint")
	require.Equal(t, "eu-local-1", loc.Region, "region")
}

func TestS3StreamingUpload(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("stream", "local")
	require.NoError(t, err, "CreateBucket error")

	payload := bytes.Repeat([]byte("chunked-data-"), 100)

	var body bytes.Buffer
	half := len(payload) / 2
	for _, chunk := range [][]byte{payload[:half], payload[half:]} {
		fmt.Fprintf(&body, "%x;chunk-signature=deadbeef\r\n", len(chunk))
		body.Write(chunk)
		body.WriteString("\r\n")
	}
	body.WriteString("0;chunk-signature=deadbeef\r\n\r\n")

	resp := doRequest(t, client, http.MethodPut, httpSrv.URL+"/stream/big.bin", &body, map[string]string{
		"X-Amz-Content-Sha256":         "STREAMING-AWS4-HMAC-SHA256-PAYLOAD",
		"X-Amz-Decoded-Content-Length": fmt.Sprint(len(payload)),
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "streaming put status")
	require.Equal(t, quotedSHA256(payload), resp.Header.Get("ETag"), "ETag of decoded payload")

	_, data, err := srv.engine.GetObject("stream", "big.bin")
	require.NoError(t, err, "GetObject error")
	require.Equal(t, payload, data, "decoded payload stored")
}

func TestDashboardServesHTML(t *testing.T) {
	t.Parallel()

	_, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "dashboard status")
	require.Contains(t, resp.Header.Get("Content-Type"), "text/html", "content type")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "reading dashboard body")
	require.Contains(t, string(body), "FreeBucket", "page title")
}

func TestDashboardManagementControls(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("gallery", "local")
	require.NoError(t, err, "CreateBucket error")

	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "dashboard status")

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "reading dashboard body")
	body := string(raw)

	// The bucket row exposes browse and delete actions.
	require.Contains(t, body, "openBucket('gallery')", "browse action")
	require.Contains(t, body, "deleteBucket('gallery')", "delete action")

	// The management dialogs and their script are part of the page.
	require.Contains(t, body, "id=\"create-dialog\"", "create bucket dialog")
	require.Contains(t, body, "id=\"browser-dialog\"", "object browser dialog")
	require.Contains(t, body, "type=\"file\"", "upload input")
	require.Contains(t, body, "const api = '/api'", "control API script")
	require.Contains(t, body, "async function uploadFiles", "upload handler")
	require.Contains(t, body, "async function refreshObjects", "object listing handler")
	require.Contains(t, body, "function downloadObject", "download handler")
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	_, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/metrics", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "metrics status")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "reading metrics body")
	require.Contains(t, string(body), "freebucket_", "exported metric names")
}

// ------ JSON control API ------

func TestAPIBucketLifecycle(t *testing.T) {
	t.Parallel()

	_, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	reqBody, err := json.Marshal(CreateBucketRequest{Name: "api-bucket"})
	require.NoError(t, err, "marshal request")

	resp := doRequest(t, client, http.MethodPost, httpSrv.URL+"/api/buckets", bytes.NewReader(reqBody), map[string]string{
		"Content-Type": "application/json",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "create status")

	var created storage.Bucket
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created), "decoding bucket")
	require.Equal(t, "api-bucket", created.Name, "bucket name")
	require.Equal(t, "local", created.Region, "default region")

	resp = doRequest(t, client, http.MethodGet, httpSrv.URL+"/api/buckets", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "list status")

	var list ListBucketsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list), "decoding bucket list")
	require.Len(t, list.Buckets, 1, "bucket count")

	resp = doRequest(t, client, http.MethodGet, httpSrv.URL+"/api/buckets/api-bucket", nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "get status")

	resp = doRequest(t, client, http.MethodDelete, httpSrv.URL+"/api/buckets/api-bucket", nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode, "delete status")

	resp = doRequest(t, client, http.MethodGet, httpSrv.URL+"/api/buckets/api-bucket", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "get after delete")

	var apiErr ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr), "decoding error JSON")
	require.Equal(t, "NoSuchBucket", apiErr.Code, "error code")
}

func TestAPIStats(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("stats", "local")
	require.NoError(t, err, "CreateBucket error")
	_, err = srv.engine.PutObject("stats", "k.bin", make([]byte, 1536), "", nil)
	require.NoError(t, err, "PutObject error")

	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/api/stats", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "stats status")

	var stats storage.StorageStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats), "decoding stats")
	require.Equal(t, uint64(1), stats.TotalBuckets, "bucket count")
	require.Equal(t, uint64(1), stats.TotalObjects, "object count")
	require.Equal(t, "1.50 KB", stats.TotalSizeHuman, "human size")
}

func TestAPIListObjects(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("listing", "local")
	require.NoError(t, err, "CreateBucket error")
	for _, key := range []string{"logs/a.log", "logs/b.log", "top.txt"} {
		_, err := srv.engine.PutObject("listing", key, []byte("x"), "", nil)
		require.NoErrorf(t, err, "PutObject %s error", key)
	}

	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/api/buckets/listing/objects?delimiter=/", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "list status")

	var list ListObjectsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list), "decoding object list")
	require.Len(t, list.Objects, 1, "leaf objects")
	require.Equal(t, "top.txt", list.Objects[0].Key, "leaf key")
	require.Equal(t, []string{"logs/"}, list.CommonPrefixes, "common prefixes")
}

func TestAPIMultipartUpload(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("uploads", "local")
	require.NoError(t, err, "CreateBucket error")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", "report.txt")
	require.NoError(t, err, "creating form file")
	_, err = part.Write([]byte("quarterly numbers"))
	require.NoError(t, err, "writing form file")
	require.NoError(t, writer.Close(), "closing multipart writer")

	resp := doRequest(t, client, http.MethodPost, httpSrv.URL+"/api/buckets/uploads/upload", &body, map[string]string{
		"Content-Type": writer.FormDataContentType(),
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "upload status")

	var uploadResp UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploadResp), "decoding upload response")
	require.Equal(t, 1, uploadResp.Uploaded, "uploaded count")
	require.Equal(t, "report.txt", uploadResp.Objects[0].Key, "object key from filename")

	_, data, err := srv.engine.GetObject("uploads", "report.txt")
	require.NoError(t, err, "GetObject error")
	require.Equal(t, []byte("quarterly numbers"), data, "stored payload")
}

func TestAPIMultipartUploadGeneratesKey(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("uploads", "local")
	require.NoError(t, err, "CreateBucket error")

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormField("data")
	require.NoError(t, err, "creating form field")
	_, err = part.Write([]byte("anonymous payload"))
	require.NoError(t, err, "writing form field")
	require.NoError(t, writer.Close(), "closing multipart writer")

	resp := doRequest(t, client, http.MethodPost, httpSrv.URL+"/api/buckets/uploads/upload", &body, map[string]string{
		"Content-Type": writer.FormDataContentType(),
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode, "upload status")

	var uploadResp UploadResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploadResp), "decoding upload response")
	require.Equal(t, 1, uploadResp.Uploaded, "uploaded count")
	require.True(t, strings.HasPrefix(uploadResp.Objects[0].Key, "upload-"), "generated key prefix, got %q", uploadResp.Objects[0].Key)
}

func TestAPIObjectGetAndDelete(t *testing.T) {
	t.Parallel()

	srv, httpSrv := newTestServer(t)
	client := httpSrv.Client()

	_, err := srv.engine.CreateBucket("files", "local")
	require.NoError(t, err, "CreateBucket error")
	_, err = srv.engine.PutObject("files", "nested/doc.txt", []byte("content"), "text/plain", map[string]string{"origin": "test"})
	require.NoError(t, err, "PutObject error")

	resp := doRequest(t, client, http.MethodGet, httpSrv.URL+"/api/object/files/nested/doc.txt", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "get status")
	require.Equal(t, "text/plain", resp.Header.Get("Content-Type"), "content type")
	require.Equal(t, "test", resp.Header.Get("x-amz-meta-origin"), "user metadata header")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "reading body")
	require.Equal(t, []byte("content"), body, "payload")

	resp = doRequest(t, client, http.MethodDelete, httpSrv.URL+"/api/object/files/nested/doc.txt", nil, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode, "delete status")

	resp = doRequest(t, client, http.MethodGet, httpSrv.URL+"/api/object/files/nested/doc.txt", nil, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode, "get after delete")

	var apiErr ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&apiErr), "decoding error JSON")
	require.Equal(t, "NoSuchKey", apiErr.Code, "error code")
}
