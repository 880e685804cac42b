package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxKeyLength = 1024

// createETag formats a SHA-256 hex digest as a quoted ETag value.
func createETag(sum [sha256.Size]byte) string {
	return fmt.Sprintf("\"%s\"", hex.EncodeToString(sum[:]))
}

// guessContentType derives a content type from the key's file extension,
// falling back to application/octet-stream.
func guessContentType(key string) string {
	if ct := mime.TypeByExtension(filepath.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

func validateObjectKey(key string) error {
	if key == "" || len(key) > maxKeyLength {
		return &InvalidObjectKeyError{Reason: "key must be between 1 and 1024 characters"}
	}
	// A ".." segment would resolve outside the bucket's objects/ tree.
	for _, segment := range strings.Split(key, "/") {
		if segment == ".." {
			return &InvalidObjectKeyError{Reason: "key must not contain '..' segments"}
		}
	}
	return nil
}

// PutObject stores an object's payload and metadata, overwriting any
// previous version of the key. The bucket's aggregate stats are refreshed
// before returning.
func (e *Engine) PutObject(bucket string, key string, data []byte, contentType string, metadata map[string]string) (ObjectMeta, error) {
	if !e.bucketExists(bucket) {
		return ObjectMeta{}, &BucketNotFoundError{Bucket: bucket}
	}
	if err := validateObjectKey(key); err != nil {
		return ObjectMeta{}, err
	}

	if contentType == "" {
		contentType = guessContentType(key)
	}
	if metadata == nil {
		metadata = map[string]string{}
	}

	objPath := e.objectPath(bucket, key)
	if err := os.MkdirAll(filepath.Dir(objPath), 0o755); err != nil {
		return ObjectMeta{}, &StorageError{Message: "cannot create object directory", Err: err}
	}
	if err := os.WriteFile(objPath, data, 0o644); err != nil {
		return ObjectMeta{}, &StorageError{Message: "cannot write object", Err: err}
	}

	meta := ObjectMeta{
		Key:          key,
		Bucket:       bucket,
		Size:         uint64(len(data)),
		ContentType:  contentType,
		ETag:         createETag(sha256.Sum256(data)),
		LastModified: time.Now().UTC(),
		Metadata:     metadata,
	}

	if err := e.writeObjectMeta(meta); err != nil {
		return ObjectMeta{}, err
	}

	e.updateBucketStats(bucket)
	slog.Info("Put object", "bucket", bucket, "key", key, "size", len(data))
	return meta, nil
}

// writeObjectMeta persists an object's metadata sidecar.
func (e *Engine) writeObjectMeta(meta ObjectMeta) error {
	metaPath := e.objectMetaPath(meta.Bucket, meta.Key)
	if err := os.MkdirAll(filepath.Dir(metaPath), 0o755); err != nil {
		return &StorageError{Message: "cannot create metadata directory", Err: err}
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return &StorageError{Message: "cannot encode object metadata", Err: err}
	}
	if err := os.WriteFile(metaPath, data, 0o644); err != nil {
		return &StorageError{Message: "cannot write object metadata", Err: err}
	}
	return nil
}

// GetObject returns an object's metadata and its full payload.
func (e *Engine) GetObject(bucket string, key string) (ObjectMeta, []byte, error) {
	if !e.bucketExists(bucket) {
		return ObjectMeta{}, nil, &BucketNotFoundError{Bucket: bucket}
	}
	if err := validateObjectKey(key); err != nil {
		return ObjectMeta{}, nil, err
	}

	objPath := e.objectPath(bucket, key)
	data, err := os.ReadFile(objPath)
	if os.IsNotExist(err) {
		return ObjectMeta{}, nil, &ObjectNotFoundError{Bucket: bucket, Key: key}
	}
	if err != nil {
		return ObjectMeta{}, nil, &StorageError{Message: "cannot read object", Err: err}
	}

	meta, err := e.GetObjectMeta(bucket, key)
	if err != nil {
		return ObjectMeta{}, nil, err
	}
	return meta, data, nil
}

// GetObjectMeta loads an object's metadata sidecar. When the sidecar is
// missing but the data file exists (e.g. a file dropped into the tree by
// hand), the descriptor is reconstructed by stat-ing and re-hashing the
// payload.
func (e *Engine) GetObjectMeta(bucket string, key string) (ObjectMeta, error) {
	if !e.bucketExists(bucket) {
		return ObjectMeta{}, &BucketNotFoundError{Bucket: bucket}
	}
	if err := validateObjectKey(key); err != nil {
		return ObjectMeta{}, err
	}

	metaPath := e.objectMetaPath(bucket, key)

	data, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		return e.reconstructObjectMeta(bucket, key)
	}
	if err != nil {
		return ObjectMeta{}, &StorageError{Message: "cannot read object metadata", Err: err}
	}

	var meta ObjectMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return ObjectMeta{}, &StorageError{Message: "corrupt metadata", Err: err}
	}
	return meta, nil
}

// reconstructObjectMeta rebuilds a descriptor for an object that has no
// metadata sidecar.
func (e *Engine) reconstructObjectMeta(bucket string, key string) (ObjectMeta, error) {
	objPath := e.objectPath(bucket, key)

	info, err := os.Stat(objPath)
	if os.IsNotExist(err) {
		return ObjectMeta{}, &ObjectNotFoundError{Bucket: bucket, Key: key}
	}
	if err != nil {
		return ObjectMeta{}, &StorageError{Message: "cannot stat object", Err: err}
	}

	data, err := os.ReadFile(objPath)
	if err != nil {
		return ObjectMeta{}, &StorageError{Message: "cannot read object", Err: err}
	}

	return ObjectMeta{
		Key:          key,
		Bucket:       bucket,
		Size:         uint64(info.Size()),
		ContentType:  guessContentType(key),
		ETag:         createETag(sha256.Sum256(data)),
		LastModified: time.Now().UTC(),
		Metadata:     map[string]string{},
	}, nil
}

// DeleteObject removes an object's payload and metadata, prunes any
// parent directories left empty, and refreshes the bucket's stats.
func (e *Engine) DeleteObject(bucket string, key string) error {
	if !e.bucketExists(bucket) {
		return &BucketNotFoundError{Bucket: bucket}
	}
	if err := validateObjectKey(key); err != nil {
		return err
	}

	objPath := e.objectPath(bucket, key)
	if _, err := os.Stat(objPath); os.IsNotExist(err) {
		return &ObjectNotFoundError{Bucket: bucket, Key: key}
	}

	if err := os.Remove(objPath); err != nil {
		return &StorageError{Message: "cannot remove object", Err: err}
	}

	// A missing metadata sidecar is not an error.
	metaPath := e.objectMetaPath(bucket, key)
	if err := os.Remove(metaPath); err != nil && !os.IsNotExist(err) {
		return &StorageError{Message: "cannot remove object metadata", Err: err}
	}

	cleanupEmptyDirs(filepath.Dir(objPath), e.objectsPath(bucket))

	e.updateBucketStats(bucket)
	slog.Info("Deleted object", "bucket", bucket, "key", key)
	return nil
}

// cleanupEmptyDirs walks upward from dir toward stopAt, removing each
// directory that is empty and stopping at the first one that is not.
func cleanupEmptyDirs(dir string, stopAt string) {
	current := dir
	for current != stopAt {
		entries, err := os.ReadDir(current)
		if err != nil {
			return
		}
		if len(entries) > 0 {
			return
		}
		if err := os.Remove(current); err != nil {
			return
		}

		parent := filepath.Dir(current)
		if parent == current {
			return
		}
		current = parent
	}
}
