package storage

import "time"

// Bucket describes a single bucket: its identity plus the aggregate
// statistics recomputed after every mutation. Instances handed out by the
// Engine are copies; callers never share memory with the index.
type Bucket struct {
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
	Region      string    `json:"region"`
	ObjectCount uint64    `json:"object_count"`
	TotalSize   uint64    `json:"total_size"`
}

// ObjectMeta describes a stored object. It is persisted verbatim as the
// object's sidecar metadata file under the bucket's .meta directory.
type ObjectMeta struct {
	Key          string            `json:"key"`
	Bucket       string            `json:"bucket"`
	Size         uint64            `json:"size"`
	ContentType  string            `json:"content_type"`
	ETag         string            `json:"etag"`
	LastModified time.Time         `json:"last_modified"`
	Metadata     map[string]string `json:"metadata"`
}

// ListObjectsResult is the outcome of a prefix/delimiter listing query.
// CommonPrefixes holds the synthetic "folder" entries produced when a
// delimiter folds multiple keys together.
type ListObjectsResult struct {
	Bucket         string       `json:"bucket"`
	Prefix         string       `json:"prefix"`
	Objects        []ObjectMeta `json:"objects"`
	CommonPrefixes []string     `json:"common_prefixes"`
	IsTruncated    bool         `json:"is_truncated"`
	MaxKeys        int          `json:"max_keys"`
}

// StorageStats aggregates counts and sizes across all buckets.
type StorageStats struct {
	TotalBuckets   uint64 `json:"total_buckets"`
	TotalObjects   uint64 `json:"total_objects"`
	TotalSize      uint64 `json:"total_size"`
	TotalSizeHuman string `json:"total_size_human"`
}
