package storage

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"
)

// Engine is the filesystem-backed storage engine. It owns the in-memory
// bucket index, which is the single source of truth for bucket existence
// checks; the directory tree under root is the durable state the index is
// rebuilt from at start-up.
type Engine struct {
	root string

	// mu guards buckets. The lock is engine-wide: bucket create/delete and
	// stat refreshes serialize against each other even across distinct
	// buckets. Filesystem reads/writes are deliberately not covered; two
	// concurrent puts to the same key race with last-writer-wins.
	mu      sync.RWMutex
	buckets map[string]Bucket
}

// NewEngine creates the root directory if needed and populates the bucket
// index from the directories found there.
func NewEngine(root string) (*Engine, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, &StorageError{Message: "cannot create data dir", Err: err}
	}

	e := &Engine{
		root:    root,
		buckets: make(map[string]Bucket),
	}

	if err := e.scanBuckets(); err != nil {
		return nil, err
	}
	return e, nil
}

// Root returns the engine's data directory.
func (e *Engine) Root() string {
	return e.root
}

// scanBuckets walks the immediate children of the root directory and
// registers each non-hidden directory as a bucket, loading its persisted
// metadata when present and synthesizing a fresh descriptor otherwise.
func (e *Engine) scanBuckets() error {
	entries, err := os.ReadDir(e.root)
	if err != nil {
		return &StorageError{Message: "cannot read data dir", Err: err}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if name[0] == '.' {
			continue
		}

		bucket, err := e.loadBucketMeta(name)
		if err != nil {
			return err
		}
		e.buckets[name] = bucket
	}
	return nil
}

// loadBucketMeta reads a bucket's persisted descriptor. A missing file is
// replaced by a freshly synthesized descriptor which is persisted
// immediately; a corrupt one is regenerated in memory.
func (e *Engine) loadBucketMeta(name string) (Bucket, error) {
	metaPath := e.bucketMetaPath(name)

	data, err := os.ReadFile(metaPath)
	if os.IsNotExist(err) {
		bucket := newBucketMeta(name, "local")
		if err := e.writeBucketMeta(bucket); err != nil {
			return Bucket{}, err
		}
		return bucket, nil
	}
	if err != nil {
		return Bucket{}, &StorageError{Message: "cannot read bucket metadata", Err: err}
	}

	var bucket Bucket
	if err := json.Unmarshal(data, &bucket); err != nil {
		slog.Warn("Regenerating corrupt bucket metadata", "bucket", name, "err", err)
		return newBucketMeta(name, "local"), nil
	}
	return bucket, nil
}

func newBucketMeta(name string, region string) Bucket {
	return Bucket{
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Region:    region,
	}
}

// writeBucketMeta persists a bucket descriptor to its metadata file.
func (e *Engine) writeBucketMeta(bucket Bucket) error {
	data, err := json.MarshalIndent(bucket, "", "  ")
	if err != nil {
		return &StorageError{Message: "cannot encode bucket metadata", Err: err}
	}
	if err := os.WriteFile(e.bucketMetaPath(bucket.Name), data, 0o644); err != nil {
		return &StorageError{Message: "cannot write bucket metadata", Err: err}
	}
	return nil
}

// ValidateBucketName enforces the bucket naming rules: 3-63 characters,
// lowercase letters, digits, hyphens and periods, and no leading or
// trailing hyphen.
func ValidateBucketName(name string) error {
	if len(name) < 3 || len(name) > 63 {
		return &InvalidBucketNameError{Reason: "bucket name must be between 3 and 63 characters"}
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '-' || c == '.' {
			continue
		}
		return &InvalidBucketNameError{Reason: "bucket name can only contain lowercase letters, numbers, hyphens, and periods"}
	}
	if name[0] == '-' || name[len(name)-1] == '-' {
		return &InvalidBucketNameError{Reason: "bucket name cannot start or end with a hyphen"}
	}
	return nil
}

// CreateBucket validates the name, creates the bucket's directory
// structure and registers it in the index. The existence check and the
// insertion happen under one critical section so concurrent callers
// cannot both create the same bucket.
func (e *Engine) CreateBucket(name string, region string) (Bucket, error) {
	if err := ValidateBucketName(name); err != nil {
		return Bucket{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.buckets[name]; ok {
		return Bucket{}, &BucketExistsError{Bucket: name}
	}

	if err := os.MkdirAll(e.objectsPath(name), 0o755); err != nil {
		return Bucket{}, &StorageError{Message: "cannot create bucket directory", Err: err}
	}
	if err := os.MkdirAll(e.metaPath(name), 0o755); err != nil {
		return Bucket{}, &StorageError{Message: "cannot create bucket metadata directory", Err: err}
	}

	bucket := newBucketMeta(name, region)
	if err := e.writeBucketMeta(bucket); err != nil {
		return Bucket{}, err
	}

	e.buckets[name] = bucket
	slog.Info("Created bucket", "bucket", name, "region", region)
	return bucket, nil
}

// ListBuckets returns descriptors for every known bucket, sorted by name.
func (e *Engine) ListBuckets() []Bucket {
	e.mu.RLock()
	defer e.mu.RUnlock()

	list := make([]Bucket, 0, len(e.buckets))
	for _, bucket := range e.buckets {
		list = append(list, bucket)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// GetBucket returns the descriptor for a single bucket.
func (e *Engine) GetBucket(name string) (Bucket, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	bucket, ok := e.buckets[name]
	if !ok {
		return Bucket{}, &BucketNotFoundError{Bucket: name}
	}
	return bucket, nil
}

// DeleteBucket removes an empty bucket and its directory tree. The
// emptiness check and the removal run under the write lock so a
// concurrent put cannot sneak an object into a bucket being deleted.
func (e *Engine) DeleteBucket(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.buckets[name]; !ok {
		return &BucketNotFoundError{Bucket: name}
	}

	objectsDir := e.objectsPath(name)
	if entries, err := os.ReadDir(objectsDir); err == nil {
		if len(entries) > 0 {
			return &StorageError{Message: "bucket is not empty, delete all objects first"}
		}
	} else if !os.IsNotExist(err) {
		return &StorageError{Message: "cannot read bucket objects directory", Err: err}
	}

	if err := os.RemoveAll(e.bucketPath(name)); err != nil {
		return &StorageError{Message: "cannot remove bucket directory", Err: err}
	}

	delete(e.buckets, name)
	slog.Info("Deleted bucket", "bucket", name)
	return nil
}

// bucketExists reports whether a bucket is present in the index.
func (e *Engine) bucketExists(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.buckets[name]
	return ok
}

// updateBucketStats re-walks the bucket's object tree and refreshes the
// indexed object count and total size, persisting the descriptor. Called
// synchronously after every object mutation.
func (e *Engine) updateBucketStats(name string) {
	count, size := dirStats(e.objectsPath(name))

	e.mu.Lock()
	defer e.mu.Unlock()

	bucket, ok := e.buckets[name]
	if !ok {
		return
	}
	bucket.ObjectCount = count
	bucket.TotalSize = size
	e.buckets[name] = bucket

	if err := e.writeBucketMeta(bucket); err != nil {
		slog.Warn("Failed to persist bucket stats", "bucket", name, "err", err)
	}
}

// Stats aggregates object counts and sizes across all buckets.
func (e *Engine) Stats() StorageStats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := StorageStats{TotalBuckets: uint64(len(e.buckets))}
	for _, bucket := range e.buckets {
		stats.TotalObjects += bucket.ObjectCount
		stats.TotalSize += bucket.TotalSize
	}
	stats.TotalSizeHuman = HumanSize(stats.TotalSize)
	return stats
}
