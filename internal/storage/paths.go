package storage

import (
	"path/filepath"
	"strings"
)

const (
	objectsDirName   = "objects"
	metaDirName      = ".meta"
	bucketMetaName   = ".bucket_meta.json"
	slashReplacement = "__SLASH__"
)

// bucketPath returns the directory that holds everything belonging to a
// bucket.
func (e *Engine) bucketPath(bucket string) string {
	return filepath.Join(e.root, bucket)
}

// objectsPath returns the root of a bucket's object tree.
func (e *Engine) objectsPath(bucket string) string {
	return filepath.Join(e.root, bucket, objectsDirName)
}

// objectPath returns the on-disk location of an object's payload. The key
// is used verbatim as a relative path, so '/'-separated keys nest into
// subdirectories.
func (e *Engine) objectPath(bucket string, key string) string {
	return filepath.Join(e.root, bucket, objectsDirName, filepath.FromSlash(key))
}

// metaPath returns the directory holding a bucket's object metadata
// sidecars.
func (e *Engine) metaPath(bucket string) string {
	return filepath.Join(e.root, bucket, metaDirName)
}

// objectMetaPath returns the on-disk location of an object's metadata
// sidecar. The key is flattened so metadata files never collide with the
// nested object tree.
func (e *Engine) objectMetaPath(bucket string, key string) string {
	flat := strings.ReplaceAll(key, "/", slashReplacement)
	return filepath.Join(e.root, bucket, metaDirName, flat+".json")
}

// bucketMetaPath returns the on-disk location of a bucket's metadata file.
func (e *Engine) bucketMetaPath(bucket string) string {
	return filepath.Join(e.root, bucket, bucketMetaName)
}
