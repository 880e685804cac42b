package storage

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ListObjects answers a prefix/delimiter listing query over a bucket's
// object tree. Keys are the paths of files relative to the objects root,
// normalized to '/' separators. When a delimiter is given, keys with a
// delimiter occurrence after the prefix are folded into common prefixes
// instead of being listed as objects.
//
// maxKeys truncates the object list only; common prefixes are never
// truncated, and IsTruncated reflects the object count alone.
func (e *Engine) ListObjects(bucket string, prefix string, delimiter string, maxKeys int) (ListObjectsResult, error) {
	if !e.bucketExists(bucket) {
		return ListObjectsResult{}, &BucketNotFoundError{Bucket: bucket}
	}

	var (
		objects        []ObjectMeta
		commonPrefixes []string
	)

	objectsRoot := e.objectsPath(bucket)
	if _, err := os.Stat(objectsRoot); err == nil {
		objects, commonPrefixes, err = e.walkObjects(objectsRoot, bucket, prefix, delimiter)
		if err != nil {
			return ListObjectsResult{}, err
		}
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })
	sort.Strings(commonPrefixes)
	commonPrefixes = dedupSorted(commonPrefixes)

	isTruncated := len(objects) > maxKeys
	if isTruncated {
		objects = objects[:maxKeys]
	}

	if objects == nil {
		objects = []ObjectMeta{}
	}
	if commonPrefixes == nil {
		commonPrefixes = []string{}
	}

	return ListObjectsResult{
		Bucket:         bucket,
		Prefix:         prefix,
		Objects:        objects,
		CommonPrefixes: commonPrefixes,
		IsTruncated:    isTruncated,
		MaxKeys:        maxKeys,
	}, nil
}

// walkObjects recursively visits every file under root, computing each
// file's key and sorting it into either the object list or the common
// prefix list.
func (e *Engine) walkObjects(root string, bucket string, prefix string, delimiter string) ([]ObjectMeta, []string, error) {
	var (
		objects        []ObjectMeta
		commonPrefixes []string
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)

		if !strings.HasPrefix(key, prefix) {
			return nil
		}

		// Folder simulation: fold the key into a common prefix when the
		// delimiter occurs after the prefix.
		if delimiter != "" {
			afterPrefix := key[len(prefix):]
			if pos := strings.Index(afterPrefix, delimiter); pos != -1 {
				commonPrefixes = append(commonPrefixes, prefix+afterPrefix[:pos]+delimiter)
				return nil
			}
		}

		meta, err := e.GetObjectMeta(bucket, key)
		if err != nil {
			// Unreadable sidecars do not abort the listing.
			return nil
		}
		objects = append(objects, meta)
		return nil
	})
	if err != nil {
		return nil, nil, &StorageError{Message: "cannot walk objects", Err: err}
	}

	return objects, commonPrefixes, nil
}

func dedupSorted(values []string) []string {
	out := values[:0]
	for i, v := range values {
		if i == 0 || values[i-1] != v {
			out = append(out, v)
		}
	}
	return out
}
