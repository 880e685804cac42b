package storage

import "fmt"

// BucketNotFoundError reports an operation against a bucket that is not
// present in the index.
type BucketNotFoundError struct {
	Bucket string
}

func (e *BucketNotFoundError) Error() string {
	return fmt.Sprintf("bucket %q not found", e.Bucket)
}

// BucketExistsError reports an attempt to create a bucket whose name is
// already taken.
type BucketExistsError struct {
	Bucket string
}

func (e *BucketExistsError) Error() string {
	return fmt.Sprintf("bucket %q already exists", e.Bucket)
}

// ObjectNotFoundError reports a read or delete of a key that does not
// exist in the bucket.
type ObjectNotFoundError struct {
	Bucket string
	Key    string
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object %q not found in bucket %q", e.Key, e.Bucket)
}

// InvalidBucketNameError reports a bucket name that fails validation.
// Validation happens before any filesystem mutation.
type InvalidBucketNameError struct {
	Reason string
}

func (e *InvalidBucketNameError) Error() string {
	return "invalid bucket name: " + e.Reason
}

// InvalidObjectKeyError reports an object key that fails validation.
type InvalidObjectKeyError struct {
	Reason string
}

func (e *InvalidObjectKeyError) Error() string {
	return "invalid object key: " + e.Reason
}

// StorageError wraps internal failures: non-empty bucket on delete,
// corrupt metadata JSON, or an underlying filesystem error.
type StorageError struct {
	Message string
	Err     error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("storage error: %s: %v", e.Message, e.Err)
	}
	return "storage error: " + e.Message
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
