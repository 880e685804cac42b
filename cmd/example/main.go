// example exercises a running freebucket server through the MinIO client:
// it creates a bucket, uploads objects, lists them with a prefix and
// delimiter, downloads one back, and deletes it.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// getenv returns the value of the environment variable named by key or
// fallback if the variable is not present.
func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

const (
	BucketName    = "example-bucket"
	ObjectName    = "example.txt"
	ObjectContent = "Hello from FreeBucket!\n"
	NestedObject  = "photos/2024/cat.jpg"
)

// EnsureBucket checks if a bucket exists, and creates it if it does not.
func EnsureBucket(ctx context.Context, client *minio.Client, bucketName string) error {
	exists, err := client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", bucketName, err)
		}
	}
	return nil
}

// UploadFile uploads an object to the specified bucket.
func UploadFile(ctx context.Context, client *minio.Client, bucketName string, objectName string, objectContent []byte, contentType string) error {
	reader := bytes.NewReader(objectContent)
	_, err := client.PutObject(ctx, bucketName, objectName, reader, int64(len(objectContent)), minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			"uploaded-by": "example",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %q to bucket %q: %w", objectName, bucketName, err)
	}

	slog.Info("Uploaded object to bucket", "object", objectName, "bucket", bucketName)
	return nil
}

// ListBucketObjects lists all objects in the specified bucket.
func ListBucketObjects(ctx context.Context, client *minio.Client, bucketName string, prefix string) error {
	slog.Info("Objects in bucket", "bucket", bucketName, "prefix", prefix)
	for objectInfo := range client.ListObjects(ctx, bucketName, minio.ListObjectsOptions{Recursive: true, Prefix: prefix}) {
		if objectInfo.Err != nil {
			return fmt.Errorf("failed to list objects in bucket %q: %w", bucketName, objectInfo.Err)
		}
		slog.Info("Object in bucket", "key", objectInfo.Key, "size", objectInfo.Size, "etag", objectInfo.ETag)
	}
	return nil
}

// DownloadFile downloads an object from the specified bucket to a local file.
func DownloadFile(ctx context.Context, client *minio.Client, bucketName string, objectName string, downloadPath string) error {
	if err := client.FGetObject(ctx, bucketName, objectName, downloadPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("failed to download object %q from bucket %q: %w", objectName, bucketName, err)
	}
	slog.Info("Downloaded object", "path", downloadPath)
	return nil
}

func Run(ctx context.Context, client *minio.Client) error {
	if err := EnsureBucket(ctx, client, BucketName); err != nil {
		return fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	// 1. Upload a small text file and a nested key.
	if err := UploadFile(ctx, client, BucketName, ObjectName, []byte(ObjectContent), "text/plain"); err != nil {
		return fmt.Errorf("failed to upload example file: %w", err)
	}
	if err := UploadFile(ctx, client, BucketName, NestedObject, bytes.Repeat([]byte{0x42}, 2048), "image/jpeg"); err != nil {
		return fmt.Errorf("failed to upload nested object: %w", err)
	}

	// 2. List everything, then only the nested prefix.
	if err := ListBucketObjects(ctx, client, BucketName, ""); err != nil {
		return fmt.Errorf("failed to list bucket objects: %w", err)
	}
	if err := ListBucketObjects(ctx, client, BucketName, "photos/"); err != nil {
		return fmt.Errorf("failed to list prefixed objects: %w", err)
	}

	// 3. Inspect the object metadata.
	stat, err := client.StatObject(ctx, BucketName, ObjectName, minio.StatObjectOptions{})
	if err != nil {
		return fmt.Errorf("failed to stat object: %w", err)
	}
	slog.Info("Object metadata", "key", stat.Key, "etag", stat.ETag, "content_type", stat.ContentType)

	// 4. Download the file back.
	downloadPath := filepath.Join(".", "downloaded_"+ObjectName)
	if err := DownloadFile(ctx, client, BucketName, ObjectName, downloadPath); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	// 5. Delete the nested object again.
	if err := client.RemoveObject(ctx, BucketName, NestedObject, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	slog.Info("Removed object", "bucket", BucketName, "key", NestedObject)

	return nil
}

func main() {
	endpoint := getenv("FREEBUCKET_ENDPOINT", "localhost:3210")
	accessKey := getenv("FREEBUCKET_ACCESS_KEY", "freebucket")
	secretKey := getenv("FREEBUCKET_SECRET_KEY", "freebucket")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})

	if err != nil {
		slog.Error("failed to create client", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if err := Run(ctx, client); err != nil {
		slog.Error("error running example", "err", err)
		os.Exit(1)
	}
}
