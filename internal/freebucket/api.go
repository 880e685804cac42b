package freebucket

import (
	"encoding/xml"

	"freebucket/internal/storage"
)

const s3XMLNamespace = "http://s3.amazonaws.com/doc/2006-03-01/"

// CreateBucketRequest is the JSON body accepted by POST /api/buckets.
type CreateBucketRequest struct {
	Name   string `json:"name"`
	Region string `json:"region,omitempty"`
}

// ListBucketsResponse is the JSON body returned by GET /api/buckets.
type ListBucketsResponse struct {
	Buckets []storage.Bucket `json:"buckets"`
	Owner   string           `json:"owner"`
}

// ListObjectsResponse is the JSON body returned by
// GET /api/buckets/{bucket}/objects.
type ListObjectsResponse struct {
	Bucket         string               `json:"bucket"`
	Prefix         string               `json:"prefix"`
	Objects        []storage.ObjectMeta `json:"objects"`
	CommonPrefixes []string             `json:"common_prefixes"`
	IsTruncated    bool                 `json:"is_truncated"`
	MaxKeys        int                  `json:"max_keys"`
}

// UploadResponse is the JSON body returned by POST /api/buckets/{bucket}/upload.
type UploadResponse struct {
	Uploaded int                  `json:"uploaded"`
	Objects  []storage.ObjectMeta `json:"objects"`
}

// ErrorResponse is the JSON error shape used by the control API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// S3Error is the XML error shape used by the S3-compatible API.
type S3Error struct {
	XMLName  xml.Name `xml:"Error"`
	Code     string   `xml:"Code"`
	Message  string   `xml:"Message"`
	Resource string   `xml:"Resource"`
}

// ListAllMyBucketsOwner identifies the bucket owner in ListBuckets responses.
type ListAllMyBucketsOwner struct {
	ID          string `xml:"ID"`
	DisplayName string `xml:"DisplayName"`
}

// ListAllMyBucketsEntry is a single bucket in a ListBuckets response.
type ListAllMyBucketsEntry struct {
	Name         string `xml:"Name"`
	CreationDate string `xml:"CreationDate"`
}

// ListAllMyBucketsResult represents the XML response for the S3 ListBuckets API.
type ListAllMyBucketsResult struct {
	XMLName xml.Name                `xml:"ListAllMyBucketsResult"`
	XMLNS   string                  `xml:"xmlns,attr"`
	Owner   ListAllMyBucketsOwner   `xml:"Owner"`
	Buckets []ListAllMyBucketsEntry `xml:"Buckets>Bucket"`
}

// ObjectSummary is a single entry in a ListBucketResult.
type ObjectSummary struct {
	Key          string `xml:"Key"`
	LastModified string `xml:"LastModified"`
	ETag         string `xml:"ETag"`
	Size         uint64 `xml:"Size"`
	StorageClass string `xml:"StorageClass"`
}

// CommonPrefixEntry is a folded key group in a ListBucketResult.
type CommonPrefixEntry struct {
	Prefix string `xml:"Prefix"`
}

// ListBucketResult represents the XML response for the S3 ListObjects API.
type ListBucketResult struct {
	XMLName        xml.Name            `xml:"ListBucketResult"`
	XMLNS          string              `xml:"xmlns,attr"`
	Name           string              `xml:"Name"`
	Prefix         string              `xml:"Prefix"`
	Delimiter      string              `xml:"Delimiter,omitempty"`
	MaxKeys        int                 `xml:"MaxKeys"`
	IsTruncated    bool                `xml:"IsTruncated"`
	Contents       []ObjectSummary     `xml:"Contents"`
	CommonPrefixes []CommonPrefixEntry `xml:"CommonPrefixes"`
}

// LocationConstraint represents the XML response for GET /bucket?location.
type LocationConstraint struct {
	XMLName xml.Name `xml:"LocationConstraint"`
	XMLNS   string   `xml:"xmlns,attr"`
	Region  string   `xml:",chardata"`
}
