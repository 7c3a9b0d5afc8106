// Package storage contains the S3-compatible object store client used for generated PDFs.
// Implementations must avoid using local disk and rely on streaming I/O only.
package storage

import (
	"context"
	"io"
	"time"
)

// DefaultPresignExpiry is used when PresignOptions.Expiry is zero.
const DefaultPresignExpiry = 300 * time.Second

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
	Metadata    map[string]string
}

// PresignOptions control a presigned GET URL.
// With Download set the URL forces an attachment named Filename and a generic
// binary content type so browsers do not render it inline.
type PresignOptions struct {
	Expiry   time.Duration
	Download bool
	Filename string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Delete removes an object by key. A missing object is not an error.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to fetch the object without credentials.
	PresignGet(ctx context.Context, key string, opt PresignOptions) (string, error)
}
