package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// FileStore wraps object storage for uploaded CAD/CAM and job files.
// A nil client means storage is not configured; uploads are skipped and
// downloads fail, which keeps local development working without MinIO.
type FileStore struct {
	client *minio.Client
	bucket string
}

// Connect builds a FileStore from endpoint settings. An empty endpoint
// yields a store without a backing client.
func Connect(endpoint, accessKey, secretKey, bucket string, useSSL bool) *FileStore {
	if endpoint == "" {
		return &FileStore{bucket: bucket}
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		client = nil
	}
	return &FileStore{client: client, bucket: bucket}
}

// New wraps an existing client. Used by tests.
func New(client *minio.Client, bucket string) *FileStore {
	return &FileStore{client: client, bucket: bucket}
}

// Configured reports whether a backing client exists.
func (s *FileStore) Configured() bool {
	return s.client != nil
}

// Put streams an object into the bucket. Skipped silently when storage is
// not configured.
func (s *FileStore) Put(ctx context.Context, objectName, contentType string, reader io.Reader, size int64) error {
	if s.client == nil {
		return nil
	}
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("upload file: %w", err)
	}
	return nil
}

// Get opens an object for streaming to the client.
func (s *FileStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("storage not configured")
	}
	object, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return object, nil
}

// Remove deletes a single object.
func (s *FileStore) Remove(ctx context.Context, objectName string) error {
	if s.client == nil {
		return nil
	}
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

// RemovePrefix deletes every object below prefix. Used when a part or job
// is deleted so its uploads do not linger.
func (s *FileStore) RemovePrefix(ctx context.Context, prefix string) error {
	if s.client == nil {
		return nil
	}
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objects {
		if object.Err != nil {
			return object.Err
		}
		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}
	return nil
}
