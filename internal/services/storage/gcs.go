// Package storage provides the Cloud Storage implementation of the
// publisher's ObjectStore.
package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
)

type GCSStore struct {
	bucket *gcs.BucketHandle
	name   string
}

func NewGCSStore(ctx context.Context, bucket string) (*GCSStore, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSStore{
		bucket: client.Bucket(bucket),
		name:   bucket,
	}, nil
}

// Write uploads data under the given object name and returns the bucket's
// public URL for it.
func (s *GCSStore) Write(ctx context.Context, name, contentType string, data []byte) (string, error) {
	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload to gcs: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gcs upload: %w", err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.name, name), nil
}
