package adapter

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

// gcsStore keeps each key as an object in a Cloud Storage bucket
type gcsStore struct {
	bucketName string
	client     *storage.Client
}

// NewGCSStore creates a Cloud Storage-backed KVStore
func NewGCSStore(ctx context.Context, bucketName string) (KVStore, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &gcsStore{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *gcsStore) Get(ctx context.Context, key string) (string, bool, error) {
	obj := s.client.Bucket(s.bucketName).Object(key)
	reader, err := obj.NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to read object", goerr.V("key", key))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", false, goerr.Wrap(err, "failed to read object body", goerr.V("key", key))
	}
	return string(data), true, nil
}

func (s *gcsStore) Set(ctx context.Context, key, value string) error {
	obj := s.client.Bucket(s.bucketName).Object(key)
	writer := obj.NewWriter(ctx)
	if _, err := writer.Write([]byte(value)); err != nil {
		_ = writer.Close()
		return goerr.Wrap(err, "failed to write object", goerr.V("key", key))
	}
	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize object", goerr.V("key", key))
	}
	return nil
}

func (s *gcsStore) Close() error {
	return s.client.Close()
}
