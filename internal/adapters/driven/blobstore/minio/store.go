// Package minio provides a StorageConnector for MinIO and S3-compatible
// object storage. Each repository is a bucket.
package minio

import (
	"context"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StorageConnector = (*Store)(nil)

// API is the subset of *minio.Client used by Store.
type API interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
}

// ClientConfig holds connection settings for NewClient.
type ClientConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
}

// NewClient connects to a MinIO endpoint with static credentials.
func NewClient(cfg ClientConfig) (*minio.Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: minio endpoint is required", domain.ErrInvalidInput)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}
	return client, nil
}

// Store maps repositories to buckets. Objects are keyed by
// <prefix>/<artifact path>.
type Store struct {
	client  API
	buckets map[string]string
	prefix  string
}

// NewStore creates a new MinIO store. buckets maps repository identifiers to
// bucket names; a repository missing from the map uses its own identifier.
// rootPrefix is prepended to all keys (e.g. "archive/").
func NewStore(client API, buckets map[string]string, rootPrefix string) *Store {
	return &Store{
		client:  client,
		buckets: buckets,
		prefix:  rootPrefix,
	}
}

func (s *Store) bucket(repository string) string {
	if b, ok := s.buckets[repository]; ok {
		return b
	}
	return repository
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Exists reports whether the object is present in the repository's bucket.
func (s *Store) Exists(ctx context.Context, repository, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket(repository), s.key(name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NotFound", "NoSuchBucket":
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

// Move copies the object into the target bucket and removes the source.
// A failed removal leaves both copies; the target is then authoritative.
func (s *Store) Move(ctx context.Context, source, target, name string) error {
	key := s.key(name)
	src := minio.CopySrcOptions{Bucket: s.bucket(source), Object: key}
	dst := minio.CopyDestOptions{Bucket: s.bucket(target), Object: key}

	if _, err := s.client.CopyObject(ctx, dst, src); err != nil {
		return mapError(err, dst.Bucket, source, target, name)
	}

	if err := s.client.RemoveObject(ctx, src.Bucket, key, minio.RemoveObjectOptions{}); err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil // Already gone
		}
		return fmt.Errorf("removing %s from %s: %w", name, source, err)
	}
	return nil
}

func mapError(err error, dstBucket, source, target, name string) error {
	errResp := minio.ToErrorResponse(err)
	switch {
	case errResp.Code == "NoSuchBucket" && errResp.BucketName == dstBucket:
		return fmt.Errorf("%w: repository %s", domain.ErrNotFound, target)
	case errResp.Code == "NoSuchKey", errResp.Code == "NotFound", errResp.Code == "NoSuchBucket":
		return fmt.Errorf("%w: %s in %s", domain.ErrArtifactNotFound, name, source)
	}
	return fmt.Errorf("copying %s from %s to %s: %w", name, source, target, err)
}
