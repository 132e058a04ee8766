// Package s3 provides a StorageConnector for Amazon S3. Each repository is a
// bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/custodia-labs/archie/internal/core/domain"
	"github.com/custodia-labs/archie/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.StorageConnector = (*Store)(nil)

// Client is the subset of *s3.Client used by Store.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// ClientConfig holds connection settings for NewClient. Empty fields fall
// back to the default AWS credential and region chain.
type ClientConfig struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	PathStyle bool
}

// NewClient builds an S3 client from cfg and the default AWS configuration.
func NewClient(ctx context.Context, cfg ClientConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	}), nil
}

// Store maps repositories to buckets. Objects are keyed by
// <prefix>/<artifact path>.
type Store struct {
	client  Client
	buckets map[string]string
	prefix  string
}

// NewStore creates a new S3 store. buckets maps repository identifiers to
// bucket names; a repository missing from the map uses its own identifier.
// rootPrefix is prepended to all keys (e.g. "archive/").
func NewStore(client Client, buckets map[string]string, rootPrefix string) *Store {
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
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket(repository)),
		Key:    aws.String(s.key(name)),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %w", domain.ErrStorageUnavailable, err)
}

// Move copies the object into the target bucket and deletes the source.
func (s *Store) Move(ctx context.Context, source, target, name string) error {
	key := s.key(name)
	srcBucket := s.bucket(source)
	dstBucket := s.bucket(target)

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(key),
		CopySource: aws.String(copySource(srcBucket, key)),
	})
	if err != nil {
		switch errorCode(err) {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %s in %s", domain.ErrArtifactNotFound, name, source)
		case "NoSuchBucket":
			return fmt.Errorf("%w: repository %s or %s: %w", domain.ErrNotFound, source, target, err)
		}
		return fmt.Errorf("copying %s from %s to %s: %w", name, source, target, err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(srcBucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("deleting %s from %s: %w", name, source, err)
	}
	return nil
}

// copySource returns the URL-encoded "bucket/key" copy source.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	code := errorCode(err)
	return code == "NotFound" || code == "NoSuchKey" || code == "NoSuchBucket"
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
