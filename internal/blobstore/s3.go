package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Store uploads objects to an S3 bucket or an S3-compatible service
// (MinIO, R2, Supabase storage).
type S3Store struct {
	client    *s3.Client
	bucket    string
	prefix    string
	publicURL string
}

// S3StoreConfig holds configuration for S3Store.
type S3StoreConfig struct {
	Bucket    string
	Region    string
	Endpoint  string // Optional custom endpoint (for MinIO, LocalStack, etc.)
	Prefix    string // Optional key prefix
	PublicURL string // Optional base URL for object links (CDN)
}

// NewS3Store creates a new S3-backed photo store.
func NewS3Store(ctx context.Context, cfg S3StoreConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("STORAGE_BUCKET is required for S3 storage")
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	clientOpts := func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true // Required for MinIO/LocalStack
		}
	}

	return &S3Store{
		client:    s3.NewFromConfig(awsCfg, clientOpts),
		bucket:    cfg.Bucket,
		prefix:    cfg.Prefix,
		publicURL: s3PublicBase(cfg),
	}, nil
}

// s3PublicBase returns the URL objects are reachable under.
func s3PublicBase(cfg S3StoreConfig) string {
	switch {
	case cfg.PublicURL != "":
		return cfg.PublicURL
	case cfg.Endpoint != "":
		return joinURL(cfg.Endpoint, url.PathEscape(cfg.Bucket))
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

func (s *S3Store) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key, err := objectKey(s.prefix, name)
	if err != nil {
		return "", err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(data),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("max-age=3600"),
		IfNoneMatch:  aws.String("*"),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return "", fmt.Errorf("%w: %s", ErrExists, key)
		}
		return "", fmt.Errorf("s3 put failed: %w", err)
	}

	return joinURL(s.publicURL, key), nil
}

func (s *S3Store) Close() error {
	return nil
}
