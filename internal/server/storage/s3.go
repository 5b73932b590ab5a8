package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/labbook/internal/common"
	"github.com/dmitrijs2005/labbook/internal/logging"
	"github.com/dmitrijs2005/labbook/internal/server/models"
)

// s3API is the subset of the S3 client used by the store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store stores objects in an S3-compatible bucket (MinIO, AWS).
type S3Store struct {
	client   s3API
	bucket   string
	endpoint string
	logger   logging.Logger
}

// NewS3Store builds a store from per-user (or server default) settings.
// Returns nil when the settings have object storage disabled: callers must
// treat a nil store as "use local storage", not as an error.
func NewS3Store(ctx context.Context, s models.StorageSettings, logger logging.Logger) (*S3Store, error) {
	if !s.Enabled {
		return nil, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(s.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.AccessKey, s.SecretKey, "",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &S3Store{client: client, bucket: s.Bucket, endpoint: strings.TrimSuffix(s.Endpoint, "/"), logger: logger}, nil
}

// Upload stores data under a timestamp-prefixed sanitized-filename key and
// returns the object's URL.
func (s *S3Store) Upload(ctx context.Context, data []byte, filename string, contentType string) (string, error) {
	key := MakeKey(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.logger.Error(ctx, "s3 upload failed", "key", key, "error", err.Error())
		return "", fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	return s.URLForKey(key), nil
}

// Fetch retrieves the object addressed by url (or a legacy path-only string).
func (s *S3Store) Fetch(ctx context.Context, url string) ([]byte, error) {
	key := KeyFromURL(url, s.bucket)

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, common.ErrStorageNotFound
		}
		s.logger.Error(ctx, "s3 fetch failed", "key", key, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return data, nil
}

// Delete removes the object addressed by url. Returns true on success.
func (s *S3Store) Delete(ctx context.Context, url string) bool {
	key := KeyFromURL(url, s.bucket)

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		s.logger.Error(ctx, "s3 delete failed", "key", key, "error", err.Error())
		return false
	}
	return true
}

// URLForKey renders the path-style URL for a stored key.
func (s *S3Store) URLForKey(key string) string {
	if s.endpoint == "" {
		return "/" + s.bucket + "/" + key
	}
	return s.endpoint + "/" + s.bucket + "/" + key
}
