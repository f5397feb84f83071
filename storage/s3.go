package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/filedepot/storage-access-backend/interfaces"
)

// S3Backend implements the storage contract against Amazon S3 or any
// S3-compatible object store. All provider-specific concerns (endpoint,
// credentials, addressing style) are internal configuration; nothing leaks
// through the operation contract.
type S3Backend struct {
	client *s3.S3
	bucket string
	prefix string
	log    *slog.Logger
}

func newS3Driver(ctx context.Context, cfg *Config, log *slog.Logger) (interfaces.FileStorage, error) {
	return NewS3Backend(cfg.S3, log)
}

// NewS3Backend creates an S3 storage backend. Credentials fall back to the
// SDK's default chain (environment, shared config, instance profile) when
// no static keys are configured.
func NewS3Backend(cfg S3Config, log *slog.Logger) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: s3 bucket name is required", interfaces.ErrConfiguration)
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg := aws.Config{
		Region:           aws.String(region),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}

	sess, err := session.NewSession(&awsCfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create AWS session: %w", interfaces.ErrConfiguration, err)
	}

	return &S3Backend{
		client: s3.New(sess),
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
		log:    log,
	}, nil
}

func (b *S3Backend) objectKey(filename string) string {
	if b.prefix == "" {
		return filename
	}
	return path.Join(b.prefix, filename)
}

// isNotFound reports whether the SDK error means the object is absent.
func isNotFound(err error) bool {
	var aerr awserr.Error
	if !errors.As(err, &aerr) {
		return false
	}
	switch aerr.Code() {
	case s3.ErrCodeNoSuchKey, "NotFound":
		return true
	}
	var rf awserr.RequestFailure
	if errors.As(err, &rf) && rf.StatusCode() == 404 {
		return true
	}
	return false
}

// Save uploads data under the object key, overwriting existing content.
func (b *S3Backend) Save(ctx context.Context, filename string, data []byte) error {
	key := b.objectKey(filename)

	_, err := b.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to upload object: %w", interfaces.ErrTransport, err)
	}

	b.log.Debug("Stored object",
		slog.String("bucket", b.bucket),
		slog.String("key", key),
		slog.Int("size", len(data)))
	return nil
}

// LoadOnce fetches the object and materializes it in memory.
func (b *S3Backend) LoadOnce(ctx context.Context, filename string) ([]byte, error) {
	rc, err := b.LoadStream(ctx, filename)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read object body: %w", interfaces.ErrTransport, err)
	}
	return data, nil
}

// LoadStream returns the object body without buffering; the body is read
// from the connection as the caller consumes it.
func (b *S3Backend) LoadStream(ctx context.Context, filename string) (io.ReadCloser, error) {
	key := b.objectKey(filename)

	result, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrNotFound, filename)
		}
		return nil, fmt.Errorf("%w: failed to get object: %w", interfaces.ErrTransport, err)
	}
	return result.Body, nil
}

// Download streams the object to targetPath.
func (b *S3Backend) Download(ctx context.Context, filename, targetPath string) error {
	rc, err := b.LoadStream(ctx, filename)
	if err != nil {
		return err
	}
	defer rc.Close()
	return writeStreamToFile(rc, targetPath)
}

// Exists heads the object. Only a 404 maps to a false result; any other
// failure is surfaced as a transport error.
func (b *S3Backend) Exists(ctx context.Context, filename string) (bool, error) {
	_, err := b.client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(filename)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to head object: %w", interfaces.ErrTransport, err)
	}
	return true, nil
}

// Delete removes the object. S3 deletes are idempotent, so an absent key
// already satisfies the contract.
func (b *S3Backend) Delete(ctx context.Context, filename string) error {
	_, err := b.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.objectKey(filename)),
	})
	if err != nil {
		return fmt.Errorf("%w: failed to delete object: %w", interfaces.ErrTransport, err)
	}
	return nil
}
