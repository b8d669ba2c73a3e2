// Package storage talks to the S3-compatible bucket that holds bug
// attachment blobs. Keys are scoped under a per-project prefix so a project
// delete can reason about its own objects only.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ObjectStore is the object storage surface the services depend on.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// Config holds the connection settings for the bucket.
type Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Client implements ObjectStore against an S3-compatible endpoint.
type Client struct {
	s3       *s3.Client
	bucket   string
	endpoint string
}

// New builds a Client. Path-style addressing keeps it compatible with
// self-hosted S3 implementations.
func New(ctx context.Context, cfg Config) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &Client{
		s3:       client,
		bucket:   cfg.Bucket,
		endpoint: strings.TrimSuffix(cfg.Endpoint, "/"),
	}, nil
}

// Upload stores the object and returns its public retrieval URL.
func (c *Client) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", fmt.Errorf("upload object %s: %w", key, err)
	}
	return c.PublicURL(key), nil
}

// Delete removes the object. Deleting a missing key is not an error at the
// S3 level, which suits the caller's at-least-once cleanup.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// PublicURL returns the retrieval URL for a key.
func (c *Client) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
}

// ObjectKey builds a collision-resistant storage key for an attachment:
// project prefix, nanosecond timestamp, random suffix, original extension.
func ObjectKey(projectID, fileName string, now time.Time) string {
	ext := path.Ext(fileName)
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%s/%d-%s%s", projectID, now.UnixNano(), suffix, ext)
}

// KeyFromURL recovers the storage key from a public URL produced by
// PublicURL, so attachment deletion can work from the persisted descriptor.
func KeyFromURL(rawURL, endpoint, bucket string) string {
	prefix := strings.TrimSuffix(endpoint, "/") + "/" + bucket + "/"
	return strings.TrimPrefix(rawURL, prefix)
}
