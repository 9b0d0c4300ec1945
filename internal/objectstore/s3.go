// Package objectstore uploads binary blobs to an S3-compatible bucket and
// resolves their public URLs. Works with AWS S3, MinIO and Cloudflare R2.
package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Bucket is the object store collaborator used by the data access helpers.
type Bucket interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	URL(key string) string
}

// Options configure an S3 bucket. Endpoint is left empty for real AWS.
type Options struct {
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	PublicURL string
}

// S3Bucket is the S3 implementation of Bucket
type S3Bucket struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3Bucket creates a new S3 bucket client
func NewS3Bucket(ctx context.Context, opts Options) (*S3Bucket, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("objectstore: bucket is not configured")
	}
	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(region),
	}
	// Static credentials are required for MinIO and R2
	if opts.AccessKey != "" && opts.SecretKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("objectstore: load config: %w", err)
	}

	var clientOpts []func(*s3.Options)
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Bucket{
		client:  s3.NewFromConfig(cfg, clientOpts...),
		bucket:  opts.Bucket,
		baseURL: publicBaseURL(opts.PublicURL, opts.Bucket, region),
	}, nil
}

// Upload stores data under key
func (b *S3Bucket) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := b.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("objectstore: put %s: %w", key, err)
	}
	return nil
}

// URL returns the public download URL of key
func (b *S3Bucket) URL(key string) string {
	return b.baseURL + "/" + strings.TrimLeft(key, "/")
}

func publicBaseURL(publicURL, bucket, region string) string {
	if u := strings.TrimRight(publicURL, "/"); u != "" {
		return u
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
}
